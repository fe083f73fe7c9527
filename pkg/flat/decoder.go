// Package flat rebuilds typed records from the flat name→value maps that
// pattern matches produce.
//
// Callers walk the schema with a Decoder cursor and assign each reported
// field into their record:
//
//	d := flat.NewDecoder(postSchema, match.Args)
//	for {
//	    i, err := d.Next()
//	    if err != nil {
//	        return Post{}, err
//	    }
//	    if i == flat.Done {
//	        break
//	    }
//	    switch i {
//	    case 0:
//	        p.Handle = d.Value().String()
//	    case 1:
//	        p.ID = d.Value().String()
//	    }
//	}
package flat

import (
	"errors"
	"fmt"

	"github.com/vango-dev/deeplink/pkg/pattern"
	"github.com/vango-dev/deeplink/pkg/schema"
)

// Done is returned by Next once every field has been visited.
const Done = -1

// Decode errors.
var (
	ErrMissingField = errors.New("required field missing")
	ErrKindMismatch = errors.New("value kind does not match field")
	ErrNoCurrent    = errors.New("no current field")
)

// FieldError reports a field that could not be decoded.
type FieldError struct {
	SchemaID string
	Field    string
	Err      error
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("decode %s.%s: %v", e.SchemaID, e.Field, e.Err)
}

// Unwrap returns the underlying sentinel error.
func (e *FieldError) Unwrap() error {
	return e.Err
}

// Decoder is a forward-only cursor over a schema's fields. It never
// revisits or reorders fields.
type Decoder struct {
	schema  *schema.Schema
	args    map[string]pattern.Value
	next    int
	current int
}

// NewDecoder returns a cursor positioned before the first field.
func NewDecoder(s *schema.Schema, args map[string]pattern.Value) *Decoder {
	return &Decoder{schema: s, args: args, current: Done}
}

// Next advances to the next field present in the map and returns its
// index. Absent fields with a default are skipped; an absent required field
// is an error. Done is returned after the last field.
func (d *Decoder) Next() (int, error) {
	for d.next < d.schema.Len() {
		i := d.next
		d.next++
		f := d.schema.Field(i)

		v, ok := d.args[f.Name]
		if !ok {
			if f.HasDefault {
				continue
			}
			d.current = Done
			return Done, &FieldError{SchemaID: d.schema.ID(), Field: f.Name, Err: ErrMissingField}
		}
		if v.Kind() != f.Kind {
			d.current = Done
			return Done, &FieldError{
				SchemaID: d.schema.ID(),
				Field:    f.Name,
				Err:      fmt.Errorf("%w: got %s, want %s", ErrKindMismatch, v.Kind(), f.Kind),
			}
		}
		d.current = i
		return i, nil
	}
	d.current = Done
	return Done, nil
}

// Value returns the value at the cursor. It panics if Next has not
// reported a field, since that is a bug in the calling decode loop.
func (d *Decoder) Value() pattern.Value {
	if d.current == Done {
		panic(ErrNoCurrent)
	}
	return d.args[d.schema.Field(d.current).Name]
}

// Field returns the descriptor at the cursor.
func (d *Decoder) Field() schema.Field {
	if d.current == Done {
		panic(ErrNoCurrent)
	}
	return d.schema.Field(d.current)
}
