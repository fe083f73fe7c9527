// Package schema describes the flat record shapes that deep-link routes
// decode into.
//
// A Schema is an ordered list of named primitive fields. Only the closed set
// of kinds String, Int, Long and Bool is supported; anything else is a bug in
// a static route table and is rejected when the schema is compiled.
//
//	var profileSchema = schema.MustCompile("profile",
//	    schema.Field{Name: "handle", Kind: schema.String},
//	)
package schema

import (
	"errors"
	"fmt"
)

// Kind is the primitive type of a schema field.
type Kind int

const (
	// Invalid is the zero Kind and is never accepted by Compile.
	Invalid Kind = iota
	String
	Int
	Long
	Bool
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Int:
		return "int"
	case Long:
		return "long"
	case Bool:
		return "bool"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Valid reports whether k is one of the supported primitive kinds.
func (k Kind) Valid() bool {
	return k >= String && k <= Bool
}

// Field describes one field of a schema.
type Field struct {
	// Name is the placeholder name the field binds to.
	Name string

	// Kind is the primitive type of the field.
	Kind Kind

	// HasDefault marks the field optional. Decoders skip an absent
	// optional field and the record keeps its zero value.
	HasDefault bool
}

// Schema errors.
var (
	ErrUnsupportedKind = errors.New("unsupported field kind")
	ErrDuplicateField  = errors.New("duplicate field name")
	ErrEmptyFieldName  = errors.New("empty field name")
	ErrEmptySchemaID   = errors.New("empty schema id")
)

// Error reports a structural problem with a schema definition.
type Error struct {
	SchemaID string
	Field    string
	Err      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("schema %q: %v", e.SchemaID, e.Err)
	}
	return fmt.Sprintf("schema %q field %q: %v", e.SchemaID, e.Field, e.Err)
}

// Unwrap returns the underlying sentinel error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Schema is an immutable, ordered field descriptor list.
type Schema struct {
	id     string
	fields []Field
	index  map[string]int
}

// Compile validates fields and returns the schema describing them.
// Field order is significant: decoders visit fields in declaration order.
func Compile(id string, fields ...Field) (*Schema, error) {
	if id == "" {
		return nil, &Error{Err: ErrEmptySchemaID}
	}

	s := &Schema{
		id:     id,
		fields: make([]Field, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		if f.Name == "" {
			return nil, &Error{SchemaID: id, Err: ErrEmptyFieldName}
		}
		if !f.Kind.Valid() {
			return nil, &Error{SchemaID: id, Field: f.Name, Err: fmt.Errorf("%w: %s", ErrUnsupportedKind, f.Kind)}
		}
		if _, dup := s.index[f.Name]; dup {
			return nil, &Error{SchemaID: id, Field: f.Name, Err: ErrDuplicateField}
		}
		s.fields[i] = f
		s.index[f.Name] = i
	}
	return s, nil
}

// MustCompile is like Compile but panics on error. It is meant for
// package-level route schemas, where a bad definition must stop the program.
func MustCompile(id string, fields ...Field) *Schema {
	s, err := Compile(id, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// ID returns the schema identifier.
func (s *Schema) ID() string {
	return s.id
}

// Len returns the number of fields.
func (s *Schema) Len() int {
	return len(s.fields)
}

// Field returns the field at index i.
func (s *Schema) Field(i int) Field {
	return s.fields[i]
}

// Fields returns a copy of the ordered field list.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Lookup returns the field with the given name and its index.
func (s *Schema) Lookup(name string) (Field, int, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, -1, false
	}
	return s.fields[i], i, true
}
