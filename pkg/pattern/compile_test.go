package pattern

import (
	"errors"
	"reflect"
	"testing"

	"github.com/vango-dev/deeplink/pkg/schema"
)

var (
	testPostSchema = schema.MustCompile("post",
		schema.Field{Name: "handle", Kind: schema.String, HasDefault: true},
		schema.Field{Name: "id", Kind: schema.String},
	)

	testSearchSchema = schema.MustCompile("search",
		schema.Field{Name: "query", Kind: schema.String},
		schema.Field{Name: "page", Kind: schema.Int},
		schema.Field{Name: "since", Kind: schema.Long, HasDefault: true},
		schema.Field{Name: "includeHistory", Kind: schema.Bool},
	)
)

func TestCompileSegments(t *testing.T) {
	p, err := Compile(testPostSchema, "https://Mastodon.Social/@{handle}/{id}")
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}

	if p.Host() != "mastodon.social" {
		t.Errorf("Host() = %q, want lower-cased host", p.Host())
	}
	if p.SegmentCount() != 2 {
		t.Fatalf("SegmentCount() = %d, want 2", p.SegmentCount())
	}

	segs := p.Segments()
	if segs[0].Kind != Placeholder || segs[0].Name != "handle" || segs[0].Prefix != "@" {
		t.Errorf("segment 0 = %+v", segs[0])
	}
	if segs[1].Kind != Placeholder || segs[1].Name != "id" || segs[1].FieldKind != schema.String {
		t.Errorf("segment 1 = %+v", segs[1])
	}
	if got := p.Placeholders(); !reflect.DeepEqual(got, []string{"handle", "id"}) {
		t.Errorf("Placeholders() = %v", got)
	}
	if p.SchemaID() != "post" {
		t.Errorf("SchemaID() = %q", p.SchemaID())
	}
}

func TestCompileLiteralsAndQuery(t *testing.T) {
	p := MustCompile(testSearchSchema,
		"https://example.com/search/{page}?q={query}&includeHistory={includeHistory}&src=app")

	segs := p.Segments()
	if len(segs) != 2 || segs[0].Kind != Literal || segs[0].Text != "search" {
		t.Fatalf("segments = %+v", segs)
	}
	if segs[1].FieldKind != schema.Int {
		t.Errorf("page kind = %s, want int", segs[1].FieldKind)
	}
	if got := p.QueryNames(); !reflect.DeepEqual(got, []string{"q", "includeHistory", "src"}) {
		t.Errorf("QueryNames() = %v", got)
	}
	if got := p.Placeholders(); !reflect.DeepEqual(got, []string{"page", "query", "includeHistory"}) {
		t.Errorf("Placeholders() = %v", got)
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name     string
		template string
		wantErr  error
	}{
		{name: "no scheme", template: "mastodon.social/@{handle}/{id}", wantErr: ErrMalformedTemplate},
		{name: "unsubstituted host", template: "https://{host}/@{handle}/{id}", wantErr: ErrMalformedTemplate},
		{name: "empty host", template: "https:///{id}", wantErr: ErrMalformedTemplate},
		{name: "unclosed brace", template: "https://a.b/{id", wantErr: ErrMalformedTemplate},
		{name: "stray close", template: "https://a.b/id}", wantErr: ErrMalformedTemplate},
		{name: "two placeholders in segment", template: "https://a.b/{handle}{id}", wantErr: ErrMalformedTemplate},
		{name: "empty placeholder", template: "https://a.b/{}/{id}", wantErr: ErrMalformedTemplate},
		{name: "unknown field", template: "https://a.b/{user}/{id}", wantErr: ErrUnknownField},
		{name: "duplicate", template: "https://a.b/{id}/{id}", wantErr: ErrDuplicatePlaceholder},
		{name: "unbound required", template: "https://a.b/@{handle}", wantErr: ErrUnboundField},
		{name: "query affix", template: "https://a.b/{id}?h=x{handle}", wantErr: ErrMalformedTemplate},
		{name: "query unknown", template: "https://a.b/{id}?h={nope}", wantErr: ErrUnknownField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(testPostSchema, tt.template)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Compile(%q) error = %v, want %v", tt.template, err, tt.wantErr)
			}
			var ce *CompileError
			if !errors.As(err, &ce) || ce.Template != tt.template {
				t.Errorf("error %v does not carry the template", err)
			}
		})
	}
}

func TestCompileOptionalFieldMayBeUnbound(t *testing.T) {
	if _, err := Compile(testPostSchema, "https://misskey.io/notes/{id}"); err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
}

func TestMustCompilePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("MustCompile should panic on unknown field")
		}
	}()
	MustCompile(testPostSchema, "https://a.b/{missing}")
}

func TestParserFor(t *testing.T) {
	tests := []struct {
		kind schema.Kind
		raw  string
		ok   bool
		want string
	}{
		{schema.String, "anything at all", true, "anything at all"},
		{schema.String, "", true, ""},
		{schema.Int, "42", true, "42"},
		{schema.Int, "-7", true, "-7"},
		{schema.Int, "2147483648", false, ""},
		{schema.Int, "abc", false, ""},
		{schema.Long, "9223372036854775807", true, "9223372036854775807"},
		{schema.Long, "9223372036854775808", false, ""},
		{schema.Long, "1.5", false, ""},
		{schema.Bool, "true", true, "true"},
		{schema.Bool, "false", true, "false"},
		{schema.Bool, "1", false, ""},
		{schema.Bool, "TRUE", false, ""},
	}

	for _, tt := range tests {
		parse, ok := ParserFor(tt.kind)
		if !ok {
			t.Fatalf("ParserFor(%s) missing", tt.kind)
		}
		v, ok := parse(tt.raw)
		if ok != tt.ok {
			t.Errorf("parse %s(%q) ok = %v, want %v", tt.kind, tt.raw, ok, tt.ok)
			continue
		}
		if ok && (v.String() != tt.want || v.Kind() != tt.kind) {
			t.Errorf("parse %s(%q) = %v (%s)", tt.kind, tt.raw, v, v.Kind())
		}
	}

	if _, ok := ParserFor(schema.Invalid); ok {
		t.Error("ParserFor(Invalid) should not exist")
	}
}
