package schema

import (
	"errors"
	"testing"

	"github.com/coeff/target-cassandra/targeterr"
)

func single(name string) TypeSet {
	return TypeSet{Names: []string{name}}
}

func union(names ...string) TypeSet {
	return TypeSet{Names: names, List: true}
}

func TestMapProperty_SingleTypes(t *testing.T) {
	tests := []struct {
		name string
		prop Property
		want ColumnType
	}{
		{"string", Property{Type: single("string")}, TypeText},
		{"boolean", Property{Type: single("boolean")}, TypeBoolean},
		{"integer", Property{Type: single("integer")}, TypeInt},
		{"number", Property{Type: single("number")}, TypeFloat},
		{"date-time string", Property{Type: single("string"), Format: "date-time"}, TypeTimestamp},
		{"null", Property{Type: single("null")}, TypeUnsupported},
		{"array", Property{Type: single("array")}, TypeUnsupported},
		{"object", Property{Type: single("object")}, TypeUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MapProperty("s", "p", tt.prop)
			if err != nil {
				t.Fatalf("MapProperty: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

// A union with exactly one non-null member maps identically to that member
// alone.
func TestMapProperty_NullableUnion(t *testing.T) {
	for _, name := range []string{"string", "boolean", "integer", "number"} {
		plain, err := MapProperty("s", "p", Property{Type: single(name)})
		if err != nil {
			t.Fatalf("plain %s: %v", name, err)
		}
		nullable, err := MapProperty("s", "p", Property{Type: union(name, "null")})
		if err != nil {
			t.Fatalf("nullable %s: %v", name, err)
		}
		if plain != nullable {
			t.Errorf("%s: nullable union mapped to %v, plain to %v", name, nullable, plain)
		}
	}
}

func TestMapProperty_UnionCarriesFormat(t *testing.T) {
	got, err := MapProperty("s", "created_at", Property{
		Type:   union("null", "string"),
		Format: "date-time",
	})
	if err != nil {
		t.Fatal(err)
	}
	if got != TypeTimestamp {
		t.Errorf("got %v, want TypeTimestamp", got)
	}
}

func TestMapProperty_AmbiguousUnion(t *testing.T) {
	_, err := MapProperty("s", "p", Property{Type: union("string", "integer")})
	var se *targeterr.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
}

func TestMapProperty_NullOnlyUnion(t *testing.T) {
	_, err := MapProperty("s", "p", Property{Type: union("null")})
	var se *targeterr.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected SchemaError for [null] union, got %v", err)
	}
}

// anyOf resolves to its first alternative; alternatives are never merged.
func TestMapProperty_AnyOfFirstAlternative(t *testing.T) {
	prop := Property{AnyOf: []Property{
		{Type: single("string"), Format: "date-time"},
		{Type: single("integer")},
	}}
	got, err := MapProperty("s", "p", prop)
	if err != nil {
		t.Fatal(err)
	}

	first, err := MapProperty("s", "p", prop.AnyOf[0])
	if err != nil {
		t.Fatal(err)
	}
	if got != first {
		t.Errorf("anyOf mapped to %v, first alternative alone maps to %v", got, first)
	}
}

func TestMapProperty_AnyOfNested(t *testing.T) {
	prop := Property{AnyOf: []Property{
		{AnyOf: []Property{{Type: union("number", "null")}}},
	}}
	got, err := MapProperty("s", "p", prop)
	if err != nil {
		t.Fatal(err)
	}
	if got != TypeFloat {
		t.Errorf("got %v, want TypeFloat", got)
	}
}

func TestMapProperty_NoTypeNoAnyOf(t *testing.T) {
	_, err := MapProperty("s", "p", Property{})
	var se *targeterr.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
}

func TestMapProperty_UnknownType(t *testing.T) {
	_, err := MapProperty("s", "p", Property{Type: single("decimal")})
	var se *targeterr.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
}
