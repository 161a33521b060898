package schema

import (
	"fmt"

	"github.com/coeff/target-cassandra/targeterr"
)

// formatDateTime is the only format hint that changes a mapping: a string
// property carrying it becomes a timestamp column instead of text.
const formatDateTime = "date-time"

// MapProperty maps one JSON Schema property definition to a column type.
//
// An anyOf list resolves to its first alternative (alternatives are never
// merged). A type list has "null" removed first, since all Cassandra columns
// are nullable; exactly one type must remain or the union is ambiguous.
// Object, array, and bare null properties map to TypeUnsupported, which
// callers treat as "no column", not as an error.
func MapProperty(stream, property string, p Property) (ColumnType, error) {
	if len(p.Type.Names) == 0 {
		if len(p.AnyOf) > 0 {
			return MapProperty(stream, property, p.AnyOf[0])
		}
		return TypeUnsupported, &targeterr.SchemaError{
			Stream:   stream,
			Property: property,
			Msg:      `definition has neither "type" nor "anyOf"`,
		}
	}

	if !p.Type.List {
		return mapSingle(stream, property, p.Type.Names[0], p.Format)
	}

	var nonNull []string
	for _, name := range p.Type.Names {
		if name != "null" {
			nonNull = append(nonNull, name)
		}
	}
	switch len(nonNull) {
	case 0:
		return TypeUnsupported, &targeterr.SchemaError{
			Stream:   stream,
			Property: property,
			Msg:      "type union contains only null",
		}
	case 1:
		return mapSingle(stream, property, nonNull[0], p.Format)
	default:
		return TypeUnsupported, &targeterr.SchemaError{
			Stream:   stream,
			Property: property,
			Msg:      fmt.Sprintf("ambiguous type union %v", nonNull),
		}
	}
}

func mapSingle(stream, property, name, format string) (ColumnType, error) {
	switch name {
	case "string":
		if format == formatDateTime {
			return TypeTimestamp, nil
		}
		return TypeText, nil
	case "boolean":
		return TypeBoolean, nil
	case "integer":
		return TypeInt, nil
	case "number":
		return TypeFloat, nil
	case "null", "array", "object":
		return TypeUnsupported, nil
	default:
		return TypeUnsupported, &targeterr.SchemaError{
			Stream:   stream,
			Property: property,
			Msg:      fmt.Sprintf("unknown JSON Schema type %q", name),
		}
	}
}
