package schema

import (
	"log/slog"
	"sort"

	"github.com/coeff/target-cassandra/targeterr"
)

// KeyPolicy decides what happens when a declared key property cannot become
// a primary key column, either because its type is unsupported or because it
// is absent from the schema's properties.
type KeyPolicy int

const (
	// KeyPolicyFail rejects the schema. A table silently missing one of its
	// declared primary keys is almost certainly an upstream bug.
	KeyPolicyFail KeyPolicy = iota
	// KeyPolicyDrop skips the key property with a warning log.
	KeyPolicyDrop
)

func (p KeyPolicy) String() string {
	if p == KeyPolicyDrop {
		return "drop"
	}
	return "fail"
}

// Translate derives a table definition from a stream's JSON Schema and its
// declared key properties. Properties whose type maps to TypeUnsupported are
// skipped. Columns come out sorted by name so the definition is
// deterministic regardless of map iteration order.
func Translate(stream string, def *Definition, keyProperties []string, policy KeyPolicy, logger *slog.Logger) (TableDef, error) {
	if logger == nil {
		logger = slog.Default()
	}

	keys := make(map[string]bool, len(keyProperties))
	for _, k := range keyProperties {
		keys[k] = true
	}

	table := TableDef{Name: TableName(stream)}
	for name, prop := range def.Properties {
		colType, err := MapProperty(stream, name, prop)
		if err != nil {
			return TableDef{}, err
		}
		if colType == TypeUnsupported {
			if keys[name] {
				if policy == KeyPolicyFail {
					return TableDef{}, &targeterr.SchemaError{
						Stream:   stream,
						Property: name,
						Msg:      "key property has an unsupported type",
					}
				}
				logger.Warn("dropping key property with unsupported type",
					"stream", stream,
					"property", name,
				)
			}
			continue
		}
		table.Columns = append(table.Columns, ColumnDef{
			Name:       name,
			Type:       colType,
			PrimaryKey: keys[name],
		})
	}

	for _, k := range keyProperties {
		if _, ok := def.Properties[k]; ok {
			continue
		}
		if policy == KeyPolicyFail {
			return TableDef{}, &targeterr.SchemaError{
				Stream:   stream,
				Property: k,
				Msg:      "key property is not declared in schema properties",
			}
		}
		logger.Warn("dropping key property absent from schema properties",
			"stream", stream,
			"property", k,
		)
	}

	sort.Slice(table.Columns, func(i, j int) bool {
		return table.Columns[i].Name < table.Columns[j].Name
	})

	if len(table.PrimaryKeys()) == 0 {
		return TableDef{}, &targeterr.SchemaError{
			Stream: stream,
			Msg:    "no primary key columns (Cassandra requires at least one)",
		}
	}

	return table, nil
}
