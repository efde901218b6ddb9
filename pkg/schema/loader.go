// pkg/schema/loader.go
package schema

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/Bernard065/mini-rdbms/pkg/types"
)

// fileSchema is the on-disk shape of a bootstrap schema file
type fileSchema struct {
	Tables []struct {
		Name    string `json:"name" yaml:"name"`
		Columns []struct {
			Name          string `json:"name" yaml:"name"`
			Type          string `json:"type" yaml:"type"`
			PrimaryKey    bool   `json:"primary_key,omitempty" yaml:"primary_key,omitempty"`
			AutoIncrement bool   `json:"auto_increment,omitempty" yaml:"auto_increment,omitempty"`
			Unique        bool   `json:"unique,omitempty" yaml:"unique,omitempty"`
			NotNull       bool   `json:"not_null,omitempty" yaml:"not_null,omitempty"`
		} `json:"columns" yaml:"columns"`
	} `json:"tables" yaml:"tables"`
}

// LoadFromYAML parses table schemas from YAML bootstrap data
func LoadFromYAML(data []byte) ([]*TableSchema, error) {
	var fs fileSchema
	if err := yaml.Unmarshal(data, &fs); err != nil {
		return nil, errors.Wrap(err, "failed to parse YAML schema")
	}
	return buildSchemas(&fs)
}

// LoadFromJSON parses table schemas from JSON bootstrap data
func LoadFromJSON(data []byte) ([]*TableSchema, error) {
	var fs fileSchema
	if err := json.Unmarshal(data, &fs); err != nil {
		return nil, errors.Wrap(err, "failed to parse JSON schema")
	}
	return buildSchemas(&fs)
}

// LoadFromFile loads table schemas from a file, picking the format by
// extension (.json, .yaml, .yml; anything else tries JSON then YAML).
func LoadFromFile(filename string) ([]*TableSchema, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read schema file")
	}

	switch {
	case strings.HasSuffix(strings.ToLower(filename), ".json"):
		return LoadFromJSON(data)
	case strings.HasSuffix(strings.ToLower(filename), ".yaml"),
		strings.HasSuffix(strings.ToLower(filename), ".yml"):
		return LoadFromYAML(data)
	}

	schemas, err := LoadFromJSON(data)
	if err == nil {
		return schemas, nil
	}
	return LoadFromYAML(data)
}

func buildSchemas(fs *fileSchema) ([]*TableSchema, error) {
	schemas := make([]*TableSchema, 0, len(fs.Tables))
	for _, tbl := range fs.Tables {
		if tbl.Name == "" {
			return nil, errors.New("schema table missing name")
		}
		cols := make([]ColumnDef, 0, len(tbl.Columns))
		for _, c := range tbl.Columns {
			typ, err := parseTypeName(c.Type)
			if err != nil {
				return nil, errors.Wrapf(err, "table %s column %s", tbl.Name, c.Name)
			}
			cols = append(cols, ColumnDef{
				Name:          c.Name,
				Type:          typ,
				PrimaryKey:    c.PrimaryKey,
				AutoIncrement: c.AutoIncrement,
				Unique:        c.Unique,
				NotNull:       c.NotNull,
				Default:       types.NewNull(),
			})
		}
		ts, err := NewTableSchema(tbl.Name, cols)
		if err != nil {
			return nil, errors.Wrapf(err, "table %s", tbl.Name)
		}
		schemas = append(schemas, ts)
	}
	return schemas, nil
}

func parseTypeName(name string) (types.ValueType, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "INTEGER":
		return types.TypeInteger, nil
	case "TEXT":
		return types.TypeText, nil
	case "BOOLEAN":
		return types.TypeBoolean, nil
	case "REAL":
		return types.TypeReal, nil
	case "DATE":
		return types.TypeDate, nil
	default:
		return types.TypeNull, errors.Errorf("unknown column type %q", name)
	}
}
