// Package dataset holds the embedded fixture relations the walkthrough
// scenarios evaluate against. Fixtures ship as JSON envelopes validated
// against a JSON Schema before decoding, so a malformed fixture fails loudly
// at load time instead of producing a quietly wrong walkthrough.
package dataset

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/sqlstage/sqlstage/internal/types"
)

//go:embed fixtures/*.json
var fixtureFS embed.FS

//go:embed schema.json
var schemaJSON string

var envelopeSchema = mustCompileSchema()

func mustCompileSchema() *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		panic(fmt.Sprintf("dataset: fixture schema does not compile: %v", err))
	}
	return schema
}

// envelope is the on-disk fixture shape.
type envelope struct {
	Name    string           `json:"name"`
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// Names lists the embedded fixtures, sorted.
func Names() []string {
	entries, err := fixtureFS.ReadDir("fixtures")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}
	sort.Strings(names)
	return names
}

// Load reads and decodes an embedded fixture by name.
func Load(name string) (*types.Relation, error) {
	data, err := fixtureFS.ReadFile("fixtures/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("unknown fixture %q: %w", name, err)
	}
	rel, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("fixture %q: %w", name, err)
	}
	return rel, nil
}

// MustLoad is Load for the embedded fixtures the scenarios are built on,
// where a failure is a programmer error.
func MustLoad(name string) *types.Relation {
	rel, err := Load(name)
	if err != nil {
		panic(err)
	}
	return rel
}

// Decode validates a fixture envelope against the schema and decodes it into
// a Relation. Integral JSON numbers come out as int64 and fractional ones as
// float64, so fixture values compare cleanly against literals.
func Decode(data []byte) (*types.Relation, error) {
	if err := validateEnvelope(data); err != nil {
		return nil, err
	}

	var env envelope
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&env); err != nil {
		return nil, err
	}

	rows := make([]types.Row, len(env.Rows))
	for i, raw := range env.Rows {
		row := types.Row{}
		for column, value := range raw {
			row[column] = normalizeValue(value)
		}
		rows[i] = row
	}
	return types.NewRelation(env.Name, env.Columns, rows)
}

func validateEnvelope(data []byte) error {
	result, err := envelopeSchema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("fixture validation: %w", err)
	}
	if !result.Valid() {
		var errs []string
		for _, desc := range result.Errors() {
			errs = append(errs, desc.String())
		}
		return fmt.Errorf("fixture invalid against schema: %s", strings.Join(errs, "; "))
	}
	return nil
}

func normalizeValue(v any) any {
	num, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := num.Int64(); err == nil {
		return i
	}
	if f, err := num.Float64(); err == nil {
		return f
	}
	return num.String()
}
