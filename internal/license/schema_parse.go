package license

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v2"

	licerrors "licseal/internal/errors"
	"licseal/internal/variant"
)

// SchemaDefinition is the textual form a schema is loaded from, in YAML
// or JSON.
type SchemaDefinition struct {
	Name   string            `yaml:"name" json:"name" validate:"required"`
	Fields []FieldDefinition `yaml:"fields" json:"fields" validate:"required,min=1,dive"`
}

// FieldDefinition is one schema entry as written in a definition file.
type FieldDefinition struct {
	Name         string `yaml:"name" json:"name" validate:"required"`
	Type         string `yaml:"type" json:"type" validate:"required"`
	Signed       bool   `yaml:"signed" json:"signed,omitempty"`
	Required     bool   `yaml:"required" json:"required,omitempty"`
	DefaultValue any    `yaml:"defaultValue" json:"defaultValue,omitempty"`
	Processor    string `yaml:"processor" json:"processor,omitempty"`
}

var definitionValidator = validator.New()

// ParseSchema builds a Schema from a YAML or JSON definition. JSON input
// is detected by its leading brace; everything else parses as YAML.
func ParseSchema(data []byte) (*Schema, error) {
	def, err := decodeDefinition(data)
	if err != nil {
		return nil, err
	}
	return def.Build()
}

// LoadSchema reads and parses a schema definition file.
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, licerrors.MissingFile(path, err)
		}
		return nil, fmt.Errorf("read schema %s: %w", path, err)
	}
	s, err := ParseSchema(data)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", path, err)
	}
	return s, nil
}

func decodeDefinition(data []byte) (*SchemaDefinition, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, licerrors.InvalidInput("schema definition is empty")
	}

	var def SchemaDefinition
	if strings.HasPrefix(trimmed, "{") {
		if err := json.Unmarshal(data, &def); err != nil {
			return nil, licerrors.InvalidInput(fmt.Sprintf("schema definition: %v", err))
		}
	} else {
		if err := yaml.Unmarshal(data, &def); err != nil {
			return nil, licerrors.InvalidInput(fmt.Sprintf("schema definition: %v", err))
		}
	}
	return &def, nil
}

// Build validates the definition and constructs the immutable Schema.
// Structural problems reported by the struct validator and semantic
// problems found by NewSchema both surface as a SchemaDefinitionInvalid
// aggregate.
func (def *SchemaDefinition) Build() (*Schema, error) {
	if err := definitionValidator.Struct(def); err != nil {
		var problems []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, ve := range verrs {
				problems = append(problems, fmt.Sprintf("%s fails %q", ve.Namespace(), ve.Tag()))
			}
		} else {
			problems = append(problems, err.Error())
		}
		return nil, licerrors.NewAggregate(licerrors.ErrSchemaDefinition, problems)
	}

	fields := make([]FieldDescriptor, 0, len(def.Fields))
	var problems []string
	for _, fd := range def.Fields {
		defaultVal, err := variant.FromInterface(normalizeYAML(fd.DefaultValue))
		if err != nil {
			problems = append(problems, fmt.Sprintf("field %q: default value: %v", fd.Name, err))
			defaultVal = variant.Null()
		}
		fields = append(fields, FieldDescriptor{
			Name:      fd.Name,
			Type:      ParseFieldType(fd.Type),
			Signed:    fd.Signed,
			Required:  fd.Required,
			Default:   defaultVal,
			Processor: fd.Processor,
		})
	}
	if len(problems) > 0 {
		return nil, licerrors.NewAggregate(licerrors.ErrSchemaDefinition, problems)
	}

	return NewSchema(def.Name, fields)
}

// normalizeYAML rewrites yaml.v2's []interface{} decodings so the variant
// conversion sees plain Go values regardless of the source encoding.
func normalizeYAML(x any) any {
	switch t := x.(type) {
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeYAML(e)
		}
		return out
	default:
		return x
	}
}

// DefinitionJSONSchema returns the JSON Schema describing the schema
// definition file format, for editor tooling and documentation.
func DefinitionJSONSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{DoNotReference: true}
	return reflector.Reflect(&SchemaDefinition{})
}
