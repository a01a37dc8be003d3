package license

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	licerrors "licseal/internal/errors"
	"licseal/internal/variant"
)

// Canonical schema type names. Aliases (integer, float, number, boolean,
// date) normalize to these at parse time; anything else is kept verbatim
// and treated permissively during validation.
const (
	TypeString   = "string"
	TypeInt      = "int"
	TypeDouble   = "double"
	TypeDecimal  = "decimal"
	TypeBool     = "bool"
	TypeDateTime = "datetime"
	TypeList     = "list"
)

var typeAliases = map[string]string{
	"string":   TypeString,
	"str":      TypeString,
	"int":      TypeInt,
	"integer":  TypeInt,
	"double":   TypeDouble,
	"float":    TypeDouble,
	"number":   TypeDouble,
	"decimal":  TypeDecimal,
	"bool":     TypeBool,
	"boolean":  TypeBool,
	"datetime": TypeDateTime,
	"date":     TypeDateTime,
}

// listElemTypes are the element types allowed inside list<T> declarations.
var listElemTypes = map[string]bool{
	TypeString:  true,
	TypeInt:     true,
	TypeDouble:  true,
	TypeDecimal: true,
	TypeBool:    true,
}

// FieldType is a parsed schema type declaration. For lists, Elem holds
// the element type name. Known is false for declarations outside the
// supported set; such fields validate permissively.
type FieldType struct {
	Name  string
	Elem  string
	Known bool
	raw   string
}

// ParseFieldType normalizes a schema type string. Unknown declarations do
// not error here; schema construction decides whether they are allowed.
func ParseFieldType(s string) FieldType {
	raw := strings.TrimSpace(s)
	lower := strings.ToLower(raw)

	if strings.HasPrefix(lower, "list<") && strings.HasSuffix(lower, ">") {
		inner := strings.TrimSpace(lower[len("list<") : len(lower)-1])
		if canonical, ok := typeAliases[inner]; ok && listElemTypes[canonical] {
			return FieldType{Name: TypeList, Elem: canonical, Known: true, raw: raw}
		}
		return FieldType{Name: TypeList, Elem: inner, Known: false, raw: raw}
	}

	if canonical, ok := typeAliases[lower]; ok {
		return FieldType{Name: canonical, Known: true, raw: raw}
	}
	return FieldType{Name: lower, Known: false, raw: raw}
}

// String returns the declaration as written in the schema.
func (t FieldType) String() string {
	if t.raw != "" {
		return t.raw
	}
	if t.Name == TypeList {
		return fmt.Sprintf("list<%s>", t.Elem)
	}
	return t.Name
}

// FieldDescriptor describes a single schema field. Descriptors are value
// types and never mutated after schema construction.
type FieldDescriptor struct {
	Name      string
	Type      FieldType
	Signed    bool
	Required  bool
	Default   variant.Value
	Processor string
}

// HasDefault reports whether the descriptor carries a default value.
func (d FieldDescriptor) HasDefault() bool {
	return !d.Default.IsNull()
}

// Schema is an immutable, ordered declaration of the fields a conforming
// license document may carry. Built once, validated at construction,
// shared by any number of documents.
type Schema struct {
	name   string
	fields []FieldDescriptor
	index  map[string]int // lower-cased name -> position in fields
}

// NewSchema validates the field list and builds a schema. All definition
// problems are collected and reported together as one
// SchemaDefinitionInvalid aggregate.
func NewSchema(name string, fields []FieldDescriptor) (*Schema, error) {
	var problems []string

	if strings.TrimSpace(name) == "" {
		problems = append(problems, "schema name must not be blank")
	}
	if len(fields) == 0 {
		problems = append(problems, "schema must declare at least one field")
	}

	index := make(map[string]int, len(fields))
	out := make([]FieldDescriptor, 0, len(fields))
	for i, fd := range fields {
		fieldName := strings.TrimSpace(fd.Name)
		if fieldName == "" {
			problems = append(problems, fmt.Sprintf("field %d: name must not be blank", i))
			continue
		}
		key := strings.ToLower(fieldName)
		if _, dup := index[key]; dup {
			problems = append(problems, fmt.Sprintf("duplicate field name %q", fieldName))
			continue
		}

		if !fd.Type.Known {
			problems = append(problems, fmt.Sprintf("field %q: unsupported type %q", fieldName, fd.Type.String()))
		}

		if fd.HasDefault() && fd.Type.Known {
			converted, err := ConvertValue(fd.Default, fd.Type)
			if err != nil {
				problems = append(problems, fmt.Sprintf(
					"field %q: default value %v is not convertible to %s", fieldName, fd.Default.Text(), fd.Type.String()))
			} else {
				fd.Default = converted
			}
		}

		fd.Name = fieldName
		index[key] = len(out)
		out = append(out, fd)
	}

	if len(problems) > 0 {
		return nil, licerrors.NewAggregate(licerrors.ErrSchemaDefinition, problems)
	}
	return &Schema{name: name, fields: out, index: index}, nil
}

// Name returns the schema name.
func (s *Schema) Name() string { return s.name }

// Fields returns the ordered field descriptors. The slice is a copy.
func (s *Schema) Fields() []FieldDescriptor {
	return append([]FieldDescriptor(nil), s.fields...)
}

// Field looks up a descriptor by name, case-insensitively.
func (s *Schema) Field(name string) (FieldDescriptor, bool) {
	i, ok := s.index[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return FieldDescriptor{}, false
	}
	return s.fields[i], true
}

// ConvertValue coerces a value to the given schema type, for default
// values declared in schema definitions. String defaults for list types
// follow the documented precedence: a JSON-array-looking string is parsed
// as JSON first, then any comma-containing string splits on commas, and
// anything else becomes a single-element list.
func ConvertValue(v variant.Value, t FieldType) (variant.Value, error) {
	if v.IsNull() {
		return v, nil
	}

	switch t.Name {
	case TypeString:
		if s, ok := v.Str(); ok {
			return variant.String(s), nil
		}
		return variant.String(v.Text()), nil

	case TypeInt:
		if s, ok := v.Str(); ok {
			n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
			if err != nil {
				return variant.Null(), licerrors.TypeConversion(s, TypeInt)
			}
			return variant.Int(n), nil
		}
		ok, f := variant.IsNumeric(v)
		if !ok || f != float64(int64(f)) {
			return variant.Null(), licerrors.TypeConversion(v.Text(), TypeInt)
		}
		return variant.Int(int64(f)), nil

	case TypeDouble, TypeDecimal:
		if s, ok := v.Str(); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return variant.Null(), licerrors.TypeConversion(s, t.Name)
			}
			return variant.Float(f), nil
		}
		ok, f := variant.IsNumeric(v)
		if !ok {
			return variant.Null(), licerrors.TypeConversion(v.Text(), t.Name)
		}
		return variant.Float(f), nil

	case TypeBool:
		if b, ok := v.Boolean(); ok {
			return variant.Bool(b), nil
		}
		if s, ok := v.Str(); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(strings.ToLower(s)))
			if err != nil {
				return variant.Null(), licerrors.TypeConversion(s, TypeBool)
			}
			return variant.Bool(b), nil
		}
		return variant.Null(), licerrors.TypeConversion(v.Text(), TypeBool)

	case TypeDateTime:
		instant, err := variant.CoerceTime(v)
		if err != nil {
			return variant.Null(), err
		}
		return variant.Time(instant), nil

	case TypeList:
		return convertListValue(v, t)

	default:
		// Unknown types are permissive everywhere else too.
		return v, nil
	}
}

func convertListValue(v variant.Value, t FieldType) (variant.Value, error) {
	elemType := FieldType{Name: t.Elem, Known: true}

	var elems []variant.Value
	if list, ok := v.Elems(); ok {
		elems = list
	} else if s, ok := v.Str(); ok {
		elems = splitListLiteral(s)
	} else {
		elems = []variant.Value{v}
	}

	out := make([]variant.Value, len(elems))
	for i, e := range elems {
		converted, err := ConvertValue(e, elemType)
		if err != nil {
			return variant.Null(), fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = converted
	}
	return variant.List(out...), nil
}

// splitListLiteral turns a string default into list elements. JSON-array
// syntax wins over comma splitting; a comma-free string is one element.
// A legitimately singular string containing a comma still splits; that
// ambiguity is documented and preserved.
func splitListLiteral(s string) []variant.Value {
	trimmed := strings.TrimSpace(s)

	if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
		var arr []any
		if err := json.Unmarshal([]byte(trimmed), &arr); err == nil {
			out := make([]variant.Value, 0, len(arr))
			for _, e := range arr {
				ev, err := variant.FromInterface(e)
				if err != nil {
					ev = variant.String(fmt.Sprintf("%v", e))
				}
				out = append(out, ev)
			}
			return out
		}
	}

	if strings.Contains(trimmed, ",") {
		parts := strings.Split(trimmed, ",")
		out := make([]variant.Value, len(parts))
		for i, p := range parts {
			out[i] = variant.String(strings.TrimSpace(p))
		}
		return out
	}

	return []variant.Value{variant.String(trimmed)}
}
