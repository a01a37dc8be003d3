package license

import (
	"fmt"
	"sort"
	"strings"

	licerrors "licseal/internal/errors"
	"licseal/internal/registry"
	"licseal/internal/variant"
)

type docField struct {
	name  string // as first written, for display and encoding
	value variant.Value
}

// Document is a license document: a case-insensitive mapping from field
// name to variant value. Writes go through the field validator registry
// and are all-or-nothing; fields persist for the document's lifetime.
type Document struct {
	validators *registry.Registry[FieldValidator]
	order      []string // lower-cased keys in first-write order
	fields     map[string]docField
}

func newDocument(validators *registry.Registry[FieldValidator]) *Document {
	return &Document{
		validators: validators,
		fields:     map[string]docField{},
	}
}

// Set writes a field value after running its validator, when one is
// registered for the name. A rejected value fails the write and leaves
// the document unchanged; unregistered field names accept any value as
// is.
func (d *Document) Set(name string, value variant.Value) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return licerrors.InvalidInput("field name must not be blank")
	}

	stored := value
	if validate, ok := d.validators.Get(trimmed); ok {
		res := validate(value)
		if res.IsRejected() {
			return licerrors.FieldRejection(trimmed, res.Reason())
		}
		stored = res.Value()
	}

	key := strings.ToLower(trimmed)
	if existing, ok := d.fields[key]; ok {
		// Keep the original display spelling across case-variant rewrites.
		d.fields[key] = docField{name: existing.name, value: stored}
		return nil
	}
	d.order = append(d.order, key)
	d.fields[key] = docField{name: trimmed, value: stored}
	return nil
}

// Get returns the value stored under name, case-insensitively, or the
// Null variant when the field is absent.
func (d *Document) Get(name string) variant.Value {
	f, ok := d.fields[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return variant.Null()
	}
	return f.value
}

// Has reports whether the field has been written, even with a Null value.
func (d *Document) Has(name string) bool {
	_, ok := d.fields[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Names returns the field names in first-write order, spelled as first
// written.
func (d *Document) Names() []string {
	out := make([]string, len(d.order))
	for i, key := range d.order {
		out[i] = d.fields[key].name
	}
	return out
}

// Len reports the number of fields.
func (d *Document) Len() int {
	return len(d.fields)
}

// EnsureMandatory checks that LicenseId, ExpiryUtc, and Signature are all
// present. Signature may hold the Null variant (the unsigned state); the
// other two must carry real values. Every missing field is reported, not
// just the first.
func (d *Document) EnsureMandatory() error {
	var problems []string
	for _, name := range mandatoryFields {
		if !d.Has(name) {
			problems = append(problems, fmt.Sprintf("mandatory field missing: %s", name))
			continue
		}
		if name != FieldSignature && d.Get(name).IsNull() {
			problems = append(problems, fmt.Sprintf("mandatory field has no value: %s", name))
		}
	}
	if len(problems) > 0 {
		return licerrors.NewAggregate(licerrors.ErrInvalidInput, problems)
	}
	return nil
}

// sortedNames returns lower-cased field keys in lexicographic order, for
// deterministic encodings independent of write order.
func (d *Document) sortedNames() []string {
	keys := append([]string(nil), d.order...)
	sort.Strings(keys)
	return keys
}
