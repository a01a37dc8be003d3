package license

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	licerrors "licseal/internal/errors"
	"licseal/internal/variant"
)

// conformanceReport collects the outcome of a whole-document check.
// Problems fail validation; notes record permissive findings such as
// unknown declared types.
type conformanceReport struct {
	problems []string
	notes    []string
}

func (r *conformanceReport) problemf(format string, args ...any) {
	r.problems = append(r.problems, fmt.Sprintf(format, args...))
}

func (r *conformanceReport) notef(format string, args ...any) {
	r.notes = append(r.notes, fmt.Sprintf(format, args...))
}

// Conformance checks the document's structure against the schema,
// collecting every problem before returning. This is the fail-slow
// counterpart to the fail-fast per-field validation that runs on write.
func (s *Schema) Conformance(doc *Document) (problems, notes []string) {
	report := &conformanceReport{}
	for _, fd := range s.fields {
		if !doc.Has(fd.Name) || doc.Get(fd.Name).IsNull() {
			if fd.Required {
				report.problemf("required field missing: %s", fd.Name)
			}
			continue
		}
		checkFieldType(fd.Name, doc.Get(fd.Name), fd.Type, report)
	}
	return report.problems, report.notes
}

// checkFieldType recursively verifies one value against a declared type.
// List elements report under an indexed name: field[i].
func checkFieldType(name string, v variant.Value, t FieldType, report *conformanceReport) {
	switch t.Name {
	case TypeString:
		if _, ok := v.Str(); !ok {
			report.problemf("%s: expected string, got %s", name, variant.DescribeType(v))
		}

	case TypeInt:
		ok, f := variant.IsNumeric(v)
		if !ok {
			report.problemf("%s: expected int, got %s", name, variant.DescribeType(v))
		} else if f != float64(int64(f)) {
			report.problemf("%s: expected int, got fractional value %v", name, f)
		}

	case TypeDouble, TypeDecimal:
		if ok, _ := variant.IsNumeric(v); !ok {
			report.problemf("%s: expected %s, got %s", name, t.Name, variant.DescribeType(v))
		}

	case TypeBool:
		if _, ok := v.Boolean(); !ok {
			report.problemf("%s: expected bool, got %s", name, variant.DescribeType(v))
		}

	case TypeDateTime:
		if _, ok := v.Instant(); ok {
			return
		}
		// A string that still parses by the best-effort ladder conforms.
		if _, isStr := v.Str(); isStr {
			if _, err := variant.CoerceTime(v); err == nil {
				return
			}
		}
		report.problemf("%s: expected datetime, got %s %q", name, variant.DescribeType(v), v.Text())

	case TypeList:
		elems, ok := v.Elems()
		if !ok {
			// Strings are iterable in some encodings but never lists here.
			report.problemf("%s: expected list, got %s", name, variant.DescribeType(v))
			return
		}
		elemType := FieldType{Name: t.Elem, Known: true}
		for i, e := range elems {
			checkFieldType(fmt.Sprintf("%s[%d]", name, i), e, elemType, report)
		}

	default:
		// Unknown declared types never block acceptance.
		report.notef("%s: unknown declared type %q accepted permissively", name, t.String())
	}
}

// ValidateDocument runs whole-document validation against the schema and
// returns the full problem list. Permissive notes are logged, not
// returned as failures.
func (m *Manager) ValidateDocument(ctx context.Context, doc *Document, s *Schema) (bool, []string) {
	ctx, span := m.tracer.Start(ctx, "license.validate_document",
		trace.WithAttributes(attribute.String("schema", s.Name())))
	defer span.End()

	problems, notes := s.Conformance(doc)
	for _, note := range notes {
		m.logger.Info("schema validation note",
			slog.String("schema", s.Name()),
			slog.String("note", note))
	}

	if m.metrics != nil {
		m.metrics.ValidationRuns.Add(ctx, 1,
			metric.WithAttributes(attribute.String("schema", s.Name())))
		if len(problems) > 0 {
			m.metrics.ValidationFailures.Add(ctx, 1,
				metric.WithAttributes(attribute.String("schema", s.Name())))
		}
	}

	if len(problems) > 0 {
		span.SetAttributes(attribute.Int("problems", len(problems)))
		m.logger.Warn("document does not conform to schema",
			slog.String("schema", s.Name()),
			slog.Int("problems", len(problems)))
		return false, problems
	}
	return true, nil
}

// ValidateDocumentOrError wraps ValidateDocument, raising all problems as
// one SchemaNonconformant aggregate.
func (m *Manager) ValidateDocumentOrError(ctx context.Context, doc *Document, s *Schema) error {
	ok, problems := m.ValidateDocument(ctx, doc, s)
	if ok {
		return nil
	}
	return licerrors.NewAggregate(licerrors.ErrSchemaNonconformant, problems)
}
