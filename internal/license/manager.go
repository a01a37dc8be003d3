package license

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"licseal/internal/canonical"
	licerrors "licseal/internal/errors"
	"licseal/internal/registry"
	"licseal/internal/variant"
)

// Manager bundles the processor, validator, and serializer registries
// with the canonicalization engine and drives document construction,
// validation, encoding, and signing. One Manager serves any number of
// schemas and documents; registries are safe for concurrent use.
type Manager struct {
	logger      *slog.Logger
	canon       *canonical.Engine
	validators  *registry.Registry[FieldValidator]
	processors  *registry.Registry[Processor]
	serializers *registry.Registry[Serializer]
	metrics     *Metrics
	tracer      trace.Tracer
}

// NewManager creates a manager with all built-ins pre-registered. A nil
// engine gets a fresh one; a nil logger falls back to slog.Default().
func NewManager(engine *canonical.Engine, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if engine == nil {
		engine = canonical.NewEngine(logger)
	}

	m := &Manager{
		logger: logger,
		canon:  engine,
		tracer: otel.Tracer(TracerName),
	}
	m.validators = registry.New("field validators", builtinValidators)
	m.processors = registry.New("field processors", func() map[string]Processor {
		return builtinProcessors(engine)
	})
	m.serializers = registry.New("field serializers", builtinSerializers)

	metrics, err := newMetrics(otel.Meter(MeterName))
	if err != nil {
		logger.Warn("license metrics unavailable", slog.String("error", err.Error()))
	}
	m.metrics = metrics
	return m
}

// Canonical exposes the canonicalization engine for callers that hash
// files outside document construction.
func (m *Manager) Canonical() *canonical.Engine { return m.canon }

// RegisterValidator binds a field validator to a field name, replacing
// any built-in for that name.
func (m *Manager) RegisterValidator(fieldName string, v FieldValidator) {
	m.validators.Register(fieldName, v)
}

// RegisterProcessor binds a processor to a name, replacing any built-in.
func (m *Manager) RegisterProcessor(name string, p Processor) {
	m.processors.Register(name, p)
}

// RegisterSerializer binds a serializer to a field name, replacing any
// built-in for that name.
func (m *Manager) RegisterSerializer(fieldName string, s Serializer) {
	m.serializers.Register(fieldName, s)
}

// RegisterCanonicalizer adds a canonicalizer to the engine.
func (m *Manager) RegisterCanonicalizer(c canonical.Canonicalizer) error {
	return m.canon.Register(c)
}

// NewDocument creates an empty document backed by this manager's field
// validators.
func (m *Manager) NewDocument() *Document {
	return newDocument(m.validators)
}

// BuildOptions carries construction-time context for field processors.
type BuildOptions struct {
	// WorkDir resolves relative file paths in processor inputs.
	WorkDir string
	// Params is handed to every processor unmodified.
	Params map[string]string
}

// BuildDocument constructs a document from raw caller input driven by the
// schema: for each field, the raw value (or the declared default) runs
// through the field's processor, then through the validated write. The
// first rejected field aborts construction.
func (m *Manager) BuildDocument(ctx context.Context, s *Schema, raw map[string]any, opts BuildOptions) (*Document, error) {
	if s == nil {
		return nil, licerrors.InvalidInput("schema must not be nil")
	}
	start := time.Now()
	ctx, span := m.tracer.Start(ctx, "license.build_document",
		trace.WithAttributes(attribute.String("schema", s.Name())))
	defer span.End()

	lowered := make(map[string]any, len(raw))
	for k, v := range raw {
		lowered[strings.ToLower(strings.TrimSpace(k))] = v
	}

	doc := m.NewDocument()
	for _, fd := range s.Fields() {
		value := fd.Default
		if rawVal, ok := lowered[strings.ToLower(fd.Name)]; ok {
			converted, err := variant.FromInterface(rawVal)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", fd.Name, err)
			}
			value = converted
		}

		if fd.Processor != "" {
			processed, err := m.runProcessor(ctx, fd, value, opts)
			if err != nil {
				span.RecordError(err)
				return nil, err
			}
			value = processed
		}

		if err := doc.Set(fd.Name, value); err != nil {
			if m.metrics != nil {
				m.metrics.FieldRejections.Add(ctx, 1,
					metric.WithAttributes(attribute.String("field", fd.Name)))
			}
			span.RecordError(err)
			return nil, err
		}
	}

	elapsed := time.Since(start)
	if m.metrics != nil {
		m.metrics.DocumentsBuilt.Add(ctx, 1)
		m.metrics.BuildDuration.Record(ctx, float64(elapsed.Microseconds())/1000.0)
	}
	m.logger.Debug("document built",
		slog.String("schema", s.Name()),
		slog.Int("fields", doc.Len()),
		slog.Duration("duration", elapsed))
	return doc, nil
}

func (m *Manager) runProcessor(ctx context.Context, fd FieldDescriptor, value variant.Value, opts BuildOptions) (variant.Value, error) {
	proc, ok := m.processors.Get(fd.Processor)
	if !ok {
		return variant.Null(), licerrors.InvalidInput(
			fmt.Sprintf("field %s: unknown processor %q", fd.Name, fd.Processor))
	}
	if m.metrics != nil {
		m.metrics.ProcessorRuns.Add(ctx, 1,
			metric.WithAttributes(attribute.String("processor", fd.Processor)))
	}
	out, err := proc(ctx, value, &ProcessorContext{
		Field:      fd.Name,
		Descriptor: fd,
		Params:     opts.Params,
		WorkDir:    opts.WorkDir,
	})
	if err != nil {
		if m.metrics != nil {
			m.metrics.ProcessorFailures.Add(ctx, 1,
				metric.WithAttributes(attribute.String("processor", fd.Processor)))
		}
		return variant.Null(), fmt.Errorf("field %s: processor %s: %w", fd.Name, fd.Processor, err)
	}
	return out, nil
}

// EncodeDocument renders the document as the flat JSON object the
// external encoding collaborator expects, serializing each field through
// its registered serializer. Keys are emitted in sorted order.
func (m *Manager) EncodeDocument(doc *Document) ([]byte, error) {
	if doc == nil {
		return nil, licerrors.InvalidInput("document must not be nil")
	}

	out := make(map[string]any, doc.Len())
	for _, key := range doc.sortedNames() {
		f := doc.fields[key]
		serialize, ok := m.serializers.Get(f.name)
		if !ok {
			serialize = defaultSerializer
		}
		v, err := serialize(f.value)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.name, err)
		}
		out[f.name] = v
	}
	return json.MarshalIndent(out, "", "  ")
}

// DecodeDocument parses a flat JSON license object into a document.
// Every field goes through the validated write, so an invalid mandatory
// field fails the decode.
func (m *Manager) DecodeDocument(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, licerrors.InvalidInput(fmt.Sprintf("license document: %v", err))
	}

	doc := m.NewDocument()
	for _, key := range sortedKeys(raw) {
		value, err := variant.FromInterface(raw[key])
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		if err := doc.Set(key, value); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
