package license

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"licseal/internal/canonical"
	licerrors "licseal/internal/errors"
	"licseal/internal/variant"
)

// Built-in processor names.
const (
	ProcHashFile         = "HashFile"
	ProcHashFiles        = "HashFiles"
	ProcGenerateGuid     = "GenerateGuid"
	ProcCurrentTimestamp = "CurrentTimestamp"
	ProcToUpper          = "ToUpper"
	ProcToLower          = "ToLower"
	ProcPassThrough      = "PassThrough"
)

// hashFilesParallelism caps concurrent file reads in HashFiles.
const hashFilesParallelism = 8

// Processor derives or transforms a field value during schema-driven
// document construction, before the field validator runs.
type Processor func(ctx context.Context, in variant.Value, pc *ProcessorContext) (variant.Value, error)

// ProcessorContext is the read-only bundle handed to a processor: the
// field being built, its descriptor, free-form parameters, and the
// working directory relative file paths resolve against.
type ProcessorContext struct {
	Field      string
	Descriptor FieldDescriptor
	Params     map[string]string
	WorkDir    string
}

// ResolvePath resolves a possibly-relative path against the context's
// working directory.
func (pc *ProcessorContext) ResolvePath(path string) string {
	if filepath.IsAbs(path) || pc.WorkDir == "" {
		return path
	}
	return filepath.Join(pc.WorkDir, path)
}

func builtinProcessors(engine *canonical.Engine) map[string]Processor {
	return map[string]Processor{
		ProcHashFile:         hashFileProcessor(engine),
		ProcHashFiles:        hashFilesProcessor(engine),
		ProcGenerateGuid:     generateGuidProcessor,
		ProcCurrentTimestamp: currentTimestampProcessor,
		ProcToUpper:          toUpperProcessor,
		ProcToLower:          toLowerProcessor,
		ProcPassThrough:      passThroughProcessor,
	}
}

// hashFileProcessor hashes the single file named by the input value,
// canonicalizing it first when its extension has a registered
// canonicalizer, and yields the lowercase hex digest.
func hashFileProcessor(engine *canonical.Engine) Processor {
	return func(ctx context.Context, in variant.Value, pc *ProcessorContext) (variant.Value, error) {
		path, ok := in.Str()
		if !ok || strings.TrimSpace(path) == "" {
			return variant.Null(), licerrors.InvalidInput(
				fmt.Sprintf("%s: HashFile expects a file path, got %s", pc.Field, variant.DescribeType(in)))
		}
		digest, err := engine.HashFile(ctx, pc.ResolvePath(path))
		if err != nil {
			return variant.Null(), err
		}
		return variant.String(digest), nil
	}
}

// hashFilesProcessor hashes every path in the input list concurrently and
// yields one "path=digest" entry per input, in input order. The variant
// model has no map member, so the mapping is carried as a list of
// key=value strings keyed by the original path spelling.
func hashFilesProcessor(engine *canonical.Engine) Processor {
	return func(ctx context.Context, in variant.Value, pc *ProcessorContext) (variant.Value, error) {
		elems, ok := in.Elems()
		if !ok {
			return variant.Null(), licerrors.InvalidInput(
				fmt.Sprintf("%s: HashFiles expects a list of paths, got %s", pc.Field, variant.DescribeType(in)))
		}

		paths := make([]string, len(elems))
		for i, e := range elems {
			p, ok := e.Str()
			if !ok || strings.TrimSpace(p) == "" {
				return variant.Null(), licerrors.InvalidInput(
					fmt.Sprintf("%s[%d]: HashFiles expects a file path, got %s", pc.Field, i, variant.DescribeType(e)))
			}
			paths[i] = p
		}

		digests := make([]string, len(paths))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(hashFilesParallelism)
		for i, p := range paths {
			g.Go(func() error {
				digest, err := engine.HashFile(gctx, pc.ResolvePath(p))
				if err != nil {
					return err
				}
				digests[i] = digest
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return variant.Null(), err
		}

		out := make([]variant.Value, len(paths))
		for i := range paths {
			out[i] = variant.String(paths[i] + "=" + digests[i])
		}
		return variant.List(out...), nil
	}
}

func generateGuidProcessor(ctx context.Context, in variant.Value, pc *ProcessorContext) (variant.Value, error) {
	return variant.String(uuid.NewString()), nil
}

func currentTimestampProcessor(ctx context.Context, in variant.Value, pc *ProcessorContext) (variant.Value, error) {
	return variant.Time(time.Now().UTC()), nil
}

func toUpperProcessor(ctx context.Context, in variant.Value, pc *ProcessorContext) (variant.Value, error) {
	return variant.String(strings.ToUpper(in.Text())), nil
}

func toLowerProcessor(ctx context.Context, in variant.Value, pc *ProcessorContext) (variant.Value, error) {
	return variant.String(strings.ToLower(in.Text())), nil
}

func passThroughProcessor(ctx context.Context, in variant.Value, pc *ProcessorContext) (variant.Value, error) {
	return in, nil
}
