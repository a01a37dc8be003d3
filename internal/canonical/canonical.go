package canonical

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	licerrors "licseal/internal/errors"
	"licseal/internal/registry"
)

// Canonicalizer is a deterministic, idempotent text normalizer together
// with the file extensions it claims.
type Canonicalizer interface {
	// Name identifies the canonicalizer in registry config files.
	Name() string
	// Extensions lists the file extensions this canonicalizer claims,
	// lower-cased with a leading dot.
	Extensions() []string
	// Canonicalize normalizes raw text. Must satisfy
	// Canonicalize(Canonicalize(x)) == Canonicalize(x).
	Canonicalize(raw string) string
}

// Engine resolves canonicalizers by file extension and hashes files
// through them. Files whose extension has no registered canonicalizer are
// hashed over their raw bytes.
type Engine struct {
	byName *registry.Registry[Canonicalizer]
	byExt  *registry.Registry[Canonicalizer]
	logger *slog.Logger
}

// NewEngine creates an engine pre-populated with the built-in text and
// section-file canonicalizers. A nil logger falls back to slog.Default().
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{logger: logger}
	e.byName = registry.New("canonicalizers", func() map[string]Canonicalizer {
		out := map[string]Canonicalizer{}
		for _, c := range []Canonicalizer{NewTextCanonicalizer(), NewSectionCanonicalizer()} {
			out[c.Name()] = c
		}
		return out
	})
	e.byExt = registry.New("canonicalizer extensions", func() map[string]Canonicalizer {
		out := map[string]Canonicalizer{}
		for _, c := range []Canonicalizer{NewTextCanonicalizer(), NewSectionCanonicalizer()} {
			for _, ext := range c.Extensions() {
				out[normalizeExt(ext)] = c
			}
		}
		return out
	})
	return e
}

// Register adds a canonicalizer under its name and all of its claimed
// extensions, replacing previous claims. Last registration wins.
func (e *Engine) Register(c Canonicalizer) error {
	if c == nil {
		return licerrors.InvalidInput("canonicalizer must not be nil")
	}
	if strings.TrimSpace(c.Name()) == "" {
		return licerrors.InvalidInput("canonicalizer name must not be blank")
	}
	e.byName.Register(c.Name(), c)
	for _, ext := range c.Extensions() {
		e.byExt.Register(normalizeExt(ext), c)
	}
	e.logger.Debug("canonicalizer registered",
		slog.String("name", c.Name()),
		slog.Int("extensions", len(c.Extensions())))
	return nil
}

// ByName returns the canonicalizer registered under name.
func (e *Engine) ByName(name string) (Canonicalizer, bool) {
	return e.byName.Get(name)
}

// ForExtension returns the canonicalizer claiming ext. The extension is
// matched case-insensitively; a missing leading dot is tolerated.
func (e *Engine) ForExtension(ext string) (Canonicalizer, bool) {
	return e.byExt.Get(normalizeExt(ext))
}

// ForPath returns the canonicalizer claiming the extension of path.
func (e *Engine) ForPath(path string) (Canonicalizer, bool) {
	return e.ForExtension(filepath.Ext(path))
}

// LoadExtensionMap reads a JSON object mapping file extensions to
// canonicalizer names and binds each extension accordingly. Every name
// must already be registered.
func (e *Engine) LoadExtensionMap(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return licerrors.MissingFile(path, err)
		}
		return fmt.Errorf("read canonicalizer map %s: %w", path, err)
	}

	var mapping map[string]string
	if err := json.Unmarshal(data, &mapping); err != nil {
		return licerrors.InvalidInput(fmt.Sprintf("canonicalizer map %s: %v", path, err))
	}

	for ext, name := range mapping {
		c, ok := e.byName.Get(name)
		if !ok {
			return licerrors.InvalidInput(
				fmt.Sprintf("canonicalizer map %s: unknown canonicalizer %q for %q", path, name, ext))
		}
		e.byExt.Register(normalizeExt(ext), c)
	}

	e.logger.Info("canonicalizer extension map loaded",
		slog.String("path", path),
		slog.Int("bindings", len(mapping)))
	return nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
