package canonical

import (
	"regexp"
	"strings"
)

// headerPattern matches a section header line: "[" name "]" on its own
// line, with optional surrounding whitespace and trailing junk after the
// closing bracket.
var headerPattern = regexp.MustCompile(`^\s*\[\s*([A-Za-z][A-Za-z0-9_ -]*?)\s*\]`)

// SectionCanonicalizer normalizes section-structured input files such as
// hydraulic-network .inp decks. The [TITLE] section body is free-form
// prose and is suppressed entirely so that renaming a model does not
// change its tamper-detection hash; data lines lose their ';' comments
// and excess whitespace.
type SectionCanonicalizer struct{}

// NewSectionCanonicalizer creates the section-file canonicalizer.
func NewSectionCanonicalizer() *SectionCanonicalizer {
	return &SectionCanonicalizer{}
}

// Name implements Canonicalizer.
func (c *SectionCanonicalizer) Name() string { return "section" }

// Extensions implements Canonicalizer.
func (c *SectionCanonicalizer) Extensions() []string {
	return []string{".inp"}
}

// Canonicalize implements Canonicalizer.
func (c *SectionCanonicalizer) Canonicalize(raw string) string {
	lines := splitLines(raw)
	out := make([]string, 0, len(lines))
	inTitle := false

	for _, line := range lines {
		if m := headerPattern.FindStringSubmatch(line); m != nil {
			name := strings.ToUpper(collapseWhitespace(m[1]))
			inTitle = name == "TITLE"
			if inTitle {
				continue
			}
			out = append(out, "["+name+"]")
			continue
		}

		if inTitle {
			continue
		}

		if idx := strings.Index(line, ";"); idx >= 0 {
			line = line[:idx]
		}
		line = collapseWhitespace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
	}

	if len(out) == 0 {
		return ""
	}
	return strings.Join(out, "\n") + "\n"
}
