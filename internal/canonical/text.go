package canonical

import "strings"

// TextCanonicalizer is the generic canonicalizer for config-like files:
// it strips comment lines and inline comments, collapses whitespace runs,
// and drops lines that end up empty.
type TextCanonicalizer struct {
	commentMarkers []string
}

// NewTextCanonicalizer creates the generic text canonicalizer with the
// default comment markers #, ; and //.
func NewTextCanonicalizer() *TextCanonicalizer {
	return &TextCanonicalizer{commentMarkers: []string{"#", ";", "//"}}
}

// Name implements Canonicalizer.
func (c *TextCanonicalizer) Name() string { return "text" }

// Extensions implements Canonicalizer.
func (c *TextCanonicalizer) Extensions() []string {
	return []string{".txt", ".cfg", ".ini", ".conf"}
}

// Canonicalize implements Canonicalizer.
func (c *TextCanonicalizer) Canonicalize(raw string) string {
	lines := splitLines(raw)
	out := make([]string, 0, len(lines))

	for _, line := range lines {
		for _, marker := range c.commentMarkers {
			if idx := strings.Index(line, marker); idx >= 0 {
				line = line[:idx]
			}
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

// splitLines splits text into lines after normalizing CRLF and bare CR
// endings to \n.
func splitLines(raw string) []string {
	normalized := strings.ReplaceAll(raw, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	return strings.Split(normalized, "\n")
}

// collapseWhitespace trims a line and squeezes internal whitespace runs
// to single spaces.
func collapseWhitespace(line string) string {
	return strings.Join(strings.Fields(line), " ")
}
