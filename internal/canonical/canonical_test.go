package canonical

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	licerrors "licseal/internal/errors"
)

func TestTextCanonicalizer(t *testing.T) {
	c := NewTextCanonicalizer()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "strips comment lines and blank lines",
			raw:  "# leading comment\n\nkey = value\n\n; another comment\n",
			want: "key = value\n",
		},
		{
			name: "strips inline comments",
			raw:  "key = value # trailing\nother = 1 // note\n",
			want: "key = value\nother = 1\n",
		},
		{
			name: "collapses whitespace runs",
			raw:  "  key   =\t\tvalue  \n",
			want: "key = value\n",
		},
		{
			name: "crlf endings normalized",
			raw:  "a 1\r\nb 2\r\n",
			want: "a 1\nb 2\n",
		},
		{
			name: "all comments yields empty",
			raw:  "# one\n; two\n",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Canonicalize(tt.raw))
		})
	}
}

const sampleDeck = `[TITLE]
Example network model
revision 7, do not edit

[JUNCTIONS]
 J1   100   ; demand node
 J2   150

[ pipes ]
P1  J1  J2   1000  12 ; main
`

func TestSectionCanonicalizer(t *testing.T) {
	c := NewSectionCanonicalizer()
	got := c.Canonicalize(sampleDeck)

	want := "[JUNCTIONS]\nJ1 100\nJ2 150\n[PIPES]\nP1 J1 J2 1000 12\n"
	assert.Equal(t, want, got)
}

func TestSectionCanonicalizerTitleDoesNotMatter(t *testing.T) {
	c := NewSectionCanonicalizer()

	withTitle := c.Canonicalize(sampleDeck)
	withoutTitle := c.Canonicalize("[JUNCTIONS]\nJ1 100\nJ2 150\n[PIPES]\nP1 J1 J2 1000 12\n")
	differentTitle := c.Canonicalize("[TITLE]\nCompletely different words\n" +
		"[JUNCTIONS]\nJ1 100 ; comment\nJ2 150\n[PIPES]\nP1 J1 J2 1000 12\n")

	assert.Equal(t, withoutTitle, withTitle)
	assert.Equal(t, withoutTitle, differentTitle)
}

func TestCanonicalizersIdempotent(t *testing.T) {
	inputs := []string{
		sampleDeck,
		"key = value # comment\n\nother   =  2\n",
		"",
		"[TITLE]\nonly a title\n",
		"[TITLE]\nfirst\n[PIPES]\nP1 1\n[TITLE]\nsecond\n[NODES]\nN1 2\n",
	}

	for _, c := range []Canonicalizer{NewTextCanonicalizer(), NewSectionCanonicalizer()} {
		for _, in := range inputs {
			once := c.Canonicalize(in)
			twice := c.Canonicalize(once)
			assert.Equal(t, once, twice, "%s not idempotent on %q", c.Name(), in)
		}
	}
}

func TestEngineExtensionLookup(t *testing.T) {
	e := NewEngine(nil)

	c, ok := e.ForExtension(".INP")
	require.True(t, ok)
	assert.Equal(t, "section", c.Name())

	c, ok = e.ForExtension("txt")
	require.True(t, ok)
	assert.Equal(t, "text", c.Name())

	c, ok = e.ForPath("/data/model.inp")
	require.True(t, ok)
	assert.Equal(t, "section", c.Name())

	_, ok = e.ForExtension(".bin")
	assert.False(t, ok)
}

type fakeCanonicalizer struct{ name string }

func (f *fakeCanonicalizer) Name() string            { return f.name }
func (f *fakeCanonicalizer) Extensions() []string    { return []string{".fake"} }
func (f *fakeCanonicalizer) Canonicalize(s string) string { return s }

func TestEngineRegisterOverridesExtension(t *testing.T) {
	e := NewEngine(nil)
	require.NoError(t, e.Register(&fakeCanonicalizer{name: "passthrough"}))

	c, ok := e.ForExtension(".fake")
	require.True(t, ok)
	assert.Equal(t, "passthrough", c.Name())

	err := e.Register(nil)
	assert.Error(t, err)
}

func TestEngineLoadExtensionMap(t *testing.T) {
	e := NewEngine(nil)
	dir := t.TempDir()

	mapPath := filepath.Join(dir, "canonmap.json")
	require.NoError(t, os.WriteFile(mapPath, []byte(`{".net": "section", ".props": "text"}`), 0o644))
	require.NoError(t, e.LoadExtensionMap(mapPath))

	c, ok := e.ForExtension(".net")
	require.True(t, ok)
	assert.Equal(t, "section", c.Name())

	badPath := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(badPath, []byte(`{".x": "nope"}`), 0o644))
	err := e.LoadExtensionMap(badPath)
	require.Error(t, err)
	assert.True(t, errors.Is(err, licerrors.ErrInvalidInput))

	err = e.LoadExtensionMap(filepath.Join(dir, "missing.json"))
	assert.True(t, errors.Is(err, licerrors.ErrMissingFile))
}

func TestHashFile(t *testing.T) {
	e := NewEngine(nil)
	ctx := context.Background()
	dir := t.TempDir()

	path := filepath.Join(dir, "model.inp")
	require.NoError(t, os.WriteFile(path, []byte(sampleDeck), 0o644))

	first, err := e.HashFile(ctx, path)
	require.NoError(t, err)
	assert.Len(t, first, 64)
	assert.Equal(t, strings.ToLower(first), first)

	// Unmodified file hashes identically.
	second, err := e.HashFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Comment-only and title-only edits do not change the digest.
	edited := "[TITLE]\nNew title entirely\n[JUNCTIONS]\nJ1   100 ; reworded comment\nJ2 150\n[ PIPES ]\nP1 J1 J2 1000 12\n"
	editedPath := filepath.Join(dir, "edited.inp")
	require.NoError(t, os.WriteFile(editedPath, []byte(edited), 0o644))
	third, err := e.HashFile(ctx, editedPath)
	require.NoError(t, err)
	assert.Equal(t, first, third)

	// A data edit does change the digest.
	tamperedPath := filepath.Join(dir, "tampered.inp")
	require.NoError(t, os.WriteFile(tamperedPath, []byte("[JUNCTIONS]\nJ1 999\nJ2 150\n[PIPES]\nP1 J1 J2 1000 12\n"), 0o644))
	fourth, err := e.HashFile(ctx, tamperedPath)
	require.NoError(t, err)
	assert.NotEqual(t, first, fourth)
}

func TestHashFileRawBytesWithoutCanonicalizer(t *testing.T) {
	e := NewEngine(nil)
	dir := t.TempDir()

	path := filepath.Join(dir, "blob.bin")
	require.NoError(t, os.WriteFile(path, []byte{0x00, 0x01, 0x02}, 0o644))

	got, err := e.HashFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, HashBytes([]byte{0x00, 0x01, 0x02}), got)
}

func TestHashFileMissing(t *testing.T) {
	e := NewEngine(nil)
	_, err := e.HashFile(context.Background(), filepath.Join(t.TempDir(), "absent.inp"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, licerrors.ErrMissingFile))
}
