package license

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	licerrors "licseal/internal/errors"
	"licseal/internal/variant"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(nil, nil)
}

func TestDocumentSetGetCaseInsensitive(t *testing.T) {
	doc := newTestManager(t).NewDocument()
	require.NoError(t, doc.Set("CustomerName", variant.String("Acme")))

	for _, name := range []string{"CustomerName", "customername", "CUSTOMERNAME", "cUsToMeRnAmE"} {
		s, ok := doc.Get(name).Str()
		require.True(t, ok, name)
		assert.Equal(t, "Acme", s)
	}

	// A case-variant rewrite updates the same field.
	require.NoError(t, doc.Set("CUSTOMERNAME", variant.String("Globex")))
	s, _ := doc.Get("customerName").Str()
	assert.Equal(t, "Globex", s)
	assert.Equal(t, 1, doc.Len())
	assert.Equal(t, []string{"CustomerName"}, doc.Names())
}

func TestDocumentGetAbsentReturnsNull(t *testing.T) {
	doc := newTestManager(t).NewDocument()
	assert.True(t, doc.Get("Anything").IsNull())
	assert.False(t, doc.Has("Anything"))
}

func TestDocumentSetRunsValidator(t *testing.T) {
	doc := newTestManager(t).NewDocument()

	// ExpiryUtc normalizes through the datetime ladder on write.
	require.NoError(t, doc.Set("ExpiryUtc", variant.Int(2027)))
	instant, ok := doc.Get("expiryutc").Instant()
	require.True(t, ok)
	assert.Equal(t, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), instant)

	// LicenseId trims on write.
	require.NoError(t, doc.Set("LicenseId", variant.String("  LIC-7  ")))
	s, _ := doc.Get("LicenseId").Str()
	assert.Equal(t, "LIC-7", s)
}

func TestDocumentRejectedWriteLeavesDocumentUnchanged(t *testing.T) {
	doc := newTestManager(t).NewDocument()
	require.NoError(t, doc.Set("MaxUsers", variant.Int(10)))

	err := doc.Set("MaxUsers", variant.Int(-5))
	require.Error(t, err)
	assert.True(t, errors.Is(err, licerrors.ErrFieldRejected))
	assert.Contains(t, err.Error(), "MaxUsers")

	n, ok := doc.Get("MaxUsers").Int64()
	require.True(t, ok)
	assert.Equal(t, int64(10), n)
}

func TestDocumentUnregisteredFieldAcceptsAnything(t *testing.T) {
	doc := newTestManager(t).NewDocument()
	value := variant.List(variant.Int(1), variant.Bool(true))
	require.NoError(t, doc.Set("FreeField", value))
	assert.True(t, variant.Equal(value, doc.Get("freefield")))
}

func TestDocumentSetBlankNameRejected(t *testing.T) {
	doc := newTestManager(t).NewDocument()
	err := doc.Set("   ", variant.Int(1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, licerrors.ErrInvalidInput))
}

func TestCustomValidatorReplacesBuiltin(t *testing.T) {
	m := newTestManager(t)
	m.RegisterValidator("MaxUsers", func(v variant.Value) Result {
		return Rejected("nothing is ever enough")
	})

	doc := m.NewDocument()
	err := doc.Set("maxusers", variant.Int(10))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing is ever enough")
}

func TestEnsureMandatory(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(doc *Document)
		missing []string
	}{
		{
			name:    "empty document misses all three",
			prepare: func(doc *Document) {},
			missing: []string{FieldLicenseID, FieldExpiryUTC, FieldSignature},
		},
		{
			name: "null signature is legal",
			prepare: func(doc *Document) {
				_ = doc.Set(FieldLicenseID, variant.String("LIC-1"))
				_ = doc.Set(FieldExpiryUTC, variant.String("2027-01-01T00:00:00Z"))
				_ = doc.Set(FieldSignature, variant.Null())
			},
			missing: nil,
		},
		{
			name: "one missing field reported by name",
			prepare: func(doc *Document) {
				_ = doc.Set(FieldLicenseID, variant.String("LIC-1"))
				_ = doc.Set(FieldSignature, variant.Null())
			},
			missing: []string{FieldExpiryUTC},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := newTestManager(t).NewDocument()
			tt.prepare(doc)

			err := doc.EnsureMandatory()
			if len(tt.missing) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)

			var agg *licerrors.AggregateError
			require.True(t, errors.As(err, &agg))
			assert.Len(t, agg.Problems, len(tt.missing))
			for _, name := range tt.missing {
				assert.Contains(t, err.Error(), name)
			}
		})
	}
}

func TestEnsureMandatoryRejectsNullLicenseID(t *testing.T) {
	m := newTestManager(t)
	// Replace the validator so a Null LicenseId can be stored at all.
	m.RegisterValidator(FieldLicenseID, func(v variant.Value) Result {
		if v.IsNull() {
			return AcceptedNull()
		}
		return Accepted(v)
	})

	doc := m.NewDocument()
	require.NoError(t, doc.Set(FieldLicenseID, variant.Null()))
	require.NoError(t, doc.Set(FieldExpiryUTC, variant.Int(2030)))
	require.NoError(t, doc.Set(FieldSignature, variant.Null()))

	err := doc.EnsureMandatory()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no value")
	assert.Contains(t, err.Error(), FieldLicenseID)
}
