package license

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	licerrors "licseal/internal/errors"
	"licseal/internal/variant"
)

// Signer produces a signature over the canonical byte representation of
// a document's signed fields. Key management and the signature algorithm
// live outside this core.
type Signer interface {
	Sign(data []byte) (string, error)
}

// Verifier checks a signature produced by the matching Signer.
type Verifier interface {
	Verify(data []byte, signature string) bool
}

// SignedBytes renders the canonical byte representation the signer
// consumes: one "name=value" line per signed schema field in schema
// order, names lower-cased, values serialized through the field's
// serializer and JSON-encoded. The Signature field itself never
// participates.
func (m *Manager) SignedBytes(doc *Document, s *Schema) ([]byte, error) {
	if doc == nil || s == nil {
		return nil, licerrors.InvalidInput("document and schema must not be nil")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "schema=%s\n", strings.ToLower(s.Name()))
	for _, fd := range s.fields {
		if !fd.Signed || strings.EqualFold(fd.Name, FieldSignature) {
			continue
		}
		serialize, ok := m.serializers.Get(fd.Name)
		if !ok {
			serialize = defaultSerializer
		}
		v, err := serialize(doc.Get(fd.Name))
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", fd.Name, err)
		}
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", fd.Name, err)
		}
		fmt.Fprintf(&b, "%s=%s\n", strings.ToLower(fd.Name), encoded)
	}
	return []byte(b.String()), nil
}

// Sign computes the document signature through the external signer and
// stores it in the Signature field via the validated write.
func (m *Manager) Sign(ctx context.Context, doc *Document, s *Schema, signer Signer) error {
	if signer == nil {
		return licerrors.InvalidInput("signer must not be nil")
	}
	data, err := m.SignedBytes(doc, s)
	if err != nil {
		return err
	}
	signature, err := signer.Sign(data)
	if err != nil {
		return fmt.Errorf("sign document: %w", err)
	}
	return doc.Set(FieldSignature, variant.String(signature))
}

// VerifySignature recomputes the canonical bytes and checks the stored
// Signature through the external verifier. A document without a
// signature never verifies.
func (m *Manager) VerifySignature(ctx context.Context, doc *Document, s *Schema, verifier Verifier) (bool, error) {
	if verifier == nil {
		return false, licerrors.InvalidInput("verifier must not be nil")
	}
	sig, ok := doc.Get(FieldSignature).Str()
	if !ok || sig == "" {
		return false, nil
	}
	data, err := m.SignedBytes(doc, s)
	if err != nil {
		return false, err
	}
	return verifier.Verify(data, sig), nil
}
