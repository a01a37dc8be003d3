package license

import (
	"fmt"
	"time"

	"licseal/internal/variant"
)

// Serializer formats a field value for the external text encoding
// collaborator. The returned value must be representable by the encoding
// (JSON primitives, arrays, or nil).
type Serializer func(variant.Value) (any, error)

// defaultSerializer is used for fields without a registered serializer.
func defaultSerializer(v variant.Value) (any, error) {
	return v.ToInterface(), nil
}

func builtinSerializers() map[string]Serializer {
	return map[string]Serializer{
		FieldExpiryUTC: serializeExpiryUTC,
		FieldSignature: serializeSignature,
	}
}

// serializeExpiryUTC emits the expiry as an RFC3339 UTC string even when
// the stored value never went through the ExpiryUtc validator.
func serializeExpiryUTC(v variant.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	t, err := variant.CoerceTime(v)
	if err != nil {
		return nil, fmt.Errorf("serialize ExpiryUtc: %w", err)
	}
	return t.UTC().Format(time.RFC3339), nil
}

// serializeSignature keeps the unsigned state as an explicit null.
func serializeSignature(v variant.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	if s, ok := v.Str(); ok {
		return s, nil
	}
	return nil, fmt.Errorf("serialize Signature: expected string, got %s", variant.DescribeType(v))
}
