package license

import (
	"fmt"
	"strings"

	"licseal/internal/variant"
)

// FieldValidator checks and normalizes a value as it is written into a
// document field.
type FieldValidator func(variant.Value) Result

// Built-in validator field names. Three of these are mandatory in every
// document regardless of schema.
const (
	FieldLicenseID    = "LicenseId"
	FieldExpiryUTC    = "ExpiryUtc"
	FieldSignature    = "Signature"
	FieldMaxUsers     = "MaxUsers"
	FieldCustomerName = "CustomerName"
)

// mandatoryFields are required in every document. Signature may hold the
// Null variant (the unsigned-license state); the other two may not.
var mandatoryFields = []string{FieldLicenseID, FieldExpiryUTC, FieldSignature}

func builtinValidators() map[string]FieldValidator {
	return map[string]FieldValidator{
		FieldLicenseID:    validateLicenseID,
		FieldExpiryUTC:    validateExpiryUTC,
		FieldSignature:    validateSignature,
		FieldMaxUsers:     validateMaxUsers,
		FieldCustomerName: validateCustomerName,
	}
}

func validateLicenseID(v variant.Value) Result {
	if v.IsNull() {
		return Rejected("LicenseId is required")
	}
	s, ok := v.Str()
	if !ok {
		return Rejected(fmt.Sprintf("LicenseId must be a string, got %s", variant.DescribeType(v)))
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return Rejected("LicenseId must not be blank")
	}
	return Accepted(variant.String(s))
}

func validateExpiryUTC(v variant.Value) Result {
	if v.IsNull() {
		return Rejected("ExpiryUtc is required")
	}
	t, err := variant.CoerceTime(v)
	if err != nil {
		return Rejected(fmt.Sprintf("ExpiryUtc: no datetime interpretation for %q", v.Text()))
	}
	return Accepted(variant.Time(t))
}

func validateSignature(v variant.Value) Result {
	if v.IsNull() {
		// An unsigned license is a legal state.
		return AcceptedNull()
	}
	s, ok := v.Str()
	if !ok {
		return Rejected(fmt.Sprintf("Signature must be a string, got %s", variant.DescribeType(v)))
	}
	if strings.TrimSpace(s) == "" {
		return Rejected("Signature must not be blank")
	}
	return Accepted(variant.String(s))
}

func validateMaxUsers(v variant.Value) Result {
	if v.IsNull() {
		return AcceptedNull()
	}
	ok, f := variant.IsNumeric(v)
	if !ok {
		return Rejected(fmt.Sprintf("MaxUsers must be numeric, got %s", variant.DescribeType(v)))
	}
	if f != float64(int64(f)) {
		return Rejected("MaxUsers must be a whole number")
	}
	if f < 0 {
		return Rejected("MaxUsers must be non-negative")
	}
	return Accepted(variant.Int(int64(f)))
}

func validateCustomerName(v variant.Value) Result {
	if v.IsNull() {
		return AcceptedNull()
	}
	s, ok := v.Str()
	if !ok {
		return Rejected(fmt.Sprintf("CustomerName must be a string, got %s", variant.DescribeType(v)))
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return Rejected("CustomerName must not be blank")
	}
	return Accepted(variant.String(s))
}
