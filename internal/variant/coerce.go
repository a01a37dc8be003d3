package variant

// IsNumeric reports whether the value carries a number and, if so, its
// float64 form. Integer values convert exactly up to 2^53; larger
// magnitudes lose precision, which is documented behavior rather than an
// error.
func IsNumeric(v Value) (bool, float64) {
	switch v.kind {
	case KindInt:
		return true, float64(v.intVal)
	case KindFloat:
		return true, v.floatVal
	default:
		return false, 0
	}
}

// IsIntegral reports whether the value is numeric with zero fractional
// part.
func IsIntegral(v Value) bool {
	ok, f := IsNumeric(v)
	return ok && f == float64(int64(f))
}

// DescribeType returns the human-readable type name for error messages,
// "null" for the absent value.
func DescribeType(v Value) string {
	return v.kind.String()
}
