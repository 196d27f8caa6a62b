//go:build !vitalsdebug

package analysis

// assertFinite is a no-op in regular builds; non-finite values are skipped.
func assertFinite(float64, string) {}
