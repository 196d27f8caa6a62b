//go:build vitalsdebug

package analysis

import "fmt"

// assertFinite panics when a non-finite value reaches the engine.
// Build with -tags vitalsdebug to surface unsanitized input.
func assertFinite(v float64, where string) {
	panic(fmt.Sprintf("analysis: non-finite value %v in %s", v, where))
}
