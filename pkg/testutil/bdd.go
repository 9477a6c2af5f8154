package testutil

import "testing"

// Given, When and Then name nested subtests so failures read as a scenario:
// "Given the example family/Then it validates".
func Given(t *testing.T, desc string, fn func(t *testing.T)) {
	t.Helper()
	t.Run("Given "+desc, fn)
}

func When(t *testing.T, desc string, fn func(t *testing.T)) {
	t.Helper()
	t.Run("When "+desc, fn)
}

func Then(t *testing.T, desc string, fn func(t *testing.T)) {
	t.Helper()
	t.Run("Then "+desc, fn)
}

// Scenario runs one Given/When/Then chain with a single assertion body.
func Scenario(t *testing.T, given, when, then string, fn func(t *testing.T)) {
	t.Helper()
	Given(t, given, func(t *testing.T) {
		When(t, when, func(t *testing.T) {
			Then(t, then, fn)
		})
	})
}
