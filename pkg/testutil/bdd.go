package testutil

import "testing"

// Given, When, and Then wrap t.Run with scenario-flavored names. They buy
// readable output for behavior tests (cache TTLs, cooldown windows) without
// a BDD framework dependency.

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
