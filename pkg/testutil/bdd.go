package testutil

import "testing"

// Given, When and Then name nested subtests so scenario output reads as a
// sentence: "Given a reported case/When it is found/Then ...".
func Given(t *testing.T, situation string, fn func(t *testing.T)) {
	t.Helper()
	step(t, "Given", situation, fn)
}

func When(t *testing.T, action string, fn func(t *testing.T)) {
	t.Helper()
	step(t, "When", action, fn)
}

func Then(t *testing.T, outcome string, fn func(t *testing.T)) {
	t.Helper()
	step(t, "Then", outcome, fn)
}

func step(t *testing.T, keyword, desc string, fn func(t *testing.T)) {
	t.Helper()
	t.Run(keyword+" "+desc, fn)
}
