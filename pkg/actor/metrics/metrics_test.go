package metrics

import "testing"

func TestNew_NilRegistererUsesPrivateRegistry(t *testing.T) {
	m := New(nil, 1)
	if m == nil {
		t.Fatal("expected a non-nil Metrics bundle")
	}
	m.SpawnsTotal.Inc()
	m.ExitsTotal.WithLabelValues("OK").Inc()
	m.MailboxDepth.WithLabelValues("3").Set(5)
}

func TestNew_SameNIDTwiceDoesNotPanic(t *testing.T) {
	New(nil, 7)
	New(nil, 7) // separate private registries; must not collide
}
