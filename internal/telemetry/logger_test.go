package telemetry

import "testing"

func TestSanitizeRedactsSecretLikeKeys(t *testing.T) {
	in := []interface{}{"token", "abc123", "user_id", "u-1", "password", "hunter2"}
	out := sanitize(in)
	if out[1] != "[REDACTED]" {
		t.Fatalf("expected token value redacted, got %v", out[1])
	}
	if out[3] != "u-1" {
		t.Fatalf("expected non-secret value preserved, got %v", out[3])
	}
	if out[5] != "[REDACTED]" {
		t.Fatalf("expected password value redacted, got %v", out[5])
	}
}

func TestSanitizeHandlesOddLength(t *testing.T) {
	out := sanitize([]interface{}{"dangling"})
	if len(out) != 1 || out[0] != "dangling" {
		t.Fatalf("expected trailing unpaired key preserved as-is, got %v", out)
	}
}

func TestNoopLoggerDoesNotPanic(t *testing.T) {
	l := Noop()
	l.Info("hello", "k", "v")
	l.With("job", "x").Warn("warned")
	l.Sync()
}
