package envconfig

import (
	"testing"
	"time"
)

func TestGetIntFallsBackOnMissingOrBad(t *testing.T) {
	t.Setenv("TASKFLOW_TEST_INT", "")
	if got := GetInt("TASKFLOW_TEST_INT", 7); got != 7 {
		t.Fatalf("expected fallback 7, got %d", got)
	}
	t.Setenv("TASKFLOW_TEST_INT", "not-a-number")
	if got := GetInt("TASKFLOW_TEST_INT", 7); got != 7 {
		t.Fatalf("expected fallback on unparseable input, got %d", got)
	}
	t.Setenv("TASKFLOW_TEST_INT", "42")
	if got := GetInt("TASKFLOW_TEST_INT", 7); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
}

func TestGetDuration(t *testing.T) {
	t.Setenv("TASKFLOW_TEST_DURATION", "30s")
	if got := GetDuration("TASKFLOW_TEST_DURATION", time.Second); got != 30*time.Second {
		t.Fatalf("expected 30s, got %v", got)
	}
	t.Setenv("TASKFLOW_TEST_DURATION", "garbage")
	if got := GetDuration("TASKFLOW_TEST_DURATION", time.Second); got != time.Second {
		t.Fatalf("expected fallback on unparseable duration, got %v", got)
	}
}

func TestGetBool(t *testing.T) {
	cases := map[string]bool{"true": true, "1": true, "yes": true, "false": false, "": false}
	for v, want := range cases {
		t.Setenv("TASKFLOW_TEST_BOOL", v)
		if got := GetBool("TASKFLOW_TEST_BOOL", false); got != want {
			t.Fatalf("GetBool(%q) = %v, want %v", v, got, want)
		}
	}
}
