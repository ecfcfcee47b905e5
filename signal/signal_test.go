package signal

import "testing"

func TestPollAgainString(t *testing.T) {
	if got := (PollAgain{}).String(); got != "poll again" {
		t.Fatalf("expected default message, got %q", got)
	}
	if got := (PollAgain{Reason: "not ready"}).String(); got != "not ready" {
		t.Fatalf("expected reason echoed, got %q", got)
	}
}
