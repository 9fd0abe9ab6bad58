package entities

import (
	"testing"
	"time"
)

func TestStatusWireLabels(t *testing.T) {
	cases := []struct {
		status ProposalStatus
		want   string
	}{
		{StatusActive, "active"},
		{StatusAccepted, "passed"},
		{StatusDeclined, "rejected"},
	}
	for _, tc := range cases {
		if got := tc.status.String(); got != tc.want {
			t.Fatalf("%v.String() = %q want %q", tc.status, got, tc.want)
		}
	}
	if StatusActive.Terminal() {
		t.Fatal("active must not be terminal")
	}
	if !StatusAccepted.Terminal() || !StatusDeclined.Terminal() {
		t.Fatal("accepted and declined must be terminal")
	}
}

func TestParseTerminalStatus(t *testing.T) {
	for label, want := range map[string]ProposalStatus{
		"passed":   StatusAccepted,
		"accepted": StatusAccepted,
		"rejected": StatusDeclined,
		"declined": StatusDeclined,
	} {
		status, ok := ParseTerminalStatus(label)
		if !ok || status != want {
			t.Fatalf("ParseTerminalStatus(%q) = %v,%v want %v,true", label, status, ok, want)
		}
	}
	for _, label := range []string{"active", "", "unknown"} {
		if _, ok := ParseTerminalStatus(label); ok {
			t.Fatalf("ParseTerminalStatus(%q) accepted a non-terminal label", label)
		}
	}
}

func TestOutcomeRequiresStrictMajority(t *testing.T) {
	cases := []struct {
		yes, no uint64
		want    ProposalStatus
	}{
		{3, 1, StatusAccepted},
		{1, 3, StatusDeclined},
		{2, 2, StatusDeclined},
		{0, 0, StatusDeclined},
	}
	for _, tc := range cases {
		p := Proposal{YesVotes: tc.yes, NoVotes: tc.no}
		if got := p.Outcome(); got != tc.want {
			t.Fatalf("Outcome(%d,%d) = %v want %v", tc.yes, tc.no, got, tc.want)
		}
	}
}

func TestActiveAtBoundary(t *testing.T) {
	end := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := Proposal{Status: StatusActive, EndTime: end}

	if !p.ActiveAt(end.Add(-time.Second)) || !p.ActiveAt(end) {
		t.Fatal("proposal must be active up to and including the deadline")
	}
	if p.ActiveAt(end.Add(time.Nanosecond)) {
		t.Fatal("proposal must be inactive past the deadline")
	}

	p.Status = StatusDeclined
	if p.ActiveAt(end.Add(-time.Hour)) {
		t.Fatal("terminal proposal must never be active")
	}
}
