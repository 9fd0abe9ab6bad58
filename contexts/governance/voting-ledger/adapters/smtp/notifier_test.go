package smtpadapter

import (
	"context"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"parkpulse/contexts/governance/voting-ledger/ports"
)

func TestSendProposalNoticeBuildsPlainTextMail(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	notifier := NewNotifier("smtp.example.com", 587, "ledger@example.com", "secret",
		[]string{"a@example.com", "b@example.com"}, "https://vote.example.com", nil)
	notifier.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr = addr
		gotFrom = from
		gotTo = to
		gotMsg = msg
		return nil
	}

	err := notifier.SendProposalNotice(context.Background(), ports.ProposalNotice{
		ProposalID:  7,
		ParkName:    "Riverside Park",
		EndTime:     time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC),
		Description: "NDVI dropped sharply",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if gotAddr != "smtp.example.com:587" {
		t.Fatalf("unexpected addr %s", gotAddr)
	}
	if gotFrom != "ledger@example.com" || len(gotTo) != 2 {
		t.Fatalf("unexpected sender/recipients %s %v", gotFrom, gotTo)
	}
	mail := string(gotMsg)
	for _, want := range []string{
		"Subject: New Community Proposal: Riverside Park Protection Initiative",
		"Park: Riverside Park",
		"Voting Deadline: March 4, 2026",
		"NDVI dropped sharply",
		"https://vote.example.com/proposal",
	} {
		if !strings.Contains(mail, want) {
			t.Fatalf("mail missing %q:\n%s", want, mail)
		}
	}
}

func TestSendProposalNoticeNoRecipientsIsNoop(t *testing.T) {
	notifier := NewNotifier("smtp.example.com", 587, "ledger@example.com", "", nil, "", nil)
	called := false
	notifier.send = func(string, smtp.Auth, string, []string, []byte) error {
		called = true
		return nil
	}

	if err := notifier.SendProposalNotice(context.Background(), ports.ProposalNotice{ProposalID: 1}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if called {
		t.Fatal("mail sent despite empty recipient list")
	}
}
