package smtpadapter

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"parkpulse/contexts/governance/voting-ledger/ports"
)

// Notifier delivers proposal notices as plain-text email over SMTP with
// STARTTLS auth.
type Notifier struct {
	Host       string
	Port       int
	Sender     string
	Password   string
	Recipients []string
	AppURL     string
	Logger     *slog.Logger

	// send is swappable for tests; defaults to smtp.SendMail.
	send func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

func NewNotifier(host string, port int, sender, password string, recipients []string, appURL string, logger *slog.Logger) *Notifier {
	return &Notifier{
		Host:       host,
		Port:       port,
		Sender:     sender,
		Password:   password,
		Recipients: recipients,
		AppURL:     appURL,
		Logger:     logger,
		send:       smtp.SendMail,
	}
}

func (n *Notifier) SendProposalNotice(ctx context.Context, notice ports.ProposalNotice) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(n.Recipients) == 0 {
		return nil
	}

	subject := fmt.Sprintf("New Community Proposal: %s Protection Initiative", notice.ParkName)
	body := n.composeBody(notice)

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: ParkPulse <%s>\r\n", n.Sender)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(n.Recipients, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", n.Host, n.Port)
	var auth smtp.Auth
	if n.Password != "" {
		auth = smtp.PlainAuth("", n.Sender, n.Password, n.Host)
	}

	sendFn := n.send
	if sendFn == nil {
		sendFn = smtp.SendMail
	}
	if err := sendFn(addr, auth, n.Sender, n.Recipients, []byte(msg.String())); err != nil {
		if n.Logger != nil {
			n.Logger.Error("proposal notice email failed",
				"event", "ledger_notice_email_failed",
				"module", "governance/voting-ledger",
				"layer", "adapter",
				"proposal_id", notice.ProposalID,
				"error", err.Error(),
			)
		}
		return err
	}
	if n.Logger != nil {
		n.Logger.Info("proposal notice email sent",
			"event", "ledger_notice_email_sent",
			"module", "governance/voting-ledger",
			"layer", "adapter",
			"proposal_id", notice.ProposalID,
			"recipients", len(n.Recipients),
		)
	}
	return nil
}

func (n *Notifier) composeBody(notice ports.ProposalNotice) string {
	description := strings.TrimSpace(notice.Description)
	if description == "" {
		description = "A new community proposal has been created for park protection."
	}
	deadline := notice.EndTime.UTC().Format("January 2, 2006")
	appURL := n.AppURL
	if appURL == "" {
		appURL = "http://localhost:3000"
	}
	return fmt.Sprintf(`ParkPulse - Community Voting Platform

New Proposal Requires Your Vote!

Park: %s
Voting Deadline: %s

%s

Your vote matters! Please review the proposal and cast your vote before the deadline.

Vote Now: %s/proposal

---
This is an automated notification from ParkPulse.
`, notice.ParkName, deadline, description, appURL)
}

var _ ports.ProposalNotifier = (*Notifier)(nil)
