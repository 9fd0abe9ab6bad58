package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string
	PostgresDSN string
	AdminAPIKey string
	AppURL      string

	SMTPHost       string
	SMTPPort       int
	SenderEmail    string
	SenderPassword string
	NoticeEmails   []string

	EnableDeadlineCloser     bool
	EnableOutboxRelay        bool
	EnableProposalAnnouncer  bool
	DeadlineCloserInterval   time.Duration
	OutboxRelayInterval      time.Duration
	OutboxRelayBatchSize     int
	AnnouncerConsumerGroup   string
	AnnouncerDedupRetention  time.Duration
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "parkpulse"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	appURL := strings.TrimSpace(os.Getenv("APP_URL"))
	if appURL == "" {
		appURL = "http://localhost:3000"
	}

	smtpHost := strings.TrimSpace(os.Getenv("SMTP_SERVER"))
	if smtpHost == "" {
		smtpHost = "smtp.gmail.com"
	}

	var recipients []string
	for _, value := range strings.Split(os.Getenv("NOTICE_EMAILS"), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			recipients = append(recipients, value)
		}
	}

	return Config{
		ServiceName: service,
		HTTPPort:    port,
		PostgresDSN: os.Getenv("POSTGRES_DSN"),
		AdminAPIKey: strings.TrimSpace(os.Getenv("ADMIN_API_KEY")),
		AppURL:      appURL,

		SMTPHost:       smtpHost,
		SMTPPort:       envInt("SMTP_PORT", 587),
		SenderEmail:    strings.TrimSpace(os.Getenv("SENDER_EMAIL")),
		SenderPassword: strings.ReplaceAll(strings.TrimSpace(os.Getenv("SENDER_PASSWORD")), " ", ""),
		NoticeEmails:   recipients,

		EnableDeadlineCloser:    envBool("ENABLE_DEADLINE_CLOSER", true),
		EnableOutboxRelay:       envBool("ENABLE_OUTBOX_RELAY", true),
		EnableProposalAnnouncer: envBool("ENABLE_PROPOSAL_ANNOUNCER", true),
		DeadlineCloserInterval:  envDuration("DEADLINE_CLOSER_INTERVAL", time.Minute),
		OutboxRelayInterval:     envDuration("OUTBOX_RELAY_INTERVAL", 5*time.Second),
		OutboxRelayBatchSize:    envInt("OUTBOX_RELAY_BATCH_SIZE", 100),
		AnnouncerConsumerGroup:  strings.TrimSpace(os.Getenv("ANNOUNCER_CONSUMER_GROUP")),
		AnnouncerDedupRetention: envDuration("ANNOUNCER_DEDUP_RETENTION", 7*24*time.Hour),
	}, nil
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
