package main

import (
	"strings"

	"rental-harvester/config"
	"rental-harvester/internal/report"
	"rental-harvester/logger"
	"rental-harvester/services/store"

	"github.com/joho/godotenv"
)

func main() {
	godotenv.Load()

	logger.Init()
	log := logger.Default

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	st, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("db", cfg.DBPath).Msg("Failed to open listing store")
	}
	defer st.Close()

	summaries, err := report.NewReporter(st).Generate(cfg.ReportOutput)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to generate report")
	}

	if len(summaries) == 0 {
		log.Warn().Msg("Store holds no listings, report is empty")
	}

	if cfg.SMTPHost == "" {
		log.Info().Str("path", cfg.ReportOutput).Msg("SMTP not configured, report left on disk")
		return
	}

	settings := report.EmailSettings{
		Host:       cfg.SMTPHost,
		Port:       cfg.SMTPPort,
		User:       cfg.SMTPUser,
		Pass:       cfg.SMTPPass,
		Recipients: splitRecipients(cfg.ReportRecipients),
	}

	if err := report.SendSummary(settings, "Weekly rental listing summary", cfg.ReportOutput); err != nil {
		log.Fatal().Err(err).Msg("Failed to email report")
	}

	log.Info().Int("recipients", len(settings.Recipients)).Msg("Report emailed")
}

func splitRecipients(raw string) []string {
	var recipients []string
	for _, r := range strings.Split(raw, ",") {
		if r = strings.TrimSpace(r); r != "" {
			recipients = append(recipients, r)
		}
	}
	return recipients
}
