package config

import (
	"fmt"
	"strings"
	"time"

	"lokl-mora-backend/internal/pkg/apperrors"
	"lokl-mora-backend/internal/pkg/validation"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	LogLevel            string
	DatabaseURL         string
	RedisURL            string
	Timezone            string
	Location            *time.Location
	ReportsDir          string
	SendinblueAPIKey    string // SENDINBLUE_API_KEY; empty renders reminders to preview files instead
	MailFrom            string
	MailFromName        string
	EmailSendTimeout    time.Duration
	SchedulerEnabled    bool
	CronReport          string
	CronSnapshot        string
	EmailFrequency      string
	FrontendURLEndsWith string
	DevPassword         string
	HealthAdminKey      string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("TIMEZONE", "America/Bogota")
	v.SetDefault("REPORTS_DIR", "./reports")
	v.SetDefault("MAIL_FROM", "noreply@lokl.life")
	v.SetDefault("MAIL_FROM_NAME", "LOKL Inversiones")
	v.SetDefault("EMAIL_SEND_TIMEOUT", "15s")
	v.SetDefault("SCHEDULER_ENABLED", true)
	v.SetDefault("CRON_REPORT", "0 6 * * *")
	v.SetDefault("CRON_SNAPSHOT", "0 1 * * *")
	v.SetDefault("EMAIL_FREQUENCY", "weekly")
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	_ = v.ReadInConfig()
	return FromViper(v)
}

// FromViper builds a Config from an already populated Viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	tz := strings.TrimSpace(v.GetString("TIMEZONE"))
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("%w: TIMEZONE %q: %v", apperrors.ErrConfiguration, tz, err)
	}
	timeout, err := time.ParseDuration(v.GetString("EMAIL_SEND_TIMEOUT"))
	if err != nil || timeout <= 0 {
		return nil, fmt.Errorf("%w: EMAIL_SEND_TIMEOUT %q", apperrors.ErrConfiguration, v.GetString("EMAIL_SEND_TIMEOUT"))
	}
	freq := strings.ToLower(strings.TrimSpace(v.GetString("EMAIL_FREQUENCY")))
	if !validation.IsValidFrequency(freq) {
		return nil, fmt.Errorf("%w: EMAIL_FREQUENCY %q", apperrors.ErrConfiguration, freq)
	}

	return &Config{
		Env:                 v.GetString("APP_ENV"),
		Port:                v.GetString("PORT"),
		LogLevel:            v.GetString("LOG_LEVEL"),
		DatabaseURL:         v.GetString("DATABASE_URL"),
		RedisURL:            v.GetString("REDIS_URL"),
		Timezone:            tz,
		Location:            loc,
		ReportsDir:          v.GetString("REPORTS_DIR"),
		SendinblueAPIKey:    v.GetString("SENDINBLUE_API_KEY"),
		MailFrom:            v.GetString("MAIL_FROM"),
		MailFromName:        v.GetString("MAIL_FROM_NAME"),
		EmailSendTimeout:    timeout,
		SchedulerEnabled:    v.GetBool("SCHEDULER_ENABLED"),
		CronReport:          v.GetString("CRON_REPORT"),
		CronSnapshot:        v.GetString("CRON_SNAPSHOT"),
		EmailFrequency:      freq,
		FrontendURLEndsWith: v.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         v.GetString("DEV_PASSWORD"),
		HealthAdminKey:      v.GetString("HEALTH_ADMIN_KEY"),
	}, nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
