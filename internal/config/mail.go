package config

import (
	"os"
	"strconv"
)

// SMTPConfig holds the externally supplied sender credentials. User is the
// sender address, Pass the provider app password.
type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
}

// LoadSMTP reads the mail environment. Host and port default to Gmail's
// submission endpoint; EMAIL_USER and EMAIL_PASS must be provisioned.
func LoadSMTP() SMTPConfig {
	cfg := SMTPConfig{
		Host: "smtp.gmail.com",
		Port: 587,
		User: os.Getenv("EMAIL_USER"),
		Pass: os.Getenv("EMAIL_PASS"),
	}
	if host := os.Getenv("SMTP_HOST"); host != "" {
		cfg.Host = host
	}
	if port := os.Getenv("SMTP_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil {
			cfg.Port = n
		}
	}
	return cfg
}
