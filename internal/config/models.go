package config

import (
	"strings"
	"time"
)

// ServerConfig represents the HTTP API configuration
type ServerConfig struct {
	ListenAddress   string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// LLMConfig represents the configuration for the chat-completion provider
type LLMConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// MailConfig represents the transport-independent mail settings
type MailConfig struct {
	Transport      string
	From           string
	FromName       string
	AllowedDomains []string
}

// SMTPConfig represents the configuration for the SMTP relay transport
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	StartTLS bool
	Timeout  time.Duration
	Helo     string
}

// SESConfig represents the configuration for the AWS SES transport
type SESConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// ResendConfig represents the configuration for the Resend transport
type ResendConfig struct {
	APIKey string
}

// GetServer returns the HTTP server configuration
func (c *Config) GetServer() (ServerConfig, error) {
	read, err := c.GetDuration("server.read_timeout")
	if err != nil {
		return ServerConfig{}, err
	}
	write, err := c.GetDuration("server.write_timeout")
	if err != nil {
		return ServerConfig{}, err
	}
	shutdown, err := c.GetDuration("server.shutdown_timeout")
	if err != nil {
		return ServerConfig{}, err
	}

	return ServerConfig{
		ListenAddress:   c.GetString("server.listen_address"),
		ReadTimeout:     read,
		WriteTimeout:    write,
		ShutdownTimeout: shutdown,
	}, nil
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() (LLMConfig, error) {
	timeout, err := c.GetDuration("llm.timeout")
	if err != nil {
		return LLMConfig{}, err
	}

	return LLMConfig{
		APIKey:      c.GetString("llm.api_key"),
		BaseURL:     c.GetString("llm.base_url"),
		Model:       c.GetString("llm.model"),
		Temperature: float32(c.GetFloat64("llm.temperature")),
		MaxTokens:   c.GetInt("llm.max_tokens"),
		Timeout:     timeout,
	}, nil
}

// GetMail returns the mail configuration. The sender falls back to the SMTP
// username when mail.from is not set.
func (c *Config) GetMail() MailConfig {
	from := c.GetString("mail.from")
	if from == "" {
		from = c.GetString("mail.smtp.username")
	}

	var domains []string
	for _, d := range c.GetStringSlice("mail.allowed_domains") {
		if d = strings.TrimSpace(d); d != "" {
			domains = append(domains, d)
		}
	}

	return MailConfig{
		Transport:      strings.ToLower(c.GetString("mail.transport")),
		From:           from,
		FromName:       c.GetString("mail.from_name"),
		AllowedDomains: domains,
	}
}

// GetSMTP returns the SMTP transport configuration
func (c *Config) GetSMTP() (SMTPConfig, error) {
	timeout, err := c.GetDuration("mail.smtp.timeout")
	if err != nil {
		return SMTPConfig{}, err
	}

	return SMTPConfig{
		Host:     c.GetString("mail.smtp.host"),
		Port:     c.GetInt("mail.smtp.port"),
		Username: c.GetString("mail.smtp.username"),
		Password: c.GetString("mail.smtp.password"),
		StartTLS: c.GetBool("mail.smtp.starttls"),
		Timeout:  timeout,
		Helo:     c.GetString("mail.smtp.helo"),
	}, nil
}

// GetSES returns the SES transport configuration
func (c *Config) GetSES() SESConfig {
	return SESConfig{
		Region:          c.GetString("mail.ses.region"),
		AccessKeyID:     c.GetString("mail.ses.access_key_id"),
		SecretAccessKey: c.GetString("mail.ses.secret_access_key"),
	}
}

// GetResend returns the Resend transport configuration
func (c *Config) GetResend() ResendConfig {
	return ResendConfig{
		APIKey: c.GetString("mail.resend.api_key"),
	}
}
