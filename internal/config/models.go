package config

import (
	"fmt"
	"time"
)

// ServerConfig represents the configuration for the HTTP front end
type ServerConfig struct {
	ListenAddress   string
	StaticDir       string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// ClassifierConfig represents the configuration for the external classifier
type ClassifierConfig struct {
	Path          string
	Mode          string
	LookupAddress string
	// Timeout bounds a single classification. Zero means no bound.
	Timeout time.Duration
	// MaxConcurrent caps concurrent classifier processes. Zero means no cap.
	MaxConcurrent int
}

// SMTPConfig represents the configuration for the SMTP relay
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	StartTLS bool
	Helo     string
}

// MailConfig represents the configuration for outbound mail
type MailConfig struct {
	Transport   string
	From        string
	SendTimeout time.Duration
	SMTP        SMTPConfig
}

// GetServer returns the server configuration
func (c *Config) GetServer() (ServerConfig, error) {
	readTimeout, err := c.GetDuration("server.read_timeout")
	if err != nil {
		return ServerConfig{}, err
	}
	writeTimeout, err := c.GetDuration("server.write_timeout")
	if err != nil {
		return ServerConfig{}, err
	}
	shutdownTimeout, err := c.GetDuration("server.shutdown_timeout")
	if err != nil {
		return ServerConfig{}, err
	}

	return ServerConfig{
		ListenAddress:   c.GetString("server.listen_address"),
		StaticDir:       c.GetString("server.static_dir"),
		ReadTimeout:     readTimeout,
		WriteTimeout:    writeTimeout,
		ShutdownTimeout: shutdownTimeout,
	}, nil
}

// GetClassifier returns the classifier configuration
func (c *Config) GetClassifier() (ClassifierConfig, error) {
	timeout, err := c.GetDuration("classifier.timeout")
	if err != nil {
		return ClassifierConfig{}, err
	}

	maxConcurrent := c.GetInt("classifier.max_concurrent")
	if maxConcurrent < 0 {
		return ClassifierConfig{}, fmt.Errorf("classifier.max_concurrent must not be negative: %d", maxConcurrent)
	}

	return ClassifierConfig{
		Path:          c.GetString("classifier.path"),
		Mode:          c.GetString("classifier.mode"),
		LookupAddress: c.GetString("classifier.lookup_address"),
		Timeout:       timeout,
		MaxConcurrent: maxConcurrent,
	}, nil
}

// GetMail returns the outbound mail configuration
func (c *Config) GetMail() (MailConfig, error) {
	sendTimeout, err := c.GetDuration("mail.send_timeout")
	if err != nil {
		return MailConfig{}, err
	}

	return MailConfig{
		Transport:   c.GetString("mail.transport"),
		From:        c.GetString("mail.from"),
		SendTimeout: sendTimeout,
		SMTP: SMTPConfig{
			Host:     c.GetString("mail.smtp.host"),
			Port:     c.GetInt("mail.smtp.port"),
			Username: c.GetString("mail.smtp.username"),
			Password: c.GetString("mail.smtp.password"),
			StartTLS: c.GetBool("mail.smtp.starttls"),
			Helo:     c.GetString("mail.smtp.helo"),
		},
	}, nil
}
