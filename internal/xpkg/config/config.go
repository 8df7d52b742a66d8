package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	DB      *Postgres `yaml:"database"`
	RMQ     *RabbitMQ `yaml:"rabbitmq"`
	Payment *Payment  `yaml:"payment"`
	Kitchen *Kitchen  `yaml:"kitchen"`
	Ledger  *Ledger   `yaml:"ledger"`
}

type Postgres struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	MaxConns int    `yaml:"max_conns"`
}

type RabbitMQ struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	VHost    string `yaml:"vhost"`
}

// Payment configures the UPI deep link and how long checkout waits for the
// payment channel before offering pay-at-counter.
type Payment struct {
	Payee         string `yaml:"payee"`
	PayeeName     string `yaml:"payee_name"`
	Currency      string `yaml:"currency"`
	ConfirmWaitMS int    `yaml:"confirm_wait_ms"`
}

type Kitchen struct {
	CookSeconds  int `yaml:"cook_seconds"`
	ServeSeconds int `yaml:"serve_seconds"`
	Workers      int `yaml:"workers"`
}

type Ledger struct {
	// Timezone is an IANA name used for revenue-by-day grouping. Empty means
	// the local time of the process.
	Timezone string `yaml:"timezone"`
}

const (
	DefaultConfirmWaitMS = 1500
	DefaultCurrency      = "INR"
)

// LoadConfig reads the yaml file, fills empty fields from the environment,
// applies defaults and validates the result.
func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse is LoadConfig without the file read.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if c.DB == nil {
		c.DB = &Postgres{}
	}
	if c.RMQ == nil {
		c.RMQ = &RabbitMQ{}
	}
	if c.Payment == nil {
		c.Payment = &Payment{}
	}
	if c.Kitchen == nil {
		c.Kitchen = &Kitchen{}
	}
	if c.Ledger == nil {
		c.Ledger = &Ledger{}
	}

	fill(&c.DB.Host, "POSTGRES_HOST", "localhost")
	fill(&c.DB.Port, "POSTGRES_PORT", "5432")
	fill(&c.DB.User, "POSTGRES_USER", "")
	fill(&c.DB.Password, "POSTGRES_PASSWORD", "")
	fill(&c.DB.Database, "POSTGRES_DBNAME", "")

	fill(&c.RMQ.Host, "RABBITMQ_HOST", "localhost")
	fill(&c.RMQ.Port, "RABBITMQ_PORT", "5672")
	fill(&c.RMQ.User, "RABBITMQ_USER", "guest")
	fill(&c.RMQ.Password, "RABBITMQ_PASSWORD", "guest")
	fill(&c.RMQ.VHost, "RABBITMQ_VHOST", "")

	fill(&c.Payment.Payee, "UPI_PAYEE", "")
	fill(&c.Payment.PayeeName, "UPI_PAYEE_NAME", "")

	fill(&c.Ledger.Timezone, "LEDGER_TIMEZONE", "")
}

func (c *Config) applyDefaults() {
	if c.DB.MaxConns <= 0 {
		c.DB.MaxConns = 10
	}
	if c.Payment.Currency == "" {
		c.Payment.Currency = DefaultCurrency
	}
	if c.Payment.ConfirmWaitMS <= 0 {
		c.Payment.ConfirmWaitMS = DefaultConfirmWaitMS
	}
	if c.Kitchen.CookSeconds <= 0 {
		c.Kitchen.CookSeconds = 8
	}
	if c.Kitchen.ServeSeconds <= 0 {
		c.Kitchen.ServeSeconds = 2
	}
	if c.Kitchen.Workers <= 0 {
		c.Kitchen.Workers = 4
	}
}

// Validate reports the first unusable setting.
func (c *Config) Validate() error {
	var errs []error
	if c.DB.User == "" {
		errs = append(errs, errors.New("database.user is required"))
	}
	if c.DB.Database == "" {
		errs = append(errs, errors.New("database.database is required"))
	}
	if _, err := strconv.Atoi(c.DB.Port); err != nil {
		errs = append(errs, fmt.Errorf("database.port must be a number: %q", c.DB.Port))
	}
	if _, err := strconv.Atoi(c.RMQ.Port); err != nil {
		errs = append(errs, fmt.Errorf("rabbitmq.port must be a number: %q", c.RMQ.Port))
	}
	if _, err := c.Ledger.Location(); err != nil {
		errs = append(errs, fmt.Errorf("ledger.timezone: %w", err))
	}
	return errors.Join(errs...)
}

// DSN builds the postgres connection string.
func (p *Postgres) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     p.Host + ":" + p.Port,
		Path:     "/" + p.Database,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// URL builds the amqp connection string.
func (r *RabbitMQ) URL() string {
	u := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(r.User, r.Password),
		Host:   r.Host + ":" + r.Port,
		Path:   "/" + r.VHost,
	}
	return u.String()
}

func (p *Payment) ConfirmWait() time.Duration {
	return time.Duration(p.ConfirmWaitMS) * time.Millisecond
}

func (k *Kitchen) CookTime() time.Duration {
	return time.Duration(k.CookSeconds) * time.Second
}

func (k *Kitchen) ServeTime() time.Duration {
	return time.Duration(k.ServeSeconds) * time.Second
}

func (l *Ledger) Location() (*time.Location, error) {
	if l.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(l.Timezone)
}

func fill(field *string, key, defaultValue string) {
	if *field != "" {
		return
	}
	if value := os.Getenv(key); value != "" {
		*field = value
		return
	}
	*field = defaultValue
}
