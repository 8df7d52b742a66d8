package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sample = `
database:
  host: db
  port: "5433"
  user: cafe
  password: secret
  database: cafe_db
rabbitmq:
  host: mq
  port: "5673"
  user: admin
  password: admin
  vhost: cafe
payment:
  payee: cafe@upi
  payee_name: Cafe
  confirm_wait_ms: 900
kitchen:
  cook_seconds: 3
ledger:
  timezone: Asia/Kolkata
`

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if got := cfg.DB.DSN(); got != "postgres://cafe:secret@db:5433/cafe_db?sslmode=disable" {
		t.Fatalf("unexpected dsn %q", got)
	}
	if got := cfg.RMQ.URL(); got != "amqp://admin:admin@mq:5673/cafe" {
		t.Fatalf("unexpected amqp url %q", got)
	}
	if cfg.Payment.ConfirmWait() != 900*time.Millisecond {
		t.Fatalf("unexpected confirm wait %s", cfg.Payment.ConfirmWait())
	}
	if cfg.Payment.Currency != DefaultCurrency {
		t.Fatalf("expected default currency, got %q", cfg.Payment.Currency)
	}
	if cfg.Kitchen.CookTime() != 3*time.Second || cfg.Kitchen.ServeTime() != 2*time.Second {
		t.Fatalf("unexpected kitchen timings %+v", cfg.Kitchen)
	}
	loc, err := cfg.Ledger.Location()
	if err != nil || loc.String() != "Asia/Kolkata" {
		t.Fatalf("unexpected location %v, %v", loc, err)
	}
}

func TestParseFillsFromEnv(t *testing.T) {
	t.Setenv("POSTGRES_USER", "env-user")
	t.Setenv("POSTGRES_DBNAME", "env-db")
	t.Setenv("UPI_PAYEE", "env@upi")

	cfg, err := Parse([]byte("rabbitmq:\n  vhost: v\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.DB.User != "env-user" || cfg.DB.Database != "env-db" {
		t.Fatalf("env not applied: %+v", cfg.DB)
	}
	if cfg.DB.Host != "localhost" || cfg.DB.Port != "5432" {
		t.Fatalf("defaults not applied: %+v", cfg.DB)
	}
	if cfg.Payment.Payee != "env@upi" {
		t.Fatalf("expected payee from env, got %q", cfg.Payment.Payee)
	}
	if cfg.Payment.ConfirmWait() != 1500*time.Millisecond {
		t.Fatalf("expected default wait, got %s", cfg.Payment.ConfirmWait())
	}
}

func TestParseValidation(t *testing.T) {
	t.Setenv("POSTGRES_USER", "")
	t.Setenv("POSTGRES_DBNAME", "")

	_, err := Parse([]byte("database:\n  port: abc\nledger:\n  timezone: Mars/Olympus\n"))
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"database.user", "database.database", "database.port", "ledger.timezone"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %v", want, err)
		}
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
