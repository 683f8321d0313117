package database_test

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/image-lab/pkg/database"
)

func TestErrNotReady(t *testing.T) {
	if database.ErrNotReady.Error() != "database not ready" {
		t.Errorf("ErrNotReady.Error() = %q, want %q", database.ErrNotReady.Error(), "database not ready")
	}
}

func TestNew_NotReadyBeforeStart(t *testing.T) {
	cfg := &database.Config{Name: "images", User: "lab"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	sys, err := database.New(cfg, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer sys.Connection().Close()

	if err := sys.Ready(); err != database.ErrNotReady {
		t.Errorf("Ready() = %v, want %v", err, database.ErrNotReady)
	}
}

func TestConfig_Finalize_Defaults(t *testing.T) {
	cfg := &database.Config{Name: "images", User: "lab"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"Host", cfg.Host, "localhost"},
		{"Port", cfg.Port, 5432},
		{"MaxOpenConns", cfg.MaxOpenConns, 25},
		{"MaxIdleConns", cfg.MaxIdleConns, 5},
		{"ConnMaxLifetime", cfg.ConnMaxLifetime, "15m"},
		{"ConnTimeout", cfg.ConnTimeout, "5s"},
		{"SSLMode", cfg.SSLMode, "disable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestConfig_Finalize_EnvOverrides(t *testing.T) {
	t.Setenv("TEST_DATABASE_HOST", "db.internal")
	t.Setenv("TEST_DATABASE_PORT", "6543")
	t.Setenv("TEST_DATABASE_PASSWORD", "secret")

	env := &database.Env{
		Host:     "TEST_DATABASE_HOST",
		Port:     "TEST_DATABASE_PORT",
		Password: "TEST_DATABASE_PASSWORD",
	}

	cfg := &database.Config{Name: "images", User: "lab"}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if cfg.Host != "db.internal" {
		t.Errorf("Host = %q, want %q", cfg.Host, "db.internal")
	}
	if cfg.Port != 6543 {
		t.Errorf("Port = %d, want %d", cfg.Port, 6543)
	}
	if cfg.Password != "secret" {
		t.Errorf("Password = %q, want %q", cfg.Password, "secret")
	}
}

func TestConfig_Finalize_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  database.Config
	}{
		{"missing name", database.Config{User: "lab"}},
		{"missing user", database.Config{Name: "images"}},
		{"bad lifetime", database.Config{Name: "images", User: "lab", ConnMaxLifetime: "forever"}},
		{"bad timeout", database.Config{Name: "images", User: "lab", ConnTimeout: "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Finalize(nil); err == nil {
				t.Error("Finalize() succeeded, want error")
			}
		})
	}
}

func TestConfig_Merge(t *testing.T) {
	base := &database.Config{Host: "localhost", Port: 5432, Name: "images", SSLMode: "disable"}
	overlay := &database.Config{Host: "prod-db", SSLMode: "require"}

	base.Merge(overlay)

	if base.Host != "prod-db" {
		t.Errorf("Host = %q, want %q", base.Host, "prod-db")
	}
	if base.Port != 5432 {
		t.Errorf("Port = %d, want %d", base.Port, 5432)
	}
	if base.Name != "images" {
		t.Errorf("Name = %q, want %q", base.Name, "images")
	}
	if base.SSLMode != "require" {
		t.Errorf("SSLMode = %q, want %q", base.SSLMode, "require")
	}
}

func TestConfig_Dsn(t *testing.T) {
	cfg := &database.Config{
		Host: "localhost", Port: 5432, Name: "images",
		User: "lab", Password: "pw", SSLMode: "disable",
	}

	dsn := cfg.Dsn()
	for _, part := range []string{"host=localhost", "port=5432", "dbname=images", "user=lab", "password=pw", "sslmode=disable"} {
		if !strings.Contains(dsn, part) {
			t.Errorf("Dsn() = %q, missing %q", dsn, part)
		}
	}
}

func TestConfig_Durations(t *testing.T) {
	cfg := &database.Config{ConnMaxLifetime: "15m", ConnTimeout: "5s"}

	if got := cfg.ConnMaxLifetimeDuration(); got != 15*time.Minute {
		t.Errorf("ConnMaxLifetimeDuration() = %v, want %v", got, 15*time.Minute)
	}
	if got := cfg.ConnTimeoutDuration(); got != 5*time.Second {
		t.Errorf("ConnTimeoutDuration() = %v, want %v", got, 5*time.Second)
	}
}
