package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/balcao/balcao/internal/config"
	"github.com/balcao/balcao/internal/model"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLogger_Format(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	logger := NewLogger(&config.Config{LogLevel: "warn", LogFormat: "json"}, &buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line logged at warn level: %s", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) {
		t.Errorf("expected JSON output, got %s", out)
	}

	buf.Reset()
	NewLogger(&config.Config{LogLevel: "info", LogFormat: "text"}, &buf).Info("plain")
	if !strings.Contains(buf.String(), "msg=plain") {
		t.Errorf("expected text output, got %s", buf.String())
	}
}

func TestRedactURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"postgres://balcao:s3cret@db:5432/balcao", "postgres://balcao@db:5432/balcao"},
		{"redis://:s3cret@cache:6379/0", "redis://redacted@cache:6379/0"},
		{"redis://cache:6379", "redis://cache:6379"},
	}

	for _, tt := range tests {
		if got := RedactURL(tt.in); got != tt.want {
			t.Errorf("RedactURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeError(t *testing.T) {
	dsn := "postgres://balcao:s3cret@db:5432/balcao"
	err := errors.New("dial " + dsn + " failed: password=s3cret rejected")

	got := SanitizeError(err, dsn)
	if strings.Contains(got, "s3cret") {
		t.Errorf("secret leaked: %s", got)
	}
	if !strings.Contains(got, "postgres://balcao@db:5432/balcao") {
		t.Errorf("expected redacted URL in %s", got)
	}
	if SanitizeError(nil) != "" {
		t.Error("expected empty string for nil error")
	}
}

func TestOpenBackend_MemorySnapshots(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)
	cfg := &config.Config{StoreDriver: config.StoreMemory, DataDir: t.TempDir()}

	b, err := OpenBackend(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("OpenBackend: %v", err)
	}
	if b.Pool != nil {
		t.Error("expected no pool for the memory driver")
	}

	added, err := b.Stores.Categories.Add(ctx, "seed", model.Category{Name: "Bebidas", Icon: "🥤"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	b.Close()

	if _, err := os.Stat(filepath.Join(cfg.DataDir, model.KindCategories+".json")); err != nil {
		t.Fatalf("expected a categories snapshot: %v", err)
	}

	reopened, err := OpenBackend(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err := reopened.Stores.Categories.Get(ctx, added.ID)
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if got.Name != "Bebidas" || got.CreatedBy != "seed" {
		t.Errorf("unexpected category after reopen: %+v", got)
	}
}

func TestOpenBackend_MemoryWithoutDataDir(t *testing.T) {
	b, err := OpenBackend(context.Background(), &config.Config{StoreDriver: config.StoreMemory}, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("OpenBackend: %v", err)
	}
	for name, s := range map[string]any{
		"categories": b.Stores.Categories, "clients": b.Stores.Clients, "openings": b.Stores.Openings,
		"sangrias": b.Stores.Sangrias, "sales": b.Stores.Sales, "users": b.Stores.Users, "settings": b.Stores.Settings,
	} {
		if s == nil {
			t.Errorf("store %s not opened", name)
		}
	}
}
