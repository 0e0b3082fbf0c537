package app

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dukerupert/homeeasy/internal/config"
	"github.com/dukerupert/homeeasy/internal/intake"
	"github.com/dukerupert/homeeasy/internal/lock"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Database.DSN = filepath.Join(t.TempDir(), "crm.db")
	return cfg
}

func TestNew(t *testing.T) {
	a, err := New(testConfig(t), slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, ok := a.Locker.(*lock.Memory); !ok {
		t.Errorf("locker = %T, want in-process locks without redis", a.Locker)
	}

	ctx := context.Background()
	c, err := a.Clients.Create(ctx, "Jane Smith", "alex")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	page, err := a.Roster.List(ctx, 0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Clients) != 1 || page.Clients[0].ID != c.ID {
		t.Errorf("page = %+v", page)
	}

	if err := a.Close(); err != nil {
		t.Errorf("close: %v", err)
	}
	if err := a.Conn.PingContext(ctx); err == nil {
		t.Error("connection should be closed")
	}
}

func TestNewValidatorFollowsConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Intake.RequireTourDate = true
	a, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer a.Close()
	if !a.Validator.RequireTourDate {
		t.Error("validator should require tour_date")
	}
}

func TestNewRedisUnreachable(t *testing.T) {
	cfg := testConfig(t)
	cfg.Redis.Addr = "127.0.0.1:1"
	if _, err := New(cfg, slog.New(slog.DiscardHandler)); err == nil {
		t.Fatal("expected error for unreachable redis")
	}
}

func TestRequirementLogsComponentOnce(t *testing.T) {
	var buf bytes.Buffer
	a, err := New(testConfig(t), slog.New(slog.NewJSONHandler(&buf, nil)))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer a.Close()

	ctx := context.Background()
	c, err := a.Clients.Create(ctx, "Jane Smith", "alex")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	req, err := a.Validator.Requirement(intake.Raw{
		"client_id":    c.ID,
		"move_in_date": "2025-06-01",
		"budget":       "2000",
		"sqft":         "800",
		"beds":         "2",
		"baths":        "1",
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if _, _, err := a.Requirements.Save(ctx, req); err != nil {
		t.Fatalf("save: %v", err)
	}

	var line string
	for _, l := range strings.Split(buf.String(), "\n") {
		if strings.Contains(l, `"msg":"requirement saved"`) {
			line = l
		}
	}
	if line == "" {
		t.Fatalf("no requirement saved log in %q", buf.String())
	}
	if n := strings.Count(line, `"component":`); n != 1 {
		t.Errorf("component attrs = %d, want 1: %s", n, line)
	}
}
