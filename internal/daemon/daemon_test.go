package daemon

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matheus3301/wtox/internal/api/apitest"
	"github.com/matheus3301/wtox/internal/config"
	"github.com/matheus3301/wtox/internal/errs"
	"github.com/matheus3301/wtox/internal/model"
	"github.com/matheus3301/wtox/internal/status"
	"github.com/matheus3301/wtox/internal/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestAgentLifecycle(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()
	srv.SetContacts(&model.Contact{Number: 7, Name: "Alice", Online: true})

	cfg := config.Defaults()
	cfg.ServerURL = srv.URL
	cfg.ReconnectDelay = config.Duration{Duration: 50 * time.Millisecond}

	lockPath := filepath.Join(t.TempDir(), "wtoxd.lock")

	var (
		st      *store.Store
		machine *status.Machine
	)
	app := fx.New(
		Module(Params{SessionName: "test", Config: cfg, Logger: zap.NewNop(), LockPath: lockPath}),
		fx.Populate(&st, &machine),
		fx.NopLogger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.Start(ctx); err != nil {
		t.Fatal(err)
	}

	select {
	case <-srv.Connected():
	case <-time.After(5 * time.Second):
		t.Fatal("agent did not connect")
	}
	eventually(t, "initial sync", func() bool {
		_, ok := st.Contact(7)
		_, hasProfile := st.Profile()
		return ok && hasProfile
	})
	if got := machine.Current(); got != status.Online {
		t.Errorf("state = %s, want ONLINE", got)
	}

	if err := srv.Push(map[string]any{"type": "friend_message", "friend": 7, "message": "hi", "time": 1000}); err != nil {
		t.Fatal(err)
	}
	eventually(t, "pushed message", func() bool {
		c, _ := st.Contact(7)
		return len(c.Chat) == 1 && c.Chat[0].Message == "hi"
	})

	// A dropped connection is re-established and the mirrors re-synced.
	srv.SetContacts(
		&model.Contact{Number: 7, Name: "Alice", Online: true},
		&model.Contact{Number: 8, Name: "Bob"},
	)
	srv.DropConnections()
	select {
	case <-srv.Connected():
	case <-time.After(5 * time.Second):
		t.Fatal("agent did not reconnect")
	}
	eventually(t, "re-sync after reconnect", func() bool {
		_, ok := st.Contact(8)
		return ok
	})

	if err := app.Stop(ctx); err != nil {
		t.Fatal(err)
	}
	if got := machine.Current(); got != status.Closed {
		t.Errorf("state after stop = %s, want CLOSED", got)
	}
	if _, err := os.Stat(lockPath); !os.IsNotExist(err) {
		t.Errorf("session lock not released: %v", err)
	}
}

func TestSecondAgentIsRefused(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()

	cfg := config.Defaults()
	cfg.ServerURL = srv.URL
	lockPath := filepath.Join(t.TempDir(), "wtoxd.lock")
	newApp := func() *fx.App {
		return fx.New(
			Module(Params{SessionName: "test", Config: cfg, Logger: zap.NewNop(), LockPath: lockPath}),
			fx.NopLogger,
		)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	first := newApp()
	if err := first.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = first.Stop(ctx) }()

	err := newApp().Start(ctx)
	if !errors.Is(err, errs.ErrSessionLocked) {
		t.Fatalf("second Start() error = %v, want ErrSessionLocked", err)
	}
}

func TestInvalidConfigFailsStart(t *testing.T) {
	cfg := config.Defaults()
	cfg.ServerURL = "ftp://example.org/"

	app := fx.New(
		Module(Params{SessionName: "test", Config: cfg, Logger: zap.NewNop(), LockPath: filepath.Join(t.TempDir(), "wtoxd.lock")}),
		fx.NopLogger,
	)
	if app.Err() == nil {
		t.Fatal("expected a config error")
	}
}
