package server

import (
	"context"
	"strings"
	"testing"

	"github.com/teemow/boxmcp/internal/box"
	"github.com/teemow/boxmcp/internal/box/boxtest"
)

func clearBoxEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"BOX_DEVELOPER_TOKEN", "BOX_CLIENT_ID", "BOX_CLIENT_SECRET", "BOX_SUBJECT_ID", "BOX_API_BASE_URL"} {
		t.Setenv(key, "")
	}
}

func TestServerContext_Accounts(t *testing.T) {
	sc, err := NewServerContext(context.Background(), &box.File{Accounts: map[string]box.Config{
		"work": {DeveloperToken: "a"},
		"home": {DeveloperToken: "b"},
	}})
	if err != nil {
		t.Fatalf("NewServerContext() error = %v", err)
	}
	defer sc.Shutdown()

	got := strings.Join(sc.Accounts(), ",")
	if got != "default,home,work" {
		t.Errorf("Accounts() = %q, want %q", got, "default,home,work")
	}
}

func TestServerContext_ClientForAccount(t *testing.T) {
	clearBoxEnv(t)

	sc, err := NewServerContext(context.Background(), &box.File{Accounts: map[string]box.Config{
		"work": {DeveloperToken: "work-token"},
	}})
	if err != nil {
		t.Fatalf("NewServerContext() error = %v", err)
	}
	defer sc.Shutdown()

	t.Run("configured account is created once", func(t *testing.T) {
		first, err := sc.ClientForAccount("work")
		if err != nil {
			t.Fatalf("ClientForAccount() error = %v", err)
		}
		second, err := sc.ClientForAccount("work")
		if err != nil {
			t.Fatalf("ClientForAccount() error = %v", err)
		}
		if first != second {
			t.Error("expected the cached client to be returned")
		}
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := sc.ClientForAccount("missing")
		if err == nil || !strings.Contains(err.Error(), "not configured") {
			t.Errorf("ClientForAccount() error = %v, want not configured", err)
		}
	})

	t.Run("default account without credentials", func(t *testing.T) {
		_, err := sc.ClientForAccount("")
		if err == nil || !strings.Contains(err.Error(), "no Box credentials") {
			t.Errorf("ClientForAccount() error = %v, want missing credentials", err)
		}
	})

	t.Run("default account from environment", func(t *testing.T) {
		t.Setenv("BOX_DEVELOPER_TOKEN", "env-token")
		if _, err := sc.ClientForAccount(box.DefaultAccount); err != nil {
			t.Errorf("ClientForAccount() error = %v", err)
		}
	})
}

func TestServerContext_Managers(t *testing.T) {
	sc, err := NewServerContext(context.Background(), nil)
	if err != nil {
		t.Fatalf("NewServerContext() error = %v", err)
	}
	defer sc.Shutdown()

	fake := boxtest.NewRequester()
	sc.SetClientForAccount(box.DefaultAccount, fake)

	taskManager, err := sc.TasksForAccount("")
	if err != nil {
		t.Fatalf("TasksForAccount() error = %v", err)
	}
	taskManager.Delete(context.Background(), "1234", nil)

	collectionManager, err := sc.CollectionsForAccount(box.DefaultAccount)
	if err != nil {
		t.Fatalf("CollectionsForAccount() error = %v", err)
	}
	collectionManager.GetAll(context.Background(), nil, nil)

	calls := fake.Calls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(calls))
	}
	if calls[0].Method != "DELETE" || calls[0].Path != "/tasks/1234" {
		t.Errorf("first call = %s %s", calls[0].Method, calls[0].Path)
	}
	if calls[1].Method != "GET" || calls[1].Path != "/collections" {
		t.Errorf("second call = %s %s", calls[1].Method, calls[1].Path)
	}
}

func TestServerContext_Shutdown(t *testing.T) {
	sc, err := NewServerContext(context.Background(), nil)
	if err != nil {
		t.Fatalf("NewServerContext() error = %v", err)
	}

	if sc.IsShutdown() {
		t.Fatal("new context must not be shut down")
	}
	if err := sc.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if !sc.IsShutdown() {
		t.Error("IsShutdown() = false after Shutdown()")
	}
	if sc.Context().Err() == nil {
		t.Error("context not canceled after Shutdown()")
	}
	if err := sc.Shutdown(); err != nil {
		t.Errorf("second Shutdown() error = %v", err)
	}
	if _, err := sc.ClientForAccount(""); err == nil {
		t.Error("expected an error after shutdown")
	}
}
