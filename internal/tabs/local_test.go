package tabs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Iron-Ham/filterbox/internal/errors"
)

func newTestLocalStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(t.TempDir(), "filterbox", "alice")
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}
	return store
}

func TestParseSavingMode(t *testing.T) {
	tests := []struct {
		input   string
		want    SavingMode
		wantErr bool
	}{
		{"none", SavingNone, false},
		{"", SavingNone, false},
		{"Local", SavingLocal, false},
		{" remote ", SavingRemote, false},
		{"cloud", SavingNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSavingMode(tt.input)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrUnknownSavingMode) {
					t.Errorf("ParseSavingMode(%q) error = %v, want ErrUnknownSavingMode", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSavingMode(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseSavingMode(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if round, _ := ParseSavingMode(got.String()); round != got {
				t.Errorf("String() %q does not parse back to %v", got.String(), got)
			}
		})
	}
}

func TestNewLocalStore_RequiresDir(t *testing.T) {
	_, err := NewLocalStore("", "app", "user")
	if !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}

func TestLocalStore_ScopesByApplicationAndUser(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "filterbox", "../../etc")
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}
	want := filepath.Join(dir, "filterbox", "etc")
	if store.Root() != want {
		t.Errorf("Root() = %q, want %q", store.Root(), want)
	}
}

func TestLocalStore_SaveGet(t *testing.T) {
	store := newTestLocalStore(t)
	ctx := context.Background()

	if _, err := store.Get(ctx, TabDataKey); !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("Get() on empty store error = %v, want ErrNotFound", err)
	}

	if err := store.Save(ctx, TabDataKey, []byte(`[{"uri":"/a"}]`)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Save(ctx, TabDataKey, []byte(`[{"uri":"/b"}]`)); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}

	got, err := store.Get(ctx, TabDataKey)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != `[{"uri":"/b"}]` {
		t.Errorf("Get() = %s, want the last saved data", got)
	}

	entries, err := os.ReadDir(store.Root())
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Errorf("temp file %q left behind", e.Name())
		}
	}
}

func TestLocalStore_DeleteAll(t *testing.T) {
	store := newTestLocalStore(t)
	ctx := context.Background()

	for _, key := range []string{TabDataKey, "other"} {
		if err := store.Save(ctx, key, []byte("x")); err != nil {
			t.Fatalf("Save(%q) error = %v", key, err)
		}
	}
	if err := store.DeleteAll(ctx); err != nil {
		t.Fatalf("DeleteAll() error = %v", err)
	}
	for _, key := range []string{TabDataKey, "other"} {
		if _, err := store.Get(ctx, key); !errors.Is(err, errors.ErrNotFound) {
			t.Errorf("Get(%q) after DeleteAll error = %v, want ErrNotFound", key, err)
		}
	}

	// The store is still usable.
	if err := store.Save(ctx, TabDataKey, []byte("y")); err != nil {
		t.Errorf("Save() after DeleteAll error = %v", err)
	}
}

func TestLocalStore_CanceledContext(t *testing.T) {
	store := newTestLocalStore(t)

	// Hold the lock from a second handle so the store has to wait.
	other, err := NewLocalStore(filepath.Dir(filepath.Dir(store.Root())), "filterbox", "alice")
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}
	if err := other.lock.Lock(); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}
	defer other.lock.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err = store.Save(ctx, TabDataKey, []byte("x"))
	if !errors.Is(err, errors.ErrPersistence) {
		t.Errorf("Save() while locked error = %v, want a persistence error", err)
	}
}

func TestLocalStore_Watch(t *testing.T) {
	store := newTestLocalStore(t)
	ctx, cancel := context.WithCancel(context.Background())

	changes := make(chan string, 4)
	done := make(chan error, 1)
	go func() {
		done <- store.Watch(ctx, TabDataKey, func(data []byte) {
			changes <- string(data)
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(50 * time.Millisecond)
	if err := store.Save(context.Background(), TabDataKey, []byte("v1")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	select {
	case got := <-changes:
		if got != "v1" {
			t.Errorf("watched data = %q, want %q", got, "v1")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Watch did not report the change")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() error = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
