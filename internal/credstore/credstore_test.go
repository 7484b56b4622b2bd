package credstore

import (
	"os"
	"testing"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	store := New(t.TempDir())

	if err := store.Save("tenant-a", "628111@s.whatsapp.net"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	creds, err := store.Load("tenant-a")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if creds.SessionID != "tenant-a" {
		t.Errorf("SessionID = %q, want %q", creds.SessionID, "tenant-a")
	}
	if creds.JID != "628111@s.whatsapp.net" {
		t.Errorf("JID = %q, want %q", creds.JID, "628111@s.whatsapp.net")
	}
	if creds.SavedAt.IsZero() {
		t.Error("SavedAt is zero")
	}
}

func TestLoadMissing(t *testing.T) {
	store := New(t.TempDir())

	_, err := store.Load("never-paired")
	if !os.IsNotExist(err) {
		t.Errorf("Load missing session: got %v, want not-exist error", err)
	}
}

func TestDelete(t *testing.T) {
	store := New(t.TempDir())

	if err := store.Save("tenant-a", "628111@s.whatsapp.net"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Delete("tenant-a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Load("tenant-a"); err == nil {
		t.Error("Load after Delete succeeded, want error")
	}

	// Delete idempotent untuk file yang sudah tidak ada.
	if err := store.Delete("tenant-a"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestList(t *testing.T) {
	store := New(t.TempDir())

	if err := store.Save("tenant-a", "628111@s.whatsapp.net"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save("tenant-b", "628222@s.whatsapp.net"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	all, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("List returned %d entries, want 2", len(all))
	}

	seen := map[string]string{}
	for _, c := range all {
		seen[c.SessionID] = c.JID
	}
	if seen["tenant-a"] != "628111@s.whatsapp.net" || seen["tenant-b"] != "628222@s.whatsapp.net" {
		t.Errorf("unexpected entries: %v", seen)
	}
}

func TestListMissingDir(t *testing.T) {
	store := New("/nonexistent/credstore-test")

	all, err := store.List()
	if err != nil {
		t.Fatalf("List on missing dir: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("List on missing dir returned %d entries, want 0", len(all))
	}
}
