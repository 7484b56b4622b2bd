package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gowa-relay/config"
)

func TestNotifyDeliversSignedPayload(t *testing.T) {
	type received struct {
		body      []byte
		signature string
	}
	got := make(chan received, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got <- received{body: body, signature: r.Header.Get("X-Gateway-Signature")}
	}))
	defer srv.Close()

	cfg := &config.Config{EnableWebhook: true}
	instances := newFakeInstances()
	instances.SetWebhook("default", srv.URL, "topsecret")

	n := NewNotifier(cfg, instances)
	n.Notify("default", "incoming_message", map[string]interface{}{"body": "hi"})

	var rec received
	select {
	case rec = <-got:
	case <-time.After(3 * time.Second):
		t.Fatal("webhook never delivered")
	}

	var payload WebhookPayload
	if err := json.Unmarshal(rec.body, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Event != "incoming_message" {
		t.Errorf("Event = %q", payload.Event)
	}
	if payload.SessionID != "default" {
		t.Errorf("SessionID = %q", payload.SessionID)
	}
	if payload.ID == "" {
		t.Error("payload ID is empty")
	}
	if payload.Timestamp.IsZero() {
		t.Error("payload Timestamp is zero")
	}

	mac := hmac.New(sha256.New, []byte("topsecret"))
	mac.Write(rec.body)
	want := hex.EncodeToString(mac.Sum(nil))
	if rec.signature != want {
		t.Errorf("signature = %q, want %q", rec.signature, want)
	}
}

func TestNotifyNoSignatureWithoutSecret(t *testing.T) {
	got := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got <- r.Header.Get("X-Gateway-Signature")
	}))
	defer srv.Close()

	cfg := &config.Config{EnableWebhook: true}
	instances := newFakeInstances()
	instances.SetWebhook("default", srv.URL, "")

	n := NewNotifier(cfg, instances)
	n.Notify("default", "message_status", nil)

	select {
	case sig := <-got:
		if sig != "" {
			t.Errorf("unexpected signature header %q", sig)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("webhook never delivered")
	}
}

func TestNotifyNoURLIsNoop(t *testing.T) {
	cfg := &config.Config{EnableWebhook: true}
	n := NewNotifier(cfg, newFakeInstances())

	// Tanpa URL, Notify harus return tanpa side effect.
	n.Notify("default", "incoming_message", nil)
}

func TestNotifyDisabledIsNoop(t *testing.T) {
	hit := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
	}))
	defer srv.Close()

	cfg := &config.Config{EnableWebhook: false, WebhookURL: srv.URL}
	n := NewNotifier(cfg, newFakeInstances())
	n.Notify("default", "incoming_message", nil)

	time.Sleep(100 * time.Millisecond)
	if hit {
		t.Error("webhook delivered with feature disabled")
	}
}

func TestNotifyUnreachableEndpointDoesNotBlock(t *testing.T) {
	cfg := &config.Config{EnableWebhook: true, WebhookURL: "http://127.0.0.1:1/nope"}
	n := NewNotifier(cfg, newFakeInstances())

	done := make(chan struct{})
	go func() {
		n.Notify("default", "incoming_message", map[string]interface{}{"body": "hi"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked on an unreachable endpoint")
	}
}

func TestNotifyFallsBackToGlobalURL(t *testing.T) {
	got := make(chan struct{}, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got <- struct{}{}
	}))
	defer srv.Close()

	// Instance tidak punya config sendiri, pakai global.
	cfg := &config.Config{EnableWebhook: true, WebhookURL: srv.URL}
	n := NewNotifier(cfg, newFakeInstances())
	n.Notify("default", "connection_update", nil)

	select {
	case <-got:
	case <-time.After(3 * time.Second):
		t.Fatal("global webhook URL never used")
	}
}
