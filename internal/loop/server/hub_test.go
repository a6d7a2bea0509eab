package server

import (
	"testing"
	"time"
)

func TestRegisterAssignsUniqueIDs(t *testing.T) {
	h := NewHub(nil)
	a := h.Register("alice")
	b := h.Register("bob")

	if a.ID == b.ID {
		t.Fatalf("duplicate id %d", a.ID)
	}
	if got := h.Count(); got != 2 {
		t.Fatalf("Count() = %d, want 2", got)
	}

	h.Unregister(a.ID)
	h.Unregister(a.ID)
	h.Unregister(999)
	if got := h.Count(); got != 1 {
		t.Fatalf("Count() after unregister = %d, want 1", got)
	}
}

func TestShutdownNotifiesAndDrains(t *testing.T) {
	h := NewHub(nil)
	handle := h.Register("carol")

	go func() {
		ev := <-handle.EventsCh
		if ev.Type == EventServerShutdown {
			h.Unregister(handle.ID)
		}
	}()

	if !h.Shutdown(5 * time.Second) {
		t.Fatalf("Shutdown reported a timeout with no clients left")
	}
	if got := h.Count(); got != 0 {
		t.Fatalf("Count() = %d, want 0", got)
	}
}

func TestShutdownTimesOut(t *testing.T) {
	h := NewHub(nil)
	h.Register("dave")

	start := time.Now()
	if h.Shutdown(300 * time.Millisecond) {
		t.Fatalf("Shutdown reported success with a client still connected")
	}
	if elapsed := time.Since(start); elapsed < 300*time.Millisecond {
		t.Fatalf("Shutdown returned after %v, before the timeout", elapsed)
	}
}

func TestShutdownWithoutClients(t *testing.T) {
	h := NewHub(nil)
	if !h.Shutdown(time.Minute) {
		t.Fatalf("empty hub should drain immediately")
	}
}
