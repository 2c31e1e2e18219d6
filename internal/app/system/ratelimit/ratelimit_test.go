package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiter_AllowUpToLimit(t *testing.T) {
	l := New(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !l.Allow("k") {
			t.Fatalf("request %d unexpectedly blocked", i+1)
		}
	}
	if l.Allow("k") {
		t.Error("expected request over the limit to be blocked")
	}
}

func TestLimiter_KeysIndependent(t *testing.T) {
	l := New(1, time.Minute)

	if !l.Allow("a") {
		t.Fatal("first request for a blocked")
	}
	if !l.Allow("b") {
		t.Error("request for b blocked by a's window")
	}
}

func TestLimiter_Reset(t *testing.T) {
	l := New(1, time.Minute)

	if !l.Allow("k") {
		t.Fatal("first request blocked")
	}
	if l.Allow("k") {
		t.Fatal("expected second request blocked")
	}
	l.Reset("k")
	if !l.Allow("k") {
		t.Error("expected request allowed after reset")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xri        string
		want       string
	}{
		{"remote addr with port", "10.0.0.1:1234", "", "", "10.0.0.1"},
		{"x-forwarded-for wins", "10.0.0.1:1234", "203.0.113.9, 10.0.0.2", "", "203.0.113.9"},
		{"x-real-ip fallback", "10.0.0.1:1234", "", "203.0.113.7", "203.0.113.7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/users/login", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoginLimiter_IdentifierLimit(t *testing.T) {
	ll := NewLoginLimiter()
	r := httptest.NewRequest("POST", "/users/login", nil)
	r.RemoteAddr = "10.0.0.1:1234"

	for i := 0; i < 5; i++ {
		ok, _ := ll.Check(r, "alice@example.com")
		if !ok {
			t.Fatalf("attempt %d unexpectedly blocked", i+1)
		}
	}
	ok, msg := ll.Check(r, "alice@example.com")
	if ok {
		t.Error("expected sixth attempt for the same account to be blocked")
	}
	if msg == "" {
		t.Error("expected a block message")
	}

	ll.ResetIdentifier("ALICE@example.com")
	if ok, _ := ll.Check(r, "alice@example.com"); !ok {
		t.Error("expected attempt allowed after reset")
	}
}
