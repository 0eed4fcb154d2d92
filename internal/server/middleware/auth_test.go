package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"searchuser-api/internal/security"
)

func newAuthedHandler(tokens *security.TokenProvider) (http.Handler, *string) {
	var gotSubject string
	h := Auth(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, _ := GetSubject(r.Context())
		gotSubject = subject
		w.WriteHeader(http.StatusOK)
	}))
	return h, &gotSubject
}

func TestAuth_ValidToken(t *testing.T) {
	tokens := security.NewTokenProvider([]byte("key"), "iss", time.Minute)
	token, _, _, err := tokens.Issue("u1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	h, gotSubject := newAuthedHandler(tokens)
	req := httptest.NewRequest(http.MethodGet, "/api/finduser/u1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if *gotSubject != "u1" {
		t.Errorf("subject = %q, want u1", *gotSubject)
	}
}

func TestAuth_MissingToken(t *testing.T) {
	tokens := security.NewTokenProvider([]byte("key"), "iss", time.Minute)
	h, _ := newAuthedHandler(tokens)

	req := httptest.NewRequest(http.MethodGet, "/api/finduser/u1", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuth_InvalidToken(t *testing.T) {
	tokens := security.NewTokenProvider([]byte("key"), "iss", time.Minute)
	h, _ := newAuthedHandler(tokens)

	req := httptest.NewRequest(http.MethodGet, "/api/finduser/u1", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestExtractBearer(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi"},
		{"bearer abc.def.ghi", "abc.def.ghi"},
		{"BEARER abc.def.ghi", "abc.def.ghi"},
		{"Basic abc", ""},
		{"Bearer", ""},
		{"", ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		if got := extractBearer(req); got != tt.want {
			t.Errorf("extractBearer(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
