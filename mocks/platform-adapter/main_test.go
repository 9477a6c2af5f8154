package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newAdapter(cfg config) *adapter {
	return &adapter{cfg: cfg, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func post(t *testing.T, h http.Handler, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/family", strings.NewReader(`{"family_id":"fam-1","pcps_version":"1.1"}`))
	req.Header.Set("X-PCPS-Target", "apple")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func sign(t *testing.T, key []byte, aud string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    "pcps",
		Audience:  jwt.ClaimStrings{aud},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func TestConfiguredStatus(t *testing.T) {
	a := newAdapter(config{status: http.StatusServiceUnavailable})
	rr := post(t, a.routes(), "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
	if len(a.log) != 1 || a.log[0].FamilyID != "fam-1" {
		t.Fatalf("expected delivery to be recorded, got %+v", a.log)
	}
}

func TestTokenVerification(t *testing.T) {
	key := []byte("secret")
	a := newAdapter(config{status: http.StatusOK, signingKey: key})

	if rr := post(t, a.routes(), ""); rr.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: expected 401, got %d", rr.Code)
	}
	if rr := post(t, a.routes(), sign(t, key, "google")); rr.Code != http.StatusUnauthorized {
		t.Fatalf("wrong audience: expected 401, got %d", rr.Code)
	}
	if rr := post(t, a.routes(), sign(t, key, "apple")); rr.Code != http.StatusOK {
		t.Fatalf("valid token: expected 200, got %d", rr.Code)
	}
}
