// Command platform-adapter is a stand-in for a vendor adapter. It accepts
// family documents on POST /v1/family and answers with a configurable status
// so local end-to-end runs can exercise delivered, rejected and timed-out
// outcomes.
package main

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type config struct {
	addr       string
	status     int
	delay      time.Duration
	signingKey []byte
	targetID   string
}

func configFromEnv() config {
	cfg := config{
		addr:       envOr("ADAPTER_ADDR", ":9090"),
		status:     http.StatusOK,
		signingKey: []byte(os.Getenv("ADAPTER_SIGNING_KEY")),
		targetID:   os.Getenv("ADAPTER_TARGET_ID"),
	}
	if v, err := strconv.Atoi(os.Getenv("ADAPTER_STATUS")); err == nil {
		cfg.status = v
	}
	if v, err := time.ParseDuration(os.Getenv("ADAPTER_DELAY")); err == nil {
		cfg.delay = v
	}
	return cfg
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

type received struct {
	FamilyID   string    `json:"family_id"`
	Version    string    `json:"pcps_version"`
	Target     string    `json:"target"`
	ReceivedAt time.Time `json:"received_at"`
}

type adapter struct {
	cfg    config
	logger *slog.Logger

	mu  sync.Mutex
	log []received
}

func (a *adapter) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/family", a.handleFamily)
	mux.HandleFunc("GET /v1/received", a.handleReceived)
	return mux
}

func (a *adapter) handleFamily(w http.ResponseWriter, r *http.Request) {
	target := r.Header.Get("X-PCPS-Target")
	if len(a.cfg.signingKey) > 0 {
		if err := a.verify(r.Header.Get("Authorization"), target); err != nil {
			a.logger.Warn("rejected token", "target", target, "error", err)
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
	}

	var doc struct {
		FamilyID string `json:"family_id"`
		Version  string `json:"pcps_version"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&doc); err != nil {
		http.Error(w, "invalid document", http.StatusBadRequest)
		return
	}

	if a.cfg.delay > 0 {
		select {
		case <-time.After(a.cfg.delay):
		case <-r.Context().Done():
			return
		}
	}

	a.mu.Lock()
	a.log = append(a.log, received{FamilyID: doc.FamilyID, Version: doc.Version, Target: target, ReceivedAt: time.Now().UTC()})
	a.mu.Unlock()

	a.logger.Info("document received", "family_id", doc.FamilyID, "target", target, "status", a.cfg.status)
	w.WriteHeader(a.cfg.status)
}

func (a *adapter) handleReceived(w http.ResponseWriter, _ *http.Request) {
	a.mu.Lock()
	out := append([]received(nil), a.log...)
	a.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (a *adapter) verify(header, target string) error {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return errors.New("missing bearer token")
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer("pcps"),
		jwt.WithExpirationRequired(),
	}
	aud := a.cfg.targetID
	if aud == "" {
		aud = target
	}
	if aud != "" {
		opts = append(opts, jwt.WithAudience(aud))
	}
	_, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(*jwt.Token) (any, error) {
		return a.cfg.signingKey, nil
	}, opts...)
	return err
}

func main() {
	cfg := configFromEnv()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	a := &adapter{cfg: cfg, logger: logger}

	srv := &http.Server{
		Addr:              cfg.addr,
		Handler:           a.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info("platform adapter listening", "addr", cfg.addr, "status", cfg.status, "delay", cfg.delay)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
