// Package transport holds the ways a committed document reaches a platform
// adapter: real HTTP, a simulated network for local runs, and a scripted
// double for tests.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	familymodels "pcps/internal/family/models"
	"pcps/internal/syncengine"
	targetmodels "pcps/internal/targets/models"
)

const (
	HeaderVersion = "X-PCPS-Version"
	HeaderTarget  = "X-PCPS-Target"

	// maxDrainBytes is read from a response body so the connection can be reused.
	maxDrainBytes = 64 << 10
)

// HTTP POSTs the document as JSON. Any 2xx answer counts as delivered.
type HTTP struct {
	client    *http.Client
	signer    *Signer
	userAgent string
}

type HTTPOption func(*HTTP)

// WithClient replaces the default otelhttp-instrumented client.
func WithClient(c *http.Client) HTTPOption {
	return func(h *HTTP) {
		if c != nil {
			h.client = c
		}
	}
}

// WithSigner attaches a bearer token to every delivery.
func WithSigner(s *Signer) HTTPOption {
	return func(h *HTTP) { h.signer = s }
}

func WithUserAgent(ua string) HTTPOption {
	return func(h *HTTP) { h.userAgent = ua }
}

func NewHTTP(opts ...HTTPOption) *HTTP {
	h := &HTTP{
		client:    &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		userAgent: "pcps-sync/" + familymodels.Version,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *HTTP) Deliver(ctx context.Context, target targetmodels.Target, doc *familymodels.Document) (syncengine.Receipt, error) {
	u, err := url.Parse(target.Address)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return syncengine.Receipt{}, syncengine.NewDeliveryError(syncengine.ErrorUnreachable, target.ID, "invalid address", err)
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return syncengine.Receipt{}, syncengine.NewDeliveryError(syncengine.ErrorInternal, target.ID, "encode document", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return syncengine.Receipt{}, syncengine.NewDeliveryError(syncengine.ErrorInternal, target.ID, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", h.userAgent)
	req.Header.Set(HeaderVersion, doc.PCPSVersion)
	req.Header.Set(HeaderTarget, target.ID)
	if h.signer != nil {
		token, err := h.signer.Sign(target.ID, doc.FamilyID)
		if err != nil {
			return syncengine.Receipt{}, syncengine.NewDeliveryError(syncengine.ErrorInternal, target.ID, "sign request", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return syncengine.Receipt{}, syncengine.NewDeliveryError(syncengine.ErrorTimeout, target.ID, "timed out", err)
		}
		return syncengine.Receipt{}, syncengine.NewDeliveryError(syncengine.ErrorUnreachable, target.ID, "unreachable", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return syncengine.Receipt{}, syncengine.Rejected(target.ID, resp.StatusCode)
	}
	return syncengine.Receipt{StatusCode: resp.StatusCode}, nil
}

// String is used in startup logs.
func (h *HTTP) String() string {
	return fmt.Sprintf("http(signed=%t)", h.signer != nil)
}
