package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	familymodels "pcps/internal/family/models"
	"pcps/internal/syncengine"
	targetmodels "pcps/internal/targets/models"
)

func TestHTTPDeliver(t *testing.T) {
	key := []byte("test-signing-key")
	signer, err := NewSigner(key, time.Minute)
	require.NoError(t, err)

	var got struct {
		version, target, auth, contentType string
		doc                                familymodels.Document
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.version = r.Header.Get(HeaderVersion)
		got.target = r.Header.Get(HeaderTarget)
		got.auth = r.Header.Get("Authorization")
		got.contentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&got.doc)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	doc := familymodels.Example()
	tr := NewHTTP(WithClient(srv.Client()), WithSigner(signer))
	receipt, err := tr.Deliver(context.Background(), targetmodels.Target{ID: "apple", Address: srv.URL + "/v1/family", Enabled: true}, doc)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, receipt.StatusCode)
	assert.Equal(t, familymodels.Version, got.version)
	assert.Equal(t, "apple", got.target)
	assert.Equal(t, "application/json", got.contentType)
	assert.Equal(t, doc.FamilyID, got.doc.FamilyID)
	assert.Equal(t, doc.Children[0].Policy, got.doc.Children[0].Policy)

	require.True(t, strings.HasPrefix(got.auth, "Bearer "))
	claims, err := Verify(key, strings.TrimPrefix(got.auth, "Bearer "), "apple")
	require.NoError(t, err)
	assert.Equal(t, doc.FamilyID, claims.Subject)
	assert.Equal(t, Issuer, claims.Issuer)

	_, err = Verify(key, strings.TrimPrefix(got.auth, "Bearer "), "google")
	assert.Error(t, err, "token is scoped to one target")
}

func TestHTTPDeliverFailures(t *testing.T) {
	doc := familymodels.Example()

	t.Run("non-2xx is rejected", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := NewHTTP(WithClient(srv.Client())).Deliver(context.Background(), targetmodels.Target{ID: "a", Address: srv.URL}, doc)
		var de *syncengine.DeliveryError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, syncengine.ErrorRejected, de.Category)
		assert.Equal(t, http.StatusServiceUnavailable, de.StatusCode)
	})

	t.Run("closed server is unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		addr := srv.URL
		srv.Close()

		_, err := NewHTTP().Deliver(context.Background(), targetmodels.Target{ID: "a", Address: addr}, doc)
		assert.Equal(t, syncengine.ErrorUnreachable, syncengine.CategoryOf(err))
	})

	t.Run("bad address is unreachable", func(t *testing.T) {
		for _, addr := range []string{"not a url", "ftp://files.example", "https://"} {
			_, err := NewHTTP().Deliver(context.Background(), targetmodels.Target{ID: "a", Address: addr}, doc)
			assert.Equal(t, syncengine.ErrorUnreachable, syncengine.CategoryOf(err), addr)
		}
	})

	t.Run("deadline is a timeout", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, err := NewHTTP(WithClient(srv.Client())).Deliver(ctx, targetmodels.Target{ID: "a", Address: srv.URL}, doc)
		assert.Equal(t, syncengine.ErrorTimeout, syncengine.CategoryOf(err))
	})
}

func TestNewSignerRequiresKey(t *testing.T) {
	_, err := NewSigner(nil, time.Minute)
	require.Error(t, err)
}

func TestSimulated(t *testing.T) {
	tr := NewSimulated(0, "https://down")
	doc := familymodels.Example()

	receipt, err := tr.Deliver(context.Background(), targetmodels.Target{ID: "a", Address: "https://up"}, doc)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, receipt.StatusCode)

	_, err = tr.Deliver(context.Background(), targetmodels.Target{ID: "b", Address: "https://down"}, doc)
	assert.Equal(t, syncengine.ErrorRejected, syncengine.CategoryOf(err))

	slow := NewSimulated(time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = slow.Deliver(ctx, targetmodels.Target{ID: "c", Address: "https://up"}, doc)
	assert.Equal(t, syncengine.ErrorTimeout, syncengine.CategoryOf(err))
}
