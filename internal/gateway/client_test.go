package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vinscan-service/internal/domain/vehicle"
)

func newRelay(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL)
}

func extract(t *testing.T, c *Client) (*vehicle.RecognitionResult, error) {
	t.Helper()
	return c.Extract(context.Background(), "aW1n", vehicle.ModeVIN, vehicle.BusinessUsed, "image/jpeg")
}

func TestExtractSendsWireRequest(t *testing.T) {
	var req vehicle.ScanRequest
	client := newRelay(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/scan", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"vin":"VF1RFB00066666666","make":"RENAULT"}`))
	})

	result, err := extract(t, client)
	require.NoError(t, err)
	assert.Equal(t, "VF1RFB00066666666", result.VIN)
	assert.Equal(t, "RENAULT", result.Make)

	assert.Equal(t, "aW1n", req.Image)
	assert.Equal(t, "vin", req.Mode)
	assert.Equal(t, "VO", req.BusinessType)
	assert.Equal(t, "image/jpeg", req.MimeType)
}

func TestExtractPayloadTooLargeIsFixedMessage(t *testing.T) {
	client := newRelay(t, func(w http.ResponseWriter, r *http.Request) {
		// Body content must not matter for 413.
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		w.Write([]byte(`{"error":"something else entirely"}`))
	})

	_, err := extract(t, client)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRecognition)
	assert.Equal(t, MsgImageTooLarge, Message(err))
}

func TestExtractJSONErrorBodyIsSurfaced(t *testing.T) {
	client := newRelay(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Clé API Gemini manquante. Configurez API_KEY."}`))
	})

	_, err := extract(t, client)
	require.Error(t, err)
	assert.Equal(t, "Clé API Gemini manquante. Configurez API_KEY.", Message(err))
}

func TestExtractJSONBodyWithoutErrorField(t *testing.T) {
	client := newRelay(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{}`))
	})

	_, err := extract(t, client)
	require.Error(t, err)
	assert.Equal(t, "Erreur serveur (502)", Message(err))
}

func TestExtractNonJSONFailureIsGeneric(t *testing.T) {
	client := newRelay(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>proxy error</html>"))
	})

	_, err := extract(t, client)
	require.Error(t, err)
	assert.Equal(t, "Erreur réseau : le serveur a répondu 502.", Message(err))
}

func TestMessageSurvivesRewrapping(t *testing.T) {
	client := newRelay(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusRequestEntityTooLarge)
	})

	_, err := extract(t, client)
	require.Error(t, err)

	wrapped := fmt.Errorf("scan failed: %w", err)
	assert.ErrorIs(t, wrapped, ErrRecognition)
	assert.Equal(t, MsgImageTooLarge, Message(wrapped))
}

func TestExtractEmptyBodyIsSuccess(t *testing.T) {
	// 200 with {} (no vin) is a normal call; the caller detects the
	// missing vin as a soft failure.
	client := newRelay(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	})

	result, err := extract(t, client)
	require.NoError(t, err)
	assert.Empty(t, result.VIN)
	assert.Empty(t, result.Error)
}

func TestExtractSoftErrorPassesThrough(t *testing.T) {
	client := newRelay(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error":"Impossible de lire les données. Image floue ou reflet ?"}`))
	})

	result, err := extract(t, client)
	require.NoError(t, err, "a soft error is displayed, not thrown")
	assert.Equal(t, "Impossible de lire les données. Image floue ou reflet ?", result.Error)
}
