// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/trialscout/pkg/types"
)

func TestNewClientTimeout(t *testing.T) {
	tests := []struct {
		name string
		cfg  types.HTTPConfig
		want time.Duration
	}{
		{"configured timeout", types.HTTPConfig{Timeout: 5 * time.Second}, 5 * time.Second},
		{"zero falls back to default", types.HTTPConfig{}, defaultTimeout},
		{"negative falls back to default", types.HTTPConfig{Timeout: -time.Second}, defaultTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewClient(tt.cfg).Timeout)
		})
	}
}

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "trialscout-test/0.1", r.Header.Get("User-Agent"))
		w.Write([]byte(`{"value": 42}`))
	}))
	defer srv.Close()

	cfg := types.HTTPConfig{UserAgent: "trialscout-test/0.1"}
	var body struct {
		Value int `json:"value"`
	}
	err := GetJSON(context.Background(), srv.Client(), cfg, srv.URL, &body)
	require.NoError(t, err)
	assert.Equal(t, 42, body.Value)
}

func TestGetJSONNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	var body struct{}
	err := GetJSON(context.Background(), srv.Client(), types.HTTPConfig{}, srv.URL, &body)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 502")
}

func TestGetJSONMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"value": `))
	}))
	defer srv.Close()

	var body struct{}
	err := GetJSON(context.Background(), srv.Client(), types.HTTPConfig{}, srv.URL, &body)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing response")
}

func TestGetJSONContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var body struct{}
	err := GetJSON(ctx, srv.Client(), types.HTTPConfig{}, srv.URL, &body)
	require.Error(t, err)
}
