package embedding

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHTTPEmbedNormalizesVector(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "audio/wav", r.Header.Get("Content-Type"))
		json.NewEncoder(w).Encode(embedResponse{Embedding: []float32{3, 0, 4}})
	}))
	defer srv.Close()

	got, err := NewHTTP(srv.URL, 3, time.Second).Embed(context.Background(), make([]int16, 16000))
	require.NoError(t, err)
	require.False(t, got.Degraded)

	var norm float64
	for _, v := range got.Vector {
		norm += float64(v) * float64(v)
	}
	require.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)
	require.InDelta(t, 0.6, got.Vector[0], 1e-5)
	require.InDelta(t, 0.8, got.Vector[2], 1e-5)
}

func TestHTTPEmbedRejectsWrongDimensions(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embedResponse{Embedding: []float32{1, 2}})
	}))
	defer srv.Close()

	_, err := NewHTTP(srv.URL, 192, time.Second).Embed(context.Background(), make([]int16, 16000))
	require.Error(t, err)
	require.Contains(t, err.Error(), "192")
	require.NotErrorIs(t, err, ErrUnavailable)
}

func TestHTTPEmbedServerErrorIsUnavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewHTTP(srv.URL, 0, time.Second).Embed(context.Background(), make([]int16, 16000))
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPEmbedConnectionRefusedIsUnavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := NewHTTP(srv.URL, 0, time.Second).Embed(context.Background(), make([]int16, 16000))
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPEmbedHonorsContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	_, err := NewHTTP(srv.URL, 0, time.Second).Embed(ctx, make([]int16, 16000))
	require.ErrorIs(t, err, context.Canceled)
}
