package album

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/pastforward-api/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewHTTPAssembler(t *testing.T) {
	t.Parallel()

	_, err := NewHTTPAssembler(nil, "https://compositor.example.com")
	assert.Error(t, err)

	_, err = NewHTTPAssembler(testLogger(), "")
	assert.Error(t, err)

	a, err := NewHTTPAssembler(testLogger(), "https://compositor.example.com")
	require.NoError(t, err)
	assert.NotNil(t, a)
}

func TestCreateAlbum(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	images := map[domain.Decade]string{
		domain.Decade1950s: "data:image/png;base64,ZmlmdGllcw==",
		domain.Decade1960s: "data:image/png;base64,c2l4dGllcw==",
	}

	t.Run("posts the mapping and returns the artifact", func(t *testing.T) {
		t.Parallel()
		var got compositorRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Header().Set("Content-Type", "image/jpeg")
			_, _ = w.Write([]byte("album-bytes"))
		}))
		defer server.Close()

		a, err := NewHTTPAssembler(testLogger(), server.URL)
		require.NoError(t, err)

		artifact, err := a.CreateAlbum(ctx, images)
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", artifact.ContentType)
		assert.Equal(t, []byte("album-bytes"), artifact.Data)
		assert.Equal(t, images, got.Images)
	})

	t.Run("defaults the content type", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header()["Content-Type"] = nil
			_, _ = w.Write([]byte("album-bytes"))
		}))
		defer server.Close()

		a, err := NewHTTPAssembler(testLogger(), server.URL)
		require.NoError(t, err)

		artifact, err := a.CreateAlbum(ctx, images)
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", artifact.ContentType)
	})

	t.Run("fails on a non-200 response", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		a, err := NewHTTPAssembler(testLogger(), server.URL)
		require.NoError(t, err)

		_, err = a.CreateAlbum(ctx, images)
		assert.ErrorIs(t, err, ErrAlbumFailed)
	})

	t.Run("fails on an empty body", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		defer server.Close()

		a, err := NewHTTPAssembler(testLogger(), server.URL)
		require.NoError(t, err)

		_, err = a.CreateAlbum(ctx, images)
		assert.ErrorIs(t, err, ErrAlbumFailed)
	})

	t.Run("rejects an empty mapping", func(t *testing.T) {
		t.Parallel()
		a, err := NewHTTPAssembler(testLogger(), "https://compositor.example.com")
		require.NoError(t, err)

		_, err = a.CreateAlbum(ctx, nil)
		assert.ErrorIs(t, err, ErrAlbumFailed)
	})
}
