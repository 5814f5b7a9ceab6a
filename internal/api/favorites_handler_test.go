package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memFavoriteStore is an in-memory store.FavoriteStore for handler tests.
type memFavoriteStore struct {
	mu      sync.Mutex
	entries []favoriteEntry
}

type favoriteEntry struct {
	ownerID string
	prompt  string
}

func (s *memFavoriteStore) Add(ctx context.Context, ownerID, prompt string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.ownerID == ownerID && e.prompt == prompt {
			return nil
		}
	}
	s.entries = append(s.entries, favoriteEntry{ownerID: ownerID, prompt: prompt})
	return nil
}

func (s *memFavoriteStore) Remove(ctx context.Context, ownerID, prompt string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.ownerID == ownerID && e.prompt == prompt {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *memFavoriteStore) ListByOwner(ctx context.Context, ownerID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []string{}
	// Newest first, matching the durable store's ordering.
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].ownerID == ownerID {
			out = append(out, s.entries[i].prompt)
		}
	}
	return out, nil
}

func favoritesRequest(t *testing.T, handler http.HandlerFunc, method, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, "/api/favorites", reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []string {
	t.Helper()
	var prompts []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &prompts))
	return prompts
}

func TestAddFavoriteReturnsList(t *testing.T) {
	store := &memFavoriteStore{}
	h := NewFavoritesHandler(store)

	rec := favoritesRequest(t, h.AddFavorite, http.MethodPost,
		`{"userId":"user-1","prompt":"a lighthouse at dusk"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"a lighthouse at dusk"}, decodeList(t, rec))

	rec = favoritesRequest(t, h.AddFavorite, http.MethodPost,
		`{"userId":"user-1","prompt":"a red fox"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"a red fox", "a lighthouse at dusk"}, decodeList(t, rec))
}

func TestAddFavoriteIdempotent(t *testing.T) {
	store := &memFavoriteStore{}
	h := NewFavoritesHandler(store)

	body := `{"userId":"user-1","prompt":"a lighthouse at dusk"}`
	for i := 0; i < 3; i++ {
		rec := favoritesRequest(t, h.AddFavorite, http.MethodPost, body)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"a lighthouse at dusk"}, decodeList(t, rec))
	}
}

func TestRemoveFavorite(t *testing.T) {
	store := &memFavoriteStore{}
	require.NoError(t, store.Add(context.Background(), "user-1", "a lighthouse at dusk"))
	require.NoError(t, store.Add(context.Background(), "user-1", "a red fox"))
	h := NewFavoritesHandler(store)

	rec := favoritesRequest(t, h.RemoveFavorite, http.MethodDelete,
		`{"userId":"user-1","prompt":"a red fox"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"a lighthouse at dusk"}, decodeList(t, rec))

	// Removing an absent prompt is a no-op.
	rec = favoritesRequest(t, h.RemoveFavorite, http.MethodDelete,
		`{"userId":"user-1","prompt":"never saved"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"a lighthouse at dusk"}, decodeList(t, rec))
}

func TestListFavorites(t *testing.T) {
	store := &memFavoriteStore{}
	require.NoError(t, store.Add(context.Background(), "user-1", "a lighthouse at dusk"))
	require.NoError(t, store.Add(context.Background(), "user-2", "someone else's prompt"))
	h := NewFavoritesHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/api/favorites?userId=user-1", nil)
	rec := httptest.NewRecorder()
	h.ListFavorites(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"a lighthouse at dusk"}, decodeList(t, rec))
}

func TestListFavoritesWithoutUserID(t *testing.T) {
	h := NewFavoritesHandler(&memFavoriteStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/favorites", nil)
	rec := httptest.NewRecorder()
	h.ListFavorites(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeList(t, rec))
}

func TestFavoriteMutationsValidatePayload(t *testing.T) {
	h := NewFavoritesHandler(&memFavoriteStore{})

	tests := []struct {
		name string
		body string
	}{
		{"missing userId", `{"prompt":"a cat"}`},
		{"missing prompt", `{"userId":"user-1"}`},
		{"empty prompt", `{"userId":"user-1","prompt":""}`},
		{"malformed JSON", `{not-json`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := favoritesRequest(t, h.AddFavorite, http.MethodPost, tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
