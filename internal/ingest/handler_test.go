package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookpulse/bookpulse/internal/shared"
)

type stubBooks struct {
	ownedBy uuid.UUID
}

func (s *stubBooks) BookOwnedBy(_ context.Context, _, userID uuid.UUID) error {
	if userID != s.ownedBy {
		return shared.ErrNotFound
	}
	return nil
}

type recordingEnqueuer struct {
	calls int
}

func (r *recordingEnqueuer) EnqueueWarmup(context.Context, uuid.UUID) error {
	r.calls++
	return nil
}

type uploadEnv struct {
	router   chi.Router
	userID   uuid.UUID
	bookID   uuid.UUID
	store    *mockStore
	enqueuer *recordingEnqueuer
}

func newUploadEnv(t *testing.T) *uploadEnv {
	t.Helper()
	env := &uploadEnv{
		userID:   uuid.New(),
		bookID:   uuid.New(),
		store:    &mockStore{},
		enqueuer: &recordingEnqueuer{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(logger, NewIngestor(env.store, logger), &stubBooks{ownedBy: env.userID}, nil, env.enqueuer, 1<<20)

	env.router = chi.NewRouter()
	env.router.Group(handler.MountRoutes)
	return env
}

func (env *uploadEnv) upload(t *testing.T, userID uuid.UUID, bookID, platform, filename, body string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if bookID != "" {
		require.NoError(t, mw.WriteField("bookId", bookID))
	}
	if platform != "" {
		require.NoError(t, mw.WriteField("platform", platform))
	}
	if filename != "" {
		part, err := mw.CreateFormFile("csvFile", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/csv", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = req.WithContext(shared.ContextWithUser(req.Context(), userID))

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestUploadCSVSuccess(t *testing.T) {
	env := newUploadEnv(t)
	rec := env.upload(t, env.userID, env.bookID.String(), "Amazon KDP", "sales.csv",
		"date,units,revenue,royalty\n2024-01-15,5,24.99,8.75\n2024-01-20,3,14.99,5.25\n")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	summary := body["summary"].(map[string]any)
	assert.Equal(t, float64(2), summary["totalRows"])
	assert.Equal(t, float64(2), summary["createdSales"])
	assert.Equal(t, float64(0), summary["errorCount"])
	_, hasErrors := body["errors"]
	assert.False(t, hasErrors, "clean batches omit the errors key")
	assert.Equal(t, 1, env.enqueuer.calls)
}

func TestUploadCSVPartialFailure(t *testing.T) {
	env := newUploadEnv(t)
	rec := env.upload(t, env.userID, env.bookID.String(), "Kobo", "sales.csv",
		"date,units\n2024-01-15,5\nnot-a-date,2\n")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	summary := body["summary"].(map[string]any)
	assert.Equal(t, float64(2), summary["totalRows"])
	assert.Equal(t, float64(1), summary["createdSales"])
	assert.Equal(t, float64(1), summary["errorCount"])
	assert.Len(t, body["errors"], 1)
}

func TestUploadCSVEmptyBatch(t *testing.T) {
	env := newUploadEnv(t)
	rec := env.upload(t, env.userID, env.bookID.String(), "Kobo", "sales.csv",
		"date,units\nbad,1\nworse,2\n")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "No valid sales data found in CSV file", body["message"])
	assert.Len(t, body["errors"], 2)
	assert.Zero(t, env.enqueuer.calls)
}

func TestUploadCSVUnownedBook(t *testing.T) {
	env := newUploadEnv(t)
	rec := env.upload(t, uuid.New(), env.bookID.String(), "Kobo", "sales.csv",
		"date\n2024-01-15\n")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, env.store.created, "no row may be read before ownership passes")
}

func TestUploadCSVMissingFields(t *testing.T) {
	env := newUploadEnv(t)

	rec := env.upload(t, env.userID, "", "Kobo", "sales.csv", "date\n2024-01-15\n")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.upload(t, env.userID, env.bookID.String(), "", "sales.csv", "date\n2024-01-15\n")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.upload(t, env.userID, env.bookID.String(), "Kobo", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadCSVWrongExtension(t *testing.T) {
	env := newUploadEnv(t)
	rec := env.upload(t, env.userID, env.bookID.String(), "Kobo", "sales.xlsx", "date\n2024-01-15\n")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTemplateEndpoint(t *testing.T) {
	env := newUploadEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/template", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "date,units,revenue,royalty\n")
}

func TestPlatformsEndpoint(t *testing.T) {
	env := newUploadEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/platforms", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	platforms := body["platforms"].([]any)
	assert.Len(t, platforms, len(Platforms))
	assert.Equal(t, "Amazon KDP", platforms[0])
}