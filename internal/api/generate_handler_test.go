package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xsideai/pixgen-api/internal/blob"
	"github.com/xsideai/pixgen-api/internal/job"
	"github.com/xsideai/pixgen-api/internal/worker"
)

// captureWorker records the last submit request.
type captureWorker struct {
	req       *worker.SubmitRequest
	submitErr error
}

func (w *captureWorker) Submit(ctx context.Context, req worker.SubmitRequest) (string, error) {
	w.req = &req
	if w.submitErr != nil {
		return "", w.submitErr
	}
	return "task-42", nil
}

const testMaxImageBytes = 1 << 20

func newGenerateFixture(t *testing.T) (*GenerateHandler, *captureWorker, *job.MemoryRegistry) {
	t.Helper()
	registry := job.NewMemoryRegistry()
	w := &captureWorker{}
	blobs := blob.NewStore()
	t.Cleanup(blobs.Close)
	submitter := job.NewSubmitter(registry, w, blobs, "https://pixgen.example.com", nil)
	return NewGenerateHandler(submitter, testMaxImageBytes), w, registry
}

func postJSON(t *testing.T, h *GenerateHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Generate(rec, req)
	return rec
}

func TestGenerateJSON(t *testing.T) {
	h, w, registry := newGenerateFixture(t)

	rec := postJSON(t, h, `{
		"prompt": "a lighthouse at dusk",
		"profile": "nano-2",
		"userId": "user-1",
		"quality": "4",
		"aspect": "16:9",
		"format": "png"
	}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "task-42", resp.TaskID)

	require.NotNil(t, w.req)
	assert.Equal(t, "google/nano-banana-2", w.req.Model)
	assert.Equal(t, "https://pixgen.example.com/api/callback", w.req.CallbackURL)
	assert.Equal(t, 1, registry.Len())
}

func TestGenerateJSONWithInlineImages(t *testing.T) {
	h, w, _ := newGenerateFixture(t)

	encoded := base64.StdEncoding.EncodeToString([]byte("fake-jpeg-bytes"))
	rec := postJSON(t, h, `{
		"prompt": "replace the sky",
		"userId": "user-1",
		"images": ["data:image/jpeg;base64,`+encoded+`"]
	}`)

	require.Equal(t, http.StatusOK, rec.Code)

	// Images without an explicit profile select the edit profile.
	require.NotNil(t, w.req)
	assert.Equal(t, "google/nano-banana-edit", w.req.Model)
	require.Len(t, w.req.ImageURLs, 1)
	assert.Contains(t, w.req.ImageURLs[0], "/api/image/")
}

func TestGenerateMultipart(t *testing.T) {
	h, w, _ := newGenerateFixture(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("prompt", "merge these photos"))
	require.NoError(t, mw.WriteField("userId", "user-1"))

	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="images"; filename="ref.jpg"`},
		"Content-Type":        {"image/jpeg"},
	})
	require.NoError(t, err)
	_, err = part.Write([]byte("fake-jpeg-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/generate", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.Generate(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, w.req)
	assert.Equal(t, "google/nano-banana-edit", w.req.Model)
	require.Len(t, w.req.ImageURLs, 1)
}

func TestGenerateValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing prompt", `{"userId":"user-1"}`},
		{"empty prompt", `{"prompt":"","userId":"user-1"}`},
		{"malformed JSON", `{not-json`},
		{"unknown profile", `{"prompt":"a cat","profile":"dall-e"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, w, registry := newGenerateFixture(t)

			rec := postJSON(t, h, tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Nil(t, w.req)
			assert.Equal(t, 0, registry.Len())
		})
	}
}

func TestGenerateRejectsOversizedImage(t *testing.T) {
	h, w, _ := newGenerateFixture(t)

	big := make([]byte, testMaxImageBytes+1)
	encoded := base64.StdEncoding.EncodeToString(big)
	rec := postJSON(t, h, `{
		"prompt": "edit this",
		"images": ["data:image/png;base64,`+encoded+`"]
	}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, w.req)
}

func TestGenerateRejectsUnsupportedImageType(t *testing.T) {
	h, w, _ := newGenerateFixture(t)

	encoded := base64.StdEncoding.EncodeToString([]byte("GIF89a"))
	rec := postJSON(t, h, `{
		"prompt": "edit this",
		"images": ["data:image/gif;base64,`+encoded+`"]
	}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "image/gif")
	assert.Nil(t, w.req)
}

func TestGenerateUpstreamRejection(t *testing.T) {
	registry := job.NewMemoryRegistry()
	w := &captureWorker{submitErr: &worker.UpstreamError{Code: 402, Message: "insufficient credits"}}
	blobs := blob.NewStore()
	t.Cleanup(blobs.Close)
	submitter := job.NewSubmitter(registry, w, blobs, "https://pixgen.example.com", nil)
	h := NewGenerateHandler(submitter, testMaxImageBytes)

	rec := postJSON(t, h, `{"prompt":"a cat","userId":"user-1"}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "insufficient credits")
	assert.Equal(t, 0, registry.Len())
}
