package api

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/xsideai/pixgen-api/internal/domain"
)

// Common request/response structures

// GenerateRequest defines the JSON payload for the generation endpoint.
// Multipart submissions carry the same fields as form values plus file
// parts named "images".
type GenerateRequest struct {
	Prompt  string `json:"prompt"  validate:"required,min=1"`
	Profile string `json:"profile"`

	// Model is the legacy client selector for the profile; Profile wins
	// when both are set.
	Model string `json:"model"`

	UserID  string         `json:"userId"`
	Quality string         `json:"quality"`
	Aspect  string         `json:"aspect"`
	Format  string         `json:"format"`
	Images  []ImagePayload `json:"images"`
}

// ProfileName resolves the requested profile: an explicit profile wins,
// requests carrying reference images default to the edit profile, and the
// legacy model selector covers older clients.
func (r *GenerateRequest) ProfileName() string {
	if r.Profile != "" {
		return r.Profile
	}
	if len(r.Images) > 0 {
		return "edit"
	}
	if r.Model != "" {
		return r.Model
	}
	return "base"
}

// ImagePayload is one inline reference image. Clients send either a
// data-URI string or an object {"data": "<base64>", "mimeType": "..."}.
type ImagePayload struct {
	Data     []byte
	MimeType string
}

// UnmarshalJSON accepts both inline-image encodings.
func (p *ImagePayload) UnmarshalJSON(raw []byte) error {
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		data, mime, err := decodeDataURI(asString)
		if err != nil {
			return err
		}
		p.Data = data
		p.MimeType = mime
		return nil
	}

	var asObject struct {
		Data     string `json:"data"`
		MimeType string `json:"mimeType"`
	}
	if err := json.Unmarshal(raw, &asObject); err != nil {
		return fmt.Errorf("%w: image must be a data URI or {data, mimeType} object", domain.ErrInvalidFormat)
	}

	data, mime, err := decodeDataURI(asObject.Data)
	if err != nil {
		return err
	}
	if asObject.MimeType != "" {
		mime = asObject.MimeType
	}
	p.Data = data
	p.MimeType = mime
	return nil
}

// decodeDataURI decodes base64 image content, tolerating both full
// "data:image/png;base64," URIs and bare base64 strings.
func decodeDataURI(s string) ([]byte, string, error) {
	mime := "image/png"
	if strings.HasPrefix(s, "data:") {
		sep := strings.Index(s, ";base64,")
		if sep < 0 {
			return nil, "", fmt.Errorf("%w: unsupported data URI encoding", domain.ErrInvalidFormat)
		}
		mime = s[len("data:"):sep]
		s = s[sep+len(";base64,"):]
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, "", fmt.Errorf("%w: invalid base64 image data", domain.ErrInvalidFormat)
	}
	return data, mime, nil
}

// GenerateResponse defines the successful response for the generation
// endpoint.
type GenerateResponse struct {
	TaskID string `json:"taskId"`
}

// TaskStatusResponse defines the response for the status polling endpoint.
// Repeated polls after a terminal state return the identical payload.
type TaskStatusResponse struct {
	State       string               `json:"state"`
	ResultURL   string               `json:"resultUrl,omitempty"`
	ErrorText   string               `json:"errorText,omitempty"`
	GalleryItem *GalleryItemResponse `json:"galleryItem,omitempty"`
}

// GalleryItemResponse represents one gallery entry.
type GalleryItemResponse struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Prompt    string    `json:"prompt"`
	CreatedAt time.Time `json:"createdAt"`
}

// galleryItemToDTO converts a domain.GalleryItem to its response form.
func galleryItemToDTO(item *domain.GalleryItem) *GalleryItemResponse {
	if item == nil {
		return nil
	}
	return &GalleryItemResponse{
		ID:        item.ID.String(),
		URL:       item.URL,
		Prompt:    item.Prompt,
		CreatedAt: item.CreatedAt,
	}
}

// jobResultToDTO converts a domain.JobResult to the polling response.
func jobResultToDTO(result *domain.JobResult) TaskStatusResponse {
	return TaskStatusResponse{
		State:       string(result.State),
		ResultURL:   result.ResultURL,
		ErrorText:   result.ErrorText,
		GalleryItem: galleryItemToDTO(result.GalleryItem),
	}
}

// CallbackRequest is the completion-notice payload delivered by the
// external worker's webhook.
type CallbackRequest struct {
	Code int           `json:"code"`
	Msg  string        `json:"msg"`
	Data *CallbackData `json:"data"`
}

// CallbackData is the job-specific portion of a completion notice.
type CallbackData struct {
	TaskID     string `json:"taskId"`
	State      string `json:"state"`
	ResultJSON string `json:"resultJson"`
	FailMsg    string `json:"failMsg"`
}

// FavoriteRequest defines the payload for favorite add/remove endpoints.
type FavoriteRequest struct {
	UserID string `json:"userId" validate:"required"`
	Prompt string `json:"prompt" validate:"required,min=1"`
}
