package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xsideai/pixgen-api/internal/api/shared"
	"github.com/xsideai/pixgen-api/internal/generation"
	"github.com/xsideai/pixgen-api/internal/job"
)

// maxReferenceImages caps how many reference images one request may stage,
// across both intake encodings.
const maxReferenceImages = 8

// multipartMemoryLimit is the in-memory buffer for multipart parsing.
const multipartMemoryLimit = 32 << 20

// acceptedImageTypes is the closed set of reference-image content types.
var acceptedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// GenerateHandler handles generation submission requests.
type GenerateHandler struct {
	submitter     *job.Submitter
	validator     *validator.Validate
	maxImageBytes int
}

// NewGenerateHandler creates a new GenerateHandler. maxImageBytes caps the
// size of a single reference image.
func NewGenerateHandler(submitter *job.Submitter, maxImageBytes int) *GenerateHandler {
	return &GenerateHandler{
		submitter:     submitter,
		validator:     validator.New(),
		maxImageBytes: maxImageBytes,
	}
}

// Generate handles POST /api/generate requests. Accepts either a JSON body
// with inline base64 images or a multipart form with file parts named
// "images".
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	var err error

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		req, err = h.parseMultipart(r)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
			return
		}
	} else {
		if err := shared.DecodeJSON(r, &req); err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
			return
		}
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Missing or invalid prompt")
		return
	}

	if err := h.checkImages(req.Images); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	images := make([]job.StagedImage, 0, len(req.Images))
	for _, img := range req.Images {
		images = append(images, job.StagedImage{Data: img.Data, Mime: img.MimeType})
	}

	jobID, err := h.submitter.Submit(r.Context(), job.SubmitInput{
		OwnerID: req.UserID,
		Prompt:  req.Prompt,
		Profile: req.ProfileName(),
		Quality: generation.Quality(req.Quality),
		Aspect:  req.Aspect,
		Format:  req.Format,
		Images:  images,
	})
	if err != nil {
		slog.Error("Failed to submit generation job", "error", err, "user_id", req.UserID)
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, GenerateResponse{TaskID: jobID})
}

// parseMultipart reads a multipart generation request: scalar fields as
// form values, reference images as file parts named "images".
func (h *GenerateHandler) parseMultipart(r *http.Request) (GenerateRequest, error) {
	var req GenerateRequest

	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		return req, fmt.Errorf("invalid multipart form: %w", err)
	}

	req.Prompt = r.FormValue("prompt")
	req.Profile = r.FormValue("profile")
	req.Model = r.FormValue("model")
	req.UserID = r.FormValue("userId")
	req.Quality = r.FormValue("quality")
	req.Aspect = r.FormValue("aspect")
	req.Format = r.FormValue("format")

	files := r.MultipartForm.File["images"]
	if len(files) > maxReferenceImages {
		files = files[:maxReferenceImages]
	}

	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			return req, fmt.Errorf("failed to open uploaded image: %w", err)
		}

		// Read one byte past the cap so oversized uploads are detected
		// without buffering them whole.
		data, err := io.ReadAll(io.LimitReader(file, int64(h.maxImageBytes)+1))
		if closeErr := file.Close(); closeErr != nil {
			slog.Warn("failed to close uploaded file", "error", closeErr)
		}
		if err != nil {
			return req, fmt.Errorf("failed to read uploaded image: %w", err)
		}

		mime := header.Header.Get("Content-Type")
		if mime == "" {
			mime = "image/png"
		}

		req.Images = append(req.Images, ImagePayload{Data: data, MimeType: mime})
	}

	return req, nil
}

// checkImages enforces the per-image size and content-type limits. Counts
// against the profile's rules are the submitter's job.
func (h *GenerateHandler) checkImages(images []ImagePayload) error {
	if len(images) > maxReferenceImages {
		return fmt.Errorf("at most %d reference images are accepted", maxReferenceImages)
	}
	for _, img := range images {
		if len(img.Data) > h.maxImageBytes {
			return fmt.Errorf("reference image exceeds %d byte limit", h.maxImageBytes)
		}
		if !acceptedImageTypes[img.MimeType] {
			return fmt.Errorf("unsupported image type %q", img.MimeType)
		}
	}
	return nil
}
