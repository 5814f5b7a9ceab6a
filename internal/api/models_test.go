package api

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileName(t *testing.T) {
	tests := []struct {
		name string
		req  GenerateRequest
		want string
	}{
		{"explicit profile wins", GenerateRequest{Profile: "nano-pro", Model: "base"}, "nano-pro"},
		{
			"images imply edit",
			GenerateRequest{Images: []ImagePayload{{Data: []byte("x")}}},
			"edit",
		},
		{
			"explicit profile beats images",
			GenerateRequest{Profile: "base", Images: []ImagePayload{{Data: []byte("x")}}},
			"base",
		},
		{"legacy model selector", GenerateRequest{Model: "nano"}, "nano"},
		{"default", GenerateRequest{}, "base"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.req.ProfileName())
		})
	}
}

func TestImagePayloadUnmarshalDataURI(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("fake-jpeg-bytes"))
	raw := `"data:image/jpeg;base64,` + encoded + `"`

	var p ImagePayload
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	assert.Equal(t, []byte("fake-jpeg-bytes"), p.Data)
	assert.Equal(t, "image/jpeg", p.MimeType)
}

func TestImagePayloadUnmarshalBareBase64(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("fake-png-bytes"))
	raw := `"` + encoded + `"`

	var p ImagePayload
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	assert.Equal(t, []byte("fake-png-bytes"), p.Data)
	assert.Equal(t, "image/png", p.MimeType)
}

func TestImagePayloadUnmarshalObject(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("fake-jpeg-bytes"))
	raw := `{"data":"` + encoded + `","mimeType":"image/jpeg"}`

	var p ImagePayload
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	assert.Equal(t, []byte("fake-jpeg-bytes"), p.Data)
	assert.Equal(t, "image/jpeg", p.MimeType)
}

func TestImagePayloadUnmarshalInvalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"invalid base64", `"not base64!!!"`},
		{"data URI without base64 marker", `"data:image/png,rawdata"`},
		{"number", `42`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var p ImagePayload
			assert.Error(t, json.Unmarshal([]byte(tc.raw), &p))
		})
	}
}
