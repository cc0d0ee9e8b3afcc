package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Envelope mirrors the JSON body every API response is wrapped in. Data is
// kept raw so callers can decode it into their own response type.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id"`
		Details   []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"details"`
	} `json:"error"`
	Meta *struct {
		Total      int64 `json:"total"`
		Page       int   `json:"page"`
		PageSize   int   `json:"page_size"`
		TotalPages int   `json:"total_pages"`
	} `json:"meta"`
}

// ToJSONReader converts a value to a JSON io.Reader.
func ToJSONReader(t *testing.T, v any) io.Reader {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err, "Failed to marshal to JSON")
	return bytes.NewReader(data)
}

// NewJSONRequest builds a request with body encoded as JSON. A nil body
// sends no payload and no Content-Type.
func NewJSONRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()

	if body == nil {
		return httptest.NewRequest(method, path, nil)
	}
	req := httptest.NewRequest(method, path, ToJSONReader(t, body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewCSVUploadRequest builds a multipart POST carrying content in the "file"
// field plus any extra form fields.
func NewCSVUploadRequest(t *testing.T, path, content string, fields map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	part, err := mw.CreateFormFile("file", "data.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// DecodeEnvelope parses the response envelope and, when data is non-nil,
// decodes the payload into it.
func DecodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, data any) Envelope {
	t.Helper()

	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data), "Failed to decode response data")
	}
	return env
}

// AssertAPIError checks status and error code, and that the error carries
// the request id.
func AssertAPIError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) Envelope {
	t.Helper()

	assert.Equal(t, status, w.Code, w.Body.String())
	env := DecodeEnvelope(t, w, nil)
	assert.False(t, env.Success, "Expected success to be false")
	require.NotNil(t, env.Error, "Expected error object in response")
	assert.Equal(t, code, env.Error.Code, "Unexpected error code")
	assert.NotEmpty(t, env.Error.RequestID, "Expected request id on error")
	return env
}
