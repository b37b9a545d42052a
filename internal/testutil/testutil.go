// Package testutil holds request builders shared by handler tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"

	"booklib/internal/auth"
	"booklib/internal/httpx"
)

// NewJSONRequest builds a request with body marshaled as JSON. A nil body
// produces a request with no body.
func NewJSONRequest(method, path string, body any) *http.Request {
	if body == nil {
		return httptest.NewRequest(method, path, nil)
	}
	data, _ := json.Marshal(body)
	r := httptest.NewRequest(method, path, bytes.NewReader(data))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// WithSession attaches session claims to the request, the way the session
// middleware would after validating a cookie.
func WithSession(r *http.Request, claims auth.SessionClaims) *http.Request {
	return r.WithContext(httpx.ContextWithSession(r.Context(), &claims))
}

// AsAdmin attaches an admin session under the given username.
func AsAdmin(r *http.Request, username string) *http.Request {
	return WithSession(r, auth.SessionClaims{Username: username, IsAdmin: true})
}

// NewMultipartRequest builds a multipart form request from plain fields plus
// an optional file part named fileField.
func NewMultipartRequest(method, path string, fields map[string]string, fileField, filename string, content []byte) *http.Request {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	if fileField != "" {
		fw, _ := mw.CreateFormFile(fileField, filename)
		_, _ = fw.Write(content)
	}
	_ = mw.Close()

	r := httptest.NewRequest(method, path, &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}

// DecodeBody unmarshals the recorded response body into a generic map.
func DecodeBody(w *httptest.ResponseRecorder) map[string]any {
	data, _ := io.ReadAll(w.Result().Body)
	var body map[string]any
	_ = json.Unmarshal(data, &body)
	return body
}
