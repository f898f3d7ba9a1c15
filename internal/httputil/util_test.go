package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDecodeJSON(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		method      string
		contentType string
		body        string
		ok          bool
		status      int
	}{
		{name: "positive", method: http.MethodPost, contentType: "application/json", body: `{"name": "a"}`, ok: true, status: http.StatusOK},
		{name: "method", method: http.MethodGet, contentType: "application/json", body: `{}`, status: http.StatusMethodNotAllowed},
		{name: "content_type", method: http.MethodPost, contentType: "text/plain", body: `{}`, status: http.StatusUnsupportedMediaType},
		{name: "syntax", method: http.MethodPost, contentType: "application/json", body: `{"name": }`, status: http.StatusBadRequest},
		{name: "type", method: http.MethodPost, contentType: "application/json", body: `{"name": 1}`, status: http.StatusBadRequest},
		{name: "unknown_field", method: http.MethodPost, contentType: "application/json", body: `{"other": "a"}`, status: http.StatusBadRequest},
		{name: "empty", method: http.MethodPost, contentType: "application/json; charset=utf-8", body: ``, status: http.StatusBadRequest},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			var v struct {
				Name string `json:"name"`
			}
			r := httptest.NewRequest(test.method, "/", strings.NewReader(test.body))
			r.Header.Set("Content-Type", test.contentType)
			w := httptest.NewRecorder()
			ok := DecodeJSON(context.Background(), w, r, &v)
			if ok != test.ok {
				t.Errorf("decode got: %v, expected: %v", ok, test.ok)
			}
			if w.Code != test.status {
				t.Errorf("status got: %d, expected: %d", w.Code, test.status)
			}
		})
	}
}
