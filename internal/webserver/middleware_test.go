package webserver

import (
	"bytes"
	"compress/gzip"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressionMiddleware(t *testing.T) {
	body := strings.Repeat("G1 X10 Y10 E0.5\n", 200)

	handler := CompressionMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, body)
	}))

	tests := []struct {
		name             string
		acceptEncoding   string
		expectedEncoding string
		decode           func(t *testing.T, r io.Reader) io.Reader
	}{
		{
			name: "no compression",
			decode: func(t *testing.T, r io.Reader) io.Reader {
				return r
			},
		},
		{
			name:             "zstd preferred",
			acceptEncoding:   "gzip, zstd",
			expectedEncoding: "zstd",
			decode: func(t *testing.T, r io.Reader) io.Reader {
				dec, err := zstd.NewReader(r)
				require.NoError(t, err)
				t.Cleanup(dec.Close)

				return dec
			},
		},
		{
			name:             "gzip",
			acceptEncoding:   "gzip, deflate",
			expectedEncoding: "gzip",
			decode: func(t *testing.T, r io.Reader) io.Reader {
				dec, err := gzip.NewReader(r)
				require.NoError(t, err)

				return dec
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.acceptEncoding != "" {
				req.Header.Set("Accept-Encoding", tt.acceptEncoding)
			}

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedEncoding, w.Header().Get("Content-Encoding"))

			if tt.expectedEncoding != "" {
				assert.Equal(t, "Accept-Encoding", w.Header().Get("Vary"))
				assert.Less(t, w.Body.Len(), len(body))
			}

			got, err := io.ReadAll(tt.decode(t, w.Body))
			require.NoError(t, err)
			assert.Equal(t, body, string(got))
		})
	}
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := LoggingMiddleware(logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/slice", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)

	line := buf.String()
	assert.Contains(t, line, "method=POST")
	assert.Contains(t, line, "path=/slice")
	assert.Contains(t, line, "status=418")
}

func TestGetLanguageFromRequest(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		cookie         string
		acceptLanguage string
		expected       string
	}{
		{"default", "", "", "", "en"},
		{"query parameter", "uk", "", "", "uk"},
		{"unsupported query falls through", "fr", "", "uk", "uk"},
		{"cookie", "", "uk", "en-US", "uk"},
		{"accept language region", "", "", "uk-UA,uk;q=0.9,en;q=0.8", "uk"},
		{"accept language order", "", "", "de-DE,en;q=0.5,uk;q=0.3", "en"},
		{"nothing supported", "", "", "de, fr", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/slice"
			if tt.query != "" {
				target += "?lang=" + url.QueryEscape(tt.query)
			}

			req := httptest.NewRequest(http.MethodGet, target, nil)

			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "lang", Value: tt.cookie})
			}

			if tt.acceptLanguage != "" {
				req.Header.Set("Accept-Language", tt.acceptLanguage)
			}

			assert.Equal(t, tt.expected, GetLanguageFromRequest(req))
		})
	}
}

func TestGetTranslation(t *testing.T) {
	assert.Equal(t, "error_does_not_exist", GetTranslation("uk", "error_does_not_exist"))
	assert.Equal(t, GetTranslation("en", "error_tool_failed_title"), GetTranslation("pl", "error_tool_failed_title"))

	for _, lang := range []string{"en", "uk"} {
		assert.True(t, isValidLanguage(lang), lang)
	}

	// every key shipped in English has a Ukrainian counterpart
	for key := range translations["en"] {
		_, ok := translations["uk"][key]
		assert.True(t, ok, key)
	}
}
