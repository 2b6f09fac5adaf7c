package server

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"shortlinks/internal/analytics"
	"shortlinks/internal/codegen"
	"shortlinks/internal/config"
	"shortlinks/internal/http/httputils"
	"shortlinks/internal/metrics"
	"shortlinks/internal/mocks"
	"shortlinks/internal/models"
	"shortlinks/internal/service"
	"shortlinks/internal/storage/filestore"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const chromeWindows = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

type testEnv struct {
	srv    *httptest.Server
	client *http.Client
	links  *service.LinkStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	storage, err := filestore.New(filepath.Join(t.TempDir(), "links.json"))
	require.NoError(t, err)
	m := metrics.New()
	log := zerolog.Nop()
	links := service.NewLinkStore(storage, codegen.NewGenerator(), log, service.WithMetrics(m))
	enricher := analytics.NewEnricher(nil, 0, log, m)

	cfg := &config.Config{ServerAddress: ":0", CORSOrigins: []string{"*"}}
	s, err := NewServer(&log, cfg, "http://short.test", links, enricher, m)
	require.NoError(t, err)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	return &testEnv{
		srv:   ts,
		links: links,
		client: &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
		},
	}
}

func (e *testEnv) postForm(t *testing.T, path string, form url.Values) (*http.Response, []byte) {
	t.Helper()
	resp, err := e.client.PostForm(e.srv.URL+path, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func (e *testEnv) get(t *testing.T, path string, header http.Header) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, e.srv.URL+path, nil)
	require.NoError(t, err)
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := e.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func (e *testEnv) shorten(t *testing.T, target string) string {
	t.Helper()
	resp, body := e.postForm(t, "/api/shorten", url.Values{"url": {target}})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var out struct {
		Success   bool   `json:"success"`
		ShortCode string `json:"short_code"`
		ShortURL  string `json:"short_url"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	require.True(t, out.Success)
	assert.Equal(t, "http://short.test/r/"+out.ShortCode, out.ShortURL)
	return out.ShortCode
}

func TestServer_ShortenVisitDelete(t *testing.T) {
	env := newTestEnv(t)

	code := env.shorten(t, "https://example.com/a")
	assert.Regexp(t, `^[a-z]+-[a-z]+$`, code)
	assert.Equal(t, code, env.shorten(t, "https://example.com/a"))

	resp, _ := env.get(t, "/r/"+code, http.Header{
		"User-Agent":      {chromeWindows},
		"X-Forwarded-For": {"198.51.100.7, 10.0.0.1"},
	})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "https://example.com/a", resp.Header.Get("Location"))
	assert.NotEmpty(t, resp.Header.Get(httputils.HeaderRequestID))

	resp, body := env.get(t, "/api/stats/"+code, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rec struct {
		ShortCode   string              `json:"short_code"`
		OriginalURL string              `json:"original_url"`
		Clicks      []models.ClickEvent `json:"clicks"`
	}
	require.NoError(t, json.Unmarshal(body, &rec))
	assert.Equal(t, code, rec.ShortCode)
	assert.Equal(t, "https://example.com/a", rec.OriginalURL)
	require.Len(t, rec.Clicks, 1)
	assert.Equal(t, models.DeviceProfile{OS: "Windows", Browser: "Chrome", Type: "Desktop"}, rec.Clicks[0].Device)
	assert.Equal(t, "198.51.100.7", rec.Clicks[0].IP)

	resp, body = env.postForm(t, "/api/delete", url.Values{"code": {code}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"success":true}`, string(body))

	resp, body = env.get(t, "/r/"+code, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), "404 - Short code not found")

	resp, body = env.postForm(t, "/api/delete", url.Values{"code": {code}})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"success":false,"message":"Short code not found"}`, string(body))
}

func TestServer_ListKeepsOrder(t *testing.T) {
	env := newTestEnv(t)

	codes := []string{
		env.shorten(t, "https://example.com/1"),
		env.shorten(t, "https://example.com/2"),
		env.shorten(t, "https://example.com/3"),
	}

	resp, body := env.postForm(t, "/api/list", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var offsets []int
	for _, c := range codes {
		i := strings.Index(string(body), `"`+c+`"`)
		require.GreaterOrEqual(t, i, 0)
		offsets = append(offsets, i)
	}
	assert.IsIncreasing(t, offsets)
}

func TestServer_VideoInterstitial(t *testing.T) {
	env := newTestEnv(t)
	code := env.shorten(t, "https://youtu.be/abc")

	resp, body := env.get(t, "/r/"+code, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Location"))
	assert.Contains(t, string(body), "https://youtu.be/abc")

	stats, err := env.links.GetStats(context.Background(), code)
	require.NoError(t, err)
	assert.Len(t, stats.Clicks, 1)
	assert.Equal(t, "Unknown", stats.Clicks[0].Device.OS)
}

func TestServer_Errors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		method string
		path   string
		status int
		body   string
	}{
		{"empty shorten", http.MethodPost, "/api/shorten", http.StatusBadRequest, `{"success":false,"message":"URL is required"}`},
		{"empty delete", http.MethodPost, "/api/delete", http.StatusBadRequest, `{"success":false,"message":"Short code is required"}`},
		{"unknown api route", http.MethodPost, "/api/nope", http.StatusNotFound, `{"success":false,"message":"Not found"}`},
		{"wrong method", http.MethodGet, "/api/list", http.StatusNotFound, `{"success":false,"message":"Not found"}`},
		{"unknown stats", http.MethodGet, "/api/stats/calm-fox", http.StatusNotFound, `{"success":false,"message":"Short code not found"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, env.srv.URL+tt.path, nil)
			require.NoError(t, err)
			resp, err := env.client.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			assert.Equal(t, tt.status, resp.StatusCode)
			assert.JSONEq(t, tt.body, string(body))
		})
	}
}

func TestServer_IndexAndMetrics(t *testing.T) {
	env := newTestEnv(t)
	env.shorten(t, "https://example.com/a")

	resp, body := env.get(t, "/", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "<html>")

	resp, body = env.get(t, "/ping", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))

	resp, body = env.get(t, "/metrics", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "shortener_links_created_total 1")
}

func TestServer_GzipAndCORS(t *testing.T) {
	env := newTestEnv(t)
	env.shorten(t, "https://example.com/a")

	req, err := http.NewRequest(http.MethodPost, env.srv.URL+"/api/list", nil)
	require.NoError(t, err)
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("Origin", "https://ui.example.com")
	resp, err := env.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "gzip", resp.Header.Get("Content-Encoding"))
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	gz, err := gzip.NewReader(resp.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(gz)
	require.NoError(t, err)
	assert.Contains(t, string(body), "https://example.com/a")

	req, err = http.NewRequest(http.MethodOptions, env.srv.URL+"/api/shorten", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://ui.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	pre, err := env.client.Do(req)
	require.NoError(t, err)
	pre.Body.Close()

	assert.Less(t, pre.StatusCode, 300)
	assert.Equal(t, "*", pre.Header.Get("Access-Control-Allow-Origin"))
}

func TestServer_PanicBecomes500(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockLinkService(ctrl)
	svc.EXPECT().ListAll(gomock.Any()).DoAndReturn(func(context.Context) (models.LinkSet, error) {
		panic("boom")
	})

	log := zerolog.Nop()
	cfg := &config.Config{ServerAddress: ":0", CORSOrigins: []string{"*"}}
	s, err := NewServer(&log, cfg, "http://short.test", svc, analytics.NewEnricher(nil, 0, log, nil), nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/list", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Internal server error"}`, rec.Body.String())
}

func TestNewServer_Validation(t *testing.T) {
	log := zerolog.Nop()
	enricher := analytics.NewEnricher(nil, 0, log, nil)
	svc := mocks.NewMockLinkService(gomock.NewController(t))

	_, err := NewServer(&log, &config.Config{}, "", svc, enricher, nil)
	assert.Error(t, err)

	_, err = NewServer(nil, &config.Config{ServerAddress: ":0"}, "", svc, enricher, nil)
	assert.Error(t, err)

	_, err = NewServer(&log, &config.Config{ServerAddress: ":0"}, "", nil, enricher, nil)
	assert.Error(t, err)
}
