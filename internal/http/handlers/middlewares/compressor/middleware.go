package compressor

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"

	"shortlinks/internal/http/httputils"
)

// MiddlewareCompressing распаковывает gzip-тело запроса и сжимает ответ,
// если клиент прислал Accept-Encoding: gzip.
func MiddlewareCompressing() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := decompressRequest(r); err != nil {
				httputils.WriteJSONFailure(w, http.StatusBadRequest, "invalid gzip data")
				return
			}

			if !acceptsGzip(r) {
				next.ServeHTTP(w, r)
				return
			}

			gw := &gzipResponseWriter{ResponseWriter: w}
			defer gw.Close()
			next.ServeHTTP(gw, r)
		})
	}
}

func decompressRequest(r *http.Request) error {
	if !strings.Contains(r.Header.Get(httputils.HeaderContentEncoding), httputils.EncodingGzip) {
		return nil
	}

	gz, err := gzip.NewReader(r.Body)
	if err != nil {
		return err
	}
	r.Body = &gzipBody{Reader: gz, orig: r.Body}
	r.Header.Del(httputils.HeaderContentEncoding)
	r.Header.Del(httputils.HeaderContentLength)
	r.ContentLength = -1
	return nil
}

func acceptsGzip(r *http.Request) bool {
	return strings.Contains(r.Header.Get(httputils.HeaderAcceptEncoding), httputils.EncodingGzip)
}

type gzipBody struct {
	*gzip.Reader
	orig io.ReadCloser
}

func (b *gzipBody) Close() error {
	b.Reader.Close()
	return b.orig.Close()
}

// gzipResponseWriter включает сжатие при первой записи тела.
// Ответы без тела (редиректы, 204) уходят как есть.
type gzipResponseWriter struct {
	http.ResponseWriter
	gz          *gzip.Writer
	wroteHeader bool
	status      int
}

func (w *gzipResponseWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	w.status = status
}

func (w *gzipResponseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	if w.gz == nil {
		h := w.Header()
		h.Set(httputils.HeaderContentEncoding, httputils.EncodingGzip)
		h.Add(httputils.HeaderVary, httputils.HeaderAcceptEncoding)
		h.Del(httputils.HeaderContentLength)
		w.ResponseWriter.WriteHeader(w.status)
		w.gz = gzip.NewWriter(w.ResponseWriter)
	}
	return w.gz.Write(b)
}

func (w *gzipResponseWriter) Close() error {
	if w.gz != nil {
		return w.gz.Close()
	}
	if w.wroteHeader {
		w.ResponseWriter.WriteHeader(w.status)
	}
	return nil
}
