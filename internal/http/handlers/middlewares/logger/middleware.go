package logger

import (
	"net/http"
	"time"

	"shortlinks/internal/http/httputils"

	"github.com/lithammer/shortuuid/v4"
	"github.com/rs/zerolog"
)

const slowRequest = 100 * time.Millisecond

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	size       int
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if r.statusCode == 0 {
		r.statusCode = http.StatusOK
	}
	size, err := r.ResponseWriter.Write(b)
	r.size += size
	return size, err
}

// MiddlewareLogging пишет одну строку на запрос. Входящий X-Request-ID
// сохраняется, иначе генерируется новый и возвращается клиенту.
func MiddlewareLogging(log *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(httputils.HeaderRequestID)
			if requestID == "" {
				requestID = shortuuid.New()
			}
			w.Header().Set(httputils.HeaderRequestID, requestID)

			reqLog := log.With().Str("request_id", requestID).Logger()
			recorder := &responseRecorder{ResponseWriter: w}

			reqLog.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("ip", r.RemoteAddr).
				Msg("request started")

			next.ServeHTTP(recorder, r.WithContext(reqLog.WithContext(r.Context())))

			// обработчик мог ничего не записать
			if recorder.statusCode == 0 {
				recorder.statusCode = http.StatusOK
			}
			duration := time.Since(start)

			var msg string
			switch {
			case recorder.statusCode >= 500:
				msg = "server error"
			case recorder.statusCode >= 400:
				msg = "client error"
			default:
				msg = "request completed"
			}

			logEntry := reqLog.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", recorder.statusCode).
				Dur("duration", duration).
				Int("bytes", recorder.size).
				Str("ip", httputils.ClientIP(r))

			if duration > slowRequest {
				logEntry = logEntry.Bool("slow", true)
			}

			switch {
			case recorder.statusCode >= 500:
				logEntry = logEntry.Str("error_type", "server_error")
			case recorder.statusCode >= 400:
				logEntry = logEntry.Str("error_type", "client_error")
			}

			logEntry.Msg(msg)
		})
	}
}
