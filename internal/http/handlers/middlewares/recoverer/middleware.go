package recoverer

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"shortlinks/internal/http/httputils"

	"github.com/rs/zerolog"
)

// MiddlewareRecover превращает панику обработчика в 500 с общим сообщением.
// Детали остаются только в логе.
func MiddlewareRecover(log *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				log.Error().
					Str("panic", fmt.Sprintf("%v", rec)).
					Str("stack", string(debug.Stack())).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Msg("request panic")
				httputils.WriteJSONFailure(w, http.StatusInternalServerError, httputils.MessageInternalError)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
