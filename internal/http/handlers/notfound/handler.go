package notfound

import (
	"net/http"
	"strings"

	"shortlinks/internal/http/httputils"
)

// HandlerNotFound отвечает JSON-ошибкой на /api/* и пустым 404 на прочие пути.
// Используется и для неподходящего метода.
func HandlerNotFound() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/") {
			httputils.WriteJSONFailure(w, http.StatusNotFound, httputils.MessageNotFound)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}
}
