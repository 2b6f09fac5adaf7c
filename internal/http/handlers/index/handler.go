package index

import (
	_ "embed"
	"net/http"

	"shortlinks/internal/http/httputils"
)

//go:embed index.html
var page []byte

// HandlerIndex отдаёт встроенную страницу с формой и списком ссылок.
func HandlerIndex() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputils.WriteHTML(w, http.StatusOK, page)
	}
}
