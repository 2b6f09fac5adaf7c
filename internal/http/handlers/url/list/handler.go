package list

import (
	"context"
	"net/http"

	"shortlinks/internal/http/httputils"
	"shortlinks/internal/models"

	"github.com/rs/zerolog"
)

type ServiceURLShortener interface {
	ListAll(ctx context.Context) (models.LinkSet, error)
}

// HandlerList отдаёт все ссылки объектом code -> запись в порядке создания.
func HandlerList(svc ServiceURLShortener, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		links, err := svc.ListAll(r.Context())
		if err != nil {
			log.Error().Err(err).Msg("list links")
			httputils.WriteJSONFailure(w, http.StatusInternalServerError, httputils.MessageInternalError)
			return
		}
		httputils.WriteJSONResponse(w, http.StatusOK, links)
	}
}
