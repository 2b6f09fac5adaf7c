package stats

import (
	"context"
	"errors"
	"net/http"

	"shortlinks/internal/http/dto"
	"shortlinks/internal/http/httputils"
	"shortlinks/internal/models"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

type ServiceURLShortener interface {
	GetStats(ctx context.Context, code string) (models.LinkRecord, error)
}

// HandlerStats отдаёт код, исходный URL и все клики по нему.
func HandlerStats(svc ServiceURLShortener, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := mux.Vars(r)["code"]

		rec, err := svc.GetStats(r.Context(), code)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				httputils.WriteJSONFailure(w, http.StatusNotFound, httputils.MessageCodeNotFound)
				return
			}
			log.Error().Err(err).Str("code", code).Msg("stats failed")
			httputils.WriteJSONFailure(w, http.StatusInternalServerError, httputils.MessageInternalError)
			return
		}

		httputils.WriteJSONResponse(w, http.StatusOK, dto.NewStatsResponse(rec))
	}
}
