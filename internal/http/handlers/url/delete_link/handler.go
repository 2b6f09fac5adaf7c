package delete_link

import (
	"context"
	"errors"
	"net/http"

	"shortlinks/internal/http/dto"
	"shortlinks/internal/http/httputils"
	"shortlinks/internal/models"

	"github.com/rs/zerolog"
)

type ServiceURLShortener interface {
	Delete(ctx context.Context, code string) error
}

func HandlerDelete(svc ServiceURLShortener, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := httputils.FormValue(r, "code")
		if code == "" {
			httputils.WriteJSONFailure(w, http.StatusBadRequest, httputils.MessageCodeRequired)
			return
		}

		if err := svc.Delete(r.Context(), code); err != nil {
			switch {
			case errors.Is(err, models.ErrNotFound):
				httputils.WriteJSONFailure(w, http.StatusNotFound, httputils.MessageCodeNotFound)
			case errors.Is(err, models.ErrInvalidData):
				httputils.WriteJSONFailure(w, http.StatusBadRequest, httputils.MessageCodeRequired)
			default:
				log.Error().Err(err).Str("code", code).Msg("delete failed")
				httputils.WriteJSONFailure(w, http.StatusInternalServerError, httputils.MessageInternalError)
			}
			return
		}

		httputils.WriteJSONResponse(w, http.StatusOK, dto.SuccessResponse{Success: true})
	}
}
