package shorten

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
	Shorten(ctx context.Context, originalURL string) (string, error)
}

// HandlerShorten принимает form-поле url и возвращает короткую ссылку.
// Повторный запрос с тем же url отдаёт уже существующий код.
func HandlerShorten(svc ServiceURLShortener, baseURL string, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		originalURL := httputils.FormValue(r, "url")
		if originalURL == "" {
			httputils.WriteJSONFailure(w, http.StatusBadRequest, httputils.MessageURLRequired)
			return
		}

		code, err := svc.Shorten(r.Context(), originalURL)
		if err != nil {
			if errors.Is(err, models.ErrInvalidData) {
				httputils.WriteJSONFailure(w, http.StatusBadRequest, httputils.MessageURLRequired)
				return
			}
			log.Error().Err(err).Str("url", originalURL).Msg("shorten failed")
			httputils.WriteJSONFailure(w, http.StatusInternalServerError, httputils.MessageInternalError)
			return
		}

		resp := dto.NewShortenResponse(code, httputils.BuildShortURL(baseURL, code), originalURL)
		httputils.WriteJSONResponse(w, http.StatusOK, resp)
	}
}
