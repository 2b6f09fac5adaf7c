package ping

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
)

type Service interface {
	Ping(ctx context.Context) error
}

// HandlerPing проверяет доступность хранилища.
func HandlerPing(svc Service, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Ping(r.Context()); err != nil {
			log.Error().Err(err).Msg("storage ping failed")
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Storage unavailable"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}
}
