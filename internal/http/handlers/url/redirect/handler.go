package redirect

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"shortlinks/internal/http/httputils"
	"shortlinks/internal/metrics"
	"shortlinks/internal/models"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

var notFoundPage = []byte("<h1>404 - Short code not found</h1>")

//go:embed interstitial.html
var interstitialHTML string

var interstitial = template.Must(template.New("interstitial").Parse(interstitialHTML))

type ServiceURLShortener interface {
	Resolve(ctx context.Context, code string) (string, error)
	RecordClick(ctx context.Context, code string, ev models.ClickEvent) error
}

type ClickEnricher interface {
	NewClickEvent(ctx context.Context, userAgent, addr string, at time.Time) models.ClickEvent
}

// HandlerRedirect обслуживает /r/{code}: фиксирует переход и отправляет
// клиента на исходный адрес.
func HandlerRedirect(svc ServiceURLShortener, enricher ClickEnricher, m *metrics.Metrics, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		code := mux.Vars(r)["code"]

		destination, err := svc.Resolve(ctx, code)
		if err != nil {
			writeResolveError(w, err, code, m, log)
			return
		}

		ev := enricher.NewClickEvent(ctx, httputils.UserAgent(r), httputils.ClientIP(r), time.Now())

		// ссылку могли удалить между Resolve и RecordClick
		if err := svc.RecordClick(ctx, code, ev); err != nil {
			writeResolveError(w, err, code, m, log)
			return
		}

		if !IsVideoHost(destination) {
			m.Visit(metrics.OutcomeRedirect)
			httputils.WriteRedirect(w, destination)
			return
		}

		var buf bytes.Buffer
		if err := interstitial.Execute(&buf, struct{ Destination string }{destination}); err != nil {
			m.Visit(metrics.OutcomeError)
			log.Error().Err(err).Str("code", code).Msg("render interstitial")
			httputils.WriteJSONFailure(w, http.StatusInternalServerError, httputils.MessageInternalError)
			return
		}
		m.Visit(metrics.OutcomeInterstitial)
		httputils.WriteHTML(w, http.StatusOK, buf.Bytes())
	}
}

func writeResolveError(w http.ResponseWriter, err error, code string, m *metrics.Metrics, log *zerolog.Logger) {
	if errors.Is(err, models.ErrNotFound) {
		m.Visit(metrics.OutcomeNotFound)
		httputils.WriteHTML(w, http.StatusNotFound, notFoundPage)
		return
	}
	m.Visit(metrics.OutcomeError)
	log.Error().Err(err).Str("code", code).Msg("visit failed")
	httputils.WriteJSONFailure(w, http.StatusInternalServerError, httputils.MessageInternalError)
}
