package dto

import "shortlinks/internal/models"

// Response
type (
	ShortenResponse struct {
		Success     bool   `json:"success"`
		ShortCode   string `json:"short_code"`
		ShortURL    string `json:"short_url"`
		OriginalURL string `json:"original_url"`
	}

	SuccessResponse struct {
		Success bool `json:"success"`
	}

	// StatsResponse - запись ссылки вместе с её кодом.
	StatsResponse struct {
		ShortCode   string              `json:"short_code"`
		OriginalURL string              `json:"original_url"`
		CreatedAt   models.Timestamp    `json:"created_at"`
		Clicks      []models.ClickEvent `json:"clicks"`
	}

	FailureResponse struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
)

func NewShortenResponse(code, shortURL, originalURL string) ShortenResponse {
	return ShortenResponse{
		Success:     true,
		ShortCode:   code,
		ShortURL:    shortURL,
		OriginalURL: originalURL,
	}
}

func NewStatsResponse(rec models.LinkRecord) StatsResponse {
	clicks := rec.Clicks
	if clicks == nil {
		clicks = []models.ClickEvent{}
	}
	return StatsResponse{
		ShortCode:   rec.Code,
		OriginalURL: rec.OriginalURL,
		CreatedAt:   rec.CreatedAt,
		Clicks:      clicks,
	}
}
