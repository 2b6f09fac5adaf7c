package stats

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shortlinks/internal/mocks"
	"shortlinks/internal/models"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestHandlerStats(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockLinkService(ctrl)
	log := zerolog.Nop()
	at := models.NewTimestamp(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	tests := []struct {
		name         string
		setupMock    func()
		expectedCode int
		expectedBody string
	}{
		{
			name: "with clicks",
			setupMock: func() {
				mockService.EXPECT().GetStats(gomock.Any(), "calm-fox").Return(models.LinkRecord{
					Code:        "calm-fox",
					OriginalURL: "https://example.com/a",
					CreatedAt:   at,
					Clicks: []models.ClickEvent{{
						Timestamp: at,
						Device:    models.DeviceProfile{OS: "Linux", Browser: "Firefox", Type: "Desktop"},
						IP:        "10.0.0.9",
					}},
				}, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"short_code":"calm-fox","original_url":"https://example.com/a","created_at":"2025-06-01T12:00:00Z","clicks":[` +
				`{"timestamp":"2025-06-01T12:00:00Z","device":{"os":"Linux","browser":"Firefox","type":"Desktop"},"ip":"10.0.0.9","location":null}]}`,
		},
		{
			name: "without clicks",
			setupMock: func() {
				mockService.EXPECT().GetStats(gomock.Any(), "calm-fox").Return(models.LinkRecord{
					Code: "calm-fox", OriginalURL: "https://example.com/a", CreatedAt: at,
				}, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"short_code":"calm-fox","original_url":"https://example.com/a","created_at":"2025-06-01T12:00:00Z","clicks":[]}`,
		},
		{
			name: "unknown code",
			setupMock: func() {
				mockService.EXPECT().GetStats(gomock.Any(), "calm-fox").Return(models.LinkRecord{}, models.ErrNotFound)
			},
			expectedCode: http.StatusNotFound,
			expectedBody: `{"success":false,"message":"Short code not found"}`,
		},
		{
			name: "storage failure",
			setupMock: func() {
				mockService.EXPECT().GetStats(gomock.Any(), "calm-fox").Return(models.LinkRecord{}, errors.New("io"))
			},
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"success":false,"message":"Internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/stats/calm-fox", nil), map[string]string{"code": "calm-fox"})
			rec := httptest.NewRecorder()

			HandlerStats(mockService, &log).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedCode, rec.Code)
			assert.JSONEq(t, tt.expectedBody, rec.Body.String())
		})
	}
}
