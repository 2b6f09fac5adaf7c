package list

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shortlinks/internal/mocks"
	"shortlinks/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestHandlerList(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockLinkService(ctrl)
	log := zerolog.Nop()
	created := models.NewTimestamp(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	tests := []struct {
		name         string
		setupMock    func()
		expectedCode int
		expectedBody string
	}{
		{
			name: "keeps creation order",
			setupMock: func() {
				mockService.EXPECT().ListAll(gomock.Any()).Return(models.LinkSet{
					{Code: "zany-yak", OriginalURL: "https://example.com/z", CreatedAt: created},
					{Code: "calm-fox", OriginalURL: "https://example.com/a", CreatedAt: created},
				}, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"zany-yak":{"original_url":"https://example.com/z","created_at":"2025-06-01T12:00:00Z","clicks":[]},` +
				`"calm-fox":{"original_url":"https://example.com/a","created_at":"2025-06-01T12:00:00Z","clicks":[]}}` + "\n",
		},
		{
			name: "empty store",
			setupMock: func() {
				mockService.EXPECT().ListAll(gomock.Any()).Return(nil, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: "{}\n",
		},
		{
			name: "storage failure",
			setupMock: func() {
				mockService.EXPECT().ListAll(gomock.Any()).Return(nil, errors.New("io"))
			},
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"success":false,"message":"Internal server error"}` + "\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			rec := httptest.NewRecorder()
			HandlerList(mockService, &log).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/list", nil))

			assert.Equal(t, tt.expectedCode, rec.Code)
			// порядок ключей важен, поэтому сравниваем строки целиком
			assert.Equal(t, tt.expectedBody, rec.Body.String())
		})
	}
}
