package delete_link

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"shortlinks/internal/http/httputils"
	"shortlinks/internal/mocks"
	"shortlinks/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestHandlerDelete(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockLinkService(ctrl)
	log := zerolog.Nop()

	tests := []struct {
		name         string
		setupMock    func()
		body         string
		expectedCode int
		expectedBody string
	}{
		{
			name: "deleted",
			setupMock: func() {
				mockService.EXPECT().Delete(gomock.Any(), "calm-fox").Return(nil)
			},
			body:         "code=calm-fox",
			expectedCode: http.StatusOK,
			expectedBody: `{"success":true}`,
		},
		{
			name: "unknown code",
			setupMock: func() {
				mockService.EXPECT().Delete(gomock.Any(), "nope").Return(models.ErrNotFound)
			},
			body:         "code=nope",
			expectedCode: http.StatusNotFound,
			expectedBody: `{"success":false,"message":"Short code not found"}`,
		},
		{
			name:         "missing code",
			setupMock:    func() {},
			body:         "",
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"success":false,"message":"Short code is required"}`,
		},
		{
			name: "storage failure",
			setupMock: func() {
				mockService.EXPECT().Delete(gomock.Any(), "calm-fox").Return(errors.New("disk full"))
			},
			body:         "code=calm-fox",
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"success":false,"message":"Internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			req := httptest.NewRequest(http.MethodPost, "/api/delete", strings.NewReader(tt.body))
			req.Header.Set(httputils.HeaderContentType, httputils.MIMEFormURLEncoded)
			rec := httptest.NewRecorder()

			HandlerDelete(mockService, &log).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedCode, rec.Code)
			assert.JSONEq(t, tt.expectedBody, rec.Body.String())
		})
	}
}
