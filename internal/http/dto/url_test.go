package dto

import (
	"encoding/json"
	"testing"
	"time"

	"shortlinks/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStatsResponse(t *testing.T) {
	at := models.NewTimestamp(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	tests := []struct {
		name string
		rec  models.LinkRecord
		want string
	}{
		{
			name: "nil clicks become empty list",
			rec:  models.LinkRecord{Code: "calm-fox", OriginalURL: "https://example.com/a", CreatedAt: at},
			want: `{"short_code":"calm-fox","original_url":"https://example.com/a","created_at":"2025-06-01T12:00:00Z","clicks":[]}`,
		},
		{
			name: "clicks kept",
			rec: models.LinkRecord{
				Code:        "keen-star",
				OriginalURL: "example.com/path",
				CreatedAt:   at,
				Clicks:      []models.ClickEvent{{Timestamp: at, Device: models.DeviceProfile{OS: "Unknown", Browser: "Unknown", Type: "Desktop"}, IP: "unknown"}},
			},
			want: `{"short_code":"keen-star","original_url":"example.com/path","created_at":"2025-06-01T12:00:00Z","clicks":[` +
				`{"timestamp":"2025-06-01T12:00:00Z","device":{"os":"Unknown","browser":"Unknown","type":"Desktop"},"ip":"unknown","location":null}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(NewStatsResponse(tt.rec))
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}
