package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SergeyKozhin/calendar-sync-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testFeed = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//test//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:one@example.com\r\n" +
	"DTSTAMP:20200101T000000Z\r\n" +
	"DTSTART:20200102T100000Z\r\n" +
	"DTEND:20200102T110000Z\r\n" +
	"SUMMARY:One\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestICSFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write([]byte(testFeed))
	}))
	defer srv.Close()

	feed := NewICSFeed(zap.NewNop().Sugar(), time.Second)
	calendar := &model.Calendar{ID: 1, Provider: model.ProviderICS, ProviderCalendarID: srv.URL}

	batch, err := feed.Changes(context.Background(), calendar, "")
	require.NoError(t, err)
	assert.True(t, batch.Full)
	assert.Equal(t, `"v1"`, batch.NextSyncToken)
	require.Len(t, batch.Items, 1)
	assert.Equal(t, "one@example.com", batch.Items[0].ProviderID)

	batch, err = feed.Changes(context.Background(), calendar, `"v1"`)
	require.NoError(t, err)
	assert.False(t, batch.Full)
	assert.Empty(t, batch.Items)
	assert.Equal(t, `"v1"`, batch.NextSyncToken)
}

func TestICSFeedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	feed := NewICSFeed(zap.NewNop().Sugar(), time.Second)
	_, err := feed.Changes(context.Background(), &model.Calendar{ProviderCalendarID: srv.URL}, "")
	assert.Error(t, err)
}
