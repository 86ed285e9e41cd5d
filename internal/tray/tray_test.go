package tray

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bryanchriswhite/RetroDesk/internal/config"
	"github.com/bryanchriswhite/RetroDesk/internal/fetch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClockFormats(t *testing.T) {
	fixed := time.Date(2026, 1, 4, 15, 4, 0, 0, time.Local)
	w := NewClockWidget(ClockID, func() time.Time { return fixed })

	state := w.State()
	assert.Equal(t, "03:04 PM", state["time"])
	assert.Equal(t, "1/4/2026", state["date"])
}

func TestVolumeToggle(t *testing.T) {
	w := NewVolumeWidget(VolumeID)
	assert.False(t, w.Muted())
	assert.Equal(t, speakerIcon, w.State()["icon"])

	assert.True(t, w.Toggle())
	assert.Equal(t, mutedIcon, w.State()["icon"])
	assert.False(t, w.Toggle())
}

func TestWeatherLiveAndFallback(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			http.Error(w, "nope", http.StatusNotFound)
			return
		}
		io.WriteString(w, "+25°C\n")
	}))
	defer srv.Close()

	client := fetch.NewClient(fetch.Options{Retries: 0, Timeout: time.Second})
	w := NewWeatherWidget(WeatherID, srv.URL, "24°C", time.Hour, client)
	assert.Equal(t, "24°C", w.State()["text"])

	w.Refresh(context.Background())
	assert.Equal(t, "+25°C", w.State()["text"])
	assert.Equal(t, true, w.State()["live"])

	healthy.Store(false)
	w.Refresh(context.Background())
	assert.Equal(t, "24°C", w.State()["text"])
	assert.Equal(t, false, w.State()["live"])
}

func TestWeatherWithoutURLFallsBack(t *testing.T) {
	w := NewWeatherWidget(WeatherID, "", "24°C", 0, nil)
	w.Refresh(context.Background())
	assert.Equal(t, "24°C", w.State()["text"])
	w.Stop()
	w.Stop()
}

func TestManager(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.AddWidget(NewVolumeWidget(VolumeID)))
	require.NoError(t, m.AddWidget(NewClockWidget(ClockID, nil)))
	assert.Error(t, m.AddWidget(NewVolumeWidget(VolumeID)))

	muted, err := m.ToggleMute()
	require.NoError(t, err)
	assert.True(t, muted)

	snap := m.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, ClockID, snap[0].ID)
	assert.Equal(t, VolumeID, snap[1].ID)
	assert.Equal(t, true, snap[1].State["muted"])

	w, _ := m.GetWidget(ClockID)
	w.SetEnabled(false)
	assert.Len(t, m.Snapshot(), 1)

	require.NoError(t, m.RemoveWidget(VolumeID))
	_, err = m.ToggleMute()
	assert.Error(t, err)
	assert.Error(t, m.RemoveWidget(VolumeID))
}

func TestNewDefaultStartsWithFallback(t *testing.T) {
	cfg := config.Defaults().Tray
	cfg.WeatherURL = ""
	m := NewDefault(cfg, nil)
	defer m.Stop()

	snap := m.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, WeatherID, snap[2].ID)
	assert.Equal(t, cfg.WeatherFallback, snap[2].State["text"])
}
