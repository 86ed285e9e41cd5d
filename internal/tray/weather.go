package tray

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bryanchriswhite/RetroDesk/internal/fetch"
	"github.com/bryanchriswhite/RetroDesk/internal/logger"
	"github.com/go-resty/resty/v2"
)

// WeatherWidget shows the current temperature, polled from a plain-text
// weather endpoint
type WeatherWidget struct {
	*BaseWidget
	client       *resty.Client
	url          string
	fallback     string
	pollInterval time.Duration

	mu         sync.RWMutex
	text       string
	live       bool
	lastUpdate time.Time

	stopOnce sync.Once
	stopChan chan struct{}
}

// NewWeatherWidget creates a weather widget showing fallback until the
// first successful fetch. Call Start to begin polling.
func NewWeatherWidget(id, url, fallback string, interval time.Duration, client *resty.Client) *WeatherWidget {
	if client == nil {
		client = fetch.NewClient(fetch.Options{Timeout: 10 * time.Second, Retries: 1})
	}
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &WeatherWidget{
		BaseWidget:   NewBaseWidget(id),
		client:       client,
		url:          url,
		fallback:     fallback,
		pollInterval: interval,
		text:         fallback,
		stopChan:     make(chan struct{}),
	}
}

// Type returns the widget type
func (w *WeatherWidget) Type() string {
	return "weather"
}

// State returns the temperature text and whether it came from the endpoint
func (w *WeatherWidget) State() map[string]interface{} {
	w.mu.RLock()
	defer w.mu.RUnlock()
	state := map[string]interface{}{
		"text": w.text,
		"live": w.live,
	}
	if !w.lastUpdate.IsZero() {
		state["updated"] = w.lastUpdate.Format(time.RFC3339)
	}
	return state
}

// Start polls in the background until Stop
func (w *WeatherWidget) Start() {
	go w.poll()
}

func (w *WeatherWidget) poll() {
	w.Refresh(context.Background())

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			w.Refresh(context.Background())
		}
	}
}

// Refresh fetches once; failures fall back to the configured text
func (w *WeatherWidget) Refresh(ctx context.Context) {
	text, err := w.fetch(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastUpdate = time.Now()
	if err != nil {
		logger.WithComponent("tray").Debug().Err(err).Str("widget", w.id).Msg("Weather fetch failed, using fallback")
		w.text = w.fallback
		w.live = false
		return
	}
	w.text = text
	w.live = true
}

func (w *WeatherWidget) fetch(ctx context.Context) (string, error) {
	if w.url == "" {
		return "", fmt.Errorf("no weather url configured")
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	resp, err := w.client.R().SetContext(ctx).Get(w.url)
	if err != nil {
		return "", fmt.Errorf("failed to fetch weather: %w", err)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("weather endpoint returned status %d", resp.StatusCode())
	}
	text := strings.TrimSpace(resp.String())
	if text == "" {
		return "", fmt.Errorf("empty weather response")
	}
	return text, nil
}

// Stop stops the background polling
func (w *WeatherWidget) Stop() {
	w.stopOnce.Do(func() { close(w.stopChan) })
}
