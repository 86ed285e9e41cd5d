package config

import "time"

// Config represents the desktop server configuration
type Config struct {
	ServerPort  int    `json:"server_port" yaml:"server_port" mapstructure:"server_port"`
	LogLevel    string `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
	LogPretty   bool   `json:"log_pretty" yaml:"log_pretty" mapstructure:"log_pretty"`
	ContentFile string `json:"content_file" yaml:"content_file" mapstructure:"content_file"` // Empty uses the built-in desktop

	Desktop DesktopConfig `json:"desktop" yaml:"desktop" mapstructure:"desktop"`
	Window  WindowConfig  `json:"window" yaml:"window" mapstructure:"window"`
	Embed   EmbedConfig   `json:"embed" yaml:"embed" mapstructure:"embed"`
	Game    GameConfig    `json:"game" yaml:"game" mapstructure:"game"`
	Relay   RelayConfig   `json:"relay" yaml:"relay" mapstructure:"relay"`
	Tray    TrayConfig    `json:"tray" yaml:"tray" mapstructure:"tray"`
}

// DesktopConfig is the browser viewport the desktop assumes for maximized windows
type DesktopConfig struct {
	Width         int `json:"width" yaml:"width" mapstructure:"width"`
	Height        int `json:"height" yaml:"height" mapstructure:"height"`
	TaskbarHeight int `json:"taskbar_height" yaml:"taskbar_height" mapstructure:"taskbar_height"`
}

// WindowConfig controls where new windows appear and how they stack
type WindowConfig struct {
	OriginX     int `json:"origin_x" yaml:"origin_x" mapstructure:"origin_x"`
	OriginY     int `json:"origin_y" yaml:"origin_y" mapstructure:"origin_y"`
	CascadeStep int `json:"cascade_step" yaml:"cascade_step" mapstructure:"cascade_step"`
	Width       int `json:"width" yaml:"width" mapstructure:"width"`
	Height      int `json:"height" yaml:"height" mapstructure:"height"`
	BaseZ       int `json:"base_z" yaml:"base_z" mapstructure:"base_z"`
}

// EmbedConfig tunes framing-failure detection for hosted documents
type EmbedConfig struct {
	GraceMillis    int    `json:"grace_ms" yaml:"grace_ms" mapstructure:"grace_ms"`
	FallbackMillis int    `json:"fallback_ms" yaml:"fallback_ms" mapstructure:"fallback_ms"`
	InspectTimeout int    `json:"inspect_timeout_ms" yaml:"inspect_timeout_ms" mapstructure:"inspect_timeout_ms"`
	UseRelay       bool   `json:"use_relay" yaml:"use_relay" mapstructure:"use_relay"`
	RelayBase      string `json:"relay_base" yaml:"relay_base" mapstructure:"relay_base"`
}

// GameConfig tunes the tic-tac-toe opponent
type GameConfig struct {
	BotDelayMillis int `json:"bot_delay_ms" yaml:"bot_delay_ms" mapstructure:"bot_delay_ms"`
}

// RelayConfig configures the URL relay
type RelayConfig struct {
	Port              int     `json:"port" yaml:"port" mapstructure:"port"`
	TimeoutSeconds    int     `json:"timeout_seconds" yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
	Retries           int     `json:"retries" yaml:"retries" mapstructure:"retries"`
	MaxBodyBytes      int64   `json:"max_body_bytes" yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `json:"burst" yaml:"burst" mapstructure:"burst"`
}

// TrayConfig configures the system-tray widgets
type TrayConfig struct {
	WeatherURL            string `json:"weather_url" yaml:"weather_url" mapstructure:"weather_url"`
	WeatherRefreshMinutes int    `json:"weather_refresh_minutes" yaml:"weather_refresh_minutes" mapstructure:"weather_refresh_minutes"`
	WeatherFallback       string `json:"weather_fallback" yaml:"weather_fallback" mapstructure:"weather_fallback"`
}

// Defaults returns the configuration used when no file exists yet
func Defaults() *Config {
	return &Config{
		ServerPort: 8080,
		LogLevel:   "info",
		Desktop: DesktopConfig{
			Width:         1280,
			Height:        800,
			TaskbarHeight: 40,
		},
		Window: WindowConfig{
			OriginX:     50,
			OriginY:     50,
			CascadeStep: 20,
			Width:       600,
			Height:      400,
			BaseZ:       100,
		},
		Embed: EmbedConfig{
			GraceMillis:    200,
			FallbackMillis: 1000,
			InspectTimeout: 5000,
		},
		Game: GameConfig{
			BotDelayMillis: 500,
		},
		Relay: RelayConfig{
			Port:              3000,
			TimeoutSeconds:    20,
			Retries:           2,
			MaxBodyBytes:      32 << 20,
			RequestsPerSecond: 20,
			Burst:             40,
		},
		Tray: TrayConfig{
			WeatherURL:            "https://wttr.in/?format=%t",
			WeatherRefreshMinutes: 10,
			WeatherFallback:       "24°C",
		},
	}
}

func millis(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

// Grace is the delay between a frame load signal and inspection
func (e EmbedConfig) Grace() time.Duration { return millis(e.GraceMillis) }

// Fallback is the delay after which inspection runs even without a load signal
func (e EmbedConfig) Fallback() time.Duration { return millis(e.FallbackMillis) }

// Timeout bounds a single inspection request
func (e EmbedConfig) Timeout() time.Duration { return millis(e.InspectTimeout) }

// BotDelay is how long the opponent "thinks"
func (g GameConfig) BotDelay() time.Duration { return millis(g.BotDelayMillis) }

// Timeout bounds a single upstream fetch
func (r RelayConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// WeatherRefresh is the interval between weather fetches
func (t TrayConfig) WeatherRefresh() time.Duration {
	return time.Duration(t.WeatherRefreshMinutes) * time.Minute
}
