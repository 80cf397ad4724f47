package config

import (
	"fmt"
	"time"

	"github.com/pithecene-io/lightbox/viewer"
)

// Config represents a lightbox.yaml configuration file.
// All values are optional and act as defaults for lightbox flags.
// CLI flags always override config values.
type Config struct {
	Viewer    ViewerConfig    `yaml:"viewer"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Transport TransportConfig `yaml:"transport"`
	Adapter   AdapterConfig   `yaml:"adapter"`
}

// ViewerConfig holds viewer timings and thresholds.
type ViewerConfig struct {
	Show          Duration `yaml:"show"`
	Hide          Duration `yaml:"hide"`
	WaitHide      Duration `yaml:"wait_hide"`
	HoverFade     Duration `yaml:"hover_fade"`
	RadialFade    Duration `yaml:"radial_fade"`
	StallAfter    Duration `yaml:"stall_after"`
	ToastFadeIn   Duration `yaml:"toast_fade_in"`
	ToastHold     Duration `yaml:"toast_hold"`
	ToastFadeOut  Duration `yaml:"toast_fade_out"`
	LongPress     Duration `yaml:"long_press"`
	DragThreshold int      `yaml:"drag_threshold"`
	PageSize      int      `yaml:"page_size"`
	PreloadMargin *int     `yaml:"preload_margin,omitempty"`
	AutoAdvance   *bool    `yaml:"auto_advance,omitempty"`
}

// CatalogConfig holds the local media catalog location.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// TransportConfig selects how pages are fetched.
type TransportConfig struct {
	// Type is "local" (catalog in process) or "ipc" (framed child process).
	Type    string   `yaml:"type"`
	Command []string `yaml:"command,omitempty"`
	Timeout Duration `yaml:"timeout,omitempty"`
}

// AdapterConfig holds action-event adapter defaults from the config file.
type AdapterConfig struct {
	Type    string            `yaml:"type"`
	URL     string            `yaml:"url"`
	Channel string            `yaml:"channel,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Timeout Duration          `yaml:"timeout,omitempty"`
	Retries *int              `yaml:"retries,omitempty"`
	// Policy is "strict" (publish each action) or "buffered".
	Policy       string `yaml:"policy,omitempty"`
	BufferEvents int    `yaml:"buffer_events,omitempty"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// ViewerOptions converts the viewer section to a viewer.Config. Unset
// values keep the viewer defaults.
func (c *Config) ViewerOptions() viewer.Config {
	out := viewer.DefaultConfig()
	v := c.Viewer
	setDuration(&out.Chrome.Show, v.Show)
	setDuration(&out.Chrome.Hide, v.Hide)
	setDuration(&out.Chrome.WaitHide, v.WaitHide)
	setDuration(&out.HoverFade, v.HoverFade)
	setDuration(&out.RadialFade, v.RadialFade)
	setDuration(&out.StallAfter, v.StallAfter)
	setDuration(&out.Toast.FadeIn, v.ToastFadeIn)
	setDuration(&out.Toast.Hold, v.ToastHold)
	setDuration(&out.Toast.FadeOut, v.ToastFadeOut)
	setDuration(&out.LongPress, v.LongPress)
	if v.DragThreshold > 0 {
		out.DragThreshold = v.DragThreshold
	}
	if v.PageSize > 0 {
		out.PageSize = v.PageSize
	}
	if v.PreloadMargin != nil {
		out.PreloadMargin = *v.PreloadMargin
	}
	if v.AutoAdvance != nil {
		out.AutoAdvance = *v.AutoAdvance
	}
	return out
}

func setDuration(dst *time.Duration, d Duration) {
	if d.Duration > 0 {
		*dst = d.Duration
	}
}
