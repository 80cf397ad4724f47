package viewer

import (
	"time"

	"github.com/pithecene-io/lightbox/interact"
	"github.com/pithecene-io/lightbox/overview"
	"github.com/pithecene-io/lightbox/progress"
)

// DefaultPreloadMargin is how close to a loaded boundary the cursor gets
// before the next page is requested.
const DefaultPreloadMargin = 2

// Config holds the viewer's timings and thresholds.
type Config struct {
	Chrome        interact.ChromeTimings
	HoverFade     time.Duration
	RadialFade    time.Duration
	StallAfter    time.Duration
	Toast         progress.ToastTimings
	DragThreshold int
	LongPress     time.Duration
	PageSize      int
	// PreloadMargin is how many loaded items may remain past the cursor
	// before the next page is requested. A negative margin disables
	// preloading; pages are then fetched only when a move needs them.
	PreloadMargin int
	// AutoAdvance re-applies a move that waited for a page once the page
	// arrives, if the user has not navigated since.
	AutoAdvance bool
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		Chrome:        interact.DefaultChromeTimings,
		HoverFade:     interact.DefaultHighlightFade,
		RadialFade:    progress.DefaultRadialFade,
		StallAfter:    progress.DefaultStallAfter,
		Toast:         progress.DefaultToastTimings,
		DragThreshold: interact.DefaultDragThreshold,
		LongPress:     interact.DefaultLongPress,
		PageSize:      overview.DefaultPageSize,
		PreloadMargin: DefaultPreloadMargin,
		AutoAdvance:   true,
	}
}

// withDefaults fills zero values from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Chrome.Show <= 0 {
		c.Chrome.Show = d.Chrome.Show
	}
	if c.Chrome.Hide <= 0 {
		c.Chrome.Hide = d.Chrome.Hide
	}
	if c.Chrome.WaitHide <= 0 {
		c.Chrome.WaitHide = d.Chrome.WaitHide
	}
	if c.HoverFade <= 0 {
		c.HoverFade = d.HoverFade
	}
	if c.RadialFade <= 0 {
		c.RadialFade = d.RadialFade
	}
	if c.StallAfter <= 0 {
		c.StallAfter = d.StallAfter
	}
	if c.Toast.FadeIn <= 0 {
		c.Toast.FadeIn = d.Toast.FadeIn
	}
	if c.Toast.Hold <= 0 {
		c.Toast.Hold = d.Toast.Hold
	}
	if c.Toast.FadeOut <= 0 {
		c.Toast.FadeOut = d.Toast.FadeOut
	}
	if c.DragThreshold <= 0 {
		c.DragThreshold = d.DragThreshold
	}
	if c.LongPress <= 0 {
		c.LongPress = d.LongPress
	}
	if c.PageSize <= 0 {
		c.PageSize = d.PageSize
	}
	return c
}
