// Package capture screenshots the event board with headless Chromium.
package capture

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

const (
	DefaultWidth   = 1280
	DefaultHeight  = 900
	DefaultTimeout = 30 * time.Second
)

// ErrNoURL is returned when no page URL is given.
var ErrNoURL = errors.New("capture: URL is required")

// Options configures a Capturer. Zero values take the defaults.
type Options struct {
	Width   int
	Height  int
	Timeout time.Duration
	// ChromePath overrides the browser binary (CHROME_PATH).
	ChromePath string
}

// Capturer takes PNG screenshots of a page once it reports data-ready="true".
type Capturer struct {
	opts Options
}

// New creates a Capturer.
func New(opts Options) *Capturer {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Capturer{opts: opts}
}

// Options returns the effective options.
func (c *Capturer) Options() Options {
	return c.opts
}

// PNG navigates to url, waits for the page to finish rendering, and returns
// a full-page screenshot.
func (c *Capturer) PNG(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, ErrNoURL
	}

	allocOpts := chromedp.DefaultExecAllocatorOptions[:]
	if c.opts.ChromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(c.opts.ChromePath))
	}
	allocOpts = append(allocOpts,
		chromedp.Headless,
		chromedp.DisableGPU,
		chromedp.NoSandbox,
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer allocCancel()

	chromeCtx, chromeCancel := chromedp.NewContext(allocCtx)
	defer chromeCancel()

	chromeCtx, timeoutCancel := context.WithTimeout(chromeCtx, c.opts.Timeout)
	defer timeoutCancel()

	var png []byte
	err := chromedp.Run(chromeCtx,
		chromedp.EmulateViewport(int64(c.opts.Width), int64(c.opts.Height)),
		chromedp.Navigate(url),
		chromedp.WaitVisible(`[data-ready="true"]`, chromedp.ByQuery),
		// Let the last paint land.
		chromedp.Sleep(300*time.Millisecond),
		chromedp.FullScreenshot(&png, 100),
	)
	if err != nil {
		return nil, fmt.Errorf("capture: chromedp run failed: %w", err)
	}
	return png, nil
}
