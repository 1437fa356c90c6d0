package extractor

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
)

const (
	navigationTimeout = 30 * time.Second
	videoReadyTimeout = 5 * time.Second
)

// BrowserOptions configures headless Chrome and the frame canvas.
type BrowserOptions struct {
	// RemoteURL is the DevTools WebSocket of a running Chrome. Empty launches a local one.
	RemoteURL   string
	SeekTimeout time.Duration
	Width       int
	Height      int
	Quality     float64
}

// Browser lazily starts (or connects to) Chrome and opens watch pages in it.
type Browser struct {
	opts    BrowserOptions
	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
}

func NewBrowser(opts BrowserOptions) *Browser {
	return &Browser{opts: opts}
}

func (b *Browser) connect() (*rod.Browser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browser != nil {
		return b.browser, nil
	}

	wsURL := b.opts.RemoteURL
	if wsURL == "" {
		l := launcher.New().Headless(true).Set("autoplay-policy", "no-user-gesture-required")
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("failed to launch chrome: %w", err)
		}
		wsURL = u
		b.lnch = l
		log.Printf("Launched headless Chrome (%s)", wsURL)
	}

	rb := rod.New().ControlURL(wsURL)
	if err := rb.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to chrome: %w", err)
	}
	b.browser = rb
	return rb, nil
}

// Open navigates a new tab to pageURL and waits for the load event.
func (b *Browser) Open(ctx context.Context, pageURL string) (*Tab, error) {
	rb, err := b.connect()
	if err != nil {
		return nil, err
	}

	// YouTube serves a consent or bot wall to an unmasked headless Chrome
	page, err := stealth.Page(rb)
	if err != nil {
		return nil, fmt.Errorf("failed to create tab: %w", err)
	}

	navCtx, cancel := context.WithTimeout(ctx, navigationTimeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		page.Close()
		return nil, fmt.Errorf("failed to navigate to %s: %w", pageURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		log.Printf("Warning: Timed out waiting for %s to load: %v", pageURL, err)
	}

	return &Tab{page: page, opts: b.opts}, nil
}

func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var err error
	if b.browser != nil {
		err = b.browser.Close()
		b.browser = nil
	}
	if b.lnch != nil {
		b.lnch.Cleanup()
		b.lnch = nil
	}
	return err
}

// Tab is one open watch page. It implements videoPlayer.
type Tab struct {
	page *rod.Page
	opts BrowserOptions
}

// HTML returns the rendered DOM.
func (t *Tab) HTML(ctx context.Context) (string, error) {
	html, err := t.page.Context(ctx).HTML()
	if err != nil {
		return "", fmt.Errorf("failed to read page HTML: %w", err)
	}
	return html, nil
}

const probeJS = `(waitMs) => new Promise(resolve => {
	const report = () => {
		const v = document.querySelector('video');
		if (!v || v.readyState < 2) return null;
		return { duration: v.duration, currentTime: v.currentTime };
	};
	const deadline = Date.now() + waitMs;
	const poll = () => {
		const state = report();
		if (state || Date.now() >= deadline) { resolve(state); return; }
		setTimeout(poll, 100);
	};
	poll();
})`

func (t *Tab) Probe(ctx context.Context) (playerState, bool, error) {
	res, err := t.page.Context(ctx).Eval(probeJS, videoReadyTimeout.Milliseconds())
	if err != nil {
		return playerState{}, false, err
	}
	if res.Value.Nil() {
		return playerState{}, false, nil
	}
	return playerState{
		Duration:    res.Value.Get("duration").Num(),
		CurrentTime: res.Value.Get("currentTime").Num(),
	}, true, nil
}

const captureJS = `(ts, width, height, quality, waitMs) => new Promise((resolve, reject) => {
	const v = document.querySelector('video');
	if (!v) { reject(new Error('video element disappeared')); return; }
	let done = false;
	const draw = () => {
		if (done) return;
		done = true;
		try {
			const canvas = document.createElement('canvas');
			canvas.width = width;
			canvas.height = height;
			canvas.getContext('2d').drawImage(v, 0, 0, width, height);
			resolve(canvas.toDataURL('image/jpeg', quality));
		} catch (e) {
			reject(e);
		}
	};
	v.addEventListener('seeked', draw, { once: true });
	setTimeout(draw, waitMs);
	v.currentTime = ts;
})`

func (t *Tab) Capture(ctx context.Context, ts float64) (string, error) {
	res, err := t.page.Context(ctx).Eval(captureJS, ts, t.opts.Width, t.opts.Height, t.opts.Quality, t.opts.SeekTimeout.Milliseconds())
	if err != nil {
		return "", err
	}
	// Strip the data:image/jpeg;base64, prefix
	_, data, found := strings.Cut(res.Value.Str(), ",")
	if !found {
		return "", fmt.Errorf("canvas returned no image data")
	}
	return data, nil
}

func (t *Tab) Seek(ctx context.Context, ts float64) error {
	_, err := t.page.Context(ctx).Eval(`(ts) => { const v = document.querySelector('video'); if (v) v.currentTime = ts; }`, ts)
	return err
}

func (t *Tab) Close() error {
	return t.page.Close()
}
