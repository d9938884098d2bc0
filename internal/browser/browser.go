package browser

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"time"

	"rental-harvester/config"
	"rental-harvester/helpers"
	"rental-harvester/logger"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

const (
	cardPollInterval = 500 * time.Millisecond
	cardRetryDelay   = 3 * time.Second
	pageLoadTimeout  = 60 * time.Second
)

// Browser renders search pages with headless Chrome. Search pages build
// their listing cards with JavaScript, so a plain fetch sees none of them.
type Browser struct {
	ctx          context.Context
	cancelAlloc  context.CancelFunc
	cancelCtx    context.CancelFunc
	cardSelector string
	waitTimeout  time.Duration
	log          *logger.Logger
}

// New starts a headless browser. cardSelector is the element whose
// presence marks a search page as fully rendered.
func New(cfg *config.Config, cardSelector string) (*Browser, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1366, 900),
	)
	if bin := findChromeBinary(cfg.ChromeBin); bin != "" {
		opts = append(opts, chromedp.ExecPath(bin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancelCtx := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	b := &Browser{
		ctx:          browserCtx,
		cancelAlloc:  cancelAlloc,
		cancelCtx:    cancelCtx,
		cardSelector: cardSelector,
		waitTimeout:  cfg.CardWaitTimeout,
		log:          logger.ForBrowser(),
	}

	// Start the browser process now so startup failures surface here
	if err := chromedp.Run(browserCtx); err != nil {
		b.Close()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	return b, nil
}

// RenderSearchPage loads page N of an area search and returns the
// rendered HTML. It waits for listing cards up to the configured timeout
// and retries the load once before accepting a card-less page; an empty
// page is the traversal's termination signal, not an error.
func (b *Browser) RenderSearchPage(ctx context.Context, areaURL string, page int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	pageURL := fmt.Sprintf("%s?page=%d", areaURL, page)

	tabCtx, cancelTab := chromedp.NewContext(b.ctx)
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, pageLoadTimeout)
	defer cancelTimeout()

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(pageURL),
		chromedp.ActionFunc(b.waitForCards),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", pageURL, err)
	}

	return html, nil
}

// waitForCards polls for listing cards, reloading once when none appear.
func (b *Browser) waitForCards(ctx context.Context) error {
	found, err := b.pollForCards(ctx)
	if err != nil || found {
		return err
	}

	b.log.Warn().Str("selector", b.cardSelector).Msg("No listing cards appeared, reloading once")

	select {
	case <-time.After(cardRetryDelay):
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := chromedp.Reload().Do(ctx); err != nil {
		return err
	}

	found, err = b.pollForCards(ctx)
	if err != nil {
		return err
	}
	if !found {
		b.log.Warn().Str("selector", b.cardSelector).Msg("Still no listing cards, accepting page as rendered")
	}
	return nil
}

func (b *Browser) pollForCards(ctx context.Context) (bool, error) {
	expr := fmt.Sprintf("document.querySelectorAll(%q).length", b.cardSelector)
	deadline := time.Now().Add(b.waitTimeout)

	for {
		var count int
		if err := chromedp.Evaluate(expr, &count).Do(ctx); err != nil {
			return false, err
		}
		if count > 0 {
			return true, nil
		}
		if time.Now().After(deadline) {
			return false, nil
		}
		select {
		case <-time.After(cardPollInterval):
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
}

// SessionSeed exports the browser's cookies and user agent so detail
// fetches can reuse the session the site already accepted.
func (b *Browser) SessionSeed(ctx context.Context) (helpers.SessionSeed, error) {
	var seed helpers.SessionSeed
	if err := ctx.Err(); err != nil {
		return seed, err
	}

	err := chromedp.Run(b.ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			cookies, err := network.GetCookies().Do(ctx)
			if err != nil {
				return err
			}
			for _, c := range cookies {
				seed.Cookies = append(seed.Cookies, &http.Cookie{
					Name:   c.Name,
					Value:  c.Value,
					Domain: c.Domain,
					Path:   c.Path,
				})
			}
			return nil
		}),
		chromedp.Evaluate("navigator.userAgent", &seed.UserAgent),
	)
	if err != nil {
		return seed, fmt.Errorf("failed to export browser session: %w", err)
	}

	return seed, nil
}

// Close shuts the browser down.
func (b *Browser) Close() {
	b.cancelCtx()
	b.cancelAlloc()
}

// findChromeBinary locates the Chrome/Chromium binary.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
