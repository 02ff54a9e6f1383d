package core

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

// RenderOptions controls how a page is fetched and rendered.
//
// This uses a real Chrome/Chromium browser (via the DevTools protocol) so that
// JS-heavy pages have a chance to fully render before metadata is read off the
// final HTML.
type RenderOptions struct {
	// ChromePath optionally overrides the Chrome/Chromium executable path.
	// If empty, chromedp will try to find a browser on PATH / default locations.
	ChromePath string
	// Headless controls whether Chrome runs without a visible window.
	// Set to false to debug scraping in a real window ("headful").
	Headless bool
	// Timeout is the per-page deadline for navigation + rendering + capture.
	// If <= 0, a sensible default is used.
	Timeout time.Duration
	// WaitSelector optionally waits for a CSS selector to become visible before
	// reading the page. This is useful for SPAs or sites that render late.
	WaitSelector string
}

// RenderResult is the rendered view of a single page.
type RenderResult struct {
	// FinalURL is the browser's final URL after redirects.
	FinalURL string
	// Title is the document title if available (may be empty).
	Title string
	// HTML is the final rendered document HTML (outerHTML of <html>).
	HTML string
}

// RenderPage loads a URL in Chrome and returns the final rendered HTML.
//
// The function:
// - navigates to the provided URL
// - waits for <body> to be ready (and optionally opts.WaitSelector to be visible)
// - reads final URL, document.title, and <html> outerHTML
//
// Notes:
//   - This does not attempt to bypass paywalls/CAPTCHAs/login walls; failures are
//     returned as errors.
//   - For pages that set a blank title, we fall back to parsing <title> from HTML.
func RenderPage(ctx context.Context, url string, opts RenderOptions) (RenderResult, error) {
	log.Debug().Str("url", url).Msg("rendering page")
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultRenderTimeout
	}

	allocatorOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocatorOpts = append(allocatorOpts,
		chromedp.NoDefaultBrowserCheck,
		chromedp.NoFirstRun,
	)
	if opts.ChromePath != "" {
		allocatorOpts = append(allocatorOpts, chromedp.ExecPath(opts.ChromePath))
	}
	if opts.Headless {
		allocatorOpts = append(allocatorOpts, chromedp.Headless)
	} else {
		allocatorOpts = append(allocatorOpts, chromedp.Flag("headless", false))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocatorOpts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, opts.Timeout)
	defer cancelRun()

	var html string
	var title string
	var finalURL string

	// Wait for network idle to ensure all resources are loaded
	waitForNetworkIdle := func(ctx context.Context) error {
		// Enable lifecycle events
		if err := page.SetLifecycleEventsEnabled(true).Do(ctx); err != nil {
			return err
		}

		// Create a channel to receive lifecycle events
		ch := make(chan struct{})
		chromedp.ListenTarget(ctx, func(ev interface{}) {
			if e, ok := ev.(*page.EventLifecycleEvent); ok {
				if e.Name == "networkIdle" {
					select {
					case ch <- struct{}{}:
					default:
					}
				}
			}
		})

		// Navigate and wait for network idle
		if err := chromedp.Navigate(url).Do(ctx); err != nil {
			return err
		}

		// Wait for networkIdle event or timeout
		select {
		case <-ch:
			log.Debug().Str("url", url).Msg("network idle reached")
		case <-ctx.Done():
			return ctx.Err()
		}

		return nil
	}

	actions := []chromedp.Action{
		chromedp.ActionFunc(waitForNetworkIdle),
		chromedp.WaitReady("body", chromedp.ByQuery),
	}
	if strings.TrimSpace(opts.WaitSelector) != "" {
		actions = append(actions, chromedp.WaitVisible(opts.WaitSelector, chromedp.ByQuery))
	}
	// Small delay to allow any final JS execution after network idle
	actions = append(actions,
		chromedp.Sleep(DefaultNetworkIdleDelay),
		chromedp.Location(&finalURL),
		chromedp.Title(&title),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)

	if err := chromedp.Run(runCtx, actions...); err != nil {
		return RenderResult{}, err
	}

	// Some pages leave document.title blank; fall back to parsing HTML if needed.
	if strings.TrimSpace(title) == "" && strings.TrimSpace(html) != "" {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
			title = strings.TrimSpace(doc.Find("title").First().Text())
		}
	}

	return RenderResult{
		FinalURL: finalURL,
		Title:    title,
		HTML:     html,
	}, nil
}

// RenderMetadata renders a page in Chrome and extracts capture metadata from
// the final HTML. It is the heavyweight alternative to FetchMetadata for
// pages that only produce their content client-side.
func RenderMetadata(ctx context.Context, url string, opts RenderOptions) (Metadata, error) {
	res, err := RenderPage(ctx, url, opts)
	if err != nil {
		return Metadata{}, err
	}
	meta, err := ExtractMetadata(res.HTML, res.FinalURL)
	if err != nil {
		return Metadata{}, err
	}
	if meta.Title == "" {
		meta.Title = res.Title
	}
	return meta, nil
}
