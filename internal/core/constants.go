package core

import "time"

// Defaults for the metadata pipeline. Capture can run with a plain HTTP
// fetch or a headless-browser render; the render budget is larger because
// it waits for scripts to settle.
const (
	DefaultFetchTimeout     = 10 * time.Second
	DefaultRenderTimeout    = 35 * time.Second
	DefaultNetworkIdleDelay = 500 * time.Millisecond

	// MaxFetchSize caps how much of a page body the fetcher will read.
	MaxFetchSize = 5 * 1024 * 1024

	// UserAgent identifies capture requests to origin servers.
	UserAgent = "Mozilla/5.0 (compatible; bookmarkable/1.0)"
)
