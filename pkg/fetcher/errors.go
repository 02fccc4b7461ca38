package fetcher

import "fmt"

// FailureKind classifies why a fetch attempt failed.
type FailureKind string

const (
	// SiteUnreachable covers network errors and the portal's edge
	// protection refusing to serve the page at all.
	SiteUnreachable FailureKind = "site unreachable"
	// PartialLoad means the page "loaded" but rendered as the stub the
	// portal serves to detected bots.
	PartialLoad FailureKind = "partial load"
	// ExportControlMissing means the search trigger or the export link
	// never showed up within its bound.
	ExportControlMissing FailureKind = "export control missing"
	// DownloadFailed means the export download itself did not complete.
	DownloadFailed FailureKind = "download failed"
)

// FetchError is the single failure surface of a fetch attempt.
// Screenshot points at a diagnostic capture when one could be taken;
// the captures exist for operator debugging, not for users.
type FetchError struct {
	Kind       FailureKind
	Screenshot string
	Err        error
}

func (e *FetchError) Error() string {
	if e.Screenshot != "" {
		return fmt.Sprintf("fetch failed (%s): %v [screenshot: %s]", e.Kind, e.Err, e.Screenshot)
	}
	return fmt.Sprintf("fetch failed (%s): %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
