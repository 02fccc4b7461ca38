package fetcher

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestFetchErrorMessage(t *testing.T) {
	err := &FetchError{
		Kind:       PartialLoad,
		Screenshot: "debug_empty_html.png",
		Err:        errors.New("page rendered only 1234 bytes"),
	}

	msg := err.Error()
	if !strings.Contains(msg, "partial load") {
		t.Errorf("expected the failure kind in the message, got %q", msg)
	}
	if !strings.Contains(msg, "debug_empty_html.png") {
		t.Errorf("expected the screenshot path in the message, got %q", msg)
	}
}

func TestFetchErrorUnwraps(t *testing.T) {
	cause := errors.New("boom")
	wrapped := fmt.Errorf("updating schedule: %w", &FetchError{Kind: DownloadFailed, Err: cause})

	var fe *FetchError
	if !errors.As(wrapped, &fe) {
		t.Fatalf("expected errors.As to find the FetchError")
	}
	if fe.Kind != DownloadFailed {
		t.Errorf("expected kind %q, got %q", DownloadFailed, fe.Kind)
	}
	if !errors.Is(wrapped, cause) {
		t.Errorf("expected the original cause to stay reachable through Unwrap")
	}
}
