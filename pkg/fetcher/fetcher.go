package fetcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

const (
	// The portal blocks default headless signatures, so the session
	// presents itself as a regular desktop Chrome.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/120.0.0.0 Safari/537.36"

	// A fully rendered schedule page is a few hundred KB. Anything below
	// this is the stub served to detected bots.
	minPageSize = 50000

	loadTimeout     = 2 * time.Minute
	cookieTimeout   = 3 * time.Second
	searchTimeout   = 90 * time.Second
	settleDelay     = 22 * time.Second
	refreshInterval = time.Second
	refreshAttempts = 30
	linkTimeout     = 2 * time.Minute
	downloadTimeout = 3 * time.Minute

	cookieButtonText   = "Zezwól"
	termFilterLabel    = "Cały semestr"
	filterLabelSel     = "label.custom-control-label"
	searchButtonSel    = "#SzukajLogout"
	exportLinkSelector = `a[href*='WydrukTokuCsv']`
)

// Fetcher drives one headless-browser session per call against the
// schedule portal and saves the CSV export it produces. Sessions are
// never reused across fetches.
type Fetcher struct {
	// ScreenshotDir is where diagnostic captures of failed steps go.
	// Empty means the current directory.
	ScreenshotDir string
	// Headless can be switched off to watch a fetch live when debugging
	// a portal change.
	Headless bool
}

func New(screenshotDir string) *Fetcher {
	return &Fetcher{ScreenshotDir: screenshotDir, Headless: true}
}

// step is one stage of the browser sequence. Required steps abort the
// whole fetch with their failure kind; best-effort steps only log. The
// distinction is deliberate: cookie banners and the term filter are
// enhancements, the search trigger and the download are not.
type step struct {
	name     string
	required bool
	kind     FailureKind // classification when a required step fails
	tag      string      // screenshot file tag
	run      func() error
}

// Fetch runs one end-to-end acquisition: navigate, defeat the consent
// overlay, widen the date filter to the whole term, trigger the search,
// wait out the table refresh and download the CSV export into destPath.
// The destination is only touched after the download fully completed;
// on any failure the previous file, if any, survives. All failures come
// back as a *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, url, destPath string) error {
	browser, cleanup, err := f.launch()
	if err != nil {
		return &FetchError{Kind: SiteUnreachable, Err: fmt.Errorf("launching browser: %w", err)}
	}
	defer cleanup()

	page, err := stealth.Page(browser)
	if err != nil {
		return &FetchError{Kind: SiteUnreachable, Err: fmt.Errorf("opening stealth page: %w", err)}
	}
	page = page.Context(ctx)

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: userAgent}); err != nil {
		return &FetchError{Kind: SiteUnreachable, Err: fmt.Errorf("setting user agent: %w", err)}
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{Width: 1280, Height: 800}); err != nil {
		return &FetchError{Kind: SiteUnreachable, Err: fmt.Errorf("setting viewport: %w", err)}
	}

	var (
		link *rod.Element
		data []byte
	)

	steps := []step{
		{name: "load page", required: true, kind: SiteUnreachable, tag: "goto_failed", run: func() error {
			return loadPage(page, url)
		}},
		{name: "verify render", required: true, kind: PartialLoad, tag: "empty_html", run: func() error {
			return verifyRendered(page)
		}},
		{name: "dismiss cookie banner", required: false, run: func() error {
			return dismissCookies(page)
		}},
		{name: "select whole-term filter", required: false, run: func() error {
			return selectTermFilter(page)
		}},
		{name: "trigger search", required: true, kind: ExportControlMissing, tag: "szukaj", run: func() error {
			return triggerSearchAndSettle(ctx, page)
		}},
		{name: "locate export link", required: true, kind: ExportControlMissing, tag: "download", run: func() error {
			var err error
			link, err = waitExportLink(page)
			return err
		}},
		{name: "download export", required: true, kind: DownloadFailed, tag: "download", run: func() error {
			var err error
			data, err = downloadExport(browser, link)
			return err
		}},
	}

	for _, s := range steps {
		err := s.run()
		if err == nil {
			continue
		}
		if !s.required {
			log.Warn("skipping optional fetch step", "step", s.name, "err", err)
			continue
		}
		return f.fail(page, s.kind, s.tag, fmt.Errorf("%s: %w", s.name, err))
	}

	if err := stageFile(destPath, data); err != nil {
		return &FetchError{Kind: DownloadFailed, Err: fmt.Errorf("saving export to %s: %w", destPath, err)}
	}

	log.Info("schedule export saved", "path", destPath, "bytes", len(data))
	return nil
}

// launch starts an isolated browser with the automation fingerprints
// the portal checks for switched off. The returned cleanup tears the
// whole browser down and must run on every exit path.
func (f *Fetcher) launch() (*rod.Browser, func(), error) {
	l := launcher.New().
		Headless(f.Headless).
		NoSandbox(true).
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("disable-web-security").
		Set("disable-features", "IsolateOrigins,site-per-process").
		Set("disable-blink-features", "AutomationControlled")

	controlURL, err := l.Launch()
	if err != nil {
		return nil, nil, fmt.Errorf("starting chromium: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return nil, nil, fmt.Errorf("connecting to chromium: %w", err)
	}

	cleanup := func() {
		if err := browser.Close(); err != nil {
			log.Warn("closing browser", "err", err)
		}
		l.Cleanup()
	}
	return browser, cleanup, nil
}

func loadPage(page *rod.Page, url string) error {
	nav := page.Timeout(loadTimeout)
	if err := nav.Navigate(url); err != nil {
		return fmt.Errorf("the site did not respond, likely a server-side IP block: %w", err)
	}
	if err := nav.WaitLoad(); err != nil {
		return fmt.Errorf("the site did not finish loading: %w", err)
	}
	return nil
}

// verifyRendered distinguishes "didn't load" from "loaded but blocked":
// a bot-detected session gets a stub page that is implausibly small.
func verifyRendered(page *rod.Page) error {
	html, err := page.HTML()
	if err != nil {
		return fmt.Errorf("reading page content: %w", err)
	}
	if len(html) >= minPageSize {
		return nil
	}

	cause := fmt.Errorf("page rendered only %d bytes, the portal is likely blocking headless browsers", len(html))
	if hint := diagnoseHTML(html); hint != "" {
		cause = fmt.Errorf("%v (%s)", cause, hint)
	}
	return cause
}

func dismissCookies(page *rod.Page) error {
	btn, err := page.Timeout(cookieTimeout).ElementR("button", cookieButtonText)
	if err != nil {
		return fmt.Errorf("no consent overlay within %s", cookieTimeout)
	}
	return btn.Click(proto.InputMouseButtonLeft, 1)
}

// selectTermFilter widens the export to the whole term. The checkbox
// labels are rendered dynamically, so the match is by exact text.
func selectTermFilter(page *rod.Page) error {
	labels, err := page.Elements(filterLabelSel)
	if err != nil {
		return fmt.Errorf("listing filter labels: %w", err)
	}

	for _, label := range labels {
		text, err := label.Text()
		if err != nil {
			continue
		}
		if strings.TrimSpace(text) == termFilterLabel {
			return label.Click(proto.InputMouseButtonLeft, 1)
		}
	}
	return fmt.Errorf("no %q label among %d filter controls", termFilterLabel, len(labels))
}

// triggerSearchAndSettle clicks the search control, then waits for the
// results table to refresh, using document growth relative to the
// pre-click size as the refresh proxy. The growth poll timing out is
// non-fatal: the export link may already be usable.
func triggerSearchAndSettle(ctx context.Context, page *rod.Page) error {
	before := 0
	if html, err := page.HTML(); err == nil {
		before = len(html)
	}

	btn, err := page.Timeout(searchTimeout).Element(searchButtonSel)
	if err != nil {
		return fmt.Errorf("locating %s: %w", searchButtonSel, err)
	}
	if err := btn.WaitVisible(); err != nil {
		return fmt.Errorf("%s never became visible: %w", searchButtonSel, err)
	}
	if err := clickWithFallback(btn); err != nil {
		return fmt.Errorf("clicking %s: %w", searchButtonSel, err)
	}

	log.Info("search triggered, waiting for the results table")
	sleepCtx(ctx, settleDelay)

	grown := Poll(ctx, refreshInterval, refreshAttempts, func() bool {
		html, err := page.HTML()
		return err == nil && len(html) > before
	})
	if !grown {
		log.Warn("results table may not have refreshed in time, continuing anyway")
	}
	return nil
}

func waitExportLink(page *rod.Page) (*rod.Element, error) {
	link, err := page.Timeout(linkTimeout).Element(exportLinkSelector)
	if err != nil {
		return nil, fmt.Errorf("locating the CSV export link: %w", err)
	}
	if err := link.WaitVisible(); err != nil {
		return nil, fmt.Errorf("the CSV export link never became visible: %w", err)
	}
	return link, nil
}

// downloadExport clicks the export link and captures the file the
// browser downloads in response.
func downloadExport(browser *rod.Browser, link *rod.Element) ([]byte, error) {
	dir, err := os.MkdirTemp("", "planctl-download-")
	if err != nil {
		return nil, fmt.Errorf("creating download dir: %w", err)
	}
	defer os.RemoveAll(dir)

	wait := browser.WaitDownload(dir)

	if err := clickWithFallback(link); err != nil {
		return nil, fmt.Errorf("clicking the export link: %w", err)
	}

	done := make(chan *proto.PageDownloadWillBegin, 1)
	go func() { done <- wait() }()

	select {
	case info := <-done:
		if info == nil {
			return nil, fmt.Errorf("the download never started")
		}
		data, err := os.ReadFile(filepath.Join(dir, info.GUID))
		if err != nil {
			return nil, fmt.Errorf("reading the downloaded export: %w", err)
		}
		return data, nil
	case <-time.After(downloadTimeout):
		return nil, fmt.Errorf("the download did not finish within %s", downloadTimeout)
	}
}

// clickWithFallback tries a real mouse click first and falls back to a
// programmatic DOM click; the portal sometimes keeps a control covered
// by an overlay even though it is functional.
func clickWithFallback(el *rod.Element) error {
	if err := el.Click(proto.InputMouseButtonLeft, 1); err == nil {
		return nil
	}
	_, err := el.Eval("() => this.click()")
	return err
}

// stageFile writes data next to dest and renames it into place, so a
// reader never observes a half-written export and a failure here leaves
// any previous file untouched.
func stageFile(dest string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".staging-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// fail captures a diagnostic screenshot and wraps the cause in the
// failure taxonomy.
func (f *Fetcher) fail(page *rod.Page, kind FailureKind, tag string, cause error) *FetchError {
	shot := f.screenshot(page, tag)
	log.Error("fetch attempt failed", "kind", kind, "screenshot", shot, "err", cause)
	return &FetchError{Kind: kind, Screenshot: shot, Err: cause}
}

func (f *Fetcher) screenshot(page *rod.Page, tag string) string {
	data, err := page.Screenshot(false, nil)
	if err != nil {
		return ""
	}

	if f.ScreenshotDir != "" {
		if err := os.MkdirAll(f.ScreenshotDir, 0755); err != nil {
			return ""
		}
	}

	path := filepath.Join(f.ScreenshotDir, fmt.Sprintf("debug_%s.png", tag))
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Warn("could not write diagnostic screenshot", "path", path, "err", err)
		return ""
	}
	return path
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
