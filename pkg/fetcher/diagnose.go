package fetcher

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Markers the portal's edge protection tends to leave in the stub pages
// it serves to detected bots.
var blockMarkers = []string{
	"captcha",
	"access denied",
	"attention required",
	"request unsuccessful",
	"enable javascript",
}

// diagnoseHTML inspects a captured page snapshot and returns a short
// hint about why the page is unusable, or "" when nothing recognizable
// is found. The hint goes into the failure message so an operator can
// tell a bot block from a plain broken page without opening the
// screenshot.
func diagnoseHTML(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	lowered := strings.ToLower(html)
	title := strings.ToLower(strings.TrimSpace(doc.Find("title").Text()))
	for _, marker := range blockMarkers {
		if strings.Contains(title, marker) || strings.Contains(lowered, marker) {
			return fmt.Sprintf("page looks like a bot-protection stub (matched %q)", marker)
		}
	}

	if doc.Find(exportLinkSelector).Length() == 0 {
		return "the CSV export link is absent from the page"
	}
	return ""
}
