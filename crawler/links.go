package crawler

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/use-agent/sitelens/frontier"
)

// extractLinks pulls same-domain outbound links from rendered HTML,
// resolving relative hrefs against the page URL. Fragments, javascript:
// and mail/tel links are skipped. Downloadable resources are included;
// the orchestrator decides what to do with them.
func extractLinks(rawHTML, pageURL string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	var links []string
	seen := make(map[string]bool)

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || href == "" {
			return
		}
		if strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "javascript:") ||
			strings.HasPrefix(href, "mailto:") ||
			strings.HasPrefix(href, "tel:") {
			return
		}

		linkURL, err := url.Parse(href)
		if err != nil {
			return
		}
		if !linkURL.IsAbs() {
			linkURL = base.ResolveReference(linkURL)
		}
		linkURL.Fragment = ""

		resolved := linkURL.String()
		if seen[resolved] {
			return
		}
		seen[resolved] = true

		if !frontier.SameDomain(pageURL, resolved) {
			return
		}
		links = append(links, resolved)
	})

	return links
}

// pageTitle extracts the document title from rendered HTML with a
// streaming tokenizer, so broken markup past <head> cannot hurt it.
func pageTitle(rawHTML string) string {
	z := html.NewTokenizer(strings.NewReader(rawHTML))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			name, _ := z.TagName()
			if string(name) == "title" {
				if z.Next() == html.TextToken {
					return strings.TrimSpace(string(z.Text()))
				}
				return ""
			}
		}
	}
}
