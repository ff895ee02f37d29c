package orcid

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/net/html"

	"github.com/agentstation/cffauthor/pkg/logging"
)

// ScrapeGitHubProfile looks for a linked ORCID badge on a GitHub profile
// page and returns its canonical URL, or "" when no badge is present. The
// badge lives in the profile's vcard-details list. Failures degrade to "",
// never an error; the enrichment chain just moves to the next signal.
func (c *Client) ScrapeGitHubProfile(ctx context.Context, username string) string {
	key := "scrape:" + username
	if v, ok := c.cache.get(key); ok {
		return v.(string)
	}
	log := logging.Ctx(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.githubURL+"/"+username, nil)
	if err != nil {
		c.cache.set(key, "")
		return ""
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("username", username).Msg("failed to fetch GitHub profile page")
		c.cache.set(key, "")
		return ""
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		log.Warn().Int("status", resp.StatusCode).Str("username", username).Msg("failed to fetch GitHub profile page")
		c.cache.set(key, "")
		return ""
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		log.Warn().Err(err).Str("username", username).Msg("failed to parse GitHub profile page")
		c.cache.set(key, "")
		return ""
	}

	badge := findBadge(doc)
	if badge == "" {
		log.Info().Str("username", username).Msg("no linked ORCID badge on GitHub profile page")
	} else {
		log.Info().Str("username", username).Str("orcid", badge).Msg("linked ORCID badge found")
	}

	c.cache.set(key, badge)
	return badge
}

// findBadge walks the document for a <ul> whose class mentions
// vcard-details, then for an ORCID link inside that section only.
func findBadge(doc *html.Node) string {
	details := findNode(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "ul" &&
			strings.Contains(attr(n, "class"), "vcard-details")
	})
	if details == nil {
		return ""
	}

	link := findNode(details, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "a" &&
			urlPattern.MatchString(attr(n, "href"))
	})
	if link == nil {
		return ""
	}
	return ExtractURL(attr(link, "href"))
}

// findNode depth-first searches for the first node satisfying want.
func findNode(n *html.Node, want func(*html.Node) bool) *html.Node {
	if want(n) {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findNode(child, want); found != nil {
			return found
		}
	}
	return nil
}

// attr returns the value of the named attribute, or "".
func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}
