// Package discover finds candidate job-posting pages for an organization,
// starting from its root URL. Discovery is best-effort: no candidates is a
// valid outcome, not an error.
package discover

import (
	"bytes"
	"context"
	"log"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/schema"
	"jobscout-engine/internal/urlutil"
)

// Getter is the slice of the fetcher discovery needs.
type Getter interface {
	Get(ctx context.Context, url string) (status int, body []byte, err error)
}

// careerKeywords match anchor text or path segments pointing at listings.
var careerKeywords = []string{
	"careers", "career", "jobs", "job openings", "opportunities",
	"work with us", "join us", "join our team", "hiring",
	"employment", "positions", "openings", "vacancies",
}

// conventionalPaths are probed when the root page links nowhere useful.
var conventionalPaths = []string{
	"/careers", "/careers/", "/career",
	"/jobs", "/jobs/", "/job",
	"/opportunities", "/join-us", "/work-with-us",
	"/employment", "/hiring", "/openings", "/positions",
	"/about/careers", "/company/careers", "/en/careers",
}

// jobPathRe spots detail-page paths: a job-ish segment followed by an
// identifier-looking tail.
var jobPathRe = regexp.MustCompile(`(?i)/(job|jobs|position|positions|opening|openings|posting|postings|career|careers|apply|detail|view)s?/[a-z0-9][a-z0-9_-]*`)

var numericIDRe = regexp.MustCompile(`/[0-9]{4,}(/|$)`)

const maxListingPages = 6

type Discoverer struct {
	fetcher       Getter
	maxCandidates int
}

func New(f Getter, maxCandidates int) *Discoverer {
	if maxCandidates <= 0 {
		maxCandidates = 50
	}
	return &Discoverer{fetcher: f, maxCandidates: maxCandidates}
}

// Candidates returns a bounded, deduplicated list of detail-page URLs for
// one organization. The root fetch failing is the org's error; everything
// past that degrades quietly to fewer candidates.
func (d *Discoverer) Candidates(ctx context.Context, org domain.OrgSpec) ([]string, error) {
	root, err := url.Parse(strings.TrimSpace(org.RootURL))
	if err != nil || root.Host == "" {
		return nil, &badRootError{org.RootURL}
	}

	_, body, err := d.fetcher.Get(ctx, root.String())
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var candidates []string
	add := func(raw string) {
		c := urlutil.Canonicalize(raw)
		if c == "" || seen[c] || len(candidates) >= d.maxCandidates {
			return
		}
		seen[c] = true
		candidates = append(candidates, c)
	}

	// A root page embedding postings directly is itself a candidate.
	if schema.HasJobPosting(body) {
		add(root.String())
	}

	listings := d.listingPages(ctx, root, body, org.PathHints)

	for _, listing := range listings {
		if len(candidates) >= d.maxCandidates {
			break
		}
		_, page, err := d.fetcher.Get(ctx, listing)
		if err != nil {
			log.Printf("[discover] listing page skipped org=%s url=%s err=%v", org.Name, listing, err)
			continue
		}
		if schema.HasJobPosting(page) {
			add(listing)
		}
		for _, link := range jobLinks(root, page) {
			add(link)
		}
	}

	return candidates, nil
}

// listingPages collects career/listing page URLs: explicit hints first,
// then links off the root page, then conventional path probes as a last
// resort.
func (d *Discoverer) listingPages(ctx context.Context, root *url.URL, rootBody []byte, hints []string) []string {
	seen := map[string]bool{}
	var pages []string
	add := func(raw string) {
		c := urlutil.Canonicalize(raw)
		if c == "" || seen[c] || len(pages) >= maxListingPages {
			return
		}
		seen[c] = true
		pages = append(pages, c)
	}

	for _, hint := range hints {
		if abs := urlutil.Resolve(root, hint); abs != "" && sameDomainURL(root, abs) {
			add(abs)
		}
	}

	for _, link := range careerLinks(root, rootBody) {
		add(link)
	}

	if len(pages) > 0 {
		return pages
	}

	// Nothing linked: probe the conventional suffixes.
	for _, p := range conventionalPaths {
		if len(pages) >= maxListingPages {
			break
		}
		probe := *root
		probe.Path = p
		probe.RawQuery = ""
		status, body, err := d.fetcher.Get(ctx, probe.String())
		if err != nil || status >= 300 || len(bytes.TrimSpace(body)) == 0 {
			continue
		}
		add(probe.String())
	}
	return pages
}

// careerLinks extracts same-domain links whose anchor text or path looks
// career-related.
func careerLinks(root *url.URL, body []byte) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	var out []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		abs := urlutil.Resolve(root, href)
		if abs == "" || !sameDomainURL(root, abs) {
			return
		}

		text := strings.ToLower(strings.TrimSpace(a.Text()))
		path := strings.ToLower(abs)
		for _, kw := range careerKeywords {
			if strings.Contains(text, kw) || strings.Contains(path, strings.ReplaceAll(kw, " ", "-")) {
				out = append(out, abs)
				return
			}
		}
	})
	return out
}

// jobLinks extracts links on a listing page that look like individual
// postings, constrained to the organization's domain.
func jobLinks(root *url.URL, body []byte) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	var out []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		abs := urlutil.Resolve(root, href)
		if abs == "" || !sameDomainURL(root, abs) {
			return
		}
		u, err := url.Parse(abs)
		if err != nil {
			return
		}
		if jobPathRe.MatchString(u.Path) || numericIDRe.MatchString(u.Path) {
			out = append(out, abs)
		}
	})
	return out
}

func sameDomainURL(root *url.URL, raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return urlutil.SameDomain(root.Host, u.Host)
}

type badRootError struct {
	url string
}

func (e *badRootError) Error() string { return "invalid organization root url: " + e.url }
