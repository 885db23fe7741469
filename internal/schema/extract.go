// Package schema pulls JobPosting structured-data blocks out of fetched
// pages. Extraction is best-effort: a block that fails to parse is skipped
// with a diagnostic, never a page-level failure.
package schema

import (
	"bytes"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"jobscout-engine/internal/domain"
)

// HasJobPosting is a cheap pre-check used during discovery to spot pages
// worth a full extraction pass, without parsing the DOM.
func HasJobPosting(body []byte) bool {
	return bytes.Contains(bytes.ToLower(body), []byte("application/ld+json")) &&
		bytes.Contains(body, []byte("JobPosting"))
}

// Extract parses every ld+json block in body and returns one RawJobRecord
// per JobPosting object found. A page may embed several postings, or none.
func Extract(body []byte, sourceURL string, discoveredAt time.Time) []domain.RawJobRecord {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		log.Printf("[schema] parse html url=%s err=%v", sourceURL, err)
		return nil
	}

	var out []domain.RawJobRecord
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}

		var data any
		if err := json.Unmarshal([]byte(text), &data); err != nil {
			log.Printf("[schema] skip unparsable block url=%s err=%v", sourceURL, err)
			return
		}

		for _, fields := range jobPostings(data) {
			out = append(out, domain.RawJobRecord{
				Fields:       fields,
				SourceURL:    sourceURL,
				DiscoveredAt: discoveredAt,
			})
		}
	})
	return out
}

// jobPostings walks a decoded JSON-LD value and collects every object
// whose @type includes JobPosting. Arrays and @graph wrappers both occur
// in the wild.
func jobPostings(data any) []domain.RawFields {
	switch v := data.(type) {
	case []any:
		var out []domain.RawFields
		for _, item := range v {
			out = append(out, jobPostings(item)...)
		}
		return out
	case map[string]any:
		if isJobPosting(v) {
			return []domain.RawFields{domain.RawFields(v)}
		}
		if graph, ok := v["@graph"]; ok {
			return jobPostings(graph)
		}
	}
	return nil
}

func isJobPosting(obj map[string]any) bool {
	switch t := obj["@type"].(type) {
	case string:
		return t == "JobPosting"
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && s == "JobPosting" {
				return true
			}
		}
	}
	return false
}
