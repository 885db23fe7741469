package dedupe

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"jobscout-engine/internal/domain"
)

func job(title, company, desc string) domain.NormalizedJob {
	return domain.NormalizedJob{Title: title, Company: company, Description: desc}
}

func TestSignatureIgnoresCaseAndWhitespace(t *testing.T) {
	a := job("Backend Engineer", "Acme Corp", "Build services in Go.")
	b := job("  backend   ENGINEER ", "acme corp", "Build   services in Go.")
	assert.Equal(t, Signature(a), Signature(b))
}

func TestSignatureDescriptionPrefixOnly(t *testing.T) {
	common := strings.Repeat("x", descPrefixLen)
	a := job("Dev", "Acme", common+" identical prefix, divergent EEO boilerplate")
	b := job("Dev", "Acme", common+" identical prefix, totally different benefits blurb")
	assert.Equal(t, Signature(a), Signature(b))
}

func TestSignatureDistinguishesContent(t *testing.T) {
	a := job("Backend Engineer", "Acme", "desc")
	b := job("Frontend Engineer", "Acme", "desc")
	c := job("Backend Engineer", "Other", "desc")
	assert.NotEqual(t, Signature(a), Signature(b))
	assert.NotEqual(t, Signature(a), Signature(c))
}

func TestMergeMoreCompleteWins(t *testing.T) {
	early := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	sparse := job("Dev", "Acme", "desc")
	sparse.Source = "mirror"
	sparse.ExternalID = "m-1"
	sparse.DiscoveredAt = early
	sparse.LastSeenAt = early

	rich := job("Dev", "Acme", "desc")
	rich.Source = "acme"
	rich.ExternalID = "REQ-1"
	rich.Requirements = "Go, SQL"
	rich.Benefits = "Health"
	rich.DiscoveredAt = late
	rich.LastSeenAt = late

	merged := Merge(sparse, rich)
	assert.Equal(t, "acme", merged.Source)
	assert.Equal(t, "REQ-1", merged.ExternalID)
	assert.Equal(t, "Go, SQL", merged.Requirements)
	// earliest discovery survives, latest sighting survives
	assert.Equal(t, early, merged.DiscoveredAt)
	assert.Equal(t, late, merged.LastSeenAt)
}

func TestCollapsePreservesFirstSeenOrder(t *testing.T) {
	a := job("Alpha", "Acme", "a")
	b := job("Beta", "Acme", "b")
	dupA := job("alpha", "ACME", "a")

	out := Collapse([]domain.NormalizedJob{a, b, dupA})
	assert.Len(t, out, 2)
	assert.Equal(t, "Alpha", out[0].Title)
	assert.Equal(t, "Beta", out[1].Title)
}

func TestCollapseEmpty(t *testing.T) {
	assert.Empty(t, Collapse(nil))
}
