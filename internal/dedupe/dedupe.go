// Package dedupe collapses duplicate listings. The same posting routinely
// shows up at several URLs (aggregator mirrors, tracking decorations) while
// sharing title, company, and description.
package dedupe

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"jobscout-engine/internal/domain"
)

// descPrefixLen bounds how much description feeds the signature; trailing
// boilerplate (EEO statements, benefits blurbs) differs between mirrors.
const descPrefixLen = 200

// Signature derives the dedup key from normalized content. Equal
// signatures mean the same listing regardless of source URL.
func Signature(j domain.NormalizedJob) domain.JobSignature {
	title := foldSpace(j.Title)
	company := foldSpace(j.Company)

	desc := foldSpace(j.Description)
	if len(desc) > descPrefixLen {
		desc = desc[:descPrefixLen]
	}

	sum := sha256.Sum256([]byte(title + "\x00" + company + "\x00" + desc))
	return domain.JobSignature(hex.EncodeToString(sum[:]))
}

func foldSpace(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Merge combines two records that collided on signature. The earliest
// discovery timestamp wins for that field; the more complete record wins
// for everything else, including its canonical (source, external_id).
func Merge(a, b domain.NormalizedJob) domain.NormalizedJob {
	winner, loser := a, b
	if b.FieldCount() > a.FieldCount() {
		winner, loser = b, a
	}

	if loser.DiscoveredAt.Before(winner.DiscoveredAt) && !loser.DiscoveredAt.IsZero() {
		winner.DiscoveredAt = loser.DiscoveredAt
	}
	if loser.LastSeenAt.After(winner.LastSeenAt) {
		winner.LastSeenAt = loser.LastSeenAt
	}
	return winner
}

// Collapse dedups a batch within one discovery run, merging colliding
// records and preserving first-seen order.
func Collapse(jobs []domain.NormalizedJob) []domain.NormalizedJob {
	bySig := make(map[domain.JobSignature]int, len(jobs))
	var out []domain.NormalizedJob

	for _, j := range jobs {
		sig := Signature(j)
		if i, ok := bySig[sig]; ok {
			out[i] = Merge(out[i], j)
			continue
		}
		bySig[sig] = len(out)
		out = append(out, j)
	}
	return out
}
