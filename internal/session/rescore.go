package session

import (
	"context"
	"log"
	"time"

	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/events"
	"jobscout-engine/internal/match"
)

// MatchStore is the slice needed to re-score stored jobs.
type MatchStore interface {
	ListAllJobs(ctx context.Context, limit int) ([]domain.NormalizedJob, error)
	SaveMatch(ctx context.Context, m domain.MatchResult) (int64, error)
}

// RescoreAll scores every stored job against the profile, replacing prior
// matches for the pair. Used after profile or weight changes, without a
// crawl. Returns how many jobs cleared the profile's score gate.
func RescoreAll(ctx context.Context, st MatchStore, m *match.Matcher, profile domain.UserProfile, hub *events.Hub) (int, error) {
	jobs, err := st.ListAllJobs(ctx, 0)
	if err != nil {
		return 0, err
	}

	saved := 0
	for _, j := range jobs {
		if ctx.Err() != nil {
			return saved, ctx.Err()
		}
		res := m.Score(j, profile)
		if res.OverallScore < profile.MinMatchScore {
			continue
		}
		res.CreatedAt = time.Now().UTC()
		if _, err := st.SaveMatch(ctx, res); err != nil {
			return saved, err
		}
		saved++
	}
	if hub != nil {
		hub.Publish(events.MakeEvent("", events.TypeMatchCreated, 1, map[string]any{"rescored": saved}))
	}
	log.Printf("[session] rescore done jobs=%d matched=%d", len(jobs), saved)
	return saved, nil
}
