// Package session orchestrates discovery runs: crawl organizations, pull
// structured postings, normalize, dedupe, persist, and score them against
// the user profile.
package session

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"jobscout-engine/internal/dedupe"
	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/events"
	"jobscout-engine/internal/match"
	"jobscout-engine/internal/normalize"
	"jobscout-engine/internal/schema"
)

// Store is the persistence slice the coordinator needs.
type Store interface {
	CreateSession(ctx context.Context, s domain.ScrapingSession) (int64, error)
	FinishSession(ctx context.Context, s domain.ScrapingSession) error
	UpsertJob(ctx context.Context, j domain.NormalizedJob) (jobID int64, created bool, err error)
	FindBySignature(ctx context.Context, sig domain.JobSignature) (domain.NormalizedJob, error)
	TouchLastSeen(ctx context.Context, id int64, at time.Time) error
	SaveMatch(ctx context.Context, m domain.MatchResult) (int64, error)
}

// Discoverer yields candidate posting URLs for one organization.
type Discoverer interface {
	Candidates(ctx context.Context, org domain.OrgSpec) ([]string, error)
}

// Getter fetches one page.
type Getter interface {
	Get(ctx context.Context, url string) (status int, body []byte, err error)
}

// AlertSource yields posting URLs arriving outside the crawl, e.g. from
// job-alert emails.
type AlertSource interface {
	CandidateURLs(ctx context.Context) ([]string, error)
}

type Coordinator struct {
	Store       Store
	Discoverer  Discoverer
	Fetcher     Getter
	Matcher     *match.Matcher
	Hub         *events.Hub
	Alerts      AlertSource // optional
	Concurrency int
}

type orgResult struct {
	org  string
	jobs []domain.NormalizedJob
	err  error
}

// Run executes one discovery session across the given organizations. A
// failing organization is recorded and skipped; the session itself fails
// only when every organization fails or persistence breaks.
func (c *Coordinator) Run(ctx context.Context, orgs []domain.OrgSpec, filters domain.SessionFilters, profile domain.UserProfile) (domain.ScrapingSession, error) {
	sess := domain.ScrapingSession{
		Status:    domain.SessionRunning,
		Filters:   filters,
		StartedAt: time.Now().UTC(),
	}
	id, err := c.Store.CreateSession(ctx, sess)
	if err != nil {
		return sess, err
	}
	sess.ID = id
	c.publish(events.TypeSessionStarted, map[string]any{"session_id": id, "orgs": len(orgs)})
	log.Printf("[session] started id=%d orgs=%d", id, len(orgs))

	results := c.crawlOrgs(ctx, orgs, filters)

	var all []domain.NormalizedJob
	for _, r := range results {
		if r.err != nil {
			sess.OrgErrors = append(sess.OrgErrors, domain.OrgError{Org: r.org, Message: r.err.Error()})
			log.Printf("[session] org failed id=%d org=%s err=%v", id, r.org, r.err)
			continue
		}
		all = append(all, r.jobs...)
	}

	if c.Alerts != nil {
		urls, err := c.Alerts.CandidateURLs(ctx)
		if err != nil {
			sess.OrgErrors = append(sess.OrgErrors, domain.OrgError{Org: "email", Message: err.Error()})
			log.Printf("[session] email alerts failed id=%d err=%v", id, err)
		} else {
			all = append(all, c.jobsFromURLs(ctx, "email", urls, filters)...)
		}
	}

	// collapse in-run duplicates before touching the store
	all = dedupe.Collapse(all)
	if filters.MaxResults > 0 && len(all) > filters.MaxResults {
		all = all[:filters.MaxResults]
	}

	storeErr := c.persistAndMatch(ctx, &sess, all, profile)

	now := time.Now().UTC()
	sess.CompletedAt = &now
	sess.DurationSecs = int(now.Sub(sess.StartedAt).Seconds())
	switch {
	case storeErr != nil:
		sess.Status = domain.SessionFailed
		sess.ErrorMessage = storeErr.Error()
	case len(orgs) > 0 && len(sess.OrgErrors) == len(orgs):
		sess.Status = domain.SessionFailed
		sess.ErrorMessage = "all organizations failed"
	default:
		sess.Status = domain.SessionCompleted
	}

	if err := c.Store.FinishSession(ctx, sess); err != nil {
		return sess, err
	}
	c.publish(events.TypeSessionFinished, sess)
	log.Printf("[session] finished id=%d status=%s found=%d new=%d updated=%d org_errors=%d",
		id, sess.Status, sess.JobsFound, sess.JobsNew, sess.JobsUpdated, len(sess.OrgErrors))
	if storeErr != nil {
		return sess, storeErr
	}
	return sess, nil
}

// crawlOrgs fans out over organizations with a bounded worker pool and
// returns one result per org.
func (c *Coordinator) crawlOrgs(ctx context.Context, orgs []domain.OrgSpec, filters domain.SessionFilters) []orgResult {
	limit := c.Concurrency
	if limit <= 0 {
		limit = 4
	}

	var (
		mu      sync.Mutex
		results []orgResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, org := range orgs {
		org := org
		g.Go(func() error {
			jobs, err := c.crawlOne(gctx, org, filters)
			mu.Lock()
			results = append(results, orgResult{org: org.Name, jobs: jobs, err: err})
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// crawlOne walks one organization: discover candidates, fetch each, pull
// JobPosting blocks, normalize, filter.
func (c *Coordinator) crawlOne(ctx context.Context, org domain.OrgSpec, filters domain.SessionFilters) ([]domain.NormalizedJob, error) {
	candidates, err := c.Discoverer.Candidates(ctx, org)
	if err != nil {
		return nil, err
	}
	log.Printf("[session] org=%s candidates=%d", org.Name, len(candidates))
	return c.jobsFromURLs(ctx, org.Name, candidates, filters), nil
}

// jobsFromURLs fetches each URL, pulls JobPosting blocks, and keeps the
// normalized jobs passing the session filters.
func (c *Coordinator) jobsFromURLs(ctx context.Context, source string, urls []string, filters domain.SessionFilters) []domain.NormalizedJob {
	var jobs []domain.NormalizedJob
	for _, u := range urls {
		if ctx.Err() != nil {
			return jobs
		}
		_, body, err := c.Fetcher.Get(ctx, u)
		if err != nil {
			log.Printf("[session] page skipped source=%s url=%s err=%v", source, u, err)
			continue
		}
		for _, rec := range schema.Extract(body, u, time.Now().UTC()) {
			j, warns := normalize.Job(rec, source)
			for _, w := range warns {
				log.Printf("[normalize] source=%s url=%s field=%s: %s", source, u, w.Field, w.Reason)
			}
			if j.Title == "" || j.Company == "" {
				continue
			}
			if keep, reason := ShouldKeep(filters, j); !keep {
				log.Printf("[session] filtered source=%s title=%q reason=%s", source, j.Title, reason)
				continue
			}
			jobs = append(jobs, j)
		}
	}
	return jobs
}

// persistAndMatch upserts each job and scores the survivors against the
// profile. Returns the first persistence error, which fails the session.
func (c *Coordinator) persistAndMatch(ctx context.Context, sess *domain.ScrapingSession, jobs []domain.NormalizedJob, profile domain.UserProfile) error {
	for _, j := range jobs {
		sess.JobsFound++

		// Cross-source duplicate by content signature: the stored copy
		// wins, this sighting just refreshes it.
		if existing, err := c.Store.FindBySignature(ctx, dedupe.Signature(j)); err == nil {
			if existing.Source != j.Source || existing.ExternalID != j.ExternalID {
				if err := c.Store.TouchLastSeen(ctx, existing.ID, j.LastSeenAt); err != nil {
					return err
				}
				continue
			}
		}

		jobID, created, err := c.Store.UpsertJob(ctx, j)
		if err != nil {
			return err
		}
		j.ID = jobID
		if created {
			sess.JobsNew++
			c.publish(events.TypeJobCreated, map[string]any{"job_id": jobID, "title": j.Title, "company": j.Company})
		} else {
			sess.JobsUpdated++
		}

		if c.Matcher == nil || profile.UserID == "" {
			continue
		}
		res := c.Matcher.Score(j, profile)
		if res.OverallScore < profile.MinMatchScore {
			continue
		}
		res.CreatedAt = time.Now().UTC()
		if _, err := c.Store.SaveMatch(ctx, res); err != nil {
			return err
		}
		c.publish(events.TypeMatchCreated, map[string]any{"job_id": jobID, "score": res.OverallScore})
	}
	return nil
}

func (c *Coordinator) publish(typ string, data any) {
	if c.Hub == nil {
		return
	}
	c.Hub.Publish(events.MakeEvent("", typ, 1, data))
}
