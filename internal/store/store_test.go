package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobscout-engine/internal/dedupe"
	"jobscout-engine/internal/domain"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(db.Pool))
	return db.Pool
}

func sampleJob() domain.NormalizedJob {
	min, max := 70000, 90000
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	return domain.NormalizedJob{
		Title:          "Backend Engineer",
		Company:        "Acme",
		Location:       domain.Location{City: "Berlin", Country: "DE"},
		Description:    "Build Go services.",
		Requirements:   "3+ years of Go",
		SalaryMin:      &min,
		SalaryMax:      &max,
		EmploymentType: domain.EmploymentFullTime,
		Source:         "acme",
		ExternalID:     "url:abc123",
		ExternalURL:    "https://acme.example/jobs/1",
		DiscoveredAt:   now,
		LastSeenAt:     now,
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db))

	var v int
	require.NoError(t, db.QueryRow(`PRAGMA user_version;`).Scan(&v))
	assert.Equal(t, 1, v)
}

func TestUpsertJobCreateThenUpdate(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	j := sampleJob()

	res, err := UpsertJob(ctx, db, j)
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.False(t, res.Updated)
	require.NotZero(t, res.JobID)

	// the same listing seen again later
	j2 := j
	j2.Description = "Build and operate Go services."
	j2.LastSeenAt = j.LastSeenAt.Add(48 * time.Hour)

	res2, err := UpsertJob(ctx, db, j2)
	require.NoError(t, err)
	assert.False(t, res2.Created)
	assert.True(t, res2.Updated)
	assert.Equal(t, res.JobID, res2.JobID)

	got, err := GetJob(ctx, db, res.JobID)
	require.NoError(t, err)
	assert.Equal(t, "Build and operate Go services.", got.Description)
	assert.Equal(t, j.DiscoveredAt, got.DiscoveredAt, "first-seen time survives updates")
	assert.Equal(t, j2.LastSeenAt, got.LastSeenAt)
	require.NotNil(t, got.SalaryMin)
	assert.Equal(t, 70000, *got.SalaryMin)
	assert.Equal(t, domain.EmploymentFullTime, got.EmploymentType)
}

func TestFindBySignatureAndTouch(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	j := sampleJob()

	res, err := UpsertJob(ctx, db, j)
	require.NoError(t, err)

	got, err := FindBySignature(ctx, db, dedupe.Signature(j))
	require.NoError(t, err)
	assert.Equal(t, res.JobID, got.ID)

	_, err = FindBySignature(ctx, db, domain.JobSignature("deadbeef"))
	assert.ErrorIs(t, err, ErrNotFound)

	later := j.LastSeenAt.Add(72 * time.Hour)
	require.NoError(t, TouchLastSeen(ctx, db, res.JobID, later))

	got, err = GetJob(ctx, db, res.JobID)
	require.NoError(t, err)
	assert.Equal(t, later, got.LastSeenAt)
	assert.Equal(t, "Build Go services.", got.Description, "touch leaves content alone")
}

func TestListJobsFilters(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	a := sampleJob()
	b := sampleJob()
	b.Title = "Data Engineer"
	b.Company = "Globex"
	b.Source = "globex"
	b.ExternalID = "url:def456"
	b.EmploymentType = domain.EmploymentContract

	for _, j := range []domain.NormalizedJob{a, b} {
		_, err := UpsertJob(ctx, db, j)
		require.NoError(t, err)
	}

	all, err := ListJobs(ctx, db, ListJobsOpts{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	bySource, err := ListJobs(ctx, db, ListJobsOpts{Source: "globex"})
	require.NoError(t, err)
	require.Len(t, bySource, 1)
	assert.Equal(t, "Data Engineer", bySource[0].Title)

	byCompany, err := ListJobs(ctx, db, ListJobsOpts{Company: "acm"})
	require.NoError(t, err)
	require.Len(t, byCompany, 1)
	assert.Equal(t, "Acme", byCompany[0].Company)

	byType, err := ListJobs(ctx, db, ListJobsOpts{EmploymentType: "contract"})
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, "Globex", byType[0].Company)

	byTitle, err := ListJobs(ctx, db, ListJobsOpts{Sort: "title"})
	require.NoError(t, err)
	require.Len(t, byTitle, 2)
	assert.Equal(t, "Backend Engineer", byTitle[0].Title)
}

func TestDeleteJobCascadesMatches(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	res, err := UpsertJob(ctx, db, sampleJob())
	require.NoError(t, err)

	_, err = SaveMatch(ctx, db, domain.MatchResult{
		ProfileID:    "local",
		JobID:        res.JobID,
		OverallScore: 0.8,
		CreatedAt:    time.Now().UTC(),
	})
	require.NoError(t, err)

	require.NoError(t, DeleteJob(ctx, db, res.JobID))
	assert.ErrorIs(t, DeleteJob(ctx, db, res.JobID), ErrNotFound)

	matches, err := ListMatches(ctx, db, ListMatchesOpts{ProfileID: "local"})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestSaveMatchRescorePreservesReviewFlags(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	res, err := UpsertJob(ctx, db, sampleJob())
	require.NoError(t, err)

	m := domain.MatchResult{
		ProfileID:        "local",
		JobID:            res.JobID,
		OverallScore:     0.62,
		SkillsScore:      0.5,
		ExperienceScore:  0.8,
		LocationScore:    0.6,
		SalaryScore:      0.7,
		MatchingKeywords: []string{"golang"},
		CreatedAt:        time.Now().UTC(),
	}
	id, err := SaveMatch(ctx, db, m)
	require.NoError(t, err)

	require.NoError(t, SetMatchReview(ctx, db, id, true, true))

	// re-score with new numbers
	m.OverallScore = 0.71
	m.MatchingKeywords = []string{"golang", "sqlite"}
	id2, err := SaveMatch(ctx, db, m)
	require.NoError(t, err)
	assert.Equal(t, id, id2)

	got, err := ListMatches(ctx, db, ListMatchesOpts{ProfileID: "local"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 0.71, got[0].OverallScore, 1e-9)
	assert.Equal(t, []string{"golang", "sqlite"}, got[0].MatchingKeywords)
	assert.True(t, got[0].IsReviewed, "review flags survive re-scoring")
	assert.True(t, got[0].IsApproved)
}

func TestSetMatchReviewMissing(t *testing.T) {
	db := openTestDB(t)
	err := SetMatchReview(context.Background(), db, 999, true, false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListMatchesMinScoreAndOrder(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for i, score := range []float64{0.3, 0.9, 0.6} {
		j := sampleJob()
		j.ExternalID = string(rune('a' + i))
		j.Title = j.Title + " " + j.ExternalID
		res, err := UpsertJob(ctx, db, j)
		require.NoError(t, err)
		_, err = SaveMatch(ctx, db, domain.MatchResult{
			ProfileID:    "local",
			JobID:        res.JobID,
			OverallScore: score,
			CreatedAt:    time.Now().UTC(),
		})
		require.NoError(t, err)
	}

	got, err := ListMatches(ctx, db, ListMatchesOpts{ProfileID: "local", MinScore: 0.5})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.InDelta(t, 0.9, got[0].OverallScore, 1e-9)
	assert.InDelta(t, 0.6, got[1].OverallScore, 1e-9)
}

func TestSessionLifecycle(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	started := time.Date(2026, 8, 2, 9, 0, 0, 0, time.UTC)
	id, err := CreateSession(ctx, db, domain.ScrapingSession{
		Status:    domain.SessionRunning,
		Filters:   domain.SessionFilters{Keywords: []string{"golang"}},
		StartedAt: started,
	})
	require.NoError(t, err)

	got, err := GetSession(ctx, db, id)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionRunning, got.Status)
	assert.Equal(t, []string{"golang"}, got.Filters.Keywords)
	assert.Nil(t, got.CompletedAt)

	done := started.Add(90 * time.Second)
	err = FinishSession(ctx, db, domain.ScrapingSession{
		ID:          id,
		Status:      domain.SessionCompleted,
		JobsFound:   7,
		JobsNew:     5,
		JobsUpdated: 2,
		OrgErrors:   []domain.OrgError{{Org: "broken", Message: "timeout"}},
		CompletedAt: &done,
	})
	require.NoError(t, err)

	got, err = GetSession(ctx, db, id)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionCompleted, got.Status)
	assert.Equal(t, 7, got.JobsFound)
	assert.Equal(t, 5, got.JobsNew)
	assert.Equal(t, 2, got.JobsUpdated)
	require.Len(t, got.OrgErrors, 1)
	assert.Equal(t, "broken", got.OrgErrors[0].Org)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, 90, got.DurationSecs)

	list, err := ListSessions(ctx, db, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)

	err = FinishSession(ctx, db, domain.ScrapingSession{ID: 999, Status: domain.SessionFailed})
	assert.ErrorIs(t, err, ErrNotFound)
}
