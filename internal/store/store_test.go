package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(db.Pool))
	return db
}

func sampleRecord(applyURL string) JobRecord {
	return JobRecord{
		Company:      "Acme",
		Title:        "Junior Developer",
		Location:     "Remote",
		LocationType: "REMOTE",
		SalaryMin:    70000,
		SalaryMax:    90000,
		ApplyURL:     applyURL,
		SourceURL:    applyURL,
		Source:       "greenhouse",
		Description:  "desc",
		Status:       StatusVerified,
		Score:        95,
	}
}

func TestMigrateIsRepeatable(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db.Pool))
	require.NoError(t, Migrate(db.Pool))
}

func TestInsertAndListExistingURLs(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	rec := sampleRecord("https://a.example/apply")
	rec.SourceURL = "https://a.example/source"

	id, err := db.InsertJob(ctx, rec)
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	urls, err := db.ListExistingURLs(ctx)
	require.NoError(t, err)
	assert.Contains(t, urls, "https://a.example/apply")
	assert.Contains(t, urls, "https://a.example/source")
}

func TestInsertDuplicateApplyURLIsIgnored(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	id, err := db.InsertJob(ctx, sampleRecord("https://a.example/1"))
	require.NoError(t, err)
	require.Greater(t, id, int64(0))

	again, err := db.InsertJob(ctx, sampleRecord("https://a.example/1"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), again, "duplicate insert reports 0, not an error")

	urls, err := db.ListExistingURLs(ctx)
	require.NoError(t, err)
	assert.Len(t, urls, 1)
}

func TestListStaleVerified(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	freshTS := time.Now().Add(-1 * time.Hour).UTC()
	staleTS := time.Now().Add(-30 * time.Hour).UTC()

	fresh := sampleRecord("https://a.example/fresh")
	fresh.LastVerifiedAt = &freshTS
	_, err := db.InsertJob(ctx, fresh)
	require.NoError(t, err)

	stale := sampleRecord("https://a.example/stale")
	stale.LastVerifiedAt = &staleTS
	_, err = db.InsertJob(ctx, stale)
	require.NoError(t, err)

	pending := sampleRecord("https://a.example/pending")
	pending.Status = StatusPending
	pending.LastVerifiedAt = &staleTS
	_, err = db.InsertJob(ctx, pending)
	require.NoError(t, err)

	never := sampleRecord("https://a.example/never")
	_, err = db.InsertJob(ctx, never)
	require.NoError(t, err)

	got, err := db.ListStaleVerified(ctx, 24*time.Hour)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "https://a.example/stale", got[0].ApplyURL)
	require.NotNil(t, got[0].LastVerifiedAt)
	assert.WithinDuration(t, staleTS, *got[0].LastVerifiedAt, time.Second)
}

func TestUpdateVerification(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	ts := time.Now().Add(-30 * time.Hour).UTC()
	rec := sampleRecord("https://a.example/1")
	rec.LastVerifiedAt = &ts
	id, err := db.InsertJob(ctx, rec)
	require.NoError(t, err)

	// demote without touching the timestamp
	err = db.UpdateVerification(ctx, id, StatusBrokenLink, nil, "link check failed with status 404")
	require.NoError(t, err)

	stale, err := db.ListStaleVerified(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Empty(t, stale, "BROKEN_LINK records leave the sweep set")

	// re-promote with a fresh timestamp
	now := time.Now().UTC()
	err = db.UpdateVerification(ctx, id, StatusVerified, &now, "re-checked ok, http 200")
	require.NoError(t, err)

	pub, err := db.ListPublic(ctx, ListPublicOpts{})
	require.NoError(t, err)
	require.Len(t, pub, 1)
	assert.Equal(t, StatusVerified, pub[0].Status)
	assert.Contains(t, pub[0].VerificationNotes, "http 200")
}

func TestListPublicFreshnessBoundary(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	atBoundary := time.Now().Add(-PublicMaxAge).UTC()
	within := time.Now().Add(-47 * time.Hour).UTC()

	old := sampleRecord("https://a.example/old")
	old.LastVerifiedAt = &atBoundary
	_, err := db.InsertJob(ctx, old)
	require.NoError(t, err)

	recent := sampleRecord("https://a.example/recent")
	recent.LastVerifiedAt = &within
	_, err = db.InsertJob(ctx, recent)
	require.NoError(t, err)

	pending := sampleRecord("https://a.example/pending")
	pending.Status = StatusPending
	pending.LastVerifiedAt = &within
	_, err = db.InsertJob(ctx, pending)
	require.NoError(t, err)

	noTimestamp := sampleRecord("https://a.example/none")
	_, err = db.InsertJob(ctx, noTimestamp)
	require.NoError(t, err)

	got, err := db.ListPublic(ctx, ListPublicOpts{})
	require.NoError(t, err)
	require.Len(t, got, 1, "only VERIFIED and strictly fresher than 48h is public")
	assert.Equal(t, "https://a.example/recent", got[0].ApplyURL)
}

func TestListPublicSort(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	low := sampleRecord("https://a.example/low")
	low.Score = 60
	low.LastVerifiedAt = &now
	_, err := db.InsertJob(ctx, low)
	require.NoError(t, err)

	high := sampleRecord("https://a.example/high")
	high.Score = 99
	high.LastVerifiedAt = &now
	_, err = db.InsertJob(ctx, high)
	require.NoError(t, err)

	got, err := db.ListPublic(ctx, ListPublicOpts{Sort: "score"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 99, got[0].Score)

	got, err = db.ListPublic(ctx, ListPublicOpts{Sort: "score", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestPurgeDead(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	dead := sampleRecord("https://a.example/dead")
	dead.Status = StatusBrokenLink
	dead.CreatedAt = time.Now().Add(-100 * 24 * time.Hour)
	_, err := db.InsertJob(ctx, dead)
	require.NoError(t, err)

	// updated_at is set to now on insert, so nothing is old enough yet
	n, err := PurgeDead(ctx, db.Pool, 90*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	// a negative window moves the cutoff past "now" and catches it
	n, err = PurgeDead(ctx, db.Pool, -2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestDeleteJob(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	id, err := db.InsertJob(ctx, sampleRecord("https://a.example/1"))
	require.NoError(t, err)

	require.NoError(t, DeleteJob(ctx, db.Pool, id))

	urls, err := db.ListExistingURLs(ctx)
	require.NoError(t, err)
	assert.Empty(t, urls)
}
