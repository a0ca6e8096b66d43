// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/haircheck/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.StoreConfig{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestEnsureUserUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.EnsureUser(ctx, types.User{ID: "u1", Name: "Ana", Email: "ana@example.com"}))
	// Repeat login with changed details must not fail and must refresh them.
	require.NoError(t, s.EnsureUser(ctx, types.User{ID: "u1", Name: "Ana B", Email: "ana.b@example.com"}))

	var name, email string
	err := s.db.QueryRow(`SELECT name, email FROM users WHERE id = 'u1'`).Scan(&name, &email)
	require.NoError(t, err)
	assert.Equal(t, "Ana B", name)
	assert.Equal(t, "ana.b@example.com", email)
}

func TestDetectionRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.EnsureUser(ctx, types.User{ID: "u1"}))

	image := []byte{0xff, 0xd8, 0xff, 0xe0, 0x01, 0x02}
	id, err := s.InsertDetection(ctx, types.Detection{
		UserID:     "u1",
		Class:      "alopecia areata",
		Confidence: 0.87,
		DetectedAt: time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
	}, image)
	require.NoError(t, err)
	assert.Positive(t, id)

	got, err := s.DetectionImage(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, image, got)
}

func TestDetectionImageNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.DetectionImage(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserDetectionsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.EnsureUser(ctx, types.User{ID: "u1"}))
	require.NoError(t, s.EnsureUser(ctx, types.User{ID: "u2"}))

	base := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	for i, class := range []string{"dandruff", "alopecia areata", "folliculitis"} {
		_, err := s.InsertDetection(ctx, types.Detection{
			UserID:     "u1",
			Class:      class,
			Confidence: 0.6,
			DetectedAt: base.Add(time.Duration(i) * time.Hour),
		}, []byte{1})
		require.NoError(t, err)
	}
	// Another user's detection must not leak in.
	_, err := s.InsertDetection(ctx, types.Detection{
		UserID: "u2", Class: "dandruff", Confidence: 0.9, DetectedAt: base,
	}, []byte{1})
	require.NoError(t, err)

	dets, err := s.UserDetections(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, dets, 3)
	assert.Equal(t, "folliculitis", dets[0].Class)
	assert.Equal(t, "alopecia areata", dets[1].Class)
	assert.Equal(t, "dandruff", dets[2].Class)
	for _, d := range dets {
		assert.Equal(t, "u1", d.UserID)
	}
}

func TestInsightsGrouping(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.EnsureUser(ctx, types.User{ID: "u1"}))

	base := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	inserts := []struct {
		class  string
		offset time.Duration
	}{
		{"dandruff", 0},
		{"alopecia areata", time.Hour},
		{"dandruff", 2 * time.Hour},
	}
	for _, in := range inserts {
		_, err := s.InsertDetection(ctx, types.Detection{
			UserID: "u1", Class: in.class, Confidence: 0.7,
			DetectedAt: base.Add(in.offset),
		}, []byte{1})
		require.NoError(t, err)
	}

	groups, err := s.Insights(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, groups, 2)

	// dandruff has the most recent detection, so it leads.
	assert.Equal(t, "dandruff", groups[0].Class)
	require.Len(t, groups[0].Detections, 2)
	assert.True(t, groups[0].Detections[0].DetectedAt.After(groups[0].Detections[1].DetectedAt))

	assert.Equal(t, "alopecia areata", groups[1].Class)
	assert.Len(t, groups[1].Detections, 1)
}

func TestInsightsEmpty(t *testing.T) {
	s := newTestStore(t)

	groups, err := s.Insights(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestRecommendations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedPath := filepath.Join(t.TempDir(), "recommendations.yaml")
	seed := "alopecia areata: Consult a dermatologist about topical treatment.\n" +
		"dandruff: Use a zinc pyrithione shampoo twice a week.\n"
	require.NoError(t, os.WriteFile(seedPath, []byte(seed), 0o644))

	require.NoError(t, s.SeedRecommendations(ctx, seedPath))

	rec, err := s.Recommendation(ctx, "dandruff")
	require.NoError(t, err)
	assert.Equal(t, "Use a zinc pyrithione shampoo twice a week.", rec)

	_, err = s.Recommendation(ctx, "unknown class")
	assert.ErrorIs(t, err, ErrNotFound)

	// Re-seeding with changed advice overwrites.
	updated := "dandruff: See a specialist if symptoms persist.\n"
	require.NoError(t, os.WriteFile(seedPath, []byte(updated), 0o644))
	require.NoError(t, s.SeedRecommendations(ctx, seedPath))

	rec, err = s.Recommendation(ctx, "dandruff")
	require.NoError(t, err)
	assert.Equal(t, "See a specialist if symptoms persist.", rec)
}

func TestNewStoreSeedsFromConfig(t *testing.T) {
	dir := t.TempDir()
	seedPath := filepath.Join(dir, "recommendations.yaml")
	require.NoError(t, os.WriteFile(seedPath, []byte("dandruff: advice\n"), 0o644))

	s, err := NewStore(types.StoreConfig{
		Path:                filepath.Join(dir, "test.db"),
		RecommendationsFile: seedPath,
	})
	require.NoError(t, err)
	defer s.Close()

	rec, err := s.Recommendation(context.Background(), "dandruff")
	require.NoError(t, err)
	assert.Equal(t, "advice", rec)
}

func TestNewStoreMissingSeedFile(t *testing.T) {
	dir := t.TempDir()
	_, err := NewStore(types.StoreConfig{
		Path:                filepath.Join(dir, "test.db"),
		RecommendationsFile: filepath.Join(dir, "absent.yaml"),
	})
	assert.Error(t, err)
}
