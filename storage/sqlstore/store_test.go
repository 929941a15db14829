package sqlstore

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/wheretobuy/core"
	"github.com/poiesic/wheretobuy/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := open(context.Background(), DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "")
	assert.ErrorIs(t, err, storage.ErrUnsupportedDriver)
}

func TestSaveAndGetPlacements(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rating := 4.7

	places := core.PipelineResult{
		{
			Candidate: core.Candidate{ProductName: "Old Oak Reserve by Acme", StoreName: "Acme Direct",
				Link: "https://acme.example/oor", Price: "£20.00", Rating: &rating, Provenance: core.ProvenanceText},
			IsMatch: true, Tier: core.TierVerified, Score: 93.2, Reason: "Verified: name similarity 93.2",
		},
		{
			Candidate: core.Candidate{ProductName: "Old Oak Reserve", StoreName: "Majestic", Provenance: core.ProvenanceFallback},
			Tier:      core.TierSuggested, Reason: "Suggested: Large range",
		},
	}.Placements(77, created)

	require.NoError(t, s.SavePlacements(ctx, 77, places))

	got, err := s.GetPlacements(ctx, 77)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, 1, got[0].Rank)
	assert.Equal(t, "Acme Direct", got[0].StoreName)
	assert.Equal(t, "https://acme.example/oor", got[0].URL)
	assert.Equal(t, core.TierVerified, got[0].Tier)
	require.NotNil(t, got[0].Rating)
	assert.InDelta(t, 4.7, *got[0].Rating, 1e-9)
	assert.True(t, created.Equal(got[0].CreatedAt))

	assert.Equal(t, core.TierSuggested, got[1].Tier)
	assert.Nil(t, got[1].Rating)
	assert.Equal(t, core.ProvenanceFallback, got[1].Provenance)
	assert.Equal(t, core.ID(77), got[1].ProductID)
}

func TestSavePlacements_Replaces(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	first := []core.Placement{
		{Rank: 1, StoreName: "A", Tier: core.TierVerified},
		{Rank: 2, StoreName: "B", Tier: core.TierLikely},
		{Rank: 3, StoreName: "C", Tier: core.TierLikely},
	}
	require.NoError(t, s.SavePlacements(ctx, 1, first))
	require.NoError(t, s.SavePlacements(ctx, 2, first[:1]))
	require.NoError(t, s.SavePlacements(ctx, 1, []core.Placement{{Rank: 1, StoreName: "D", Tier: core.TierSuggested}}))

	got, err := s.GetPlacements(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "D", got[0].StoreName)

	other, err := s.GetPlacements(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestSavePlacements_InvalidRollsBack(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	require.NoError(t, s.SavePlacements(ctx, 1, []core.Placement{{Rank: 1, StoreName: "A", Tier: core.TierVerified}}))
	err := s.SavePlacements(ctx, 1, []core.Placement{{Rank: 0, StoreName: "B", Tier: core.TierVerified}})
	assert.ErrorIs(t, err, core.ErrInvalidPlacement)

	got, err := s.GetPlacements(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].StoreName)
}

func TestGetPlacements_None(t *testing.T) {
	s := openMemory(t)

	got, err := s.GetPlacements(context.Background(), 404)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
