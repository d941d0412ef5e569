package localstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/ats-autofill/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "data", "ats.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_CandidateLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	form := types.CandidateForm{
		FirstName: "Jane",
		Skills:    []string{"Go", "SQL"},
		Education: []types.EducationEntry{{Institution: "MIT", EndDate: "2018-07-01"}},
		Status:    types.CandidateStatusNew,
	}
	created, err := s.CreateCandidate(ctx, form)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)

	got, err := s.GetCandidate(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, form, got.CandidateForm)
	assert.WithinDuration(t, created.CreatedAt, got.CreatedAt, time.Millisecond)

	form.Email = "jane@example.com"
	form.Skills = []string{"Rust"}
	updated, err := s.UpdateCandidate(ctx, created.ID, form)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", updated.Email)
	assert.WithinDuration(t, created.CreatedAt, updated.CreatedAt, time.Millisecond)

	got, err = s.GetCandidate(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Rust"}, got.Skills)
}

func TestStore_MissingCandidate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	got, err := s.GetCandidate(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = s.UpdateCandidate(ctx, uuid.New(), types.CandidateForm{FirstName: "X"})
	assert.True(t, errors.Is(err, types.ErrCandidateNotFound))
}

func TestStore_ResumeParses(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	c, err := s.CreateCandidate(ctx, types.CandidateForm{FirstName: "Jane"})
	require.NoError(t, err)

	first := "Jane"
	for _, name := range []string{"old.pdf", "new.pdf"} {
		draft := types.NewCandidateDraft()
		draft.FirstName = &first
		rec := &types.ResumeParseRecord{
			CandidateID: c.ID,
			FileName:    name,
			RawResponse: []byte(`[{"First name":"Jane"}]`),
			Draft:       draft,
		}
		require.NoError(t, s.SaveResumeParse(ctx, rec))
		assert.NotEqual(t, uuid.Nil, rec.ID)
		assert.False(t, rec.CreatedAt.IsZero())
	}

	records, err := s.ListResumeParses(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "new.pdf", records[0].FileName)
	assert.Equal(t, "old.pdf", records[1].FileName)
	assert.JSONEq(t, `[{"First name":"Jane"}]`, string(records[0].RawResponse))
	require.NotNil(t, records[0].Draft.FirstName)
	assert.Equal(t, "Jane", *records[0].Draft.FirstName)

	empty, err := s.ListResumeParses(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.NotNil(t, empty)
}

func TestStore_ResumeParseRequiresCandidate(t *testing.T) {
	s := openTestStore(t)

	err := s.SaveResumeParse(context.Background(), &types.ResumeParseRecord{
		CandidateID: uuid.New(),
		FileName:    "cv.pdf",
		Draft:       types.NewCandidateDraft(),
	})
	assert.Error(t, err)
}

func TestStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ats.db")
	ctx := context.Background()

	s, err := Open(ctx, path)
	require.NoError(t, err)
	c, err := s.CreateCandidate(ctx, types.CandidateForm{FirstName: "Jane"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.GetCandidate(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Jane", got.FirstName)
}
