package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/mvp-joe/stubcheck/internal/model"
	"github.com/mvp-joe/stubcheck/internal/reconcile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore creates an in-memory store closed by t.Cleanup.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleReport() *reconcile.Report {
	return &reconcile.Report{
		Checked: 3,
		Problems: []reconcile.Problem{
			{Function: "utf8_encode", Code: model.ProblemDeprecatedFunction, Detail: "deprecated at runtime but not in stub"},
		},
		Muted: []reconcile.Problem{
			{Function: "mb_str_pad", Code: model.ProblemStubMissing},
		},
		Failures: []reconcile.Failure{
			{Function: "broken", Source: reconcile.SourceStub, Err: errors.New("malformed doc comment")},
		},
	}
}

func TestStore_SaveAndLoad(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)

	runID, err := s.SaveReport(ctx, sampleReport(), RunMeta{
		PHPVersion:   "8.3.4",
		StubRoot:     "stubs",
		StubRevision: "0123abc",
		StubBranch:   "PHP-8.3",
	})
	require.NoError(t, err)
	assert.Len(t, runID, 36)

	problems, err := s.LoadProblems(ctx, runID)
	require.NoError(t, err)
	require.Len(t, problems, 2)

	assert.Equal(t, "utf8_encode", problems[0].Function)
	assert.Equal(t, model.ProblemDeprecatedFunction, problems[0].Code)
	assert.False(t, problems[0].Muted)
	assert.Equal(t, "mb_str_pad", problems[1].Function)
	assert.True(t, problems[1].Muted)

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].ID)
	assert.Equal(t, "8.3.4", runs[0].PHPVersion)
	assert.Equal(t, "0123abc", runs[0].StubRevision)
	assert.Equal(t, "PHP-8.3", runs[0].StubBranch)
	assert.Equal(t, 3, runs[0].Checked)
	assert.Equal(t, 1, runs[0].Problems)
	assert.Equal(t, 1, runs[0].Muted)
	assert.Equal(t, 1, runs[0].Failures)
}

func TestStore_RunsNewestFirst(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	older, err := s.SaveReport(ctx, &reconcile.Report{}, RunMeta{StartedAt: base})
	require.NoError(t, err)
	newer, err := s.SaveReport(ctx, &reconcile.Report{}, RunMeta{StartedAt: base.Add(time.Hour)})
	require.NoError(t, err)

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, newer, runs[0].ID)
	assert.Equal(t, older, runs[1].ID)
	assert.True(t, runs[1].StartedAt.Equal(base))

	problems, err := s.LoadProblems(ctx, "no-such-run")
	require.NoError(t, err)
	assert.Empty(t, problems)
}

func TestStore_ReopenFile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "reports.db")

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.SaveReport(ctx, sampleReport(), RunMeta{})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	version, err := GetSchemaVersion(s.db)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, version)

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
