package testpage

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"benchshare/internal/apperr"
	"benchshare/internal/database"
	"benchshare/internal/highlight"
	"benchshare/internal/models"
	"benchshare/internal/page"
	"benchshare/internal/prep"
	"benchshare/internal/session"
	"benchshare/internal/web/renderer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedView struct {
	sessionID string
	pageID    int64
}

type fakeRecorder struct {
	mu    sync.Mutex
	views []recordedView
}

func (f *fakeRecorder) RecordView(_ context.Context, sessionID string, pageID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.views = append(f.views, recordedView{sessionID, pageID})
}

type brokenHighlighter struct{}

func (brokenHighlighter) Highlight(string, string) (string, error) {
	return "", errors.New("lexer crashed")
}

type fixture struct {
	repo     *page.Repository
	builder  *Builder
	recorder *fakeRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	repo := page.NewRepository(db)
	recorder := &fakeRecorder{}
	h := highlight.NewChroma()
	return &fixture{
		repo:     repo,
		recorder: recorder,
		builder: &Builder{
			Pages: repo,
			Prep:  prep.NewAssembler(h),
			Hits:  recorder,
			Info:  &renderer.Org{Highlighter: h},
		},
	}
}

func (f *fixture) create(t *testing.T, p models.Page) models.Page {
	t.Helper()
	require.NoError(t, f.repo.Create(context.Background(), &p))
	return p
}

func TestBuild_DefaultRevision(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, models.Page{
		Slug:      "loops",
		Title:     "Loops",
		Info:      "Which loop is fastest?",
		InitHTML:  "<div id=\"out\"></div><script>function init() { return 1; }</script>",
		Published: true,
	})
	st := session.State{ID: "sid", UserID: 2, Own: map[int64]bool{}, Hits: map[int64]bool{}}

	model, err := f.builder.Build(context.Background(), "loops", 0, st)
	require.NoError(t, err)

	assert.Equal(t, created.ID, model.Page.ID)
	assert.True(t, model.Prep.HasPrep)
	assert.NotEmpty(t, model.Prep.HighlightedMarkup)
	assert.True(t, model.PageInit)
	assert.True(t, model.Authorized)
	assert.False(t, model.Access.NoIndex)
	assert.Contains(t, string(model.Info), "Which loop is fastest?")
	require.Len(t, model.Revisions, 1)
	assert.Equal(t, []recordedView{{"sid", created.ID}}, f.recorder.views)
}

func TestBuild_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.builder.Build(context.Background(), "missing", 3, session.State{ID: "sid"})

	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Empty(t, f.recorder.views)
}

func TestBuild_UnpublishedOwnerGetsNoIndex(t *testing.T) {
	f := newFixture(t)
	p := f.create(t, models.Page{Slug: "loops", Title: "Loops"})
	st := session.State{ID: "sid", Own: map[int64]bool{p.ID: true}}

	model, err := f.builder.Build(context.Background(), "loops", 1, st)
	require.NoError(t, err)

	assert.True(t, model.Access.IsOwn)
	assert.True(t, model.Access.NoIndex)
	assert.False(t, model.Authorized)
	assert.False(t, model.Prep.HasPrep)
	assert.Nil(t, model.Prep.StrippedMarkup)
	assert.False(t, model.PageInit)
}

func TestBuild_SessionlessSkipsHits(t *testing.T) {
	f := newFixture(t)
	f.create(t, models.Page{Slug: "loops", Title: "Loops", Published: true})

	_, err := f.builder.Build(context.Background(), "loops", 1, session.State{})
	require.NoError(t, err)

	assert.Empty(t, f.recorder.views)
}

func TestBuild_HidesOtherUnpublishedRevisions(t *testing.T) {
	f := newFixture(t)
	f.create(t, models.Page{Slug: "loops", Title: "Loops", Published: true})
	hidden := f.create(t, models.Page{Slug: "loops", Title: "Loops v2"})
	f.create(t, models.Page{Slug: "loops", Title: "Loops v3", Published: true})

	model, err := f.builder.Build(context.Background(), "loops", 1, session.State{ID: "sid"})
	require.NoError(t, err)
	require.Len(t, model.Revisions, 2)
	assert.Equal(t, 3, model.Revisions[1].Number)

	owner := session.State{ID: "sid", Own: map[int64]bool{hidden.ID: true}}
	model, err = f.builder.Build(context.Background(), "loops", 1, owner)
	require.NoError(t, err)
	assert.Len(t, model.Revisions, 3)
}

func TestBuild_HighlighterFailurePropagates(t *testing.T) {
	f := newFixture(t)
	f.create(t, models.Page{Slug: "loops", Title: "Loops", InitHTML: "<p>x</p>", Published: true})
	f.builder.Prep = prep.NewAssembler(brokenHighlighter{})

	model, err := f.builder.Build(context.Background(), "loops", 1, session.State{ID: "sid"})

	assert.Nil(t, model)
	var up *apperr.UpstreamError
	assert.ErrorAs(t, err, &up)
	assert.NotErrorIs(t, err, apperr.ErrNotFound)
}

func TestFeed(t *testing.T) {
	f := newFixture(t)
	f.create(t, models.Page{Slug: "loops", Title: "Loops", Published: true})
	f.create(t, models.Page{Slug: "loops", Title: "Loops v2"})

	feed, err := f.builder.Feed(context.Background(), "loops")
	require.NoError(t, err)

	assert.Equal(t, "loops", feed.Page.Slug)
	assert.Len(t, feed.Revisions, 1)
	assert.WithinDuration(t, time.Now(), feed.LastModified, time.Minute)
}

func TestFeed_NotFoundWhenBaseUnpublished(t *testing.T) {
	f := newFixture(t)
	f.create(t, models.Page{Slug: "loops", Title: "Loops"})
	f.create(t, models.Page{Slug: "loops", Title: "Loops v2", Published: true})

	_, err := f.builder.Feed(context.Background(), "loops")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.builder.Feed(context.Background(), "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
