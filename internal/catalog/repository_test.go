package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/hangar/internal/artifact"
	"github.com/starford/hangar/internal/models"
	"github.com/starford/hangar/internal/storage"
	"github.com/starford/hangar/internal/testutil"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func doc(chapter, section, slug, title string, diff models.Difficulty, body string) models.Document {
	return models.Document{
		ID:         models.DocumentID(chapter, section, slug),
		Chapter:    chapter,
		Section:    section,
		Slug:       slug,
		Title:      title,
		Difficulty: diff,
		Content:    body,
	}
}

func testDocs() []models.Document {
	return []models.Document{
		doc("21", "20", "recirculation", "Recirculating System", models.Intermediate, "<p>Fans return cabin air</p>"),
		doc("21", "main", "packs", "Air Cycle Packs", models.Beginner, "<p>Pack valves</p>"),
		doc("28", "main", "tank-vent", "Tank Vent System and Fuel Indication", models.Intermediate, "<p>Vent</p>"),
		doc("28", "40", "gauging", "Gauging", "", "<p>Capacitance probes</p>"),
		doc("99", "main", "custom", "Custom", models.Advanced, "<p>x</p>"),
	}
}

func staticRepo(t *testing.T, docs []models.Document) *Repository {
	t.Helper()
	snap := testutil.Snapshot(t, docs)
	r := New(LoaderFunc(func(context.Context) (*artifact.Snapshot, error) { return snap, nil }), quietLogger)
	require.NoError(t, r.EnsureInitialized(context.Background()))
	return r
}

func TestEnsureInitialized_OnceOnly(t *testing.T) {
	var calls atomic.Int32
	snap := testutil.Snapshot(t, testDocs())
	r := New(LoaderFunc(func(context.Context) (*artifact.Snapshot, error) {
		calls.Add(1)
		return snap, nil
	}), quietLogger)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, r.EnsureInitialized(context.Background()))
		}()
	}
	wg.Wait()
	first := r.All()
	require.NoError(t, r.EnsureInitialized(context.Background()))

	assert.Equal(t, int32(1), calls.Load())
	assert.Same(t, &first[0], &r.All()[0])
	assert.Equal(t, SourceArtifacts, r.Source())
}

func TestEnsureInitialized_FallbackOnError(t *testing.T) {
	r := New(LoaderFunc(func(context.Context) (*artifact.Snapshot, error) {
		return nil, errors.New("no artifacts")
	}), quietLogger)
	require.NoError(t, r.EnsureInitialized(context.Background()))

	assert.Equal(t, SourceFallback, r.Source())
	assert.GreaterOrEqual(t, len(r.All()), 5)
	assert.NotEmpty(t, r.AvailableChapters())
}

func TestEnsureInitialized_FallbackOnEmpty(t *testing.T) {
	r := New(LoaderFunc(func(context.Context) (*artifact.Snapshot, error) {
		return artifact.Empty(), nil
	}), quietLogger)
	require.NoError(t, r.EnsureInitialized(context.Background()))
	assert.Equal(t, SourceFallback, r.Source())
}

func TestEnsureInitialized_Cancelled(t *testing.T) {
	r := New(ArtifactLoader{Dir: t.TempDir()}, quietLogger)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, r.EnsureInitialized(ctx), context.Canceled)
	assert.False(t, r.Initialized())
}

func TestArtifactLoader(t *testing.T) {
	dir := t.TempDir()
	fs, err := storage.NewFS(dir)
	require.NoError(t, err)
	require.NoError(t, artifact.Write(fs, testutil.Snapshot(t, testDocs())))

	r := New(ArtifactLoader{Dir: dir}, quietLogger)
	require.NoError(t, r.EnsureInitialized(context.Background()))
	assert.Equal(t, SourceArtifacts, r.Source())
	assert.Len(t, r.All(), 5)

	missing := New(ArtifactLoader{Dir: dir + "/absent"}, quietLogger)
	require.NoError(t, missing.EnsureInitialized(context.Background()))
	assert.Equal(t, SourceFallback, missing.Source())
}

func TestQueriesBeforeInitAreEmpty(t *testing.T) {
	r := New(ArtifactLoader{Dir: t.TempDir()}, quietLogger)
	assert.Empty(t, r.All())
	assert.Empty(t, r.ByChapter("21"))
	assert.Empty(t, r.AvailableChapters())
	assert.Empty(t, r.Structure())
	_, ok := r.ByID("21-20-recirculation")
	assert.False(t, ok)
}

func TestEveryDocumentIsReachable(t *testing.T) {
	r := staticRepo(t, testDocs())
	for _, d := range testDocs() {
		got, ok := r.ByID(d.ID)
		require.True(t, ok, d.ID)
		assert.Equal(t, d, got)

		got, ok = r.Specific(d.Chapter, d.Section, d.Slug)
		require.True(t, ok, d.ID)
		assert.Equal(t, d, got)
	}
}

func TestByChapter(t *testing.T) {
	r := staticRepo(t, testDocs())

	var ids []string
	for _, d := range r.ByChapter("21") {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"21-20-recirculation", "21-main-packs"}, ids)

	unknown := r.ByChapter("99x")
	assert.NotNil(t, unknown)
	assert.Empty(t, unknown)
}

func TestByChapterAndSection(t *testing.T) {
	r := staticRepo(t, testDocs())
	assert.Len(t, r.ByChapterAndSection("28", "40"), 1)

	none := r.ByChapterAndSection("28", "99")
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestSpecific_NotFound(t *testing.T) {
	r := staticRepo(t, testDocs())
	_, ok := r.Specific("28", "main", "missing")
	assert.False(t, ok)
	_, ok = r.Specific("28", "40", "tank-vent")
	assert.False(t, ok, "slug must match within its own bucket")
}

func TestEmptySectionMeansMain(t *testing.T) {
	r := staticRepo(t, testDocs())

	d, ok := r.Specific("28", "", "tank-vent")
	require.True(t, ok)
	assert.Equal(t, "28-main-tank-vent", d.ID)
	assert.Equal(t, r.ByChapterAndSection("21", "main"), r.ByChapterAndSection("21", ""))
	assert.Len(t, r.ByChapterAndSection("21", ""), 1)
}

func TestSearch(t *testing.T) {
	r := staticRepo(t, testDocs())

	res := r.Search("FUEL")
	require.Len(t, res, 1)
	assert.Equal(t, "Tank Vent System and Fuel Indication", res[0].Title)

	assert.Len(t, r.Search("probes"), 1, "matches body")
	assert.Len(t, r.Search("28"), 2, "matches chapter")
	assert.Len(t, r.Search("40"), 1, "matches section")
	assert.Empty(t, r.Search(""))
	assert.Empty(t, r.Search("   "))
	assert.Empty(t, r.Search("zzz"))
}

func TestSearch_IgnoresMarkup(t *testing.T) {
	docs := testDocs()
	docs[4].Content = `<p><strong>x</strong></p><blockquote class="warn">Check Fuel &amp; Oil levels</blockquote>`
	r := staticRepo(t, docs)

	assert.Empty(t, r.Search("strong"))
	assert.Empty(t, r.Search("blockquote"))
	assert.Empty(t, r.Search("class"))
	assert.Empty(t, r.Search("amp"))

	res := r.Search("fuel & oil")
	require.Len(t, res, 1)
	assert.Equal(t, "Custom", res[0].Title)
	assert.Len(t, r.Search("x check"), 1, "tags separate words")
}

func TestAvailableChaptersKeepsIndexOrder(t *testing.T) {
	docs := testDocs()
	docs[0], docs[2] = docs[2], docs[0]
	r := staticRepo(t, docs)
	assert.Equal(t, []string{"28", "21", "99"}, r.AvailableChapters())
}

func TestStructure(t *testing.T) {
	r := staticRepo(t, testDocs())
	tree := r.Structure()
	require.Len(t, tree, 3)

	assert.Equal(t, "21", tree[0].Code)
	assert.Equal(t, "Air Conditioning", tree[0].Title)
	require.Len(t, tree[0].Sections, 2)
	assert.Equal(t, "20", tree[0].Sections[0].Code)
	assert.Equal(t, "recirculation", tree[0].Sections[0].Files[0].Slug)

	assert.Equal(t, "Fuel", tree[1].Title)
	assert.Equal(t, "Chapter 99", tree[2].Title)
}

func TestStats(t *testing.T) {
	r := staticRepo(t, testDocs())
	st := r.Stats()

	assert.Equal(t, 5, st.TotalDocuments)
	assert.Equal(t, 3, st.Chapters)
	assert.Equal(t, 1, st.ByDifficulty[models.Beginner])
	assert.Equal(t, 2, st.ByDifficulty[models.Intermediate])
	assert.Equal(t, 1, st.ByDifficulty[models.Advanced])
	assert.Equal(t, 1, st.Unrated)
}

func TestReplace(t *testing.T) {
	r := staticRepo(t, testDocs())
	before := r.Version()

	r.Replace(testutil.Snapshot(t, testDocs()[:1]))
	assert.Len(t, r.All(), 1)
	assert.Equal(t, SourceRebuild, r.Source())
	assert.NotEqual(t, before, r.Version())
}

func TestFallback(t *testing.T) {
	fb := Fallback()
	require.GreaterOrEqual(t, fb.Len(), 5)

	seen := map[string]bool{}
	for _, d := range fb.Documents {
		assert.False(t, seen[d.ID], "duplicate id %s", d.ID)
		seen[d.ID] = true
		assert.NotEmpty(t, d.Content)
		assert.NotContains(t, d.Content, "<script")
	}
	d, ok := fb.Index.Lookup("21", "20", "recirculation")
	require.True(t, ok)
	assert.Equal(t, models.Intermediate, d.Difficulty)
	assert.Equal(t, 35, d.DurationMinutes)
}

func TestChapterTitle(t *testing.T) {
	assert.Equal(t, "Landing Gear", ChapterTitle("32"))
	assert.Equal(t, "Chapter 00", ChapterTitle("00"))
}
