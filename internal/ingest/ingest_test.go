package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/starford/hangar/internal/artifact"
	"github.com/starford/hangar/internal/models"
	"github.com/starford/hangar/internal/render"
	"github.com/starford/hangar/internal/storage"
	"github.com/starford/hangar/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testBuilder() *Builder {
	return NewBuilder(render.NewPipeline(render.NewBasic(), render.NewSanitizer()), testutil.Logger())
}

func TestBuild_RecirculationDocument(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"21/20/recirculation.md": "---\ntitle: \"Recirculating System\"\ndifficulty: \"Intermediate\"\nduration: 35\nauthor: ops\n---\n# Recirculation\n\nFans return cabin air.",
	})

	snap, sum, err := testBuilder().Build(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, Summary{Documents: 1, Chapters: 1}, sum)

	require.Len(t, snap.Documents, 1)
	d := snap.Documents[0]
	assert.Equal(t, "21-20-recirculation", d.ID)
	assert.Equal(t, "Recirculating System", d.Title)
	assert.Equal(t, models.Intermediate, d.Difficulty)
	assert.Equal(t, 35, d.DurationMinutes)
	assert.Equal(t, "21/20/recirculation.md", d.FilePath)
	assert.Equal(t, "ops", d.FrontMatter["author"])
	assert.NotEmpty(t, d.Checksum)
	assert.Contains(t, d.Content, "<h1>Recirculation</h1>")

	got, ok := snap.Index.Lookup("21", "20", "recirculation")
	require.True(t, ok)
	assert.Equal(t, d, got)
}

func TestBuild_Placement(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"readme.md":           "# Welcome",
		"overview.md":         "---\nchapter: \"05\"\nsection: checks\n---\nbody",
		"28/tank-vent_sys.md": "vent body",
		"28/40/gauging.md":    "---\nchapter: 99\n---\ngauging",
	})

	snap, _, err := testBuilder().Build(context.Background(), root)
	require.NoError(t, err)

	byID := map[string]models.Document{}
	for _, d := range snap.Documents {
		byID[d.ID] = d
	}
	assert.Contains(t, byID, "general-main-readme")
	assert.Contains(t, byID, "05-checks-overview")
	assert.Contains(t, byID, "28-40-gauging", "directories take precedence over front-matter")
	require.Contains(t, byID, "28-main-tank-vent_sys")
	assert.Equal(t, "tank vent sys", byID["28-main-tank-vent_sys"].Title)
}

func TestBuild_SkipsMalformedFrontMatter(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"21/good.md": "---\ntitle: Good\n---\nok",
		"21/bad.md":  "---\ntitle: [unclosed\n---\nbody",
	})

	snap, sum, err := testBuilder().Build(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Documents)
	assert.Equal(t, 1, sum.Skipped)
	assert.Equal(t, "Good", snap.Documents[0].Title)
}

func TestBuild_SkipsNonFiniteFrontMatter(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"21/20/good.md": "---\ntitle: Good\n---\nok",
		"21/20/inf.md":  "---\nweight: .inf\n---\nbody",
		"21/20/nan.md":  "---\nlimits:\n  max: .nan\n---\nbody",
	})

	snap, sum, err := testBuilder().Build(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Documents)
	assert.Equal(t, 2, sum.Skipped)
	assert.NotEqual(t, artifact.Empty().Version, snap.Version)

	require.NoError(t, WriteArtifacts(t.TempDir(), snap))
}

func TestBuild_DuplicateKeepsFirst(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"21/main/valve.md": "---\ntitle: First\n---\na",
		"21/valve.md":      "---\ntitle: Second\n---\nb",
	})

	snap, sum, err := testBuilder().Build(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Skipped)
	require.Len(t, snap.Documents, 1)
	assert.Equal(t, "First", snap.Documents[0].Title)
	assert.Equal(t, 1, snap.Index.Len())
}

func TestBuild_MissingDirIsEmpty(t *testing.T) {
	snap, sum, err := testBuilder().Build(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Equal(t, Summary{}, sum)
	assert.Empty(t, snap.Documents)
	assert.Empty(t, snap.Index.Chapters())
}

func TestBuild_SanitizesAndSkipsHidden(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"24/power.md":   "# Power\n\n<script>alert(1)</script> text",
		"24/.draft.md":  "# Draft",
		".git/HEAD.md":  "# nope",
		"24/notes.txt":  "not markdown",
	})

	snap, _, err := testBuilder().Build(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, snap.Documents, 1)
	assert.NotContains(t, snap.Documents[0].Content, "<script")
	assert.Contains(t, snap.Documents[0].Content, "text")
}

func TestBuild_TraversalOrderIsStable(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"32/b.md": "b", "32/a.md": "a", "21/z.md": "z", "29/10/m.md": "m",
	})

	first, _, err := testBuilder().Build(context.Background(), root)
	require.NoError(t, err)
	second, _, err := testBuilder().Build(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, first.Version, second.Version)
	assert.Equal(t, []string{"21", "29", "32"}, first.Index.Chapters())
	var slugs []string
	for _, d := range first.Index.Documents("32", "main") {
		slugs = append(slugs, d.Slug)
	}
	assert.Equal(t, []string{"a", "b"}, slugs)
}

func TestBuild_Cancelled(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{"21/a.md": "a"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := testBuilder().Build(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteArtifacts(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{"21/20/recirculation.md": "# R"})
	snap, _, err := testBuilder().Build(context.Background(), root)
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "dist", "content")
	require.NoError(t, WriteArtifacts(out, snap))

	fs, err := storage.NewFS(out)
	require.NoError(t, err)
	back, err := artifact.Read(fs)
	require.NoError(t, err)
	assert.Equal(t, snap.Documents, back.Documents)

	raw, err := os.ReadFile(filepath.Join(out, artifact.IndexFile))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "21-20-recirculation")
}
