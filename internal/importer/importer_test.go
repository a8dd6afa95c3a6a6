package importer_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/Tinuva88/TCGFun/internal/catalog"
	"github.com/Tinuva88/TCGFun/internal/importer"
)

const contentDir = "../../content/sets"

type memorySink struct {
	saved []catalog.Set
	fail  string
}

func (m *memorySink) SaveSet(_ context.Context, s catalog.Set) error {
	if s.ID == m.fail {
		return errors.New("disk full")
	}
	m.saved = append(m.saved, s)
	return nil
}

func TestImporter_Run_SavesEverySet(t *testing.T) {
	sink := &memorySink{}
	imp := importer.New(importer.NewYAMLSource(), sink, zaptest.NewLogger(t))

	report, err := imp.Run(context.Background(), contentDir)
	require.NoError(t, err)

	require.Len(t, sink.saved, 2)
	assert.Equal(t, "OP01", sink.saved[0].ID)
	assert.Equal(t, "PR01", sink.saved[1].ID)
	assert.Equal(t, 2, report.Sets)
	assert.Equal(t, len(sink.saved[0].Cards)+len(sink.saved[1].Cards), report.Cards)
	assert.Empty(t, report.UnresolvedToppers)
}

func TestImporter_Run_ReportsUnresolvedToppers(t *testing.T) {
	dir := t.TempDir()
	data, err := os.ReadFile(filepath.Join(contentDir, "op01.yaml"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "op01.yaml"), data, 0644))

	sink := &memorySink{}
	report, err := importer.New(importer.NewYAMLSource(), sink, zaptest.NewLogger(t)).Run(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"PR01-PACK"}, report.UnresolvedToppers)
	assert.Len(t, sink.saved, 1)
}

func TestImporter_Run_SinkFailure(t *testing.T) {
	sink := &memorySink{fail: "PR01"}
	report, err := importer.New(importer.NewYAMLSource(), sink, zaptest.NewLogger(t)).Run(context.Background(), contentDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `saving set "PR01"`)
	assert.Equal(t, 1, report.Sets)
}

func TestImporter_Run_DuplicateSetAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	data, err := os.ReadFile(filepath.Join(contentDir, "promo.yaml"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), data, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yml"), data, 0644))

	_, err = importer.New(importer.NewYAMLSource(), &memorySink{}, zaptest.NewLogger(t)).Run(context.Background(), dir)
	assert.ErrorContains(t, err, "already registered")
}

func TestImporter_Run_EmptyDir(t *testing.T) {
	_, err := importer.New(importer.NewJSONSource(), &memorySink{}, zaptest.NewLogger(t)).Run(context.Background(), t.TempDir())
	assert.ErrorContains(t, err, "no .json set files")
}

func TestDirSink_RoundTrip(t *testing.T) {
	out := t.TempDir()
	sink := importer.DirSink{Dir: out}
	report, err := importer.New(importer.NewYAMLSource(), sink, zaptest.NewLogger(t)).Run(context.Background(), contentDir)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Sets)

	original, err := catalog.LoadSets(contentDir)
	require.NoError(t, err)
	written, err := catalog.LoadSets(out)
	require.NoError(t, err)
	require.Len(t, written, len(original))
	for i := range original {
		assert.Equal(t, original[i].ID, written[i].ID)
		assert.Equal(t, original[i].Cards, written[i].Cards)
		assert.Equal(t, original[i].Products, written[i].Products)
	}
}

func TestJSONSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mini.json"), []byte(`{
  "id": "MINI",
  "name": "Mini",
  "tcg": {"id": "tcg", "name": "Test"},
  "rarities": [{"id": "C", "name": "Common"}],
  "cards": [{"id": "M-1", "name": "One", "rarity_id": "C"}],
  "products": [{
    "id": "MINI-PACK", "name": "Mini Pack", "type": "pack",
    "pack": {"cards_per_pack": 1, "slots": [{"slot_index": 0, "type": "fixed", "count": 1, "fixed_rarity_id": "C"}]}
  }]
}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.yaml"), []byte("not: a set"), 0644))

	sets, err := importer.NewJSONSource().Load(dir)
	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.Equal(t, "MINI", sets[0].ID)
	assert.Equal(t, "MINI", sets[0].Cards[0].SetID)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "op01", importer.FileName("OP01"))
	assert.Equal(t, "op_01_promo", importer.FileName(" OP 01/Promo "))
}

func TestPropertyFileNameIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		id := rapid.String().Draw(t, "id")
		once := importer.FileName(id)
		if twice := importer.FileName(once); twice != once {
			t.Fatalf("FileName not idempotent: %q -> %q -> %q", id, once, twice)
		}
	})
}
