package store

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seqspace/clipwin/internal/interval"
	"github.com/seqspace/clipwin/internal/region"
	"github.com/seqspace/clipwin/internal/stats"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openInMemory(t)
	assert.NotNil(t, s.DB())
}

func TestRunLifecycle(t *testing.T) {
	s := openInMemory(t)

	require.NoError(t, s.BeginRun("run1", "IP", "SMI", 0.05, 1))
	require.NoError(t, s.BeginRun("run2", "IP", "SMI", 0.01, 0))
	assert.Error(t, s.BeginRun("run1", "IP", "SMI", 0.05, 1), "run ids are unique")

	runs, err := s.ListRuns()
	require.NoError(t, err)
	assert.Equal(t, []string{"run1", "run2"}, runs)
}

func TestWriteAndLoadWindowResults(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.BeginRun("run1", "IP", "SMI", 0.05, 1))

	results := []stats.WindowResult{
		{
			Window: interval.Window{
				ID: "w1", Chrom: "chr1", Start: 100, End: 150, Strand: '+',
				GeneID: "G1", GeneName: "GENE1", GeneType: "protein_coding", GeneRegion: "CDS",
			},
			BaseMean: 120.5, Log2FC: 1.4, Stat: 3.1, PValue: 0.002,
			POneSided: 0.001, OverlapCount: 3, PCorrected: 0.003, PAdj: 0.01,
			Significant: true,
		},
		{
			Window: interval.Window{
				ID: "w2", Chrom: "chr1", Start: 200, End: 250, Strand: '-',
				GeneID: "G2", GeneName: "GENE2", GeneType: "lncRNA", GeneRegion: "exon",
			},
			BaseMean: math.NaN(), Log2FC: math.NaN(), Stat: math.NaN(), PValue: math.NaN(),
			POneSided: math.NaN(), OverlapCount: 1, PCorrected: math.NaN(), PAdj: math.NaN(),
		},
	}

	require.NoError(t, s.WriteWindowResults("run1", results))

	loaded, err := s.LoadWindowResults("run1")
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	assert.Equal(t, "w1", loaded[0].Window.ID)
	assert.Equal(t, byte('+'), loaded[0].Window.Strand)
	assert.Equal(t, 0.01, loaded[0].PAdj)
	assert.True(t, loaded[0].Significant)

	// NaN round-trips through SQL NULL
	assert.True(t, math.IsNaN(loaded[1].PAdj))
	assert.Equal(t, byte('-'), loaded[1].Window.Strand)
	assert.False(t, loaded[1].Significant)
}

func TestWriteAndLoadRegions(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.BeginRun("run1", "IP", "SMI", 0.05, 1))

	regions := []region.Region{
		{
			Chrom: "chr1", Start: 100, End: 170, Strand: '+',
			GeneID: "G1", GeneName: "GENE1", GeneType: "protein_coding",
			WindowCount: 2, PAdjMin: 0.01, PAdjMax: 0.03, PAdjMean: 0.02,
			Log2FCMin: 1.5, Log2FCMax: 2.0,
		},
	}
	require.NoError(t, s.WriteRegions("run1", regions))

	loaded, err := s.LoadRegions("run1")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, regions[0], loaded[0])
}

func TestLoadUnknownRun(t *testing.T) {
	s := openInMemory(t)
	loaded, err := s.LoadRegions("nope")
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestWriteEmpty(t *testing.T) {
	s := openInMemory(t)
	assert.NoError(t, s.WriteWindowResults("run1", nil))
	assert.NoError(t, s.WriteRegions("run1", nil))
}
