package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seqspace/clipwin/internal/dataset"
	"github.com/seqspace/clipwin/internal/interval"
)

func resultsFixture() []WindowResult {
	return []WindowResult{
		{
			Window: interval.Window{ID: "w1", Chrom: "chr1", Start: 100, End: 150, Strand: '+', GeneID: "G1"},
			Log2FC: 1.2, PValue: 0.04,
		},
		{
			Window: interval.Window{ID: "w2", Chrom: "chr1", Start: 120, End: 170, Strand: '+', GeneID: "G1"},
			Log2FC: -0.8, PValue: 0.001,
		},
		{
			Window: interval.Window{ID: "w3", Chrom: "chr1", Start: 200, End: 250, Strand: '+', GeneID: "G1"},
			Log2FC: 0.5, PValue: math.NaN(),
		},
	}
}

func TestOneSided(t *testing.T) {
	results := resultsFixture()
	OneSided(results)

	require.Len(t, results, 3, "row count preserved")

	// enriched: two-sided p is halved
	assert.InDelta(t, 0.02, results[0].POneSided, 1e-12)

	// depleted: forced to 1 regardless of its raw statistic
	assert.Equal(t, 1.0, results[1].POneSided)

	// undefined stays undefined
	assert.True(t, math.IsNaN(results[2].POneSided))
}

func TestOneSided_ZeroFoldChange(t *testing.T) {
	results := []WindowResult{{Log2FC: 0, PValue: 0.01}}
	OneSided(results)
	assert.Equal(t, 1.0, results[0].POneSided, "zero fold change is not enrichment")
}

func TestMarkSignificant(t *testing.T) {
	results := []WindowResult{
		{PAdj: 0.01, Log2FC: 2},
		{PAdj: 0.01, Log2FC: 0.5},
		{PAdj: 0.2, Log2FC: 2},
		{PAdj: math.NaN(), Log2FC: 2},
	}
	MarkSignificant(results, 0.05, 1)

	assert.True(t, results[0].Significant)
	assert.False(t, results[1].Significant, "fold change below threshold")
	assert.False(t, results[2].Significant, "padj above alpha")
	assert.False(t, results[3].Significant, "NaN never passes")
}

func TestBuildResults(t *testing.T) {
	ds := &dataset.Dataset{
		Windows: []interval.Window{
			{ID: "w1", Chrom: "chr1", Start: 100, End: 150, Strand: '+'},
			{ID: "w2", Chrom: "chr1", Start: 200, End: 250, Strand: '+'},
		},
		Samples: []dataset.Sample{{Name: "a", Group: "IP"}},
		Counts:  [][]int64{{1}, {2}},
	}
	fit := []EngineResult{
		{WindowID: "w1", BaseMean: 5, Log2FC: 1, Stat: 2, PValue: 0.05},
		{WindowID: "w2", BaseMean: 3, Log2FC: -1, Stat: -2, PValue: 0.05},
	}

	results, err := BuildResults(ds, fit)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "w1", results[0].Window.ID)
	assert.Equal(t, 5.0, results[0].BaseMean)
	assert.True(t, math.IsNaN(results[0].PAdj), "derived p-values start undefined")
}

func TestBuildResults_Misaligned(t *testing.T) {
	ds := &dataset.Dataset{
		Windows: []interval.Window{{ID: "w1"}},
		Counts:  [][]int64{{1}},
	}

	_, err := BuildResults(ds, []EngineResult{{WindowID: "wX"}})
	assert.ErrorContains(t, err, "w1")

	_, err = BuildResults(ds, nil)
	assert.ErrorContains(t, err, "0 rows")
}
