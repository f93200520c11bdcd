package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seqspace/clipwin/internal/errdefs"
	"github.com/seqspace/clipwin/internal/interval"
)

func testDataset() *Dataset {
	return &Dataset{
		Windows: []interval.Window{
			{ID: "w1", Chrom: "chr1", Start: 100, End: 150, Strand: '+'},
			{ID: "w2", Chrom: "chr1", Start: 200, End: 250, Strand: '+'},
			{ID: "w3", Chrom: "chr1", Start: 300, End: 350, Strand: '+'},
		},
		Samples: []Sample{{Name: "a", Group: "IP"}, {Name: "b", Group: "IP"}, {Name: "c", Group: "SMI"}},
		Counts: [][]int64{
			{10, 5, 3}, // sum 18
			{1, 0, 2},  // sum 3
			{0, 0, 0},  // sum 0
		},
	}
}

func TestFilterBySum(t *testing.T) {
	ds := testDataset()
	out, err := ds.FilterBySum(5)
	require.NoError(t, err)

	assert.Equal(t, 1, out.NWindows())
	assert.Equal(t, "w1", out.Windows[0].ID)
	assert.Equal(t, 3, ds.NWindows(), "input untouched")
}

func TestFilterBySum_KeepsEqual(t *testing.T) {
	out, err := testDataset().FilterBySum(3)
	require.NoError(t, err)
	assert.Equal(t, 2, out.NWindows(), "threshold is inclusive")
}

func TestFilterBySum_Empty(t *testing.T) {
	_, err := testDataset().FilterBySum(1000)
	var emptyErr *errdefs.EmptyResultError
	assert.ErrorAs(t, err, &emptyErr)
}

func heightMatrix() *HeightMatrix {
	return &HeightMatrix{
		Samples: []string{"a", "b", "c"},
		Heights: map[string][]float64{
			"w1": {10, 2, 6},
			"w2": {10, 2, 2},
			"w3": {1, 1, 1},
		},
	}
}

func TestFilterByHeight(t *testing.T) {
	ds := testDataset()
	out, err := ds.FilterByHeight(heightMatrix(), 5, 2)
	require.NoError(t, err)

	// w1: heights [10,2,6], 2 of 3 samples >= 5 -> kept
	// w2: heights [10,2,2], 1 of 3 samples >= 5 -> removed
	assert.Equal(t, 1, out.NWindows())
	assert.Equal(t, "w1", out.Windows[0].ID)
	assert.Equal(t, 3, ds.NWindows(), "input untouched")
}

func TestFilterByHeight_TooManySamples(t *testing.T) {
	_, err := testDataset().FilterByHeight(heightMatrix(), 5, 4)
	var paramErr *errdefs.ParameterError
	assert.ErrorAs(t, err, &paramErr)
}

func TestFilterByHeight_EmptyResult(t *testing.T) {
	_, err := testDataset().FilterByHeight(heightMatrix(), 1000, 1)
	var emptyErr *errdefs.EmptyResultError
	assert.ErrorAs(t, err, &emptyErr)
}

func TestFilterByHeight_MissingWindowsDropped(t *testing.T) {
	hm := &HeightMatrix{
		Samples: []string{"a", "b", "c"},
		Heights: map[string][]float64{"w2": {9, 9, 9}},
	}
	out, err := testDataset().FilterByHeight(hm, 5, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, out.NWindows())
	assert.Equal(t, "w2", out.Windows[0].ID)
}

func TestReadHeightMatrix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heights.txt")
	content := "unique_id\ta\tb\tc\nw1\t10\t2\t6.5\nw2\t0\t0\t1\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	hm, err := ReadHeightMatrix(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, hm.Samples)
	assert.Equal(t, []float64{10, 2, 6.5}, hm.Heights["w1"])
}

func TestReadSampleTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.txt")
	content := "sample\tgroup\nip1\tIP\nctl1\tSMI\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	samples, err := ReadSampleTable(path)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, Sample{Name: "ip1", Group: "IP"}, samples[0])
}

func TestReadSampleTable_Duplicate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.txt")
	content := "sample\tgroup\nip1\tIP\nip1\tSMI\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := ReadSampleTable(path)
	assert.ErrorContains(t, err, "duplicate sample")
}
