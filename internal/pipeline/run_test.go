package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seqspace/clipwin/internal/errdefs"
)

// writeFixture writes the canonical small end-to-end input set: one
// gene with three windows, the first two overlapping and enriched,
// the third flat, plus a second depleted gene.
func writeFixture(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()

	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		return path
	}

	annotation := write("windows.txt",
		"chromosome\tunique_id\tbegin\tend\tstrand\tgene_id\tgene_name\tgene_type\tgene_region\tNr_of_region\tTotal_nr_of_region\n"+
			"chr1\tw1\t100\t150\t+\tG1\tGENE1\tprotein_coding\tCDS\t1\t1\n"+
			"chr1\tw2\t120\t170\t+\tG1\tGENE1\tprotein_coding\tCDS\t1\t1\n"+
			"chr1\tw3\t200\t250\t+\tG1\tGENE1\tprotein_coding\tCDS\t1\t1\n"+
			"chr2\tw4\t300\t350\t-\tG2\tGENE2\tlncRNA\texon\t1\t1\n")

	counts := write("counts.txt",
		"unique_id\tip1\tip2\tc1\tc2\n"+
			"w1\t100\t110\t10\t12\n"+
			"w2\t90\t95\t11\t9\n"+
			"w3\t20\t22\t21\t19\n"+
			"w4\t5\t6\t50\t60\n")

	samples := write("samples.txt",
		"sample\tgroup\nip1\tIP\nip2\tIP\nc1\tSMI\nc2\tSMI\n")

	results := write("deseq.txt",
		"unique_id\tbaseMean\tlog2FoldChange\tstat\tpvalue\n"+
			"w1\t58\t3.2\t9.1\t1e-8\n"+
			"w2\t51\t3.0\t8.5\t1e-7\n"+
			"w3\t20\t0.1\t0.4\t0.7\n"+
			"w4\t30\t-3.3\t-9.0\t1e-8\n")

	return Config{
		AnnotationPath: annotation,
		CountsPath:     counts,
		SamplesPath:    samples,
		ResultsPath:    results,
		Engine:         "file",
		Treatment:      "IP",
		Control:        "SMI",
		Alpha:          0.05,
		MinLFC:         1,
	}
}

func TestRun_EndToEnd(t *testing.T) {
	cfg := writeFixture(t)

	out, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.Equal(t, 4, len(out.Results), "row per window, none dropped")

	byID := map[string]int{}
	for i, r := range out.Results {
		byID[r.Window.ID] = i
	}

	w1 := out.Results[byID["w1"]]
	w2 := out.Results[byID["w2"]]
	w3 := out.Results[byID["w3"]]
	w4 := out.Results[byID["w4"]]

	// one-sided p halves the two-sided p for enriched windows
	assert.InDelta(t, 5e-9, w1.POneSided, 1e-15)
	// depleted window forced to p = 1
	assert.Equal(t, 1.0, w4.POneSided)

	// w1 and w2 overlap each other, w3 stands alone
	assert.Equal(t, 2, w1.OverlapCount)
	assert.Equal(t, 2, w2.OverlapCount)
	assert.Equal(t, 1, w3.OverlapCount)
	assert.Equal(t, 1, w4.OverlapCount)

	assert.True(t, w1.Significant)
	assert.True(t, w2.Significant)
	assert.False(t, w3.Significant)
	assert.False(t, w4.Significant)

	// w1+w2 merge into one region spanning their union
	require.Len(t, out.Regions, 1)
	assert.Equal(t, "G1", out.Regions[0].GeneID)
	assert.Equal(t, int64(100), out.Regions[0].Start)
	assert.Equal(t, int64(170), out.Regions[0].End)
	assert.Equal(t, 2, out.Regions[0].WindowCount)
}

func TestRun_SumPrefilter(t *testing.T) {
	cfg := writeFixture(t)
	cfg.MinSum = 100 // w4 sums to 121, w3 to 82

	out, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)

	for _, r := range out.Results {
		assert.NotEqual(t, "w3", r.Window.ID, "w3 filtered before testing")
	}
	assert.Len(t, out.Results, 3)
}

func TestRun_KeepIDs(t *testing.T) {
	cfg := writeFixture(t)
	cfg.KeepIDs = []string{"w1", "w2"}

	out, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)

	require.Len(t, out.Results, 2)
	assert.Equal(t, "w1", out.Results[0].Window.ID)
	assert.Equal(t, "w2", out.Results[1].Window.ID)
	require.Len(t, out.Regions, 1, "the restricted set still yields its region")
}

func TestRun_KeepIDs_NoMatch(t *testing.T) {
	cfg := writeFixture(t)
	cfg.KeepIDs = []string{"nope"}

	_, err := Run(context.Background(), cfg, nil)
	var emptyErr *errdefs.EmptyIntersectionError
	assert.ErrorAs(t, err, &emptyErr)
}

func TestRun_WaldEngine(t *testing.T) {
	cfg := writeFixture(t)
	cfg.Engine = "wald"
	cfg.ResultsPath = ""

	out, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.Len(t, out.Results, 4)

	for _, r := range out.Results {
		if r.Window.ID == "w1" {
			// size-factor normalization shrinks the raw ten-fold ratio;
			// the direction and strength still have to survive it
			assert.Greater(t, r.Log2FC, 1.0)
			assert.Less(t, r.PValue, 0.01)
		}
	}
}

func TestRun_FileEngineNeedsPath(t *testing.T) {
	cfg := writeFixture(t)
	cfg.ResultsPath = ""

	_, err := Run(context.Background(), cfg, nil)
	var paramErr *errdefs.ParameterError
	assert.ErrorAs(t, err, &paramErr)
}

func TestRun_UnknownEngine(t *testing.T) {
	cfg := writeFixture(t)
	cfg.Engine = "magic"

	_, err := Run(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "magic")
}
