package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tkoskela/occutensor/internal/pipeline"
	"github.com/tkoskela/occutensor/internal/tensor"
)

func testBundle(t *testing.T) *pipeline.Bundle {
	t.Helper()

	axes, err := tensor.NewAxes(
		[]string{"Bombus affinis", "Bombus terricola"},
		[]int{5, 7},
		[]int{0, 1},
		[]int{0, 1, 2},
	)
	require.NoError(t, err)

	detCitSci := tensor.NewDense(axes)
	detCitSci.Mark(0, 0, 0, 1)
	maskCitSci := tensor.NewDense(axes)
	maskCitSci.Mark(0, 0, 0, 1)
	maskCitSci.Mark(1, 1, 1, 2)

	bundle := &pipeline.Bundle{
		RunID:            "test-run",
		Axes:             axes,
		DetectionsCitSci: detCitSci,
		DetectionsMuseum: tensor.NewDense(axes),
		MaskCitSci:       maskCitSci,
		MaskMuseum:       tensor.NewDense(axes),
	}
	bundle.Report.RunID = bundle.RunID
	return bundle
}

func TestWriteBundle_FilesAndManifest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bundle := testBundle(t)
	require.NoError(t, WriteBundle(bundle, dir))

	// One raw byte file per tensor, sized to the full cell domain.
	for _, name := range []string{
		"detections_citsci.bin",
		"detections_museum.bin",
		"mask_citsci.bin",
		"mask_museum.bin",
	} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Len(t, data, bundle.Axes.Cells(), name)
	}

	detections, err := os.ReadFile(filepath.Join(dir, "detections_citsci.bin"))
	require.NoError(t, err)
	assert.Equal(t, bundle.DetectionsCitSci.Bytes(), detections)
}

func TestWriteBundle_ManifestRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bundle := testBundle(t)
	require.NoError(t, WriteBundle(bundle, dir))

	manifest, err := ReadManifest(dir)
	require.NoError(t, err)

	assert.Equal(t, "test-run", manifest.RunID)
	assert.Equal(t, 2, manifest.Dims.Species)
	assert.Equal(t, 2, manifest.Dims.Sites)
	assert.Equal(t, 2, manifest.Dims.Intervals)
	assert.Equal(t, 3, manifest.Dims.Visits)

	assert.Equal(t, bundle.Axes.Species, manifest.Axes.Species)
	assert.Equal(t, bundle.Axes.Sites, manifest.Axes.Sites)
	assert.Equal(t, bundle.Axes.Intervals, manifest.Axes.Intervals)
	assert.Equal(t, bundle.Axes.Visits, manifest.Axes.Visits)

	require.Len(t, manifest.Tensors, 4)
	for _, tf := range manifest.Tensors {
		assert.Equal(t, []int{2, 2, 2, 3}, tf.Shape)
		assert.Contains(t, []string{pipeline.StreamCitSci, pipeline.StreamMuseum}, tf.Stream)
		assert.Contains(t, []string{"detections", "mask"}, tf.Kind)
	}
}

func TestReadManifest_MissingDir(t *testing.T) {
	t.Parallel()

	_, err := ReadManifest(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
