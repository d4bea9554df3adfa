// Package export serializes a finished pipeline bundle to disk for the
// external inference engine: one raw byte file per tensor plus a YAML
// manifest tying the files to the master index lists they were built
// against.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tkoskela/occutensor/internal/errors"
	"github.com/tkoskela/occutensor/internal/pipeline"
	"github.com/tkoskela/occutensor/internal/tensor"
	"gopkg.in/yaml.v3"
)

// ManifestName is the bundle manifest filename.
const ManifestName = "manifest.yaml"

// TensorFile describes one serialized tensor: raw bytes, one byte per cell,
// C order over (species, site, interval, visit).
type TensorFile struct {
	Stream string `yaml:"stream"` // citsci or museum
	Kind   string `yaml:"kind"`   // detections or mask
	File   string `yaml:"file"`
	Shape  []int  `yaml:"shape"`
}

// Manifest is the bundle index the inference engine reads first. Tensors
// must always be interpreted through the axis lists recorded here; the
// lists are in tensor axis order and never re-sorted.
type Manifest struct {
	RunID     string    `yaml:"run_id"`
	CreatedAt time.Time `yaml:"created_at"`

	Dims struct {
		Species   int `yaml:"n_species"`
		Sites     int `yaml:"n_sites"`
		Intervals int `yaml:"n_intervals"`
		Visits    int `yaml:"n_visits"`
	} `yaml:"dims"`

	Axes struct {
		Species   []string `yaml:"species"`
		Sites     []int    `yaml:"sites"`
		Intervals []int    `yaml:"intervals"`
		Visits    []int    `yaml:"visits"`
	} `yaml:"axes"`

	Tensors []TensorFile    `yaml:"tensors"`
	Report  pipeline.Report `yaml:"report"`
}

// WriteBundle writes the six artifacts of a run into dir, creating it if
// needed. Partial bundles are not left behind on error paths beyond the
// files already written; callers should treat a returned error as a failed
// run and discard the directory.
func WriteBundle(bundle *pipeline.Bundle, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return exportErr(fmt.Errorf("failed to create bundle directory: %w", err), dir)
	}

	nSpecies, nSites, nIntervals, nVisits := bundle.Axes.Dims()
	shape := []int{nSpecies, nSites, nIntervals, nVisits}

	manifest := &Manifest{
		RunID:     bundle.RunID,
		CreatedAt: time.Now().UTC(),
		Report:    bundle.Report,
	}
	manifest.Dims.Species = nSpecies
	manifest.Dims.Sites = nSites
	manifest.Dims.Intervals = nIntervals
	manifest.Dims.Visits = nVisits
	manifest.Axes.Species = bundle.Axes.Species
	manifest.Axes.Sites = bundle.Axes.Sites
	manifest.Axes.Intervals = bundle.Axes.Intervals
	manifest.Axes.Visits = bundle.Axes.Visits

	tensors := []struct {
		stream string
		kind   string
		dense  *tensor.Dense
	}{
		{pipeline.StreamCitSci, "detections", bundle.DetectionsCitSci},
		{pipeline.StreamMuseum, "detections", bundle.DetectionsMuseum},
		{pipeline.StreamCitSci, "mask", bundle.MaskCitSci},
		{pipeline.StreamMuseum, "mask", bundle.MaskMuseum},
	}

	for _, t := range tensors {
		file := fmt.Sprintf("%s_%s.bin", t.kind, t.stream)
		if err := os.WriteFile(filepath.Join(dir, file), t.dense.Bytes(), 0o644); err != nil {
			return exportErr(fmt.Errorf("failed to write tensor file %s: %w", file, err), dir)
		}
		manifest.Tensors = append(manifest.Tensors, TensorFile{
			Stream: t.stream,
			Kind:   t.kind,
			File:   file,
			Shape:  shape,
		})
	}

	data, err := yaml.Marshal(manifest)
	if err != nil {
		return exportErr(fmt.Errorf("failed to marshal manifest: %w", err), dir)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestName), data, 0o644); err != nil {
		return exportErr(fmt.Errorf("failed to write manifest: %w", err), dir)
	}

	return nil
}

// ReadManifest loads a bundle manifest back, mainly for tests and tooling.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return nil, exportErr(fmt.Errorf("failed to read manifest: %w", err), dir)
	}
	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, exportErr(fmt.Errorf("failed to parse manifest: %w", err), dir)
	}
	return &manifest, nil
}

func exportErr(err error, dir string) error {
	return errors.Wrap(err).
		Component("export").
		Category(errors.CategoryExport).
		Context("dir", dir).
		Build()
}
