// Package sites loads the ordered site list produced by the spatial site
// provider. Site order in the source file is the master site axis order and
// is never re-sorted here.
package sites

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/tkoskela/occutensor/internal/errors"
)

// Covariates holds the static site-level covariates extracted upstream from
// rasters and shapefiles. The pipeline passes them through untouched.
type Covariates struct {
	PopulationDensity float64
	ImperviousCover   float64
	AreaKm2           float64
}

// Site is a fixed spatial unit (grid cell) with static covariates.
type Site struct {
	ID         int
	Geometry   orb.MultiPolygon
	Covariates Covariates
}

// LoadGeoJSON reads sites from a GeoJSON feature collection. Every feature
// must carry an integer "site_id" property and a Polygon or MultiPolygon
// geometry. The returned slice preserves feature order.
func LoadGeoJSON(path string) ([]Site, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(fmt.Errorf("failed to read site file: %w", err)).
			Component("sites").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.New(fmt.Errorf("failed to parse site GeoJSON: %w", err)).
			Component("sites").
			Category(errors.CategoryGeometry).
			Context("path", path).
			Build()
	}

	sites := make([]Site, 0, len(fc.Features))
	seen := make(map[int]struct{}, len(fc.Features))

	for i, feature := range fc.Features {
		id := feature.Properties.MustInt("site_id", -1)
		if id < 0 {
			return nil, errors.Newf("site feature %d has no site_id property", i).
				Component("sites").
				Category(errors.CategoryGeometry).
				Build()
		}
		if _, dup := seen[id]; dup {
			return nil, errors.Newf("duplicate site_id %d in site file", id).
				Component("sites").
				Category(errors.CategoryGeometry).
				Build()
		}
		seen[id] = struct{}{}

		geometry, err := asMultiPolygon(feature.Geometry)
		if err != nil {
			return nil, errors.New(err).
				Component("sites").
				Category(errors.CategoryGeometry).
				Context("site_id", id).
				Build()
		}

		sites = append(sites, Site{
			ID:       id,
			Geometry: geometry,
			Covariates: Covariates{
				PopulationDensity: feature.Properties.MustFloat64("population_density", 0),
				ImperviousCover:   feature.Properties.MustFloat64("impervious_cover", 0),
				AreaKm2:           feature.Properties.MustFloat64("area_km2", 0),
			},
		})
	}

	return sites, nil
}

// IDs returns the ordered site identifier list for the given sites.
func IDs(sites []Site) []int {
	ids := make([]int, len(sites))
	for i := range sites {
		ids[i] = sites[i].ID
	}
	return ids
}

func asMultiPolygon(geometry orb.Geometry) (orb.MultiPolygon, error) {
	switch g := geometry.(type) {
	case orb.Polygon:
		return orb.MultiPolygon{g}, nil
	case orb.MultiPolygon:
		return g, nil
	default:
		return nil, fmt.Errorf("unsupported site geometry type %q", geometry.GeoJSONType())
	}
}
