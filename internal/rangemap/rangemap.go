// Package rangemap infers per-species geographic ranges from historical
// occurrence points: a convex hull over the filtered point cloud,
// intersected against every site geometry.
package rangemap

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/patrickmn/go-cache"
	"github.com/paulmach/orb"
	"github.com/tkoskela/occutensor/internal/conf"
	"github.com/tkoskela/occutensor/internal/errors"
	"github.com/tkoskela/occutensor/internal/logging"
	"github.com/tkoskela/occutensor/internal/occurrence"
	"github.com/tkoskela/occutensor/internal/sites"
	"github.com/tkoskela/occutensor/internal/timebin"
)

const defaultWorkers = 8

// Vector is a boolean in-range vector over the ordered site list.
type Vector []bool

// Map holds the computed in-range vectors for every species of a run.
type Map struct {
	vectors    map[string]Vector
	siteIdx    map[int]int
	SiteIDs    []int
	Degenerate []string // species whose hull degenerated, alphabetized
}

// InRange reports whether the species is considered capable of occurring at
// the site. Unknown species or sites are out of range.
func (m *Map) InRange(species string, siteID int) bool {
	vector, ok := m.vectors[species]
	if !ok {
		return false
	}
	j, ok := m.siteIdx[siteID]
	if !ok {
		return false
	}
	return vector[j]
}

// Vector returns the in-range vector for a species in site axis order.
func (m *Map) Vector(species string) (Vector, bool) {
	vector, ok := m.vectors[species]
	return vector, ok
}

// FilterRecords drops records at sites outside their species' range.
// Detections cannot be kept where sampling is masked impossible, so the
// range filter runs before tensor construction.
func (m *Map) FilterRecords(records []timebin.Record) (kept []timebin.Record, dropped int) {
	kept = make([]timebin.Record, 0, len(records))
	for i := range records {
		if m.InRange(records[i].Species, records[i].SiteID) {
			kept = append(kept, records[i])
			continue
		}
		dropped++
	}
	return kept, dropped
}

// Config controls point filtering and hull computation.
type Config struct {
	MinYear        int                            // year floor for historical points
	MaxUncertainty float64                        // meters, 0 disables the uncertainty filter
	Exclusions     map[string]conf.RangeExclusion // per-species manual exclusion boxes
	Workers        int                            // hull worker pool size
}

// ConfigFromSettings extracts the engine config from loaded settings.
func ConfigFromSettings(rng *conf.RangeSettings) Config {
	return Config{
		MinYear:        rng.MinYear,
		MaxUncertainty: rng.MaxUncertainty,
		Exclusions:     rng.Exclusions,
		Workers:        rng.Workers,
	}
}

// Engine computes range maps. Per-species computation is pure and memoized
// across Compute calls on the same engine: a rerun over an unchanged point
// corpus and site list reuses cached vectors, while any input change misses
// the cache. The filter config is fixed at construction and needs no keying.
type Engine struct {
	cfg    Config
	cache  *cache.Cache
	logger *slog.Logger
}

// NewEngine creates a range engine with the given config.
func NewEngine(cfg Config) *Engine {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	return &Engine{
		cfg:    cfg,
		cache:  cache.New(time.Hour, 10*time.Minute),
		logger: logging.ForService("rangemap"),
	}
}

// speciesRange is one per-species computation result.
type speciesRange struct {
	species    string
	vector     Vector
	degenerate bool
}

// Compute derives the in-range vector for every species in speciesList from
// the historical point corpus. Species are independent and computed in
// parallel over read-only shared inputs.
func (e *Engine) Compute(ctx context.Context, points []occurrence.HistoricalPoint, siteList []sites.Site, speciesList []string) (*Map, error) {
	bySpecies := make(map[string][]occurrence.HistoricalPoint)
	for i := range points {
		bySpecies[points[i].Species] = append(bySpecies[points[i].Species], points[i])
	}

	siteDigest := sitesDigest(siteList)

	pool := pond.NewResultPool[speciesRange](e.cfg.Workers)
	defer pool.StopAndWait()
	group := pool.NewGroupContext(ctx)

	for _, species := range speciesList {
		speciesPoints := bySpecies[species]
		key := fmt.Sprintf("%s|%x|%x", species, pointsDigest(speciesPoints), siteDigest)
		group.SubmitErr(func() (speciesRange, error) {
			return e.computeSpecies(key, species, speciesPoints, siteList), nil
		})
	}

	results, err := group.Wait()
	if err != nil {
		return nil, errors.New(err).
			Component("rangemap").
			Category(errors.CategoryWorker).
			Build()
	}

	rangeMap := &Map{
		vectors: make(map[string]Vector, len(results)),
		siteIdx: make(map[int]int, len(siteList)),
		SiteIDs: sites.IDs(siteList),
	}
	for j := range siteList {
		rangeMap.siteIdx[siteList[j].ID] = j
	}

	for _, result := range results {
		rangeMap.vectors[result.species] = result.vector
		if result.degenerate {
			rangeMap.Degenerate = append(rangeMap.Degenerate, result.species)
		}
	}
	sort.Strings(rangeMap.Degenerate)

	if len(rangeMap.Degenerate) > 0 {
		// Degenerate ranges silently zero model inputs, surface them loudly.
		e.logger.Warn("species with degenerate range hulls, in-range forced to false",
			"count", len(rangeMap.Degenerate),
			"species", rangeMap.Degenerate)
	}

	return rangeMap, nil
}

// computeSpecies filters the species' point cloud, builds its hull and
// intersects it against every site geometry. The key covers species, point
// corpus and site list, so hits only occur for identical inputs.
func (e *Engine) computeSpecies(key, species string, points []occurrence.HistoricalPoint, siteList []sites.Site) speciesRange {
	if cached, ok := e.cache.Get(key); ok {
		if result, ok := cached.(speciesRange); ok {
			return result
		}
	}

	filtered := e.filterPoints(species, points)
	hull := convexHull(filtered)

	result := speciesRange{species: species, vector: make(Vector, len(siteList))}
	if hull == nil {
		// Fewer than 3 non-collinear usable points: the range is empty by
		// policy, not whatever a hull of a point or line would intersect.
		result.degenerate = true
		e.cache.Set(key, result, cache.DefaultExpiration)
		return result
	}

	for j := range siteList {
		result.vector[j] = hullIntersectsSite(hull, siteList[j].Geometry)
	}

	e.cache.Set(key, result, cache.DefaultExpiration)
	return result
}

// pointsDigest fingerprints a point slice, order sensitive.
func pointsDigest(points []occurrence.HistoricalPoint) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	write := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = h.Write(buf[:])
	}
	for i := range points {
		p := &points[i]
		write(uint64(p.Year))
		write(math.Float64bits(p.Longitude))
		write(math.Float64bits(p.Latitude))
		write(math.Float64bits(p.UncertaintyM))
	}
	return h.Sum64()
}

// sitesDigest fingerprints the site list: identifiers, order and geometry.
func sitesDigest(siteList []sites.Site) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	write := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = h.Write(buf[:])
	}
	for i := range siteList {
		write(uint64(siteList[i].ID))
		for _, polygon := range siteList[i].Geometry {
			for _, ring := range polygon {
				for _, p := range ring {
					write(math.Float64bits(p[0]))
					write(math.Float64bits(p[1]))
				}
			}
		}
	}
	return h.Sum64()
}

// filterPoints applies the year floor, the coordinate-uncertainty ceiling and
// the species' manual exclusion box.
func (e *Engine) filterPoints(species string, points []occurrence.HistoricalPoint) []orb.Point {
	exclusion, hasExclusion := e.cfg.Exclusions[species]

	filtered := make([]orb.Point, 0, len(points))
	for i := range points {
		p := &points[i]
		if p.Year < e.cfg.MinYear {
			continue
		}
		if e.cfg.MaxUncertainty > 0 && p.UncertaintyM > e.cfg.MaxUncertainty {
			continue
		}
		if hasExclusion {
			if p.Longitude < exclusion.MinLon || p.Longitude > exclusion.MaxLon ||
				p.Latitude < exclusion.MinLat || p.Latitude > exclusion.MaxLat {
				continue
			}
		}
		filtered = append(filtered, orb.Point{p.Longitude, p.Latitude})
	}
	return filtered
}
