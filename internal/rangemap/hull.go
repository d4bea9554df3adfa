// hull.go: planar convex hull construction and hull/site intersection tests.
package rangemap

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// cross returns the z component of (b-a) x (c-a). Positive means a
// counter-clockwise turn, zero collinear.
func cross(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

// convexHull computes the convex hull of the given points with Andrew's
// monotone chain. It returns nil when fewer than 3 non-collinear points are
// available, which callers must treat as a degenerate (empty) range rather
// than a point or line hull.
func convexHull(points []orb.Point) orb.Ring {
	if len(points) < 3 {
		return nil
	}

	sorted := make([]orb.Point, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i][0] != sorted[j][0] {
			return sorted[i][0] < sorted[j][0]
		}
		return sorted[i][1] < sorted[j][1]
	})

	// Drop exact duplicates so they cannot fake a 2D point cloud.
	unique := sorted[:1]
	for _, p := range sorted[1:] {
		if p != unique[len(unique)-1] {
			unique = append(unique, p)
		}
	}
	if len(unique) < 3 {
		return nil
	}

	var lower []orb.Point
	for _, p := range unique {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}

	var upper []orb.Point
	for i := len(unique) - 1; i >= 0; i-- {
		p := unique[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	hull := append(lower[:len(lower)-1], upper[:len(upper)-1]...)

	// Either chain alone may collapse to its two endpoints when all turning
	// sits in the other chain; only the joined hull tells collinear inputs
	// apart from a valid polygon.
	if len(hull) < 3 {
		return nil
	}

	ring := make(orb.Ring, 0, len(hull)+1)
	ring = append(ring, hull...)
	ring = append(ring, hull[0])
	return ring
}

// onSegment reports whether point c lies on segment ab, assuming the three
// points are collinear.
func onSegment(a, b, c orb.Point) bool {
	return min(a[0], b[0]) <= c[0] && c[0] <= max(a[0], b[0]) &&
		min(a[1], b[1]) <= c[1] && c[1] <= max(a[1], b[1])
}

// segmentsIntersect reports whether segments p1p2 and q1q2 intersect,
// including touching and collinear-overlap cases.
func segmentsIntersect(p1, p2, q1, q2 orb.Point) bool {
	d1 := cross(q1, q2, p1)
	d2 := cross(q1, q2, p2)
	d3 := cross(p1, p2, q1)
	d4 := cross(p1, p2, q2)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	switch {
	case d1 == 0 && onSegment(q1, q2, p1):
		return true
	case d2 == 0 && onSegment(q1, q2, p2):
		return true
	case d3 == 0 && onSegment(p1, p2, q1):
		return true
	case d4 == 0 && onSegment(p1, p2, q2):
		return true
	}
	return false
}

// ringsIntersect reports whether any edge of ring a crosses any edge of ring b.
func ringsIntersect(a, b orb.Ring) bool {
	for i := 0; i < len(a)-1; i++ {
		for j := 0; j < len(b)-1; j++ {
			if segmentsIntersect(a[i], a[i+1], b[j], b[j+1]) {
				return true
			}
		}
	}
	return false
}

// hullIntersectsSite reports whether the hull polygon and a site's geometry
// share any area: a vertex of one inside the other, or crossing boundaries.
func hullIntersectsSite(hull orb.Ring, site orb.MultiPolygon) bool {
	hullPolygon := orb.Polygon{hull}

	for _, polygon := range site {
		if len(polygon) == 0 {
			continue
		}
		outer := polygon[0]

		for _, p := range outer {
			if planar.PolygonContains(hullPolygon, p) {
				return true
			}
		}
		for _, p := range hull {
			if planar.PolygonContains(polygon, p) {
				return true
			}
		}
		if ringsIntersect(hull, outer) {
			return true
		}
	}
	return false
}
