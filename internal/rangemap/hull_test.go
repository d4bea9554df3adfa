package rangemap

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvexHull_Square(t *testing.T) {
	t.Parallel()

	// Interior point must not appear on the hull.
	points := []orb.Point{
		{0, 0}, {4, 0}, {4, 4}, {0, 4}, {2, 2},
	}

	hull := convexHull(points)
	require.NotNil(t, hull)
	// Closed ring: 4 corners plus the repeated first point.
	assert.Len(t, hull, 5)
	assert.Equal(t, hull[0], hull[len(hull)-1])
	assert.NotContains(t, hull, orb.Point{2, 2})
}

func TestConvexHull_Degenerate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		points []orb.Point
	}{
		{"empty", nil},
		{"single point", []orb.Point{{1, 1}}},
		{"two points", []orb.Point{{1, 1}, {2, 2}}},
		{"collinear", []orb.Point{{0, 0}, {1, 1}, {2, 2}, {3, 3}}},
		{"duplicates of two points", []orb.Point{{1, 1}, {1, 1}, {2, 2}, {2, 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Nil(t, convexHull(tt.points))
		})
	}
}

func TestConvexHull_Triangle(t *testing.T) {
	t.Parallel()

	// Apex above the base collapses the lower chain to its two endpoints;
	// apex below collapses the upper chain. Both are valid hulls.
	tests := []struct {
		name    string
		points  []orb.Point
		corners int
	}{
		{"apex up", []orb.Point{{0, 0}, {2, 0}, {1, 2}}, 3},
		{"apex down", []orb.Point{{0, 0}, {2, 0}, {1, -2}}, 3},
		{"all turning in upper chain", []orb.Point{{0, 0}, {4, 0}, {1, 3}, {3, 3}}, 4},
		{"all turning in lower chain", []orb.Point{{0, 0}, {4, 0}, {1, -3}, {3, -3}}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			hull := convexHull(tt.points)
			require.NotNil(t, hull)
			assert.Len(t, hull, tt.corners+1)
			assert.Equal(t, hull[0], hull[len(hull)-1])
		})
	}
}

func TestSegmentsIntersect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		p1, p2, q1, q2 orb.Point
		want           bool
	}{
		{"crossing", orb.Point{0, 0}, orb.Point{2, 2}, orb.Point{0, 2}, orb.Point{2, 0}, true},
		{"parallel", orb.Point{0, 0}, orb.Point{2, 0}, orb.Point{0, 1}, orb.Point{2, 1}, false},
		{"touching endpoint", orb.Point{0, 0}, orb.Point{1, 1}, orb.Point{1, 1}, orb.Point{2, 0}, true},
		{"collinear overlap", orb.Point{0, 0}, orb.Point{2, 0}, orb.Point{1, 0}, orb.Point{3, 0}, true},
		{"collinear disjoint", orb.Point{0, 0}, orb.Point{1, 0}, orb.Point{2, 0}, orb.Point{3, 0}, false},
		{"disjoint", orb.Point{0, 0}, orb.Point{1, 0}, orb.Point{5, 5}, orb.Point{6, 6}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, segmentsIntersect(tt.p1, tt.p2, tt.q1, tt.q2))
		})
	}
}

func squareSite(minX, minY, maxX, maxY float64) orb.MultiPolygon {
	return orb.MultiPolygon{
		orb.Polygon{
			orb.Ring{
				{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}, {minX, minY},
			},
		},
	}
}

func TestHullIntersectsSite(t *testing.T) {
	t.Parallel()

	hull := convexHull([]orb.Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}})
	require.NotNil(t, hull)

	tests := []struct {
		name string
		site orb.MultiPolygon
		want bool
	}{
		{"site inside hull", squareSite(2, 2, 4, 4), true},
		{"hull inside site", squareSite(-5, -5, 15, 15), true},
		{"partial overlap", squareSite(8, 8, 12, 12), true},
		{"disjoint", squareSite(20, 20, 30, 30), false},
		{"edge touching", squareSite(10, 0, 20, 10), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, hullIntersectsSite(hull, tt.site))
		})
	}
}
