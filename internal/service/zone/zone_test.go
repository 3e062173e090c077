package zone

import (
	"fmt"
	"math/rand"
	"testing"

	"zonecheck/internal/model"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rect(minLon, minLat, maxLon, maxLat float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{minLon, minLat}, {maxLon, minLat}, {maxLon, maxLat}, {minLon, maxLat}, {minLon, minLat},
	}}
}

func parcel(id, code string, g orb.Geometry) *model.ZoningParcel {
	return model.NewZoningParcel(id, code, "", g)
}

func TestResolveZone(t *testing.T) {
	parcels := []*model.ZoningParcel{
		parcel("a", "SF-4", rect(-84.52, 39.10, -84.51, 39.11)),
		parcel("b", "CC-P", rect(-84.51, 39.10, -84.50, 39.11)),
		parcel("broken", "XX", nil),
		parcel("c", "DD-A", orb.MultiPolygon{rect(0, 0, 1, 1), rect(2, 2, 3, 3)}),
	}

	tests := []struct {
		name string
		pt   orb.Point
		code string
		ok   bool
	}{
		{"first parcel", orb.Point{-84.515, 39.105}, "SF-4", true},
		{"second parcel", orb.Point{-84.505, 39.105}, "CC-P", true},
		{"multipolygon second part", orb.Point{2.5, 2.5}, "DD-A", true},
		{"outside coverage", orb.Point{-80, 40}, "", false},
		{"swapped axes miss", orb.Point{39.105, -84.515}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := ResolveZone(tt.pt, parcels)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.code, m.ZoneCode)
		})
	}
}

func TestResolveZoneEmpty(t *testing.T) {
	m, ok := ResolveZone(orb.Point{0, 0}, nil)
	assert.False(t, ok)
	assert.Equal(t, Match{}, m)
}

func TestResolveTieBreak(t *testing.T) {
	big := parcel("big", "SF-20", rect(0, 0, 10, 10))
	small := parcel("small", "SF-2", rect(4, 4, 6, 6))
	twin := parcel("twin", "SF-6", rect(4, 4, 6, 6))
	pt := orb.Point{5, 5}

	m, ok := Resolve(pt, []*model.ZoningParcel{big, small}, TieBreakFirst)
	require.True(t, ok)
	assert.Equal(t, "SF-20", m.ZoneCode, "input order wins")

	m, ok = Resolve(pt, []*model.ZoningParcel{small, big}, TieBreakFirst)
	require.True(t, ok)
	assert.Equal(t, "SF-2", m.ZoneCode)

	m, ok = Resolve(pt, []*model.ZoningParcel{big, small}, TieBreakSmallestArea)
	require.True(t, ok)
	assert.Equal(t, "SF-2", m.ZoneCode, "smaller polygon wins regardless of order")

	m, ok = Resolve(pt, []*model.ZoningParcel{big, twin, small}, TieBreakSmallestArea)
	require.True(t, ok)
	assert.Equal(t, "twin", m.ParcelID, "equal areas fall back to input order")
}

func TestParseTieBreak(t *testing.T) {
	p, err := ParseTieBreak("")
	require.NoError(t, err)
	assert.Equal(t, TieBreakFirst, p)

	p, err = ParseTieBreak("Smallest_Area")
	require.NoError(t, err)
	assert.Equal(t, TieBreakSmallestArea, p)
	assert.Equal(t, "smallest_area", p.String())

	_, err = ParseTieBreak("largest")
	assert.Error(t, err)
}

func TestIndexMatchesLinearResolve(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	parcels := make([]*model.ZoningParcel, 0, 300)
	for i := 0; i < 300; i++ {
		lon := rng.Float64() * 10
		lat := rng.Float64() * 10
		w := 0.05 + rng.Float64()*1.5
		h := 0.05 + rng.Float64()*1.5

		var g orb.Geometry = rect(lon, lat, lon+w, lat+h)
		switch i % 17 {
		case 3:
			g = nil
		case 5:
			g = orb.Polygon{orb.Ring{{lon, lat}, {lon + w, lat}}}
		case 7:
			g = orb.MultiPolygon{rect(lon, lat, lon+w/3, lat+h/3), rect(lon+w/2, lat+h/2, lon+w, lat+h)}
		}
		parcels = append(parcels, parcel(fmt.Sprintf("p%d", i), fmt.Sprintf("Z-%d", i), g))
	}

	for _, policy := range []TieBreak{TieBreakFirst, TieBreakSmallestArea} {
		ix := NewIndex(parcels, policy)
		assert.Equal(t, len(parcels), ix.Len())
		assert.Less(t, ix.Indexed(), ix.Len())

		for i := 0; i < 2000; i++ {
			pt := orb.Point{rng.Float64()*12 - 1, rng.Float64()*12 - 1}
			want, wantOK := Resolve(pt, parcels, policy)
			got, gotOK := ix.Resolve(pt)
			require.Equal(t, wantOK, gotOK, "policy %s point %v", policy, pt)
			require.Equal(t, want, got, "policy %s point %v", policy, pt)
		}
	}
}

func TestIndexPointOnBoundEdge(t *testing.T) {
	parcels := []*model.ZoningParcel{parcel("a", "SF-4", rect(0, 0, 1, 1))}
	ix := NewIndex(parcels, TieBreakFirst)

	for _, pt := range []orb.Point{{0, 0.5}, {1, 0.5}, {0.5, 0}, {0.5, 1}} {
		want, wantOK := ResolveZone(pt, parcels)
		got, gotOK := ix.Resolve(pt)
		assert.Equal(t, wantOK, gotOK, "point %v", pt)
		assert.Equal(t, want, got, "point %v", pt)
	}
}

func TestIndexNearest(t *testing.T) {
	parcels := []*model.ZoningParcel{
		parcel("west", "SF-4", rect(0, 0, 1, 1)),
		parcel("east", "CG", rect(10, 0, 11, 1)),
		parcel("broken", "XX", nil),
	}
	ix := NewIndex(parcels, TieBreakFirst)

	p, ok := ix.Nearest(orb.Point{8, 0.5})
	require.True(t, ok)
	assert.Equal(t, "east", p.ID)

	_, ok = NewIndex(nil, TieBreakFirst).Nearest(orb.Point{0, 0})
	assert.False(t, ok)
}

func TestBoundToRectFlat(t *testing.T) {
	_, err := BoundToRect(orb.Bound{Min: orb.Point{1, 1}, Max: orb.Point{1, 1}})
	assert.NoError(t, err)

	_, err = BoundToRect(orb.Bound{Min: orb.Point{0, 1}, Max: orb.Point{2, 1}})
	assert.NoError(t, err)
}

func TestResolveZoneLiteralParcel(t *testing.T) {
	// Built without NewZoningParcel, so no cached bounding box.
	parcels := []*model.ZoningParcel{
		{ID: "lit", ZoneCode: "SF-4", Geometry: rect(0, 0, 10, 10)},
	}

	m, ok := ResolveZone(orb.Point{5, 5}, parcels)
	require.True(t, ok)
	assert.Equal(t, "SF-4", m.ZoneCode)

	_, ok = ResolveZone(orb.Point{15, 5}, parcels)
	assert.False(t, ok)

	ix := NewIndex(parcels, TieBreakFirst)
	assert.Equal(t, 1, ix.Indexed())
	m, ok = ix.Resolve(orb.Point{5, 5})
	require.True(t, ok)
	assert.Equal(t, "lit", m.ParcelID)

	nearest, ok := ix.Nearest(orb.Point{20, 20})
	require.True(t, ok)
	assert.Equal(t, "lit", nearest.ID)
}
