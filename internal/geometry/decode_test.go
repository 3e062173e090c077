package geometry

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePolygon(t *testing.T) {
	raw := `{"type":"Polygon","coordinates":[[[-84.52,39.10],[-84.50,39.10],[-84.50,39.12],[-84.52,39.12],[-84.52,39.10]]]}`

	g, err := Decode([]byte(raw))
	require.NoError(t, err)

	p, ok := g.(orb.Polygon)
	require.True(t, ok, "expected orb.Polygon, got %T", g)
	// wire order is [lon, lat] and must survive decoding untouched
	assert.Equal(t, orb.Point{-84.52, 39.10}, p[0][0])
	assert.True(t, Contains(orb.Point{-84.51, 39.11}, g))
}

func TestDecodeMultiPolygon(t *testing.T) {
	raw := `{"type":"MultiPolygon","coordinates":[
		[[[0,0],[1,0],[1,1],[0,1],[0,0]]],
		[[[5,5],[6,5],[6,6],[5,6],[5,5]],[[5.2,5.2],[5.8,5.2],[5.8,5.8],[5.2,5.8],[5.2,5.2]]]
	]}`

	g, err := Decode([]byte(raw))
	require.NoError(t, err)

	mp, ok := g.(orb.MultiPolygon)
	require.True(t, ok)
	assert.Len(t, mp, 2)
	assert.Len(t, mp[1], 2, "inner ring is preserved even though containment ignores it")
	assert.True(t, Contains(orb.Point{5.5, 5.5}, g))
}

func TestDecodeNoGeometry(t *testing.T) {
	for _, raw := range []string{"", "   ", "null"} {
		g, err := Decode([]byte(raw))
		assert.NoError(t, err, "input %q", raw)
		assert.Nil(t, g, "input %q", raw)
	}
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"point", `{"type":"Point","coordinates":[1,2]}`},
		{"linestring", `{"type":"LineString","coordinates":[[1,2],[3,4]]}`},
		{"garbage", `{"type":`},
		{"unknown type", `{"type":"Blob","coordinates":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Decode([]byte(tt.raw))
			assert.Error(t, err)
			assert.Nil(t, g)
			assert.False(t, Contains(orb.Point{1, 2}, g))
		})
	}
}

func TestDecodeValid(t *testing.T) {
	g, err := DecodeValid([]byte(`{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}`))
	require.NoError(t, err)
	assert.NotNil(t, g)

	g, err = DecodeValid([]byte(`{"type":"Polygon","coordinates":[[[0,0],[1,0]]]}`))
	assert.ErrorIs(t, err, ErrDegenerateRing)
	assert.Nil(t, g)

	g, err = DecodeValid([]byte("null"))
	assert.NoError(t, err)
	assert.Nil(t, g)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(nil))
	assert.NoError(t, Validate(square(0, 0, 1, 1)))
	assert.ErrorIs(t, Validate(orb.Polygon{}), ErrDegenerateRing)
	assert.ErrorIs(t, Validate(orb.MultiPolygon{square(0, 0, 1, 1), {orb.Ring{{0, 0}}}}), ErrDegenerateRing)
	assert.ErrorIs(t, Validate(orb.Polygon{orb.Ring{{0, 0}, {200, 0}, {0, 1}}}), ErrInvalidCoordinate)
	assert.ErrorIs(t, Validate(orb.LineString{{0, 0}, {1, 1}}), ErrUnsupportedGeometry)
}

func TestOuterArea(t *testing.T) {
	assert.InDelta(t, 1.0, OuterArea(square(0, 0, 1, 1)), 1e-12)

	withHole := orb.Polygon{square(0, 0, 2, 2)[0], square(0.5, 0.5, 1.5, 1.5)[0]}
	assert.InDelta(t, 4.0, OuterArea(withHole), 1e-12, "holes do not reduce the area")

	mp := orb.MultiPolygon{square(0, 0, 1, 1), square(5, 5, 7, 7)}
	assert.InDelta(t, 5.0, OuterArea(mp), 1e-12)

	assert.True(t, math.IsInf(OuterArea(nil), 1))
	assert.True(t, math.IsInf(OuterArea(orb.Polygon{}), 1))
}

func TestBound(t *testing.T) {
	b, ok := Bound(orb.MultiPolygon{square(0, 0, 1, 1), square(5, 5, 6, 7)})
	require.True(t, ok)
	assert.Equal(t, orb.Point{0, 0}, b.Min)
	assert.Equal(t, orb.Point{6, 7}, b.Max)

	_, ok = Bound(nil)
	assert.False(t, ok)
	_, ok = Bound(orb.Polygon{})
	assert.False(t, ok)
}

func TestDecodeValidDropsBrokenParts(t *testing.T) {
	raw := `{"type":"MultiPolygon","coordinates":[
		[[[0,0],[10,0],[10,10],[0,10],[0,0]]],
		[[[20,20],[21,21]]],
		[[[30,30],[300,30],[30,31],[30,30]]]
	]}`

	g, err := DecodeValid([]byte(raw))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDegenerateRing)
	assert.ErrorIs(t, err, ErrInvalidCoordinate)
	assert.Contains(t, err.Error(), "polygon 1")
	assert.Contains(t, err.Error(), "polygon 2")

	mp, ok := g.(orb.MultiPolygon)
	require.True(t, ok)
	require.Len(t, mp, 1)
	assert.True(t, Contains(orb.Point{5, 5}, g))

	g, err = DecodeValid([]byte(`{"type":"MultiPolygon","coordinates":[[[[0,0],[1,1]]],[[[2,2],[3,3]]]]}`))
	assert.ErrorIs(t, err, ErrDegenerateRing)
	assert.Nil(t, g, "nothing left to keep")
}
