package jurisdiction

import (
	"context"
	"errors"
	"sync"
	"testing"

	"zonecheck/internal/model"
	"zonecheck/internal/service/zone"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(minLon, minLat, maxLon, maxLat float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{minLon, minLat}, {maxLon, minLat}, {maxLon, maxLat}, {minLon, maxLat}, {minLon, minLat},
	}}
}

func testData(id, code string) *Data {
	return &Data{
		Jurisdiction: model.Jurisdiction{ID: id, Name: "City of " + id, State: "TX"},
		Parcels: []*model.ZoningParcel{
			model.NewZoningParcel(id+"-1", code, "", square(0, 0, 1, 1)),
			model.NewZoningParcel(id+"-2", "bad", "", nil),
		},
		Overlays: []*model.OverlayDistrict{
			model.NewOverlayDistrict(id+"-h", model.OverlayHistoric, "Old Town", square(0, 0, 0.5, 0.5), nil),
		},
		MalformedParcels: 1,
	}
}

type failingSource struct {
	*MemorySource
	fail map[string]error
}

func (s *failingSource) Load(ctx context.Context, id string) (*Data, error) {
	if err, ok := s.fail[id]; ok {
		return nil, err
	}
	return s.MemorySource.Load(ctx, id)
}

func TestCatalogGetBeforeLoad(t *testing.T) {
	c := NewCatalog(NewMemorySource(testData("austin", "SF-4")), zone.TieBreakFirst, nil)

	_, err := c.Get("austin")
	assert.ErrorIs(t, err, ErrNotLoaded)
	assert.False(t, c.Ready())
}

func TestCatalogLoadAll(t *testing.T) {
	c := NewCatalog(NewMemorySource(testData("austin", "SF-4"), testData("dallas", "CG")), zone.TieBreakFirst, nil)
	require.NoError(t, c.LoadAll(context.Background()))
	assert.True(t, c.Ready())

	snap, err := c.Get("austin")
	require.NoError(t, err)
	m, ok := snap.Zones.Resolve(orb.Point{0.25, 0.25})
	require.True(t, ok)
	assert.Equal(t, "SF-4", m.ZoneCode)

	name, ok := snap.Overlays.Resolve(orb.Point{0.25, 0.25}).Historic()
	require.True(t, ok)
	assert.Equal(t, "Old Town", name)

	_, err = c.Get("houston")
	assert.ErrorIs(t, err, ErrUnknownJurisdiction)

	list := c.List()
	require.Len(t, list, 2)
	assert.Equal(t, "austin", list[0].ID)
	assert.Equal(t, "dallas", list[1].ID)
	assert.Equal(t, 2, list[0].Parcels)
	assert.Equal(t, 1, list[0].MalformedParcels)
	assert.Equal(t, 1, list[0].OverlayCategories[model.OverlayHistoric])
	assert.NotEmpty(t, list[0].Version)
	assert.False(t, list[0].LoadedAt.IsZero())
	assert.Equal(t, "first", list[0].TieBreak)
}

func TestCatalogLoadAllDropsUnlistedJurisdictions(t *testing.T) {
	mem := NewMemorySource(testData("austin", "SF-4"), testData("dallas", "CG"))
	c := NewCatalog(mem, zone.TieBreakFirst, nil)
	require.NoError(t, c.LoadAll(context.Background()))

	mem.Delete("dallas")
	require.NoError(t, c.LoadAll(context.Background()))

	_, err := c.Get("dallas")
	assert.ErrorIs(t, err, ErrUnknownJurisdiction)
	_, err = c.Info("dallas")
	assert.ErrorIs(t, err, ErrUnknownJurisdiction)

	list := c.List()
	require.Len(t, list, 1)
	assert.Equal(t, "austin", list[0].ID)
}

func TestCatalogReloadDropsDeletedJurisdiction(t *testing.T) {
	mem := NewMemorySource(testData("austin", "SF-4"))
	c := NewCatalog(mem, zone.TieBreakFirst, nil)
	require.NoError(t, c.LoadAll(context.Background()))

	mem.Delete("austin")
	_, err := c.Reload(context.Background(), "austin")
	assert.ErrorIs(t, err, ErrUnknownJurisdiction)

	_, err = c.Get("austin")
	assert.ErrorIs(t, err, ErrUnknownJurisdiction)
	assert.Empty(t, c.List())
}

func TestCatalogFailedLoadOfListedJurisdictionIsKept(t *testing.T) {
	mem := NewMemorySource(testData("austin", "SF-4"))
	src := &failingSource{MemorySource: mem, fail: map[string]error{}}
	c := NewCatalog(src, zone.TieBreakFirst, nil)
	require.NoError(t, c.LoadAll(context.Background()))

	src.fail["austin"] = errors.New("timeout")
	_, err := c.Reload(context.Background(), "austin")
	require.Error(t, err)

	_, err = c.Get("austin")
	assert.NoError(t, err, "only a source that no longer knows the id evicts it")
}

func TestCatalogFailedLoadKeepsPreviousSnapshot(t *testing.T) {
	mem := NewMemorySource(testData("austin", "SF-4"), testData("dallas", "CG"))
	src := &failingSource{MemorySource: mem, fail: map[string]error{}}
	c := NewCatalog(src, zone.TieBreakFirst, nil)
	require.NoError(t, c.LoadAll(context.Background()))

	before, err := c.Get("austin")
	require.NoError(t, err)

	boom := errors.New("connection reset")
	src.fail["austin"] = boom
	err = c.LoadAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	after, err := c.Get("austin")
	require.NoError(t, err)
	assert.Same(t, before, after)

	dallas, err := c.Get("dallas")
	require.NoError(t, err)
	assert.Equal(t, "dallas", dallas.Jurisdiction.ID)
}

func TestCatalogReloadReplacesSnapshot(t *testing.T) {
	mem := NewMemorySource(testData("austin", "SF-4"))
	c := NewCatalog(mem, zone.TieBreakFirst, nil)
	require.NoError(t, c.LoadAll(context.Background()))

	before, err := c.Get("austin")
	require.NoError(t, err)

	mem.Put(testData("austin", "SF-6"))
	snap, err := c.Reload(context.Background(), "austin")
	require.NoError(t, err)
	assert.NotSame(t, before, snap)

	m, ok := snap.Zones.Resolve(orb.Point{0.5, 0.5})
	require.True(t, ok)
	assert.Equal(t, "SF-6", m.ZoneCode)

	// The old snapshot is untouched.
	m, ok = before.Zones.Resolve(orb.Point{0.5, 0.5})
	require.True(t, ok)
	assert.Equal(t, "SF-4", m.ZoneCode)

	_, err = c.Reload(context.Background(), "houston")
	assert.ErrorIs(t, err, ErrUnknownJurisdiction)
}

func TestCatalogConcurrentReadsDuringReload(t *testing.T) {
	mem := NewMemorySource(testData("austin", "SF-4"))
	c := NewCatalog(mem, zone.TieBreakSmallestArea, nil)
	require.NoError(t, c.LoadAll(context.Background()))
	info, err := c.Info("austin")
	require.NoError(t, err)
	assert.Equal(t, "smallest_area", info.TieBreak)

	var wg sync.WaitGroup
	for r := 0; r < 8; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				snap, err := c.Get("austin")
				if !assert.NoError(t, err) {
					return
				}
				m, ok := snap.Zones.Resolve(orb.Point{0.5, 0.5})
				assert.True(t, ok)
				assert.Contains(t, []string{"SF-4", "SF-6"}, m.ZoneCode)
			}
		}()
	}
	for i := 0; i < 10; i++ {
		code := "SF-4"
		if i%2 == 0 {
			code = "SF-6"
		}
		mem.Put(testData("austin", code))
		_, err := c.Reload(context.Background(), "austin")
		require.NoError(t, err)
	}
	wg.Wait()
}

func TestCatalogCancelledContext(t *testing.T) {
	c := NewCatalog(NewMemorySource(testData("austin", "SF-4")), zone.TieBreakFirst, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.LoadAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
