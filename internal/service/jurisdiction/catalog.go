// Package jurisdiction keeps one read-only snapshot of zoning parcels and
// overlay districts per jurisdiction. Snapshots are built once, shared by
// any number of concurrent lookups and replaced whole on reload.
package jurisdiction

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"zonecheck/internal/metrics"
	"zonecheck/internal/model"
	"zonecheck/internal/service/overlay"
	"zonecheck/internal/service/storage"
	"zonecheck/internal/service/zone"
	"zonecheck/internal/util"

	"go.uber.org/zap"
)

var (
	// ErrUnknownJurisdiction means no data exists for the requested id.
	ErrUnknownJurisdiction = errors.New("unknown jurisdiction")

	// ErrNotLoaded means the catalog has not finished its first load.
	ErrNotLoaded = errors.New("jurisdiction data not loaded")
)

// Data is what a Source returns for one jurisdiction. Records whose geometry
// could not be decoded are included with a nil geometry and counted.
type Data struct {
	Jurisdiction      model.Jurisdiction
	Parcels           []*model.ZoningParcel
	Overlays          []*model.OverlayDistrict
	MalformedParcels  int
	MalformedOverlays int
}

// Source loads jurisdiction data. Load returns ErrUnknownJurisdiction for
// ids it does not know.
type Source interface {
	ListJurisdictions(ctx context.Context) ([]model.Jurisdiction, error)
	Load(ctx context.Context, id string) (*Data, error)
}

// Snapshot is an immutable, indexed view of one jurisdiction.
type Snapshot struct {
	Jurisdiction      model.Jurisdiction
	Version           string
	Zones             *zone.Index
	Overlays          *overlay.Index
	MalformedParcels  int
	MalformedOverlays int
}

// Info summarises a snapshot for listings.
type Info struct {
	model.Jurisdiction
	Version           string                        `json:"version"`
	LoadedAt          time.Time                     `json:"loaded_at"`
	TieBreak          string                        `json:"tie_break"`
	Parcels           int                           `json:"parcels"`
	Overlays          int                           `json:"overlays"`
	OverlayCategories map[model.OverlayCategory]int `json:"overlay_categories"`
	MalformedParcels  int                           `json:"malformed_parcels"`
	MalformedOverlays int                           `json:"malformed_overlays"`
}

// Info returns the listing view of s. LoadedAt is filled in by the catalog
// that installed the snapshot.
func (s *Snapshot) Info() Info {
	return Info{
		Jurisdiction:      s.Jurisdiction,
		Version:           s.Version,
		TieBreak:          s.Zones.Policy().String(),
		Parcels:           s.Zones.Len(),
		Overlays:          s.Overlays.Len(),
		OverlayCategories: s.Overlays.Categories(),
		MalformedParcels:  s.MalformedParcels,
		MalformedOverlays: s.MalformedOverlays,
	}
}

// BuildSnapshot indexes data under the given tie-break policy.
func BuildSnapshot(data *Data, policy zone.TieBreak) *Snapshot {
	return &Snapshot{
		Jurisdiction:      data.Jurisdiction,
		Version:           util.ShortUUID(),
		Zones:             zone.NewIndex(data.Parcels, policy),
		Overlays:          overlay.NewIndex(data.Overlays, policy),
		MalformedParcels:  data.MalformedParcels,
		MalformedOverlays: data.MalformedOverlays,
	}
}

// Catalog holds the current snapshot of every loaded jurisdiction.
type Catalog struct {
	source    Source
	policy    zone.TieBreak
	logger    *zap.Logger
	snapshots storage.Storage[string, *Snapshot]

	loadMutex sync.Mutex // serialises loads, never held by readers
	ready     bool
	readyMu   sync.RWMutex
}

// NewCatalog creates an empty catalog.
func NewCatalog(source Source, policy zone.TieBreak, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{
		source:    source,
		policy:    policy,
		logger:    logger,
		snapshots: storage.NewMemoryStorage[string, *Snapshot](),
	}
}

// LoadAll loads every jurisdiction the source lists and drops snapshots of
// jurisdictions it no longer lists. A listed jurisdiction that fails to load
// keeps its previous snapshot; the errors are joined.
func (c *Catalog) LoadAll(ctx context.Context) error {
	c.loadMutex.Lock()
	defer c.loadMutex.Unlock()

	c.logger.Info("=== Starting jurisdiction catalog load ===")
	start := time.Now()

	list, err := c.source.ListJurisdictions(ctx)
	if err != nil {
		metrics.SnapshotReloadsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to list jurisdictions: %w", err)
	}
	c.logger.Info("Step 1: jurisdictions listed", zap.Int("count", len(list)))

	c.evictUnlisted(list)

	var errs []error
	for i, j := range list {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		c.logger.Info("Step 2: loading jurisdiction",
			zap.String("jurisdiction_id", j.ID),
			zap.Int("progress", i+1),
			zap.Int("total", len(list)))
		if _, err := c.load(ctx, j.ID); err != nil {
			errs = append(errs, err)
		}
	}

	c.markReady()
	c.logger.Info("=== Jurisdiction catalog load completed ===",
		zap.Int("loaded", c.snapshots.Count()),
		zap.Int("failed", len(errs)),
		zap.Duration("took", time.Since(start)))

	return errors.Join(errs...)
}

// Reload rebuilds one jurisdiction's snapshot from the source.
func (c *Catalog) Reload(ctx context.Context, id string) (*Snapshot, error) {
	c.loadMutex.Lock()
	defer c.loadMutex.Unlock()

	snap, err := c.load(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUnknownJurisdiction) && c.snapshots.Delete(id) {
			c.logger.Info("jurisdiction removed from catalog", zap.String("jurisdiction_id", id))
		}
		return nil, err
	}
	c.markReady()
	return snap, nil
}

// evictUnlisted must be called with loadMutex held.
func (c *Catalog) evictUnlisted(list []model.Jurisdiction) {
	listed := make(map[string]bool, len(list))
	for _, j := range list {
		listed[j.ID] = true
	}

	var stale []string
	c.snapshots.ForEach(func(id string, _ *Snapshot) bool {
		if !listed[id] {
			stale = append(stale, id)
		}
		return true
	})
	for _, id := range stale {
		if c.snapshots.Delete(id) {
			c.logger.Info("jurisdiction removed from catalog", zap.String("jurisdiction_id", id))
		}
	}
}

// load must be called with loadMutex held.
func (c *Catalog) load(ctx context.Context, id string) (*Snapshot, error) {
	start := time.Now()

	data, err := c.source.Load(ctx, id)
	if err != nil {
		metrics.SnapshotReloadsTotal.WithLabelValues("error").Inc()
		c.logger.Error("failed to load jurisdiction", zap.String("jurisdiction_id", id), zap.Error(err))
		return nil, fmt.Errorf("load jurisdiction %s: %w", id, err)
	}
	if data.Jurisdiction.ID == "" {
		data.Jurisdiction.ID = id
	}

	snap := c.Put(data)
	metrics.SnapshotReloadsTotal.WithLabelValues("ok").Inc()

	c.logger.Info("jurisdiction snapshot ready",
		zap.String("jurisdiction_id", id),
		zap.String("version", snap.Version),
		zap.Int("parcels", snap.Zones.Len()),
		zap.Int("parcels_indexed", snap.Zones.Indexed()),
		zap.Int("overlays", snap.Overlays.Len()),
		zap.Int("malformed_parcels", snap.MalformedParcels),
		zap.Int("malformed_overlays", snap.MalformedOverlays),
		zap.Duration("took", time.Since(start)))
	return snap, nil
}

// Put indexes data and installs it as the current snapshot for its
// jurisdiction, replacing any previous one.
func (c *Catalog) Put(data *Data) *Snapshot {
	snap := BuildSnapshot(data, c.policy)
	metrics.MalformedGeometriesTotal.WithLabelValues("parcel").Add(float64(data.MalformedParcels))
	metrics.MalformedGeometriesTotal.WithLabelValues("overlay").Add(float64(data.MalformedOverlays))
	c.snapshots.Set(snap.Jurisdiction.ID, snap)
	return snap
}

// Get returns the current snapshot for id.
func (c *Catalog) Get(id string) (*Snapshot, error) {
	if snap, ok := c.snapshots.Get(id); ok {
		return snap, nil
	}
	if !c.isReady() {
		return nil, ErrNotLoaded
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownJurisdiction, id)
}

// Info returns the summary of the current snapshot for id.
func (c *Catalog) Info(id string) (Info, error) {
	snap, err := c.Get(id)
	if err != nil {
		return Info{}, err
	}
	return c.info(id, snap), nil
}

// List returns every loaded snapshot's summary ordered by id.
func (c *Catalog) List() []Info {
	ids := c.snapshots.Keys(func(a, b string) bool { return a < b })
	out := make([]Info, 0, len(ids))
	for _, id := range ids {
		if snap, ok := c.snapshots.Get(id); ok {
			out = append(out, c.info(id, snap))
		}
	}
	return out
}

func (c *Catalog) info(id string, snap *Snapshot) Info {
	info := snap.Info()
	if at, ok := c.snapshots.UpdatedAt(id); ok {
		info.LoadedAt = at
	}
	return info
}

// Ready reports whether the first load has finished.
func (c *Catalog) Ready() bool {
	return c.isReady()
}

func (c *Catalog) markReady() {
	c.readyMu.Lock()
	c.ready = true
	c.readyMu.Unlock()
}

func (c *Catalog) isReady() bool {
	c.readyMu.RLock()
	defer c.readyMu.RUnlock()
	return c.ready
}
