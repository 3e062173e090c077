// Package lookup answers "what applies at this point" for one jurisdiction:
// zone, overlays, standards, requirements and, when measurements are given,
// a compliance report.
package lookup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"zonecheck/internal/geometry"
	"zonecheck/internal/metrics"
	"zonecheck/internal/model"
	rediscache "zonecheck/internal/redis"
	"zonecheck/internal/service/compliance"
	"zonecheck/internal/service/jurisdiction"
	"zonecheck/internal/service/requirement"
	"zonecheck/internal/standards"
	"zonecheck/internal/util"

	"github.com/paulmach/orb"
	"go.uber.org/zap"
)

// ErrInvalidRequest wraps every request validation failure.
var ErrInvalidRequest = errors.New("invalid lookup request")

// Snapshots is the part of the jurisdiction catalog a lookup needs.
type Snapshots interface {
	Get(id string) (*jurisdiction.Snapshot, error)
}

// Request is one point lookup. Coordinates are WGS84 degrees.
type Request struct {
	JurisdictionID string                `json:"jurisdiction_id"`
	Longitude      *float64              `json:"longitude"`
	Latitude       *float64              `json:"latitude"`
	ProjectType    string                `json:"project_type,omitempty"`
	Measurements   *model.MeasurementSet `json:"measurements,omitempty"`
}

// Point validates the coordinates and returns them as [lon, lat].
func (r Request) Point() (orb.Point, error) {
	if r.Longitude == nil || r.Latitude == nil {
		return orb.Point{}, fmt.Errorf("%w: longitude and latitude are required", ErrInvalidRequest)
	}
	pt := orb.Point{*r.Longitude, *r.Latitude}
	if !geometry.ValidCoordinate(pt) {
		return orb.Point{}, fmt.Errorf("%w: coordinate (%v, %v) out of range", ErrInvalidRequest, pt[0], pt[1])
	}
	return pt, nil
}

// Zone is the resolved zone with its description filled in.
type Zone struct {
	ParcelID    string `json:"parcel_id"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// NearestParcel points at the closest parcel when none contains the point.
type NearestParcel struct {
	ParcelID  string  `json:"parcel_id"`
	ZoneCode  string  `json:"zone_code"`
	DistanceM float64 `json:"distance_m"`
}

// Response is the full lookup result.
type Response struct {
	ID              string                     `json:"id"`
	JurisdictionID  string                     `json:"jurisdiction_id"`
	SnapshotVersion string                     `json:"snapshot_version"`
	Longitude       float64                    `json:"longitude"`
	Latitude        float64                    `json:"latitude"`
	Zone            *Zone                      `json:"zone"`
	NearestParcel   *NearestParcel             `json:"nearest_parcel,omitempty"`
	Overlays        model.OverlaySet           `json:"overlays"`
	Flags           model.OverlayFlags         `json:"flags"`
	Standards       model.DevelopmentStandards `json:"standards"`
	Requirements    model.RequirementBundle    `json:"requirements"`
	Compliance      *model.ComplianceReport    `json:"compliance,omitempty"`
	Cached          bool                       `json:"cached"`
}

// Options tune a Service. Zero values fall back to defaults.
type Options struct {
	BatchWorkers   int
	BatchMaxPoints int
}

const (
	defaultBatchWorkers   = 8
	defaultBatchMaxPoints = 500
)

// Service runs lookups against catalog snapshots.
type Service struct {
	snapshots Snapshots
	standards *standards.Table
	deriver   *requirement.Deriver
	cache     *rediscache.Cache
	logger    *zap.Logger
	opts      Options
}

// NewService creates a lookup service. cache may be nil.
func NewService(snapshots Snapshots, table *standards.Table, cache *rediscache.Cache, logger *zap.Logger, opts Options) *Service {
	if table == nil {
		table = standards.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.BatchWorkers <= 0 {
		opts.BatchWorkers = defaultBatchWorkers
	}
	if opts.BatchMaxPoints <= 0 {
		opts.BatchMaxPoints = defaultBatchMaxPoints
	}
	return &Service{
		snapshots: snapshots,
		standards: table,
		deriver:   requirement.NewDeriver(),
		cache:     cache,
		logger:    logger,
		opts:      opts,
	}
}

// Standards returns the table the service resolves against.
func (s *Service) Standards() *standards.Table {
	return s.standards
}

// Lookup resolves one request.
func (s *Service) Lookup(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	defer func() {
		metrics.LookupDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000)
	}()

	pt, err := req.Point()
	if err != nil {
		metrics.LookupsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	snap, err := s.snapshots.Get(req.JurisdictionID)
	if err != nil {
		metrics.LookupsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	return s.lookupOnSnapshot(ctx, snap, req, pt), nil
}

// lookupOnSnapshot never fails: cache problems degrade to a fresh
// computation.
func (s *Service) lookupOnSnapshot(ctx context.Context, snap *jurisdiction.Snapshot, req Request, pt orb.Point) *Response {
	key := cacheKey(snap, req, pt)

	if s.cache.Enabled() {
		var cached Response
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("lookup cache read failed", zap.String("key", key), zap.Error(err))
		}
		if hit {
			metrics.CacheHitsTotal.Inc()
			cached.ID = util.ShortUUID()
			cached.Cached = true
			countResult(&cached)
			return &cached
		}
		metrics.CacheMissesTotal.Inc()
	}

	resp := s.compute(snap, req, pt)

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, key, resp); err != nil {
			s.logger.Warn("lookup cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	countResult(resp)
	return resp
}

func (s *Service) compute(snap *jurisdiction.Snapshot, req Request, pt orb.Point) *Response {
	resp := &Response{
		ID:              util.ShortUUID(),
		JurisdictionID:  snap.Jurisdiction.ID,
		SnapshotVersion: snap.Version,
		Longitude:       pt[0],
		Latitude:        pt[1],
	}

	zoneCode := ""
	if m, ok := snap.Zones.Resolve(pt); ok {
		zoneCode = m.ZoneCode
		desc := m.Description
		if desc == "" {
			desc = s.standards.Describe(m.ZoneCode)
		}
		resp.Zone = &Zone{ParcelID: m.ParcelID, Code: m.ZoneCode, Description: desc}
	} else {
		resp.NearestParcel = nearest(snap, pt)
	}

	resp.Overlays = snap.Overlays.Resolve(pt)
	resp.Flags = resp.Overlays.Flags()
	resp.Standards = s.standards.StandardsFor(zoneCode)

	projectType := model.ParseProjectType(req.ProjectType)
	resp.Requirements = s.deriver.Derive(zoneCode, resp.Overlays, projectType)

	if req.Measurements != nil {
		report := compliance.EvaluateProject(resp.Standards, *req.Measurements, resp.Overlays, projectType)
		resp.Compliance = &report
	}
	return resp
}

func nearest(snap *jurisdiction.Snapshot, pt orb.Point) *NearestParcel {
	p, ok := snap.Zones.Nearest(pt)
	if !ok {
		return nil
	}
	b, ok := p.Bounds()
	if !ok {
		return nil
	}
	c := b.Center()
	return &NearestParcel{
		ParcelID:  p.ID,
		ZoneCode:  p.ZoneCode,
		DistanceM: util.HaversineDistance(pt[1], pt[0], c[1], c[0]),
	}
}

func countResult(resp *Response) {
	if resp.Zone != nil {
		metrics.LookupsTotal.WithLabelValues("zoned").Inc()
		return
	}
	metrics.LookupsTotal.WithLabelValues("unzoned").Inc()
}

// cacheKey ties an entry to the snapshot version, so a reload never serves
// results computed from the previous data.
func cacheKey(snap *jurisdiction.Snapshot, req Request, pt orb.Point) string {
	h := sha256.New()
	h.Write([]byte(model.ParseProjectType(req.ProjectType)))
	h.Write([]byte{0})
	if req.Measurements != nil {
		if raw, err := json.Marshal(req.Measurements); err == nil {
			h.Write(raw)
		}
	}
	return fmt.Sprintf("lookup:%s:%s:%s,%s:%s",
		snap.Jurisdiction.ID,
		snap.Version,
		strconv.FormatFloat(pt[0], 'g', -1, 64),
		strconv.FormatFloat(pt[1], 'g', -1, 64),
		hex.EncodeToString(h.Sum(nil))[:16])
}
