// Package importer turns GeoJSON FeatureCollections into zoning parcels and
// overlay districts. A bad feature never fails the whole file: it is either
// kept with no geometry or skipped, and reported either way.
package importer

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"zonecheck/internal/geometry"
	"zonecheck/internal/util"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ErrNotFeatureCollection is returned when the top-level object is not a
// GeoJSON FeatureCollection.
var ErrNotFeatureCollection = errors.New("not a GeoJSON FeatureCollection")

// Property names read from parcel and overlay features, in lookup order.
var (
	ZoneCodeProps        = []string{"ZONING_ZTYPE", "ZONE_CODE", "zone_code", "ZONING", "zoning"}
	ZoneDescriptionProps = []string{"ZONE_DESC", "zone_description", "ZONING_DESC", "description"}
	OverlayTypeProps     = []string{"overlay_type", "OVERLAY_TYPE", "category"}
	OverlayNameProps     = []string{"NAME", "name", "Name"}
	FeatureIDProps       = []string{"OBJECTID", "objectid", "id", "ID"}
)

// Feature is one decoded feature. When GeometryErr is set, Geometry is nil
// or holds the valid parts of a MultiPolygon.
type Feature struct {
	Index       int
	ID          string
	Properties  map[string]any
	Geometry    orb.Geometry
	RawGeometry json.RawMessage
	GeometryErr error
}

// Issue describes a feature that was skipped or kept with missing or
// partial geometry.
type Issue struct {
	Index   int    `json:"index"`
	ID      string `json:"id,omitempty"`
	Skipped bool   `json:"skipped"`
	Partial bool   `json:"partial,omitempty"`
	Reason  string `json:"reason"`
}

func (i Issue) String() string {
	action := "kept without geometry"
	switch {
	case i.Skipped:
		action = "skipped"
	case i.Partial:
		action = "kept with partial geometry"
	}
	return fmt.Sprintf("feature %d (%s) %s: %s", i.Index, i.ID, action, i.Reason)
}

type rawCollection struct {
	Type     string            `json:"type"`
	Features []json.RawMessage `json:"features"`
}

type rawFeature struct {
	Type       string          `json:"type"`
	ID         any             `json:"id"`
	Properties map[string]any  `json:"properties"`
	Geometry   json.RawMessage `json:"geometry"`
}

// ReadFile reads a FeatureCollection from disk.
func ReadFile(path string) ([]Feature, []Issue, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ReadFeatures(raw)
}

// ReadFeatures decodes every feature of a FeatureCollection. Features that
// are not JSON objects are reported and dropped; features whose geometry is
// unusable are returned with GeometryErr set.
func ReadFeatures(raw []byte) ([]Feature, []Issue, error) {
	var fc rawCollection
	if err := json.Unmarshal(raw, &fc); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrNotFeatureCollection, err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, nil, fmt.Errorf("%w: type %q", ErrNotFeatureCollection, fc.Type)
	}

	features := make([]Feature, 0, len(fc.Features))
	var issues []Issue
	for i, rawF := range fc.Features {
		var rf rawFeature
		if err := json.Unmarshal(rawF, &rf); err != nil {
			issues = append(issues, Issue{Index: i, Skipped: true, Reason: err.Error()})
			continue
		}

		f := Feature{
			Index:       i,
			Properties:  rf.Properties,
			RawGeometry: rf.Geometry,
		}
		if f.Properties == nil {
			f.Properties = map[string]any{}
		}
		f.ID = featureID(rf.ID, f.Properties)

		g, err := geometry.DecodeValid(rf.Geometry)
		switch {
		case err != nil:
			f.GeometryErr = err
			f.Geometry = g
		case g == nil:
			f.GeometryErr = errors.New("missing geometry")
		default:
			f.Geometry = g
		}
		features = append(features, f)
	}
	return features, issues, nil
}

func featureID(id any, props map[string]any) string {
	if s := scalarString(id); s != "" {
		return s
	}
	if s, ok := firstProp(props, FeatureIDProps); ok {
		return s
	}
	return ""
}

// firstProp returns the first non-empty property among keys.
func firstProp(props map[string]any, keys []string) (string, bool) {
	for _, k := range keys {
		if s := scalarString(props[k]); s != "" {
			return s, true
		}
	}
	return "", false
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return fmt.Sprint(t)
	default:
		return ""
	}
}

// GeometryText renders a decoded geometry back to GeoJSON for storage. An
// unusable or partly usable geometry is stored as received so a later load
// reports it again.
func (f Feature) GeometryText() string {
	if f.Geometry != nil && f.GeometryErr == nil {
		if b, err := geojson.NewGeometry(f.Geometry).MarshalJSON(); err == nil {
			return string(b)
		}
	}
	return string(f.RawGeometry)
}

func (f Feature) recordID(prefix string) string {
	id := f.ID
	if id == "" {
		id = util.ShortUUID()
	}
	if prefix == "" {
		return id
	}
	return prefix + ":" + id
}

func (f Feature) geometryIssue() Issue {
	return Issue{Index: f.Index, ID: f.ID, Partial: f.Geometry != nil, Reason: f.GeometryErr.Error()}
}
