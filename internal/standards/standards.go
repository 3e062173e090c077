// Package standards maps zone codes to development standards and
// human-readable descriptions. The table is data: the built-in copy is
// embedded YAML and deployments can layer their own file on top.
package standards

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"sync"

	"zonecheck/internal/model"

	"gopkg.in/yaml.v3"
)

//go:embed standards.yaml
var embeddedTable []byte

// Entry is one zone code's row.
type Entry struct {
	Description string                     `yaml:"description"`
	Standards   model.DevelopmentStandards `yaml:",inline"`
}

type tableFile struct {
	Zones map[string]Entry `yaml:"zones"`
}

// Table is an immutable zone-code lookup.
type Table struct {
	entries map[string]Entry
}

var (
	defaultTable     *Table
	defaultTableOnce sync.Once
)

// Default returns the embedded table.
func Default() *Table {
	defaultTableOnce.Do(func() {
		t, err := Parse(embeddedTable)
		if err != nil {
			panic(fmt.Sprintf("standards: embedded table is invalid: %v", err))
		}
		defaultTable = t
	})
	return defaultTable
}

// Parse reads a table from YAML.
func Parse(data []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse standards table: %w", err)
	}
	if f.Zones == nil {
		f.Zones = map[string]Entry{}
	}
	return &Table{entries: f.Zones}, nil
}

// LoadFile reads a YAML table from disk.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read standards file %s: %w", path, err)
	}
	return Parse(data)
}

// Load returns the embedded table, overlaid with the file at path when path
// is not empty.
func Load(path string) (*Table, error) {
	if path == "" {
		return Default(), nil
	}
	extra, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return Default().Merge(extra), nil
}

// Merge returns a new table holding t's rows replaced or extended by other's.
func (t *Table) Merge(other *Table) *Table {
	out := make(map[string]Entry, len(t.entries)+len(other.entries))
	for k, v := range t.entries {
		out[k] = v
	}
	for k, v := range other.entries {
		out[k] = v
	}
	return &Table{entries: out}
}

// StandardsFor returns the standards for an exact zone code. Unknown codes
// return a record with every field nil.
func (t *Table) StandardsFor(code string) model.DevelopmentStandards {
	e, ok := t.entries[code]
	if !ok {
		return model.DevelopmentStandards{}
	}
	return clone(e.Standards)
}

// Describe returns the zone description, or "Zoning District <code>" when
// the table has none.
func (t *Table) Describe(code string) string {
	if e, ok := t.entries[code]; ok && e.Description != "" {
		return e.Description
	}
	return "Zoning District " + code
}

// Has reports whether the code has a row.
func (t *Table) Has(code string) bool {
	_, ok := t.entries[code]
	return ok
}

// Codes returns every zone code, sorted.
func (t *Table) Codes() []string {
	codes := make([]string, 0, len(t.entries))
	for k := range t.entries {
		codes = append(codes, k)
	}
	sort.Strings(codes)
	return codes
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.entries)
}

// StandardsFor looks code up in the embedded table.
func StandardsFor(code string) model.DevelopmentStandards {
	return Default().StandardsFor(code)
}

func clone(s model.DevelopmentStandards) model.DevelopmentStandards {
	return model.DevelopmentStandards{
		MaxHeightFt: cloneFloat(s.MaxHeightFt),
		MaxStories:  cloneFloat(s.MaxStories),
		Setbacks: model.Setbacks{
			FrontFt: cloneFloat(s.Setbacks.FrontFt),
			SideFt:  cloneFloat(s.Setbacks.SideFt),
			RearFt:  cloneFloat(s.Setbacks.RearFt),
		},
		MaxLotCoverage: cloneFloat(s.MaxLotCoverage),
		MaxFAR:         cloneFloat(s.MaxFAR),
		MinLotSizeSqft: cloneFloat(s.MinLotSizeSqft),
		ParkingNotes:   cloneString(s.ParkingNotes),
	}
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
