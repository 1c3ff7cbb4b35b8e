package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/universities.json
var embeddedDataset []byte

// Catalog serves the static university dataset and its derived partner view.
// All derived structures are computed once in New; reads are lock-free.
type Catalog struct {
	universities []University
	byID         map[string]int
	partners     []PartnerDetail
	partnerBySlug map[string]int
}

// LoadDataset parses a dataset from raw bytes. YAML files are accepted next to
// JSON so ops can maintain the dataset in either format.
func LoadDataset(raw []byte, format string) (*Dataset, error) {
	var ds Dataset
	switch format {
	case ".yml", ".yaml":
		if err := yaml.Unmarshal(raw, &ds); err != nil {
			return nil, fmt.Errorf("parse dataset yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(raw, &ds); err != nil {
			return nil, fmt.Errorf("parse dataset json: %w", err)
		}
	}

	// Fail fast on records that cannot carry an identity. A partial catalog
	// would silently drop pages.
	for _, uni := range ds.Universities {
		if strings.TrimSpace(uni.ID) == "" || strings.TrimSpace(uni.Name) == "" {
			return nil, fmt.Errorf("dataset university with empty id or name")
		}
		for _, dept := range uni.Departments {
			for _, partner := range dept.Partners {
				if _, err := DeriveSlug(partner.Name); err != nil {
					return nil, fmt.Errorf("university %s, department %s: %w", uni.ID, dept.Name, err)
				}
			}
		}
	}

	return &ds, nil
}

// New builds a Catalog from an already-parsed dataset.
func New(ds *Dataset) *Catalog {
	c := &Catalog{
		universities:  ds.Universities,
		byID:          make(map[string]int, len(ds.Universities)),
		partnerBySlug: make(map[string]int),
	}
	for i, uni := range ds.Universities {
		c.byID[uni.ID] = i
	}
	c.partners = AggregatePartners(ds.Universities)
	for i, p := range c.partners {
		c.partnerBySlug[p.ID] = i
	}
	return c
}

// Open loads a catalog from the given dataset path, falling back to the
// embedded dataset when path is empty.
func Open(path string) (*Catalog, error) {
	raw := embeddedDataset
	format := ".json"
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read dataset %s: %w", path, err)
		}
		raw = b
		format = strings.ToLower(filepath.Ext(path))
	}

	ds, err := LoadDataset(raw, format)
	if err != nil {
		return nil, err
	}
	return New(ds), nil
}

// Universities returns all Turkish universities in dataset order.
func (c *Catalog) Universities() []University {
	return c.universities
}

// UniversityByID looks up one university. The bool result signals absence;
// absence is an expected outcome, not an error.
func (c *Catalog) UniversityByID(id string) (University, bool) {
	i, ok := c.byID[id]
	if !ok {
		return University{}, false
	}
	return c.universities[i], true
}

// UniversitiesByCity filters by city, case-insensitively.
func (c *Catalog) UniversitiesByCity(city string) []University {
	out := make([]University, 0)
	for _, uni := range c.universities {
		if strings.EqualFold(uni.City, city) {
			out = append(out, uni)
		}
	}
	return out
}

// Search returns universities whose name contains the query, case-insensitively.
func (c *Catalog) Search(query string) []University {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return c.universities
	}
	out := make([]University, 0)
	for _, uni := range c.universities {
		if strings.Contains(strings.ToLower(uni.Name), q) {
			out = append(out, uni)
		}
	}
	return out
}

// Cities returns the sorted set of distinct cities.
func (c *Catalog) Cities() []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, uni := range c.universities {
		if _, ok := seen[uni.City]; ok {
			continue
		}
		seen[uni.City] = struct{}{}
		out = append(out, uni.City)
	}
	sort.Strings(out)
	return out
}

// Departments returns the sorted set of distinct department names across the
// whole dataset.
func (c *Catalog) Departments() []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, uni := range c.universities {
		for _, dept := range uni.Departments {
			if _, ok := seen[dept.Name]; ok {
				continue
			}
			seen[dept.Name] = struct{}{}
			out = append(out, dept.Name)
		}
	}
	sort.Strings(out)
	return out
}

// Partners returns the deduplicated partner catalog in first-encountered order.
func (c *Catalog) Partners() []PartnerDetail {
	return c.partners
}

// PartnerBySlug looks up one partner aggregate by its slug.
func (c *Catalog) PartnerBySlug(slug string) (PartnerDetail, bool) {
	i, ok := c.partnerBySlug[slug]
	if !ok {
		return PartnerDetail{}, false
	}
	return c.partners[i], true
}

// Stats computes the compare-view aggregation for one university: total
// partner agreements, distinct partner countries in first-seen order, and the
// department list.
func (c *Catalog) Stats(id string) (UniversityStats, bool) {
	uni, ok := c.UniversityByID(id)
	if !ok {
		return UniversityStats{}, false
	}

	stats := UniversityStats{
		UniversityID:    uni.ID,
		UniversityName:  uni.Name,
		City:            uni.City,
		DepartmentCount: len(uni.Departments),
		Countries:       make([]string, 0),
		Departments:     make([]string, 0, len(uni.Departments)),
	}

	seenCountry := make(map[string]struct{})
	for _, dept := range uni.Departments {
		stats.Departments = append(stats.Departments, dept.Name)
		stats.PartnerCount += len(dept.Partners)
		for _, partner := range dept.Partners {
			if _, ok := seenCountry[partner.Country]; ok {
				continue
			}
			seenCountry[partner.Country] = struct{}{}
			stats.Countries = append(stats.Countries, partner.Country)
		}
	}

	return stats, true
}
