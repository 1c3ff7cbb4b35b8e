// Package catalog holds the static university dataset and derives the
// partner-university views served by the API. Everything in here is pure and
// in-memory: the dataset is loaded once at startup and never mutated.
package catalog

// University is a Turkish university with its Erasmus departments.
type University struct {
	ID          string       `json:"id" yaml:"id"`
	Name        string       `json:"name" yaml:"name"`
	City        string       `json:"city" yaml:"city"`
	Lat         float64      `json:"lat" yaml:"lat"`
	Lng         float64      `json:"lng" yaml:"lng"`
	Departments []Department `json:"departments" yaml:"departments"`
}

// Department groups the partner agreements of one department.
type Department struct {
	Name     string    `json:"name" yaml:"name"`
	Partners []Partner `json:"partners" yaml:"partners"`
}

// Partner is one raw partnership record. The same real-world institution may
// appear many times across the dataset, once per (university, department) edge.
type Partner struct {
	Name       string  `json:"name" yaml:"name"`
	Country    string  `json:"country" yaml:"country"`
	Lat        float64 `json:"lat" yaml:"lat"`
	Lng        float64 `json:"lng" yaml:"lng"`
	Department string  `json:"department,omitempty" yaml:"department,omitempty"`
}

// Dataset is the top-level shape of the universities file.
type Dataset struct {
	Universities []University `json:"universities" yaml:"universities"`
}

// TurkishPartnerInfo is one recorded edge between a Turkish university
// department and a partner institution.
type TurkishPartnerInfo struct {
	UniversityID      string `json:"university_id"`
	UniversityName    string `json:"university_name"`
	UniversityCity    string `json:"university_city"`
	Department        string `json:"department"`
	PartnerDepartment string `json:"partner_department,omitempty"`
}

// PartnerDetail is the deduplicated view of one partner institution with
// back-references to every Turkish university edge that connects to it.
type PartnerDetail struct {
	ID              string               `json:"id"`
	Name            string               `json:"name"`
	Country         string               `json:"country"`
	Lat             float64              `json:"lat"`
	Lng             float64              `json:"lng"`
	TurkishPartners []TurkishPartnerInfo `json:"turkish_partners"`
}

// UniversityStats is the per-university aggregation used by the compare view.
type UniversityStats struct {
	UniversityID    string   `json:"university_id"`
	UniversityName  string   `json:"university_name"`
	City            string   `json:"city"`
	DepartmentCount int      `json:"department_count"`
	PartnerCount    int      `json:"partner_count"`
	Countries       []string `json:"countries"`
	Departments     []string `json:"departments"`
}
