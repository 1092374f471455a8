package models

import (
	"strings"
	"time"
)

// Payload is one raw record from the data.gov.in MGNREGA resource, kept
// exactly as received. Field sets vary between financial years, so it stays
// an open map and numeric coercion happens only at projection time.
type Payload map[string]interface{}

// String returns the trimmed string value under key, or "" when the key is
// absent or not a string.
func (p Payload) String(key string) string {
	if v, ok := p[key]; ok {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// District is a directory entry mapping a stable code to a display name.
type District struct {
	DistrictCode string `json:"district_code"`
	DistrictName string `json:"district_name"`
}

// DistrictRecord is one observation for a district in one (fin_year, month)
// period. At most one record is stored per (district_code, fin_year, month).
type DistrictRecord struct {
	FinYear      string    `json:"fin_year"`
	Month        string    `json:"month"`
	StateCode    string    `json:"state_code"`
	StateName    string    `json:"state_name"`
	DistrictCode string    `json:"district_code"`
	DistrictName string    `json:"district_name"`
	Payload      Payload   `json:"payload"`
	CreatedAt    time.Time `json:"created_at"`
}

// MetadataEntry is a singleton key/value row, e.g. the last fetch timestamp.
type MetadataEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// KPISnapshot summarizes the most recent stored period for a district. The
// field names mirror the upstream resource so the frontend can pass them
// through unchanged.
type KPISnapshot struct {
	DistrictName           string  `json:"district_name"`
	TotalIndividualsWorked float64 `json:"Total_Individuals_Worked"`
	TotalHouseholdsWorked  float64 `json:"Total_Households_Worked"`
	TotalExp               float64 `json:"Total_Exp"`
	WomenPersondays        float64 `json:"Women_Persondays"`
	AvgDaysWorked          float64 `json:"Avg_Days_Worked"`
	PaymentWithin15Days    float64 `json:"Payment_within_15_days"`
}

// TimeseriesPoint is one period in a district's oldest-to-newest series.
type TimeseriesPoint struct {
	FinYear                string  `json:"fin_year"`
	Month                  string  `json:"month"`
	Persondays             float64 `json:"persondays"`
	TotalHouseholdsWorked  float64 `json:"Total_Households_Worked"`
	TotalIndividualsWorked float64 `json:"Total_Individuals_Worked"`
	Expenditure            float64 `json:"expenditure"`
}

// DistrictData is the /api/data response shape.
type DistrictData struct {
	KPIs       KPISnapshot       `json:"kpis"`
	Timeseries []TimeseriesPoint `json:"timeseries"`
}

// YearTotal aggregates households worked across all stored districts for one
// financial year.
type YearTotal struct {
	FinYear         string `json:"fin_year"`
	TotalHouseholds int64  `json:"total_households"`
}

// StatePoint is one month of state-level expenditure and persondays.
type StatePoint struct {
	Month       string  `json:"month"`
	Expenditure float64 `json:"expenditure"`
	Persondays  float64 `json:"persondays"`
}

// Availability lists the states and financial years the upstream resource
// currently covers, derived from a bounded sample.
type Availability struct {
	States []string `json:"states"`
	Years  []string `json:"years"`
}
