package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// MetricKey names a baseline indicator collected when a village is onboarded.
type MetricKey string

const (
	MetricInfrastructureScore  MetricKey = "infrastructure_score"
	MetricHealthcareFacilities MetricKey = "healthcare_facilities"
	MetricSchools              MetricKey = "schools"
	MetricLiteracyRate         MetricKey = "literacy_rate"
	MetricEmploymentRate       MetricKey = "employment_rate"
	MetricSCSTPopulationRatio  MetricKey = "sc_st_population_ratio"
)

// MetricKeys lists every accepted baseline metric.
var MetricKeys = []MetricKey{
	MetricInfrastructureScore,
	MetricHealthcareFacilities,
	MetricSchools,
	MetricLiteracyRate,
	MetricEmploymentRate,
	MetricSCSTPopulationRatio,
}

func (k MetricKey) Valid() bool {
	for _, known := range MetricKeys {
		if k == known {
			return true
		}
	}
	return false
}

// BaselineMetrics is stored as a JSON object keyed by MetricKey. A nil map means no metrics were entered.
type BaselineMetrics map[MetricKey]float64

// ErrUnknownMetric is returned when a request carries a metric key outside MetricKeys.
var ErrUnknownMetric = errors.New("unknown baseline metric")

// ParseBaselineMetrics validates raw keys and values from a request body.
func ParseBaselineMetrics(raw map[string]float64) (BaselineMetrics, error) {
	if raw == nil {
		return nil, nil
	}
	out := make(BaselineMetrics, len(raw))
	var unknown []string
	for k, v := range raw {
		key := MetricKey(strings.TrimSpace(k))
		if !key.Valid() {
			unknown = append(unknown, k)
			continue
		}
		if v < 0 {
			return nil, fmt.Errorf("baseline metric %q must not be negative", k)
		}
		out[key] = v
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w: %s", ErrUnknownMetric, strings.Join(unknown, ", "))
	}
	return out, nil
}

// Get returns the value for key and whether it was present.
func (m BaselineMetrics) Get(key MetricKey) (float64, bool) {
	if m == nil {
		return 0, false
	}
	v, ok := m[key]
	return v, ok
}

// UnmarshalJSON rejects unknown keys so typos surface at the request boundary.
func (m *BaselineMetrics) UnmarshalJSON(data []byte) error {
	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseBaselineMetrics(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Scan implements sql.Scanner. Unknown keys already stored in the column are dropped.
func (m *BaselineMetrics) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("unsupported type for BaselineMetrics")
	}
	if len(data) == 0 || string(data) == "null" {
		*m = nil
		return nil
	}
	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(BaselineMetrics, len(raw))
	for k, v := range raw {
		if key := MetricKey(k); key.Valid() {
			out[key] = v
		}
	}
	*m = out
	return nil
}

// Value implements driver.Valuer; a nil map is stored as NULL.
func (m BaselineMetrics) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(map[MetricKey]float64(m))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
