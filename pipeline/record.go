package pipeline

import (
	"math"

	forecaster "github.com/aouyang1/indicator-forecaster"
)

const (
	ProvenancePredicted = "predicted"
	SchemaVersion       = "1.0"

	// NoRounding keeps the full float precision of values and bounds
	NoRounding   = -1
	DefaultRound = 3
)

// Record is one forecast year for an entity and metric
type Record struct {
	EntityID      string   `json:"entity_id"`
	Metric        string   `json:"metric"`
	Year          int      `json:"year"`
	Value         *float64 `json:"value"`
	LowerBound    *float64 `json:"lower_bound"`
	UpperBound    *float64 `json:"upper_bound"`
	Provenance    string   `json:"provenance"`
	Method        string   `json:"method"`
	SchemaVersion string   `json:"schema_version"`
}

// NewRecord converts a forecast point into an output record, rounding the value and
// both bounds to precision decimal places unless precision is negative.
func NewRecord(entity, metric, method string, p forecaster.Point, precision int) Record {
	value := p.Value
	return Record{
		EntityID:      entity,
		Metric:        metric,
		Year:          p.Year,
		Value:         roundPtr(&value, precision),
		LowerBound:    roundPtr(p.Lower, precision),
		UpperBound:    roundPtr(p.Upper, precision),
		Provenance:    ProvenancePredicted,
		Method:        method,
		SchemaVersion: SchemaVersion,
	}
}

// Round rounds half away from zero to precision decimal places. A negative precision
// returns x unchanged.
func Round(x float64, precision int) float64 {
	if precision < 0 || math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	scale := math.Pow(10, float64(precision))
	rounded := math.Round(x*scale) / scale
	if math.IsNaN(rounded) || math.IsInf(rounded, 0) {
		return x
	}
	return rounded
}

// roundPtr copies and rounds v. Non-finite values become nil since they have no JSON
// representation.
func roundPtr(v *float64, precision int) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	r := Round(*v, precision)
	return &r
}
