// Package timedataset turns sparse yearly observations into the ordered, gap-free
// series the exponential smoothing models are fit against.
package timedataset

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	ErrNonMonotonic       = errors.New("years are not strictly increasing")
	ErrDatasetLenMismatch = errors.New("years have a different length than observations")
)

// Observations maps a year to an observed value. NaN marks a missing value.
type Observations map[int]float64

// Set records the value for a year, replacing any earlier value for the same year.
func (o Observations) Set(year int, val float64) {
	o[year] = val
}

// Series is an annual series with strictly increasing years. Years need not be
// contiguous, missing years are simply absent.
type Series struct {
	Years []int
	Y     []float64
}

// NewAnnualDataset returns a Series given a year and value slice. Both must be of the
// same length and the years must be strictly increasing.
func NewAnnualDataset(years []int, y []float64) (*Series, error) {
	if len(years) != len(y) {
		return nil, fmt.Errorf(
			"years has length of %d, but values has a length of %d, %w",
			len(years), len(y), ErrDatasetLenMismatch,
		)
	}
	for i := 1; i < len(years); i++ {
		if years[i] <= years[i-1] {
			return nil, fmt.Errorf("non-monotonic at %d, %w", i, ErrNonMonotonic)
		}
	}

	s := &Series{
		Years: make([]int, len(years)),
		Y:     make([]float64, len(y)),
	}
	copy(s.Years, years)
	copy(s.Y, y)
	return s, nil
}

// Build sorts the observations by year and drops every value that is not a finite
// number. Nothing is imputed, so a gap in the input stays a gap in the series. An
// empty input produces an empty series.
func Build(obs Observations) *Series {
	years := make([]int, 0, len(obs))
	for year := range obs {
		years = append(years, year)
	}
	sort.Ints(years)

	s := &Series{
		Years: make([]int, 0, len(years)),
		Y:     make([]float64, 0, len(years)),
	}
	for _, year := range years {
		val := obs[year]
		if math.IsNaN(val) || math.IsInf(val, 0) {
			continue
		}
		s.Years = append(s.Years, year)
		s.Y = append(s.Y, val)
	}
	return s
}

// Len returns the number of points in the series
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Y)
}

// FirstYear returns the earliest year in the series and false if the series is empty.
func (s *Series) FirstYear() (int, bool) {
	if s.Len() == 0 {
		return 0, false
	}
	return s.Years[0], true
}

// LastYear returns the latest year in the series and false if the series is empty.
func (s *Series) LastYear() (int, bool) {
	if s.Len() == 0 {
		return 0, false
	}
	return s.Years[len(s.Years)-1], true
}

// Index returns the position of year in the series.
func (s *Series) Index(year int) (int, bool) {
	if s == nil {
		return 0, false
	}
	idx := sort.SearchInts(s.Years, year)
	if idx < len(s.Years) && s.Years[idx] == year {
		return idx, true
	}
	return 0, false
}

func (s *Series) Copy() *Series {
	if s == nil {
		return nil
	}
	years := make([]int, len(s.Years))
	y := make([]float64, len(s.Y))
	copy(years, s.Years)
	copy(y, s.Y)
	return &Series{
		Years: years,
		Y:     y,
	}
}
