package metrics

import (
	"github.com/pkg/errors"
	"slices"
	"time"
)

// Aligner resamples a single time series onto fixed-width buckets.
type Aligner int

const (
	AlignNone Aligner = iota
	AlignRate
	AlignMean
	AlignMax
)

func (a Aligner) String() string {
	switch a {
	case AlignNone:
		return "ALIGN_NONE"
	case AlignRate:
		return "ALIGN_RATE"
	case AlignMean:
		return "ALIGN_MEAN"
	case AlignMax:
		return "ALIGN_MAX"
	default:
		return "ALIGN_UNKNOWN"
	}
}

// Reducer combines the time series of a group into one.
type Reducer int

const (
	ReduceCount Reducer = iota
	ReduceMean
	ReduceMax
	ReducePercentile95
)

func (r Reducer) String() string {
	switch r {
	case ReduceCount:
		return "REDUCE_COUNT"
	case ReduceMean:
		return "REDUCE_MEAN"
	case ReduceMax:
		return "REDUCE_MAX"
	case ReducePercentile95:
		return "REDUCE_PERCENTILE_95"
	default:
		return "REDUCE_UNKNOWN"
	}
}

// ValueKind is the value type a metric reports its points in.
type ValueKind int

const (
	ValueFloat ValueKind = iota
	ValueInteger
)

func (k ValueKind) String() string {
	if k == ValueInteger {
		return "INTEGER"
	}

	return "FLOAT"
}

// QuerySpec describes how a single metric is queried from the monitoring backend.
// Specs are created with NewQuerySpec and must be treated as read-only afterwards.
type QuerySpec struct {
	MetricId       string
	Window         time.Duration
	SampleInterval time.Duration
	Aligner        Aligner
	Reducer        Reducer
	ValueKind      ValueKind
	GroupBy        []string
}

// NewQuerySpec returns a validated QuerySpec.
func NewQuerySpec(
	metricId string, window, sampleInterval time.Duration,
	aligner Aligner, reducer Reducer, kind ValueKind, groupBy []string,
) (QuerySpec, error) {
	s := QuerySpec{
		MetricId:       metricId,
		Window:         window,
		SampleInterval: sampleInterval,
		Aligner:        aligner,
		Reducer:        reducer,
		ValueKind:      kind,
		GroupBy:        slices.Clone(groupBy),
	}

	if err := s.Validate(); err != nil {
		return QuerySpec{}, err
	}

	return s, nil
}

// Validate checks that Window >= SampleInterval > 0 and that a metric is set.
func (s QuerySpec) Validate() error {
	if s.MetricId == "" {
		return errors.New("metric id must not be empty")
	}

	if s.SampleInterval <= 0 {
		return errors.Errorf("%s: sample interval must be greater than zero, got %s", s.MetricId, s.SampleInterval)
	}

	if s.Window < s.SampleInterval {
		return errors.Errorf(
			"%s: window %s must not be smaller than sample interval %s", s.MetricId, s.Window, s.SampleInterval)
	}

	return nil
}
