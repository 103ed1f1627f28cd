// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package measure supplies externally measured search volume, competition,
// and trend values for a topic. These override the AI's estimates.
package measure

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/seo-engine/pkg/types"
)

// ErrNoMeasurement is returned when no data exists for a topic.
var ErrNoMeasurement = errors.New("no measurement")

// Measurement holds measured values. Zero values mean "not measured":
// an empty Trend or Competition, or a nil SearchVolume, leaves the AI
// estimate in place.
type Measurement struct {
	Trend           types.TrendDirection  `json:"trend,omitempty" yaml:"trend,omitempty"`
	SearchVolume    *int                  `json:"search_volume,omitempty" yaml:"search_volume,omitempty"`
	Competition     types.CompetitionTier `json:"competition,omitempty" yaml:"competition,omitempty"`
	RelatedKeywords []string              `json:"related_keywords,omitempty" yaml:"related_keywords,omitempty"`
}

// Measurer looks up measurements for a topic in a location.
type Measurer interface {
	Measure(ctx context.Context, topic, location string) (Measurement, error)
}

// None never has data.
type None struct{}

// Measure always returns ErrNoMeasurement.
func (None) Measure(context.Context, string, string) (Measurement, error) {
	return Measurement{}, ErrNoMeasurement
}

// fileEntry is one record in a measurements file.
type fileEntry struct {
	Topic       string `yaml:"topic"`
	Location    string `yaml:"location"`
	Measurement `yaml:",inline"`
}

type measurementsFile struct {
	Measurements []fileEntry `yaml:"measurements"`
}

// FileMeasurer serves measurements from a YAML file:
//
//	measurements:
//	  - topic: best coffee shops
//	    location: Austin, USA
//	    trend: rising
//	    search_volume: 12000
//	    competition: high
//	    related_keywords: [coffee near me, espresso bar]
//
// An entry with an empty location matches any location for its topic.
// Topics and locations are matched case-insensitively.
type FileMeasurer struct {
	path string

	once    sync.Once
	entries map[string]Measurement
	loadErr error
}

// NewFileMeasurer returns a measurer that reads path on first use.
func NewFileMeasurer(path string) *FileMeasurer {
	return &FileMeasurer{path: path}
}

// Measure returns the entry for (topic, location), falling back to the
// topic's location-independent entry.
func (f *FileMeasurer) Measure(_ context.Context, topic, location string) (Measurement, error) {
	f.once.Do(f.load)
	if f.loadErr != nil {
		return Measurement{}, f.loadErr
	}
	if m, ok := f.entries[types.LookupKey(topic, location)]; ok {
		return m, nil
	}
	if m, ok := f.entries[types.LookupKey(topic, "")]; ok {
		return m, nil
	}
	return Measurement{}, fmt.Errorf("%w for %q in %q", ErrNoMeasurement, topic, location)
}

func (f *FileMeasurer) load() {
	data, err := os.ReadFile(f.path)
	if err != nil {
		f.loadErr = fmt.Errorf("reading measurements file: %w", err)
		return
	}
	var mf measurementsFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		f.loadErr = fmt.Errorf("parsing measurements file %s: %w", f.path, err)
		return
	}

	f.entries = make(map[string]Measurement, len(mf.Measurements))
	for _, e := range mf.Measurements {
		m := e.Measurement
		if m.Trend != "" {
			m.Trend = types.ParseTrendDirection(string(m.Trend))
		}
		if m.Competition != "" {
			m.Competition = types.ParseCompetitionTier(string(m.Competition))
		}
		f.entries[types.LookupKey(e.Topic, e.Location)] = m
	}
}

// Fields lists the measured fields m carries, using AnalysisResult's JSON
// names.
func (m Measurement) Fields() []string {
	var out []string
	if m.SearchVolume != nil {
		out = append(out, "search_volume")
	}
	if m.Competition != "" {
		out = append(out, "competition")
	}
	if m.Trend != "" {
		out = append(out, "trend")
	}
	return out
}
