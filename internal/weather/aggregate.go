package weather

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrMalformedSample is returned when a sample violates the input contract
// (missing timestamp, non-finite reading). It is not a data gap.
var ErrMalformedSample = errors.New("malformed forecast sample")

const dayLayout = "2006-01-02"

// dayAccumulator collects one day's samples in input order.
type dayAccumulator struct {
	date string

	minTemp, maxTemp float64
	sumTemp          float64
	sumHumidity      float64
	sumWind          float64
	n                int

	// condition -> count, and the order conditions were first seen in.
	counts    map[string]int
	firstSeen []string
	icons     map[string]string
}

func newDayAccumulator(date string) *dayAccumulator {
	return &dayAccumulator{
		date:    date,
		minTemp: math.Inf(1),
		maxTemp: math.Inf(-1),
		counts:  make(map[string]int),
		icons:   make(map[string]string),
	}
}

func (d *dayAccumulator) add(s RawSample) {
	d.minTemp = math.Min(d.minTemp, s.Temperature)
	d.maxTemp = math.Max(d.maxTemp, s.Temperature)
	d.sumTemp += s.Temperature
	d.sumHumidity += s.Humidity
	d.sumWind += s.WindSpeed
	d.n++

	if _, seen := d.counts[s.Condition]; !seen {
		d.firstSeen = append(d.firstSeen, s.Condition)
		d.icons[s.Condition] = s.Icon
	}
	d.counts[s.Condition]++
}

// dominant returns the most frequent condition; ties go to the one seen first.
func (d *dayAccumulator) dominant() (string, string) {
	best, bestCount := "", 0
	for _, cond := range d.firstSeen {
		if c := d.counts[cond]; c > bestCount {
			best, bestCount = cond, c
		}
	}
	return best, d.icons[best]
}

func (d *dayAccumulator) summary(name, region string) DailySummary {
	n := float64(d.n)
	cond, icon := d.dominant()
	return DailySummary{
		Date:           d.date,
		HighTemp:       roundHalfUp(d.maxTemp),
		LowTemp:        roundHalfUp(d.minTemp),
		AvgTemp:        roundHalfUp(d.sumTemp / n),
		Condition:      cond,
		Icon:           icon,
		Humidity:       roundHalfUp(d.sumHumidity / n),
		WindSpeed:      roundHalfUp(d.sumWind / n),
		LocationName:   name,
		LocationRegion: region,
	}
}

// Aggregate groups samples by UTC calendar day and summarises each day.
// The result is ordered by date ascending; empty input yields an empty result.
func Aggregate(samples []RawSample, locationName, locationRegion string) ([]DailySummary, error) {
	days := make(map[string]*dayAccumulator)
	var keys []string

	for i, s := range samples {
		if err := validateSample(s); err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}

		k := s.Timestamp.UTC().Format(dayLayout)
		acc, ok := days[k]
		if !ok {
			acc = newDayAccumulator(k)
			days[k] = acc
			keys = append(keys, k)
		}
		acc.add(s)
	}

	// Date keys sort lexically in calendar order.
	sort.Strings(keys)

	out := make([]DailySummary, 0, len(keys))
	for _, k := range keys {
		out = append(out, days[k].summary(locationName, locationRegion))
	}
	return out, nil
}

// AggregatePayload aggregates a provider payload using its own location labels.
func AggregatePayload(p ForecastPayload) ([]DailySummary, error) {
	return Aggregate(p.Samples, p.LocationName, p.Region)
}

func validateSample(s RawSample) error {
	if s.Timestamp.IsZero() {
		return fmt.Errorf("%w: missing timestamp", ErrMalformedSample)
	}
	for name, v := range map[string]float64{
		"temperature": s.Temperature,
		"humidity":    s.Humidity,
		"wind speed":  s.WindSpeed,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrMalformedSample, name)
		}
	}
	return nil
}

// roundHalfUp rounds to the nearest integer with .5 going towards +Inf,
// so -2.5 becomes -2 rather than -3.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
