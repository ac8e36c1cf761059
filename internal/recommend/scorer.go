package recommend

import (
	"math"
	"strings"

	"github.com/i474232898/park-forecast-planner/internal/parks"
	"github.com/i474232898/park-forecast-planner/internal/weather"
)

// Category is the qualitative rating of one day.
type Category string

const (
	Excellent Category = "excellent"
	Good      Category = "good"
	Fair      Category = "fair"
	Poor      Category = "poor"
)

// Points maps a category onto the 0..3 scale used for averaging.
func (c Category) Points() int {
	switch c {
	case Excellent:
		return 3
	case Good:
		return 2
	case Fair:
		return 1
	default:
		return 0
	}
}

// band awards delta to average temperatures in [lo, hi] °F.
type band struct {
	lo, hi int
	delta  int
}

const (
	minTemp = math.MinInt
	maxTemp = math.MaxInt
)

// tempProfile lists bands in evaluation order; fallback applies to any gap.
type tempProfile struct {
	bands    []band
	fallback int
}

var tempProfiles = map[parks.Climate]tempProfile{
	// Best when not too hot.
	parks.ClimateDesert: {
		bands: []band{
			{60, 85, 3},
			{86, 95, 1},
			{96, maxTemp, -2},
			{45, 59, 2},
		},
		fallback: -1,
	},
	parks.ClimateMountain: {
		bands: []band{
			{50, 75, 3},
			{40, 49, 2},
			{76, 85, 2},
			{minTemp, 31, -2},
		},
	},
	parks.ClimateCoastal: {
		bands: []band{
			{60, 80, 3},
			{50, 59, 2},
			{81, 90, 2},
		},
	},
	parks.ClimateForest: {
		bands: []band{
			{55, 80, 3},
			{45, 54, 2},
			{81, 90, 2},
			{minTemp, 31, -1},
		},
	},
	parks.ClimateTropical: {
		bands: []band{
			{70, 85, 3},
			{86, 95, 1},
		},
	},
	// Best in summer.
	parks.ClimateArctic: {
		bands: []band{
			{50, 70, 3},
			{40, 49, 2},
			{32, 39, 1},
			{minTemp, 31, -1},
		},
	},
}

func temperatureScore(avgTemp int, climate parks.Climate) int {
	profile, ok := tempProfiles[climate]
	if !ok {
		return 0
	}
	for _, b := range profile.bands {
		if avgTemp >= b.lo && avgTemp <= b.hi {
			return b.delta
		}
	}
	return profile.fallback
}

// conditionRule scores a condition containing any of keywords. Climates in
// tolerant get one point back.
type conditionRule struct {
	keywords []string
	delta    int
	tolerant []parks.Climate
}

// conditionRules are checked in order; the first matching rule applies.
var conditionRules = []conditionRule{
	{keywords: []string{"clear", "sun"}, delta: 2},
	{keywords: []string{"cloud", "partly"}, delta: 1},
	{keywords: []string{"rain", "shower"}, delta: -1, tolerant: []parks.Climate{parks.ClimateTropical, parks.ClimateForest}},
	{keywords: []string{"storm", "thunder"}, delta: -2},
	{keywords: []string{"snow"}, delta: -2, tolerant: []parks.Climate{parks.ClimateMountain, parks.ClimateArctic}},
	{keywords: []string{"fog", "mist"}, delta: -1, tolerant: []parks.Climate{parks.ClimateCoastal, parks.ClimateForest}},
}

func conditionScore(condition string, climate parks.Climate) int {
	cond := strings.ToLower(condition)
	for _, r := range conditionRules {
		if !hasAny(cond, r.keywords) {
			continue
		}
		score := r.delta
		for _, c := range r.tolerant {
			if c == climate {
				score++
				break
			}
		}
		return score
	}
	return 0
}

// Score returns the raw integer score of a day for a climate.
func Score(day weather.DailySummary, climate parks.Climate) int {
	return temperatureScore(day.AvgTemp, climate) + conditionScore(day.Condition, climate)
}

// ScoreDay rates a daily summary for a park of the given climate.
func ScoreDay(day weather.DailySummary, climate parks.Climate) Category {
	switch s := Score(day, climate); {
	case s >= 4:
		return Excellent
	case s >= 2:
		return Good
	case s >= 0:
		return Fair
	default:
		return Poor
	}
}

func hasAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
