package recommend

import (
	"sort"

	"github.com/i474232898/park-forecast-planner/internal/parks"
	"github.com/i474232898/park-forecast-planner/internal/weather"
)

// Level is the overall recommendation for a park.
type Level string

const (
	HighlyRecommended Level = "Highly Recommended"
	Recommended       Level = "Recommended"
	Consider          Level = "Consider"
	NotRecommended    Level = "Not Recommended"
)

// LevelFor maps an average category score (0..3) to a Level.
func LevelFor(avg float64) Level {
	switch {
	case avg >= 2.5:
		return HighlyRecommended
	case avg >= 1.5:
		return Recommended
	case avg >= 0.8:
		return Consider
	default:
		return NotRecommended
	}
}

// DayRating is one day's rating for a park.
type DayRating struct {
	Date     string               `json:"date"`
	Rating   Category             `json:"rating"`
	Forecast weather.DailySummary `json:"forecast"`
}

// Entry is a park's place in the ranking.
type Entry struct {
	Park                parks.Park    `json:"park"`
	Climate             parks.Climate `json:"climate"`
	WeatherRatings      []DayRating   `json:"weatherRatings"`
	AverageScore        float64       `json:"averageScore"`
	RecommendationLevel Level         `json:"recommendationLevel"`
}

// Evaluate rates every day of forecast for p. It returns false when there is
// nothing to rate.
func Evaluate(p parks.Park, forecast []weather.DailySummary) (Entry, bool) {
	if len(forecast) == 0 {
		return Entry{}, false
	}

	climate := parks.Classify(p.Name)
	ratings := make([]DayRating, 0, len(forecast))
	total := 0
	for _, day := range forecast {
		c := ScoreDay(day, climate)
		total += c.Points()
		ratings = append(ratings, DayRating{Date: day.Date, Rating: c, Forecast: day})
	}

	avg := float64(total) / float64(len(ratings))
	return Entry{
		Park:                p,
		Climate:             climate,
		WeatherRatings:      ratings,
		AverageScore:        avg,
		RecommendationLevel: LevelFor(avg),
	}, true
}

// Rank scores every park against its own forecast, keyed by park name, and
// orders the result by descending average score. Equal scores keep input
// order. Parks with no forecast are left out.
func Rank(ps []parks.Park, forecastsByPark map[string][]weather.DailySummary) []Entry {
	entries := make([]Entry, 0, len(ps))
	for _, p := range ps {
		if e, ok := Evaluate(p, forecastsByPark[p.Name]); ok {
			entries = append(entries, e)
		}
	}
	sortEntries(entries)
	return entries
}

// RankShared scores every park against one forecast, typically the
// traveller's own. An empty forecast yields an empty ranking.
func RankShared(ps []parks.Park, forecast []weather.DailySummary) []Entry {
	if len(forecast) == 0 {
		return []Entry{}
	}
	byPark := make(map[string][]weather.DailySummary, len(ps))
	for _, p := range ps {
		byPark[p.Name] = forecast
	}
	return Rank(ps, byPark)
}

func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].AverageScore > entries[j].AverageScore
	})
}
