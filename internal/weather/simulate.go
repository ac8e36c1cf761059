package weather

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/i474232898/park-forecast-planner/internal/store"
)

// Simulator produces plausible weather from latitude and season. It backs the
// fallback values served when upstream is unavailable.
type Simulator struct {
	mu  sync.Mutex
	rng *rand.Rand
	now store.Clock
}

// NewSimulator creates a Simulator with the given random source.
func NewSimulator(rng *rand.Rand) *Simulator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15))
	}
	return &Simulator{rng: rng, now: time.Now}
}

// WithClock replaces the time source.
func (s *Simulator) WithClock(now store.Clock) *Simulator {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

type weightedCondition struct {
	name   string
	weight float64
}

// baseTemperature returns the seasonal baseline in °F.
func baseTemperature(lat float64, month time.Month) float64 {
	var summer bool
	if lat > 0 {
		summer = month >= time.June && month <= time.August
	} else {
		summer = month == time.December || month <= time.February
	}

	switch abs := math.Abs(lat); {
	case abs < 23.5:
		return 85
	case abs < 45:
		if summer {
			return 75
		}
		return 45
	default:
		if summer {
			return 50
		}
		return 20
	}
}

func conditionWeights(temp float64) []weightedCondition {
	switch {
	case temp < 32:
		return []weightedCondition{{"Clear", 0.3}, {"Clouds", 0.2}, {"Rain", 0.1}, {"Snow", 0.4}, {"Thunderstorm", 0}}
	case temp > 90:
		return []weightedCondition{{"Clear", 0.5}, {"Clouds", 0.2}, {"Rain", 0.1}, {"Snow", 0}, {"Thunderstorm", 0.2}}
	default:
		return []weightedCondition{{"Clear", 0.4}, {"Clouds", 0.3}, {"Rain", 0.15}, {"Snow", 0.1}, {"Thunderstorm", 0.05}}
	}
}

// pick must be called with s.mu held.
func (s *Simulator) pick(temp float64) string {
	r := s.rng.Float64()
	cumulative := 0.0
	weights := conditionWeights(temp)
	for _, c := range weights {
		cumulative += c.weight
		if r <= cumulative {
			return c.name
		}
	}
	return weights[0].name
}

// describe must be called with s.mu held.
func (s *Simulator) describe(cond string) (description, icon string) {
	coin := s.rng.Float64() > 0.5
	switch cond {
	case "Clouds":
		if coin {
			return "scattered clouds", "02d"
		}
		return "broken clouds", "03d"
	case "Rain":
		if coin {
			return "light rain", "10d"
		}
		return "moderate rain", "09d"
	case "Snow":
		if coin {
			return "light snow", "13d"
		}
		return "snow", "13d"
	case "Thunderstorm":
		return "thunderstorm", "11d"
	default:
		return "clear sky", "01d"
	}
}

// Current returns simulated current conditions at c.
func (s *Simulator) Current(c Coordinates) CurrentConditions {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	temp := baseTemperature(c.Latitude, now.Month()) + float64(s.rng.IntN(20)-10)
	cond := s.pick(temp)
	desc, icon := s.describe(cond)

	return CurrentConditions{
		Temperature: int(temp),
		FeelsLike:   int(temp),
		Condition:   cond,
		Description: desc,
		Icon:        icon,
		Humidity:    s.rng.IntN(40) + 40,
		WindSpeed:   s.rng.IntN(15) + 5,
		CityName:    "Unknown Location",
		CountryCode: "US",
		Timestamp:   now,
		Simulated:   true,
	}
}

// Forecast returns a simulated 3-hourly forecast for days days starting at
// today's UTC midnight.
func (s *Simulator) Forecast(c Coordinates, days int) ForecastPayload {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	samples := make([]RawSample, 0, days*8)
	for d := 0; d < days; d++ {
		dayStart := start.AddDate(0, 0, d)
		dayBase := baseTemperature(c.Latitude, dayStart.Month()) + float64(s.rng.IntN(20)-10)
		for slot := 0; slot < 8; slot++ {
			// Coolest before dawn, warmest mid-afternoon.
			swing := -6 * math.Cos(2*math.Pi*float64(slot-1)/8)
			temp := dayBase + swing
			cond := s.pick(temp)
			_, icon := s.describe(cond)
			samples = append(samples, RawSample{
				Timestamp:   dayStart.Add(time.Duration(3*slot) * time.Hour),
				Temperature: temp,
				Condition:   cond,
				Icon:        icon,
				Humidity:    float64(s.rng.IntN(40) + 40),
				WindSpeed:   float64(s.rng.IntN(15) + 5),
			})
		}
	}

	return ForecastPayload{
		LocationName: "Simulated Location",
		Region:       "US",
		Samples:      samples,
		Simulated:    true,
	}
}
