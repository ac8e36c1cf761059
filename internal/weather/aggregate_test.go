package weather

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeHourly(day time.Time, temps []float64, conds []string) []RawSample {
	out := make([]RawSample, len(temps))
	for i := range temps {
		out[i] = RawSample{
			Timestamp:   day.Add(time.Duration(3*i) * time.Hour),
			Temperature: temps[i],
			Condition:   conds[i],
			Icon:        iconFor(conds[i]),
			Humidity:    50,
			WindSpeed:   8,
		}
	}
	return out
}

func iconFor(cond string) string {
	switch cond {
	case "Clear":
		return "01d"
	case "Rain":
		return "10d"
	case "Clouds":
		return "03d"
	}
	return "50d"
}

func TestAggregateSingleDayExample(t *testing.T) {
	day := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	samples := threeHourly(day,
		[]float64{40, 42, 45, 50, 55, 52, 48, 43},
		[]string{"Clear", "Clear", "Clear", "Rain", "Clear", "Clear", "Clear", "Clear"},
	)

	got, err := Aggregate(samples, "Yellowstone", "US")
	require.NoError(t, err)
	require.Len(t, got, 1)

	d := got[0]
	assert.Equal(t, "2024-05-10", d.Date)
	assert.Equal(t, 55, d.HighTemp)
	assert.Equal(t, 40, d.LowTemp)
	assert.Equal(t, 47, d.AvgTemp)
	assert.Equal(t, "Clear", d.Condition)
	assert.Equal(t, "01d", d.Icon)
	assert.Equal(t, 50, d.Humidity)
	assert.Equal(t, 8, d.WindSpeed)
	assert.Equal(t, "Yellowstone", d.LocationName)
	assert.Equal(t, "US", d.LocationRegion)
}

func TestAggregateEmpty(t *testing.T) {
	got, err := Aggregate(nil, "Nowhere", "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAggregateModeTieBreakFirstSeen(t *testing.T) {
	day := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	samples := threeHourly(day,
		[]float64{60, 61, 62, 63},
		[]string{"Rain", "Clouds", "Rain", "Clouds"},
	)

	got, err := Aggregate(samples, "Olympic", "US")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Rain", got[0].Condition)
	assert.Equal(t, "10d", got[0].Icon)
}

func TestAggregateSingleSample(t *testing.T) {
	got, err := Aggregate([]RawSample{{
		Timestamp:   time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC),
		Temperature: 28.4,
		Condition:   "Snow",
		Icon:        "13d",
	}}, "Denali", "US")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 28, got[0].HighTemp)
	assert.Equal(t, 28, got[0].LowTemp)
	assert.Equal(t, 28, got[0].AvgTemp)
}

func TestAggregateSplitsOnUTCDayAndSortsAscending(t *testing.T) {
	mst := time.FixedZone("MST", -7*3600)
	samples := []RawSample{
		// 2024-03-02 01:00 UTC, even though local time is still March 1st.
		{Timestamp: time.Date(2024, 3, 1, 18, 0, 0, 0, mst), Temperature: 30, Condition: "Snow"},
		{Timestamp: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), Temperature: 50, Condition: "Clear"},
		{Timestamp: time.Date(2024, 3, 1, 21, 0, 0, 0, time.UTC), Temperature: 44, Condition: "Clouds"},
	}

	got, err := Aggregate(samples, "Arches", "US")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-03-01", got[0].Date)
	assert.Equal(t, 50, got[0].HighTemp)
	assert.Equal(t, 44, got[0].LowTemp)
	assert.Equal(t, 47, got[0].AvgTemp)
	assert.Equal(t, "2024-03-02", got[1].Date)
	assert.Equal(t, 30, got[1].AvgTemp)
}

func TestAggregateOrderingInvariant(t *testing.T) {
	base := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	var samples []RawSample
	for i := 0; i < 40; i++ {
		samples = append(samples, RawSample{
			Timestamp:   base.Add(time.Duration(3*i) * time.Hour),
			Temperature: 55 + 20*math.Sin(float64(i)) + 0.37*float64(i%5),
			Condition:   []string{"Clear", "Clouds", "Rain"}[i%3],
			Humidity:    float64(40 + i%30),
			WindSpeed:   float64(i%12) + 0.5,
		})
	}

	got, err := Aggregate(samples, "Glacier", "US")
	require.NoError(t, err)
	require.Len(t, got, 5)
	for _, d := range got {
		assert.LessOrEqual(t, d.LowTemp, d.AvgTemp, d.Date)
		assert.LessOrEqual(t, d.AvgTemp, d.HighTemp, d.Date)
	}
}

func TestAggregateRoundsHalfUp(t *testing.T) {
	ts := time.Date(2024, 12, 24, 0, 0, 0, 0, time.UTC)
	got, err := Aggregate([]RawSample{
		{Timestamp: ts, Temperature: -2, Condition: "Snow"},
		{Timestamp: ts.Add(3 * time.Hour), Temperature: -3, Condition: "Snow"},
	}, "Katmai", "US")
	require.NoError(t, err)
	assert.Equal(t, -2, got[0].AvgTemp)
}

func TestAggregateRejectsMalformedSamples(t *testing.T) {
	_, err := Aggregate([]RawSample{{Temperature: 50, Condition: "Clear"}}, "x", "")
	assert.True(t, errors.Is(err, ErrMalformedSample))

	_, err = Aggregate([]RawSample{{
		Timestamp:   time.Now(),
		Temperature: math.NaN(),
	}}, "x", "")
	assert.True(t, errors.Is(err, ErrMalformedSample))
}

func TestCoordinatesLabel(t *testing.T) {
	assert.Equal(t, "36.0544°N 112.2401°W", Coordinates{Latitude: 36.0544, Longitude: -112.2401}.Label())
	assert.Equal(t, "14.2580°S 170.6860°W", Coordinates{Latitude: -14.258, Longitude: -170.686}.Label())
}
