package parks

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/park-forecast-planner/internal/resilience"
	"github.com/i474232898/park-forecast-planner/internal/store"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		want Climate
	}{
		{"Grand Canyon National Park", ClimateDesert},
		{"Yellowstone National Park", ClimateMountain},
		{"Acadia National Park", ClimateCoastal},
		{"Redwood National Park", ClimateForest},
		{"Everglades National Park", ClimateTropical},
		{"Denali National Park", ClimateArctic},
		// Unknown parks get the default.
		{"Zion National Park", ClimateForest},
		{"", ClimateForest},
		// Substring heuristic: "Glacier" is listed before "Glacier Bay".
		{"Glacier Bay National Park", ClimateMountain},
		// Matching is case-sensitive.
		{"grand canyon", ClimateForest},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.name), tc.name)
	}
}

func TestCode(t *testing.T) {
	assert.Equal(t, "yell", Code("Yellowstone"))
	assert.Equal(t, "yell", Code("Yellowstone National Park"))
	assert.Equal(t, "grsm", Code("Great Smoky"), "table key containing the query")
	assert.Equal(t, "glac", Code("Glacier Bay National Park"), "first partial match wins")
	assert.Equal(t, "glba", Code("Glacier Bay"), "exact match beats partial")
	assert.Equal(t, "slee", Code("Sleeping Bear Dunes"))
	assert.Equal(t, "grsa", Code("Grand Staircase-Escalante"))
	assert.Equal(t, "mora", Code("Mount St. Helens National Volcanic Monument"))
	assert.Equal(t, "ab", Code("A b"))
}

func TestCatalogCodesAndFind(t *testing.T) {
	for _, p := range Catalog {
		assert.NotEmpty(t, p.Code, p.Name)
	}

	p, ok := Find("zion")
	require.True(t, ok)
	assert.Equal(t, "Zion National Park", p.Name)

	_, ok = Find("Atlantis")
	assert.False(t, ok)
}

func TestPlaceholderImage(t *testing.T) {
	assert.Equal(t,
		"/placeholder.svg?height=800&width=1200&query=Zion%20National%20Park%20scenic%20landscape",
		PlaceholderImage("Zion"))
}

type fakeImages struct {
	calls  []string
	byCode map[string][]string
	err    error
}

func (f *fakeImages) FetchImages(_ context.Context, code string) ([]string, error) {
	f.calls = append(f.calls, code)
	if f.err != nil {
		return nil, f.err
	}
	return f.byCode[code], nil
}

func newImageFetcher() *resilience.Fetcher[[]string] {
	return resilience.NewFetcher("images",
		store.NewTTLCache[resilience.Result[[]string]](24*time.Hour),
		resilience.NewBackoffTracker(3, 0),
		resilience.NewRateLimitGate(time.Minute))
}

func TestImagesUsesPlaceholderWhenNoneFound(t *testing.T) {
	src := &fakeImages{byCode: map[string][]string{"yell": {"https://nps.gov/yell.jpg"}}}
	svc := NewImageService(src, newImageFetcher(), 2, 0, nil)

	yell, _ := Find("yell")
	got := svc.Images(context.Background(), yell)
	assert.False(t, got.Degraded)
	assert.Equal(t, "https://nps.gov/yell.jpg", got.Image)

	zion, _ := Find("zion")
	got = svc.Images(context.Background(), zion)
	assert.False(t, got.Degraded)
	assert.Equal(t, []string{PlaceholderImage(zion.Name)}, got.Images)
}

func TestImagesRateLimitedServesPlaceholder(t *testing.T) {
	src := &fakeImages{err: fmt.Errorf("nps: %w", resilience.ErrRateLimited)}
	svc := NewImageService(src, newImageFetcher(), 2, 0, nil)

	got, err := svc.LoadAll(context.Background(), Catalog[:4])
	require.NoError(t, err)
	require.Len(t, got, 4)

	assert.Len(t, src.calls, 1, "cooldown masks the remaining parks")
	for _, pi := range got {
		assert.True(t, pi.Degraded)
		assert.Equal(t, resilience.ReasonRateLimited, pi.Reason)
		assert.Equal(t, PlaceholderImage(pi.Park.Name), pi.Image)
	}
}

func TestLoadAllPreservesOrderAndThrottles(t *testing.T) {
	src := &fakeImages{byCode: map[string][]string{}}
	svc := NewImageService(src, newImageFetcher(), 2, 20*time.Millisecond, nil)

	start := time.Now()
	got, err := svc.LoadAll(context.Background(), Catalog[:5])
	require.NoError(t, err)

	// Three batches, so at least two waits between them.
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
	require.Len(t, got, 5)
	for i, pi := range got {
		assert.Equal(t, Catalog[i].Name, pi.Park.Name)
	}
	assert.Equal(t, []string{"yell", "grca", "yose", "zion", "grsm"}, src.calls)
}

func TestLoadAllStopsOnCancel(t *testing.T) {
	src := &fakeImages{byCode: map[string][]string{}}
	svc := NewImageService(src, newImageFetcher(), 1, time.Hour, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	got, err := svc.LoadAll(ctx, Catalog[:3])
	assert.Error(t, err, "the second batch cannot start before the deadline")
	assert.Len(t, got, 1)
}
