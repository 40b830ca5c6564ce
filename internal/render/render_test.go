package render

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/pulseboard/internal/dataset"
	"github.com/KaramelBytes/pulseboard/internal/monitoring"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func fixture(t *testing.T, header []string, records [][]string) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Normalize("watch.csv", header, records)
	require.NoError(t, err)
	ds, err = dataset.Coerce(ds)
	require.NoError(t, err)
	return ds
}

func fullFixture(t *testing.T) *dataset.Dataset {
	return fixture(t,
		[]string{"activity", "steps", "hear_rate", "calories", "age", "entropy_setps"},
		[][]string{
			{"Walking", "4000", "90", "120", "30", "0.5"},
			{"Walking", "5000", "95", "130", "31", "0.6"},
			{"Running", "8000", "150", "400", "29", "0.9"},
			{"Running", "9000", "", "420", "45", ""},
			{"Sitting", "200", "70", "", "50", "0.1"},
		},
	)
}

func ids(charts []Chart) []string {
	out := make([]string, len(charts))
	for i, c := range charts {
		out[i] = c.ID
	}
	return out
}

func TestPlanFollowsColumns(t *testing.T) {
	plan := Plan(fullFixture(t))
	assert.Equal(t, []string{
		"hist-steps", "hist-heart_rate", "hist-calories", "hist-entropy_steps",
		"box-steps", "box-heart_rate", "box-calories",
		"scatter-heart_rate-steps",
	}, ids(plan))

	sections := Sections(plan)
	assert.Len(t, sections[SectionDistributions], 4)
	assert.Len(t, sections[SectionByActivity], 3)
	require.Len(t, sections[SectionRelationships], 1)
	assert.Equal(t, "Heart Rate vs Steps", sections[SectionRelationships][0].Title)
	assert.Equal(t, "Distribution of steps", plan[0].Title)
	assert.Equal(t, "count", plan[0].YLabel)
	assert.Equal(t, "steps by Activity", plan[4].Title)
}

func TestPlanWithoutActivity(t *testing.T) {
	ds := fixture(t, []string{"steps", "distance"}, [][]string{{"1", "0.1"}, {"2", ""}})
	assert.Equal(t, []string{"hist-steps", "hist-distance"}, ids(Plan(ds)))
}

func TestPlanSkipsEmptyData(t *testing.T) {
	ds := fixture(t, []string{"activity", "steps", "heart_rate"}, [][]string{{"Walking", "", "80"}, {"", "x", ""}})
	assert.Equal(t, []string{"hist-heart_rate", "box-heart_rate"}, ids(Plan(ds)))
	assert.Empty(t, Plan(dataset.Empty("sample")))
}

func TestDrawProducesPNG(t *testing.T) {
	ds := fullFixture(t)
	for _, c := range Plan(ds) {
		c := c
		t.Run(c.ID, func(t *testing.T) {
			png, err := Draw(ds, c, Options{Bins: 10, WidthIn: 4, HeightIn: 3})
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(png, pngMagic), "not a PNG")
		})
	}
}

func TestDrawAllWithInfiniteCells(t *testing.T) {
	orig := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.Logf = orig })

	ds := fixture(t,
		[]string{"activity", "steps", "heart_rate"},
		[][]string{
			{"Walking", "inf", "90"},
			{"Walking", "4000", "+Inf"},
			{"Running", "8000", "150"},
			{"Running", "-Infinity", "140"},
		},
	)
	done := make(chan []Image, 1)
	go func() { done <- DrawAll(ds, Options{Bins: 10, WidthIn: 3, HeightIn: 2}) }()
	select {
	case images := <-done:
		assert.Equal(t, ids(Plan(ds)), func() []string {
			out := make([]string, len(images))
			for i, img := range images {
				out[i] = img.Chart.ID
			}
			return out
		}())
		assert.Contains(t, ids(Plan(ds)), "hist-steps")
	case <-time.After(30 * time.Second):
		t.Fatal("DrawAll did not return with infinite cells in the data")
	}
}

func TestMissingSkipsNonFinite(t *testing.T) {
	assert.Equal(t, []float64{1, 2}, present([]float64{math.Inf(1), 1, math.NaN(), math.Inf(-1), 2}))
	assert.Equal(t, 0, countPresent([]float64{math.Inf(1), math.NaN()}))
}

func TestDrawUnknownKind(t *testing.T) {
	_, err := Draw(fullFixture(t), Chart{Kind: "pie"}, DefaultOptions())
	assert.Error(t, err)
}

func TestDrawAllSkipsFailures(t *testing.T) {
	orig := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.Logf = orig })

	images := DrawAll(fullFixture(t), Options{WidthIn: 3, HeightIn: 2})
	assert.Len(t, images, 8)
	for _, img := range images {
		assert.True(t, bytes.HasPrefix(img.PNG, pngMagic), img.Chart.ID)
	}
}

func TestGroupValuesKeepsPositions(t *testing.T) {
	ds := fixture(t, []string{"activity", "steps"}, [][]string{{"b", "1"}, {"a", ""}, {"c", "3"}, {"b", "2"}})
	groups := groupValues(ds, dataset.ColActivity, dataset.ColSteps)
	require.Len(t, groups, 3)
	assert.Equal(t, "a", groups[0].Label)
	assert.Empty(t, groups[0].Values)
	assert.Equal(t, []float64{1, 2}, groups[1].Values)
	assert.Equal(t, []float64{3}, groups[2].Values)
}

func TestExplorePage(t *testing.T) {
	var buf bytes.Buffer
	err := Explore(&buf, fullFixture(t), ExploreOptions{MaxPoints: 2})
	require.NoError(t, err)
	html := buf.String()
	assert.True(t, strings.Contains(html, "Heart Rate vs Steps"))
	assert.True(t, strings.Contains(html, "Averages by Activity"))
	assert.True(t, strings.Contains(html, "stride=2"))
}

func TestExploreNothingToChart(t *testing.T) {
	ds := fixture(t, []string{"calories"}, [][]string{{"1"}})
	err := Explore(&bytes.Buffer{}, ds, ExploreOptions{})
	assert.ErrorIs(t, err, ErrNothingToExplore)
}
