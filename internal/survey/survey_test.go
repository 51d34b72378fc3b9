package survey

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"cropsight/internal/agronomy"
	"cropsight/internal/engine"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const sampleCSV = `N,P,K,temperature,humidity,ph,rainfall,label
90,42,43,20.8,82.0,6.5,202.9,rice
40,60,20,27.1,40,7.0,50,mothbeans
100,30,30,24,50,6.2,120,coffee
85,58,41,21.7,80.3,7.0,226.6,maize
`

func TestLoad(t *testing.T) {
	samples, err := Load(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, samples, 4)

	assert.Equal(t, 2, samples[0].Line)
	assert.Equal(t, agronomy.DefaultMeasurements(), samples[0].Measurements)
	assert.Equal(t, "rice", samples[0].Label)
	assert.Equal(t, 50.0, samples[1].Measurements.Rainfall)
	assert.Equal(t, 5, samples[3].Line)
}

func TestLoad_NoLabelColumn(t *testing.T) {
	samples, err := Load(strings.NewReader("rainfall,humidity,N,P,K,temperature,ph\n50,40,1,2,3,20,6\n"))
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Empty(t, samples[0].Label)
	assert.Equal(t, 50.0, samples[0].Measurements.Rainfall)
	assert.Equal(t, 1.0, samples[0].Measurements.Nitrogen)
}

func TestLoad_PaddedHeader(t *testing.T) {
	const padded = "N ,P ,K , temperature ,humidity ,ph ,rainfall ,label\n90,42,43,20.8,82,6.5,202.9,rice\n"
	samples, err := Load(strings.NewReader(padded))
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, agronomy.DefaultMeasurements(), samples[0].Measurements)
	assert.Equal(t, "rice", samples[0].Label)
}

func TestLoad_MissingColumns(t *testing.T) {
	_, err := Load(strings.NewReader("N,P,K,label\n1,2,3,rice\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing columns temperature, humidity, ph, rainfall")
}

func TestLoad_BadValue(t *testing.T) {
	_, err := Load(strings.NewReader("N,P,K,temperature,humidity,ph,rainfall\n1,2,3,20,80,6,lots\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "survey: line 2")
}

func TestLoad_Empty(t *testing.T) {
	_, err := Load(strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "survey: empty file")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "region.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))
	samples, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, samples, 4)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

type countingAnalyzer struct{ calls atomic.Int64 }

func (c *countingAnalyzer) Analyze(ms agronomy.MeasurementSet) engine.Result {
	c.calls.Add(1)
	return engine.Analyze(ms)
}

func TestRun_PreservesOrder(t *testing.T) {
	var samples []Sample
	for i := range 50 {
		ms := agronomy.DefaultMeasurements()
		ms.Rainfall = float64(i * 10)
		samples = append(samples, Sample{Line: i + 2, Measurements: ms})
	}

	a := &countingAnalyzer{}
	out, err := Run(context.Background(), a, samples, 3, nil)
	require.NoError(t, err)
	require.Len(t, out, len(samples))
	assert.Equal(t, int64(len(samples)), a.calls.Load())

	for i, o := range out {
		assert.Equal(t, samples[i], o.Sample)
		assert.Equal(t, engine.Analyze(samples[i].Measurements), o.Result, "line %d", o.Sample.Line)
	}
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	samples := []Sample{{Line: 2, Measurements: agronomy.DefaultMeasurements()}}
	_, err := Run(ctx, engine.Engine{}, samples, 0, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSummarize(t *testing.T) {
	samples, err := Load(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	out, err := Run(context.Background(), engine.Engine{}, samples, 2, nil)
	require.NoError(t, err)

	s := Summarize(out)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Crops[agronomy.Rice])
	assert.Equal(t, 1, s.Crops[agronomy.Mothbeans])
	assert.Equal(t, 1, s.Crops[agronomy.Coffee])
	assert.Equal(t, 2, s.Risks[engine.FloodProne])
	assert.Equal(t, 4, s.Labeled)
	assert.Equal(t, 3, s.Agreed, "maize is outside the vocabulary")
	assert.InDelta(t, 0.75, s.Agreement(), 1e-9)
	assert.InDelta(t, 0.5, s.Share(agronomy.Rice), 1e-9)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.Agreement())
	assert.Zero(t, s.Share(agronomy.Rice))
}

func ExampleSummarize() {
	samples, _ := Load(strings.NewReader(sampleCSV))
	out, _ := Run(context.Background(), engine.Engine{}, samples, 1, nil)
	s := Summarize(out)
	fmt.Printf("%d samples, %.0f%% agree\n", s.Total, s.Agreement()*100)
	// Output: 4 samples, 75% agree
}
