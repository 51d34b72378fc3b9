// Package survey runs the engine over a regional sample file in the crop
// dataset's CSV layout (N,P,K,temperature,humidity,ph,rainfall[,label]) and
// summarizes the outcome for planners.
package survey

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cropsight/internal/agronomy"
	"cropsight/internal/engine"
)

// DefaultWorkers bounds concurrent analyses when the caller gives no limit.
const DefaultWorkers = 4

// Analyzer runs the decision engine on one sample.
type Analyzer interface {
	Analyze(ms agronomy.MeasurementSet) engine.Result
}

// Sample is one row of the survey file.
type Sample struct {
	Line         int
	Measurements agronomy.MeasurementSet
	Label        string // observed crop, may be empty
}

type row struct {
	agronomy.MeasurementSet
	Label string `csv:"label,omitempty"`
}

var requiredColumns = []string{"N", "P", "K", "temperature", "humidity", "ph", "rainfall"}

// Load decodes samples from r. The header must name every measurement
// column; extra columns are ignored. Header cells are matched after trimming
// surrounding whitespace.
func Load(r io.Reader) ([]Sample, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	raw, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, eris.New("survey: empty file")
		}
		return nil, eris.Wrap(err, "survey: read header")
	}
	header := make([]string, len(raw))
	for i, h := range raw {
		header[i] = strings.TrimSpace(h)
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}
	dec, err := csvutil.NewDecoder(cr, header...)
	if err != nil {
		return nil, eris.Wrap(err, "survey: read header")
	}

	var samples []Sample
	for line := 2; ; line++ {
		var rec row
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, eris.Wrapf(err, "survey: line %d", line)
		}
		samples = append(samples, Sample{
			Line:         line,
			Measurements: rec.MeasurementSet.Sanitized(),
			Label:        strings.TrimSpace(rec.Label),
		})
	}
	return samples, nil
}

// LoadFile opens path and decodes it with Load.
func LoadFile(path string) ([]Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "survey: open %s", path)
	}
	defer f.Close()
	return Load(f)
}

func checkHeader(header []string) error {
	have := make(map[string]bool, len(header))
	for _, h := range header {
		have[h] = true
	}
	var missing []string
	for _, c := range requiredColumns {
		if !have[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return eris.Errorf("survey: missing columns %s", strings.Join(missing, ", "))
	}
	return nil
}

// Outcome pairs a sample with its analysis.
type Outcome struct {
	Sample Sample
	Result engine.Result
}

// Agrees reports whether the sample's label names the recommended crop.
func (o Outcome) Agrees() bool {
	c, ok := agronomy.ParseCrop(o.Sample.Label)
	return ok && c == o.Result.Crop()
}

// Run analyzes every sample with at most workers concurrent analyses.
// Outcomes are returned in input order.
func Run(ctx context.Context, a Analyzer, samples []Sample, workers int, logger *zap.Logger) ([]Outcome, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	out := make([]Outcome, len(samples))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, s := range samples {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = Outcome{Sample: s, Result: a.Analyze(s.Measurements)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "survey: run")
	}

	logger.Info("survey complete",
		zap.Int("samples", len(samples)),
		zap.Int("workers", workers))
	return out, nil
}

// Summary aggregates a survey.
type Summary struct {
	Total   int
	Crops   map[agronomy.Crop]int
	Risks   map[engine.RiskTag]int
	Labeled int // samples carrying a label
	Agreed  int // labeled samples whose label matches the recommendation
}

// Summarize counts recommendations, risk tags and label agreement.
func Summarize(outcomes []Outcome) Summary {
	s := Summary{
		Total: len(outcomes),
		Crops: make(map[agronomy.Crop]int),
		Risks: make(map[engine.RiskTag]int),
	}
	for _, o := range outcomes {
		s.Crops[o.Result.Crop()]++
		s.Risks[o.Result.Risk()]++
		if o.Sample.Label != "" {
			s.Labeled++
			if o.Agrees() {
				s.Agreed++
			}
		}
	}
	return s
}

// Agreement is Agreed/Labeled, or 0 with no labels.
func (s Summary) Agreement() float64 {
	if s.Labeled == 0 {
		return 0
	}
	return float64(s.Agreed) / float64(s.Labeled)
}

// Share is the fraction of samples recommended crop c.
func (s Summary) Share(c agronomy.Crop) float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Crops[c]) / float64(s.Total)
}
