// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package predict

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goccy/go-json"

	"github.com/pdiddy/referee-engine/pkg/types"
)

// Training statuses.
const (
	StatusTrained          = "trained"
	StatusInsufficientData = "insufficient_data"
)

// Errors returned by Load. The model is neutral after either.
var (
	ErrCorruptModel   = errors.New("corrupt model file")
	ErrSchemaMismatch = errors.New("model feature schema mismatch")
)

// Sample is one labelled training example. Label is 0 or 1.
type Sample struct {
	Features Features
	Label    int
}

// TrainResult reports the outcome of Train.
type TrainResult struct {
	Status     string  `json:"status"`
	NSamples   int     `json:"n_samples"`
	Positives  int     `json:"positives"`
	CVAccuracy float64 `json:"cv_accuracy"`
}

// Model is a Predictor of one kind whose implementation is swapped between
// Neutral and Logistic by Train and Load. It is safe for concurrent use.
type Model struct {
	kind Kind
	cfg  types.PredictorConfig
	log  *zap.Logger

	mu      sync.RWMutex
	current Predictor
	trained TrainResult
}

// modelFile is the persisted form of a trained model.
type modelFile struct {
	Kind     Kind        `json:"kind"`
	Schema   string      `json:"schema"`
	Features []string    `json:"features"`
	Model    Logistic    `json:"model"`
	Training TrainResult `json:"training"`
	SavedAt  time.Time   `json:"saved_at"`
}

// NewModel returns an untrained (neutral) model of the given kind.
func NewModel(kind Kind, cfg types.PredictorConfig, log *zap.Logger) *Model {
	def := types.DefaultConfig().Predictors
	if cfg.MinSamples <= 0 {
		cfg.MinSamples = def.MinSamples
	}
	if cfg.Folds <= 1 {
		cfg.Folds = def.Folds
	}
	if cfg.Iterations <= 0 {
		cfg.Iterations = def.Iterations
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = def.LearningRate
	}
	if cfg.L2 < 0 {
		cfg.L2 = 0
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Model{kind: kind, cfg: cfg, log: log, current: Neutral{}}
}

// Kind returns the model kind.
func (m *Model) Kind() Kind { return m.kind }

// Predict delegates to the current predictor.
func (m *Model) Predict(x Features) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.Predict(x)
}

// Active reports whether a trained model is loaded.
func (m *Model) Active() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.Active()
}

// Path returns the model file path under dir.
func (m *Model) Path(dir string) string {
	return filepath.Join(dir, string(m.kind)+".model.json")
}

// Train fits a new model on samples. With fewer than MinSamples usable
// samples, or only one class present, it returns StatusInsufficientData and
// leaves the current predictor untouched.
func (m *Model) Train(samples []Sample) TrainResult {
	dims := m.kind.Dimensions()
	usable := make([]Sample, 0, len(samples))
	pos := 0
	for _, s := range samples {
		if len(s.Features) != dims || (s.Label != 0 && s.Label != 1) || !allFinite(s.Features) {
			continue
		}
		usable = append(usable, s)
		pos += s.Label
	}
	res := TrainResult{NSamples: len(usable), Positives: pos}
	if len(usable) < m.cfg.MinSamples || pos == 0 || pos == len(usable) {
		res.Status = StatusInsufficientData
		m.log.Info("not enough training data",
			zap.String("kind", string(m.kind)),
			zap.Int("samples", len(usable)),
			zap.Int("positives", pos),
			zap.Int("min_samples", m.cfg.MinSamples))
		return res
	}

	res.CVAccuracy = m.crossValidate(usable)
	model := fit(usable, dims, m.cfg)
	res.Status = StatusTrained

	m.mu.Lock()
	m.current = model
	m.trained = res
	m.mu.Unlock()

	m.log.Info("model trained",
		zap.String("kind", string(m.kind)),
		zap.Int("samples", res.NSamples),
		zap.Float64("cv_accuracy", res.CVAccuracy))
	return res
}

// crossValidate runs k-fold cross-validation with folds assigned by sample
// position, so results are reproducible.
func (m *Model) crossValidate(samples []Sample) float64 {
	k := min(m.cfg.Folds, len(samples))
	correct := 0
	for fold := 0; fold < k; fold++ {
		var train, test []Sample
		for i, s := range samples {
			if i%k == fold {
				test = append(test, s)
			} else {
				train = append(train, s)
			}
		}
		model := fit(train, m.kind.Dimensions(), m.cfg)
		for _, s := range test {
			predicted := 0
			if model.Predict(s.Features) >= 0.5 {
				predicted = 1
			}
			if predicted == s.Label {
				correct++
			}
		}
	}
	return float64(correct) / float64(len(samples))
}

// fit runs L2-regularised batch gradient descent on standardized features.
func fit(samples []Sample, dims int, cfg types.PredictorConfig) *Logistic {
	n := float64(len(samples))
	l := &Logistic{
		Weights: make([]float64, dims),
		Mean:    make([]float64, dims),
		Scale:   make([]float64, dims),
	}
	for _, s := range samples {
		for j, v := range s.Features {
			l.Mean[j] += v / n
		}
	}
	for _, s := range samples {
		for j, v := range s.Features {
			d := v - l.Mean[j]
			l.Scale[j] += d * d / n
		}
	}
	for j := range l.Scale {
		l.Scale[j] = sqrtOrOne(l.Scale[j])
	}

	x := make([][]float64, len(samples))
	for i, s := range samples {
		x[i] = make([]float64, dims)
		for j, v := range s.Features {
			x[i][j] = (v - l.Mean[j]) / l.Scale[j]
		}
	}

	grad := make([]float64, dims)
	for iter := 0; iter < cfg.Iterations; iter++ {
		for j := range grad {
			grad[j] = 0
		}
		var gradBias float64
		for i, s := range samples {
			z := l.Bias
			for j, w := range l.Weights {
				z += w * x[i][j]
			}
			residual := sigmoid(z) - float64(s.Label)
			for j := range grad {
				grad[j] += residual * x[i][j]
			}
			gradBias += residual
		}
		for j := range l.Weights {
			l.Weights[j] -= cfg.LearningRate * (grad[j]/n + cfg.L2*l.Weights[j])
		}
		l.Bias -= cfg.LearningRate * gradBias / n
	}
	return l
}

// Save writes the trained model to <dir>/<kind>.model.json. Saving an
// untrained model is an error.
func (m *Model) Save(dir string) error {
	m.mu.RLock()
	l, ok := m.current.(*Logistic)
	trained := m.trained
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("saving %s model: model is not trained", m.kind)
	}

	data, err := json.MarshalIndent(modelFile{
		Kind:     m.kind,
		Schema:   m.kind.Schema(),
		Features: m.kind.FeatureNames(),
		Model:    *l,
		Training: trained,
		SavedAt:  time.Now().UTC(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s model: %w", m.kind, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating models directory: %w", err)
	}
	path := m.Path(dir)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("renaming %s: %w", tmp, err)
	}
	return nil
}

// Load reads <dir>/<kind>.model.json. A missing file leaves the model
// neutral without error. A corrupt or mismatched file also leaves it
// neutral and returns an error wrapping ErrCorruptModel or
// ErrSchemaMismatch.
func (m *Model) Load(dir string) error {
	path := m.Path(dir)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		m.reset()
		return nil
	}
	if err != nil {
		m.reset()
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var f modelFile
	if err := json.Unmarshal(data, &f); err != nil {
		m.reset()
		m.log.Warn("corrupt model file, using neutral predictor", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%w: %s: %v", ErrCorruptModel, path, err)
	}
	if f.Kind != m.kind || f.Schema != m.kind.Schema() {
		m.reset()
		m.log.Warn("model schema mismatch, using neutral predictor",
			zap.String("path", path),
			zap.String("want", m.kind.Schema()),
			zap.String("got", f.Schema))
		return fmt.Errorf("%w: %s has %q", ErrSchemaMismatch, path, f.Schema)
	}
	if !f.Model.valid(m.kind.Dimensions()) {
		m.reset()
		m.log.Warn("invalid model parameters, using neutral predictor", zap.String("path", path))
		return fmt.Errorf("%w: %s: invalid parameters", ErrCorruptModel, path)
	}

	l := f.Model
	m.mu.Lock()
	m.current = &l
	m.trained = f.Training
	m.mu.Unlock()
	m.log.Debug("model loaded", zap.String("kind", string(m.kind)), zap.String("path", path))
	return nil
}

func (m *Model) reset() {
	m.mu.Lock()
	m.current = Neutral{}
	m.trained = TrainResult{}
	m.mu.Unlock()
}

func allFinite(x Features) bool {
	for _, v := range x {
		if !finite(v) {
			return false
		}
	}
	return true
}

func sqrtOrOne(variance float64) float64 {
	if variance <= 1e-12 {
		return 1
	}
	return math.Sqrt(variance)
}
