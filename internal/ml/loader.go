package ml

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// ArtifactSource supplies the raw bytes of the two serialized artifacts.
type ArtifactSource interface {
	ReadScaler() ([]byte, error)
	ReadModel() ([]byte, error)
	String() string
}

// FileSource reads the scaler and model from two JSON files.
type FileSource struct {
	ScalerPath string
	ModelPath  string
}

func (f FileSource) ReadScaler() ([]byte, error) {
	data, err := os.ReadFile(f.ScalerPath)
	if err != nil {
		return nil, fmt.Errorf("read scaler %s: %w", f.ScalerPath, err)
	}
	return data, nil
}

func (f FileSource) ReadModel() ([]byte, error) {
	data, err := os.ReadFile(f.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", f.ModelPath, err)
	}
	return data, nil
}

func (f FileSource) String() string {
	return fmt.Sprintf("files(scaler=%s, model=%s)", f.ScalerPath, f.ModelPath)
}

// Artifacts are the deserialized, read-only scaler and classifier.
type Artifacts struct {
	Scaler     *StandardScaler
	Classifier Classifier
	Metadata   ModelMetadata
	Source     string
	LoadedAt   time.Time
}

// LoadArtifacts reads, decodes and validates both artifacts from source.
// It does not cache; use a Loader for process-wide reuse.
func LoadArtifacts(source ArtifactSource) (*Artifacts, error) {
	scalerData, err := source.ReadScaler()
	if err != nil {
		return nil, err
	}
	scaler, err := DecodeScaler(scalerData)
	if err != nil {
		return nil, err
	}

	modelData, err := source.ReadModel()
	if err != nil {
		return nil, err
	}
	clf, meta, err := DecodeClassifier(modelData)
	if err != nil {
		return nil, err
	}

	if len(scaler.FeatureNames) > 0 && len(meta.Features) > 0 {
		if len(scaler.FeatureNames) != len(meta.Features) {
			return nil, fmt.Errorf("%w: scaler names %d features but model names %d",
				ErrSchema, len(scaler.FeatureNames), len(meta.Features))
		}
		for i := range scaler.FeatureNames {
			if scaler.FeatureNames[i] != meta.Features[i] {
				return nil, fmt.Errorf("%w: scaler feature %d is %q but model expects %q",
					ErrSchema, i, scaler.FeatureNames[i], meta.Features[i])
			}
		}
	}

	return &Artifacts{
		Scaler:     scaler,
		Classifier: clf,
		Metadata:   meta,
		Source:     source.String(),
		LoadedAt:   time.Now(),
	}, nil
}

// Loader loads artifacts at most once. Later calls return the same
// instance, or the same error if the first attempt failed.
type Loader struct {
	source    ArtifactSource
	once      sync.Once
	artifacts *Artifacts
	err       error
	attempts  atomic.Int32
}

// NewLoader creates a loader over source. Nothing is read until Load.
func NewLoader(source ArtifactSource) *Loader {
	return &Loader{source: source}
}

// Load returns the cached artifacts, reading them on the first call.
func (l *Loader) Load() (*Artifacts, error) {
	l.once.Do(func() {
		l.attempts.Add(1)
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				l.artifacts = nil
				l.err = fmt.Errorf("%w: loading from %s panicked: %v", ErrFormat, l.source, r)
				log.Error().Err(l.err).Msg("artifact load failed")
			}
		}()
		l.artifacts, l.err = LoadArtifacts(l.source)
		if l.err != nil {
			log.Error().Err(l.err).Str("source", l.source.String()).Msg("artifact load failed")
			return
		}
		log.Info().
			Str("source", l.source.String()).
			Str("model_version", l.artifacts.Metadata.Version).
			Dur("took", time.Since(start)).
			Msg("artifacts loaded")
	})
	return l.artifacts, l.err
}

// Attempts reports how many times the source has been read.
func (l *Loader) Attempts() int {
	return int(l.attempts.Load())
}
