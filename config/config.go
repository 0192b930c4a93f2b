package config

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"

	"github.com/LdDl/hpl-go/augment"
	"github.com/LdDl/hpl-go/vectorize"
)

// Normalization modes
const (
	// NormalizeAuto picks pixel normalization for versions 2 and 5, centre normalization for version 3
	NormalizeAuto   = "auto"
	NormalizePixel  = "pixel"
	NormalizeCenter = "center"
	NormalizeNone   = "none"
)

// ErrInvalidConfig is returned when an option is out of range
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds vectorizer and augmentation options.
// Every field can be set from JSON and overridden by HPL_* environment variables.
type Config struct {
	// Vectorizer
	TopK               int  `json:"top_k"                 env:"HPL_TOP_K"`
	NumClasses         int  `json:"num_classes"           env:"HPL_NUM_CLASSES"`
	UseJointConfs      bool `json:"use_joint_confs"       env:"HPL_USE_JOINT_CONFS"`
	UsePixelNorm       bool `json:"use_pixel_norm"        env:"HPL_USE_PIXEL_NORM"`
	UseJointObjOffsets bool `json:"use_joint_obj_offsets" env:"HPL_USE_JOINT_OBJ_OFFSETS"`

	// Augmentation
	FeatVersion int `json:"feat_version" env:"HPL_FEAT_VERSION"`
	// Object classes including both hands. Zero means NumClasses
	NumObjClasses int     `json:"num_obj_classes" env:"HPL_NUM_OBJ_CLASSES"`
	HandDistDelta float64 `json:"hand_dist_delta" env:"HPL_HAND_DIST_DELTA"`
	ObjDistDelta  float64 `json:"obj_dist_delta"  env:"HPL_OBJ_DIST_DELTA"`
	ConfDelta     float64 `json:"conf_delta"      env:"HPL_CONF_DELTA"`
	ImageWidth    float64 `json:"im_w"            env:"HPL_IM_W"`
	ImageHeight   float64 `json:"im_h"            env:"HPL_IM_H"`
	WindowSize    int     `json:"window_size"     env:"HPL_WINDOW_SIZE"`
	NormalizeMode string  `json:"normalize_mode"  env:"HPL_NORMALIZE_MODE"`
	Seed          uint64  `json:"seed"            env:"HPL_SEED"`
}

// DefaultConfig returns defaults matching NewLocsAndConfsDefault and a 1280x720 camera
func DefaultConfig() *Config {
	return &Config{
		TopK:          1,
		NumClasses:    7,
		UseJointConfs: true,
		UsePixelNorm:  true,
		FeatVersion:   augment.FeatVersion5,
		HandDistDelta: 0.05,
		ObjDistDelta:  0.05,
		ConfDelta:     0.05,
		ImageWidth:    1280,
		ImageHeight:   720,
		WindowSize:    25,
		NormalizeMode: NormalizeAuto,
	}
}

// LoadConfig loads a Config from a JSON file on top of DefaultConfig.
// The file must have a .json extension and be under 1MB.
func LoadConfig(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Fields omitted from the JSON keep their defaults
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields with HPL_* environment variables and validates the result
func ApplyEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return cfg.Validate()
}

// numObjClasses returns NumObjClasses, falling back to NumClasses
func (cfg *Config) numObjClasses() int {
	if cfg.NumObjClasses > 0 {
		return cfg.NumObjClasses
	}
	return cfg.NumClasses
}

// Validate checks every option once; a valid Config is not expected to change afterwards.
func (cfg *Config) Validate() error {
	if cfg.TopK <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "top_k must be positive, got %d", cfg.TopK)
	}
	if cfg.NumClasses <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "num_classes must be positive, got %d", cfg.NumClasses)
	}
	if cfg.NumObjClasses < 0 {
		return errors.Wrapf(ErrInvalidConfig, "num_obj_classes must not be negative, got %d", cfg.NumObjClasses)
	}
	// NaN passes every range check below
	for _, field := range []struct {
		name  string
		value float64
	}{
		{"hand_dist_delta", cfg.HandDistDelta},
		{"obj_dist_delta", cfg.ObjDistDelta},
		{"conf_delta", cfg.ConfDelta},
		{"im_w", cfg.ImageWidth},
		{"im_h", cfg.ImageHeight},
	} {
		if math.IsNaN(field.value) || math.IsInf(field.value, 0) {
			return errors.Wrapf(ErrInvalidConfig, "%s must be finite, got %v", field.name, field.value)
		}
	}
	if cfg.HandDistDelta < 0 || cfg.ObjDistDelta < 0 {
		return errors.Wrapf(ErrInvalidConfig, "distance deltas must not be negative, got hand=%v obj=%v", cfg.HandDistDelta, cfg.ObjDistDelta)
	}
	if cfg.ConfDelta < 0 || cfg.ConfDelta > 1 {
		return errors.Wrapf(ErrInvalidConfig, "conf_delta must be in [0, 1], got %v", cfg.ConfDelta)
	}
	if cfg.ImageWidth <= 0 || cfg.ImageHeight <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "image size must be positive, got %vx%v", cfg.ImageWidth, cfg.ImageHeight)
	}
	if cfg.WindowSize < 0 {
		return errors.Wrapf(ErrInvalidConfig, "window_size must not be negative, got %d", cfg.WindowSize)
	}
	switch cfg.NormalizeMode {
	case NormalizeAuto, NormalizePixel, NormalizeCenter, NormalizeNone:
	default:
		return errors.Wrapf(ErrInvalidConfig, "unknown normalize_mode %q", cfg.NormalizeMode)
	}
	if _, err := cfg.Layout(); err != nil {
		return err
	}
	return nil
}

// Layout resolves the feature layout of FeatVersion
func (cfg *Config) Layout() (augment.VectorLayout, error) {
	layout, err := augment.LayoutFor(cfg.FeatVersion, cfg.numObjClasses())
	if err != nil {
		return nil, errors.Wrap(err, "feat_version")
	}
	return layout, nil
}

// NewVectorizer builds LocsAndConfs from the vectorizer options
func (cfg *Config) NewVectorizer() (*vectorize.LocsAndConfs, error) {
	return vectorize.NewLocsAndConfs(cfg.TopK, cfg.NumClasses,
		vectorize.WithJointConfs(cfg.UseJointConfs),
		vectorize.WithPixelNorm(cfg.UsePixelNorm),
		vectorize.WithJointObjOffsets(cfg.UseJointObjOffsets),
	)
}

// NewSource returns a PCG source seeded from Seed
func (cfg *Config) NewSource() rand.Source {
	return rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)
}

// normalization returns the normalization transform for the mode, nil for none
func (cfg *Config) normalization(layout augment.VectorLayout) augment.Transform {
	mode := cfg.NormalizeMode
	if mode == NormalizeAuto {
		switch layout.FeatVersion() {
		case augment.FeatVersion2, augment.FeatVersion5:
			mode = NormalizePixel
		case augment.FeatVersion3:
			mode = NormalizeCenter
		default:
			mode = NormalizeNone
		}
	}
	switch mode {
	case NormalizePixel:
		return augment.NewNormalizePixelPts(cfg.ImageWidth, cfg.ImageHeight, layout)
	case NormalizeCenter:
		return augment.NewNormalizeFromCenter(cfg.ImageWidth, cfg.ImageHeight, layout)
	default:
		return nil
	}
}

// NewTrainPipeline builds MoveCenterPts -> ActivationDelta -> normalization.
// Spatial jitter runs on pixel distances, so normalization comes last.
func (cfg *Config) NewTrainPipeline(src rand.Source) (*augment.Pipeline, error) {
	layout, err := cfg.Layout()
	if err != nil {
		return nil, err
	}
	transforms := []augment.Transform{
		augment.NewMoveCenterPts(cfg.HandDistDelta, cfg.ObjDistDelta, cfg.ImageWidth, cfg.ImageHeight, layout),
		augment.NewActivationDelta(cfg.ConfDelta, layout),
	}
	if norm := cfg.normalization(layout); norm != nil {
		transforms = append(transforms, norm)
	}
	return augment.NewPipeline(cfg.WindowSize, src, transforms...), nil
}

// NewEvalPipeline builds a pipeline with normalization only
func (cfg *Config) NewEvalPipeline() (*augment.Pipeline, error) {
	layout, err := cfg.Layout()
	if err != nil {
		return nil, err
	}
	var transforms []augment.Transform
	if norm := cfg.normalization(layout); norm != nil {
		transforms = append(transforms, norm)
	}
	return augment.NewPipeline(cfg.WindowSize, nil, transforms...), nil
}

// NewWindow collects vectorized frames into an augmentation window
func NewWindow(vectors []vectorize.FeatureVector) (*augment.Window, error) {
	frames := make([][]float32, len(vectors))
	for i := range vectors {
		frames[i] = vectors[i]
	}
	return augment.NewWindow(frames)
}
