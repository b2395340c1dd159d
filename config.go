// config.go - Typed configuration with JSON persistence and per-field defaults

package main

import (
	"encoding/json"
	"fmt"
	"os"
)

type AudioConfig struct {
	SampleRate      int     `json:"sample_rate"`
	ToneDuration    float64 `json:"tone_duration"`
	SilenceDuration float64 `json:"silence_duration"`
	FadeDuration    float64 `json:"fade_duration"`
}

type TestingConfig struct {
	FrequencyBands      int        `json:"frequency_bands"`
	MinFrequency        float64    `json:"min_frequency"`
	MaxFrequency        float64    `json:"max_frequency"`
	IntensityLevels     []float64  `json:"intensity_levels"`
	RandomizeOrder      bool       `json:"randomize_order"`
	InterTestDelayRange [2]float64 `json:"inter_test_delay_range"`
}

type CalibrationConfig struct {
	DefaultVolume        float64  `json:"default_volume"`
	CalibrationFrequency float64  `json:"calibration_frequency"`
	CalibrationIntensity float64  `json:"calibration_intensity"`
	SavedVolume          *float64 `json:"saved_volume,omitempty"`
}

type UIConfig struct {
	ShowFrequencyDuringTest bool `json:"show_frequency_during_test"`
	AutoSaveResults         bool `json:"auto_save_results"`
}

type Config struct {
	Audio       AudioConfig       `json:"audio"`
	Testing     TestingConfig     `json:"testing"`
	Calibration CalibrationConfig `json:"calibration"`
	UI          UIConfig          `json:"ui"`
}

func DefaultConfig() *Config {
	return &Config{
		Audio: AudioConfig{
			SampleRate:      44100,
			ToneDuration:    0.33,
			SilenceDuration: 0.3,
			FadeDuration:    0.01,
		},
		Testing: TestingConfig{
			FrequencyBands:      15,
			MinFrequency:        125,
			MaxFrequency:        16000,
			IntensityLevels:     []float64{0.1, 0.3, 0.6, 1.0},
			RandomizeOrder:      true,
			InterTestDelayRange: [2]float64{0.75, 1.25},
		},
		Calibration: CalibrationConfig{
			DefaultVolume:        0.5,
			CalibrationFrequency: 1000,
			CalibrationIntensity: 0.5,
		},
		UI: UIConfig{
			ShowFrequencyDuringTest: false,
			AutoSaveResults:         true,
		},
	}
}

// LoadConfig reads path over the defaults: fields present in the file replace
// the default, absent fields keep it, unknown fields are ignored. A missing or
// malformed file falls back to defaults; out-of-range values are an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Config file %s not found, using defaults\n", path)
		return cfg, nil
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		fmt.Printf("Error loading config: %v, using defaults\n", err)
		return DefaultConfig(), nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %v", path, err)
	}

	fmt.Printf("Loaded configuration from %s\n", path)
	return cfg, nil
}

// SaveConfig writes the configuration as indented JSON. Callers print status;
// this stays silent so it is safe to call with the terminal in raw mode.
func (cfg *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %v", err)
	}
	return nil
}

func (cfg *Config) Validate() error {
	nyquist := float64(cfg.Audio.SampleRate) / 2

	if cfg.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio.sample_rate must be positive, got %d", cfg.Audio.SampleRate)
	}
	if cfg.Audio.ToneDuration <= 0 {
		return fmt.Errorf("audio.tone_duration must be positive, got %v", cfg.Audio.ToneDuration)
	}
	if cfg.Audio.FadeDuration < 0 {
		return fmt.Errorf("audio.fade_duration must not be negative, got %v", cfg.Audio.FadeDuration)
	}
	if cfg.Testing.FrequencyBands < 1 {
		return fmt.Errorf("testing.frequency_bands must be at least 1, got %d", cfg.Testing.FrequencyBands)
	}
	if cfg.Testing.MinFrequency <= 0 {
		return fmt.Errorf("testing.min_frequency must be positive, got %v", cfg.Testing.MinFrequency)
	}
	if cfg.Testing.MaxFrequency < cfg.Testing.MinFrequency {
		return fmt.Errorf("testing.max_frequency %v is below min_frequency %v",
			cfg.Testing.MaxFrequency, cfg.Testing.MinFrequency)
	}
	if cfg.Testing.MaxFrequency > nyquist {
		return fmt.Errorf("testing.max_frequency %v exceeds the Nyquist limit %v",
			cfg.Testing.MaxFrequency, nyquist)
	}
	if len(cfg.Testing.IntensityLevels) == 0 {
		return fmt.Errorf("testing.intensity_levels must not be empty")
	}
	for _, level := range cfg.Testing.IntensityLevels {
		if level < 0 || level > 1 {
			return fmt.Errorf("testing.intensity_levels entry %v is out of range 0.0-1.0", level)
		}
	}
	minGap, maxGap := cfg.Testing.InterTestDelayRange[0], cfg.Testing.InterTestDelayRange[1]
	if minGap <= 0 || maxGap < minGap {
		return fmt.Errorf("testing.inter_test_delay_range [%v, %v] is not a valid gap range", minGap, maxGap)
	}
	if cfg.Calibration.DefaultVolume <= 0 || cfg.Calibration.DefaultVolume > 1 {
		return fmt.Errorf("calibration.default_volume %v is out of range (0.0, 1.0]", cfg.Calibration.DefaultVolume)
	}
	if cfg.Calibration.CalibrationFrequency <= 0 || cfg.Calibration.CalibrationFrequency > nyquist {
		return fmt.Errorf("calibration.calibration_frequency %v is out of range (0, %v]",
			cfg.Calibration.CalibrationFrequency, nyquist)
	}
	if sv := cfg.Calibration.SavedVolume; sv != nil && (*sv <= 0 || *sv > 1) {
		return fmt.Errorf("calibration.saved_volume %v is out of range (0.0, 1.0]", *sv)
	}
	return nil
}

// EffectiveVolume is the calibration volume a session starts with: the saved
// volume when one has been persisted, the configured default otherwise.
func (cfg *Config) EffectiveVolume() float64 {
	if cfg.Calibration.SavedVolume != nil {
		return *cfg.Calibration.SavedVolume
	}
	return cfg.Calibration.DefaultVolume
}

// SetSavedVolume records the calibration volume for persistence via SaveConfig.
func (cfg *Config) SetSavedVolume(volume float64) {
	cfg.Calibration.SavedVolume = &volume
}
