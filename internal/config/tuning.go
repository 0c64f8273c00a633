package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// ErrUnsupportedFormat is returned for tuning files that are neither JSON nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported tuning file format")

// TuningConfig holds every production threshold used by the engine.
// All fields are optional: a nil field resolves to the production default,
// so partial files only override what they name.
type TuningConfig struct {
	// Snapshot window and evidence gates
	WindowSeconds          *float64 `json:"window_seconds,omitempty" yaml:"window_seconds,omitempty"`
	BlerEvidenceMinSamples *int     `json:"bler_evidence_min_samples,omitempty" yaml:"bler_evidence_min_samples,omitempty"`
	DominanceCoverageMin   *float64 `json:"dominance_coverage_min,omitempty" yaml:"dominance_coverage_min,omitempty"`

	// Radio bands
	StrongRSCPDbm     *float64 `json:"strong_rscp_dbm,omitempty" yaml:"strong_rscp_dbm,omitempty"`
	AcceptableRSCPDbm *float64 `json:"acceptable_rscp_dbm,omitempty" yaml:"acceptable_rscp_dbm,omitempty"`
	WeakRSCPDbm       *float64 `json:"weak_rscp_dbm,omitempty" yaml:"weak_rscp_dbm,omitempty"`
	DLCoverageRSCPDbm *float64 `json:"dl_coverage_rscp_dbm,omitempty" yaml:"dl_coverage_rscp_dbm,omitempty"`
	HealthyEcNoDb     *float64 `json:"healthy_ecno_db,omitempty" yaml:"healthy_ecno_db,omitempty"`
	BorderlineEcNoDb  *float64 `json:"borderline_ecno_db,omitempty" yaml:"borderline_ecno_db,omitempty"`
	BadEcNoDb         *float64 `json:"bad_ecno_db,omitempty" yaml:"bad_ecno_db,omitempty"`
	SevereEcNoDb      *float64 `json:"severe_ecno_db,omitempty" yaml:"severe_ecno_db,omitempty"`
	LowTxP90Dbm       *float64 `json:"low_tx_p90_dbm,omitempty" yaml:"low_tx_p90_dbm,omitempty"`
	HealthyTxP90Dbm   *float64 `json:"healthy_tx_p90_dbm,omitempty" yaml:"healthy_tx_p90_dbm,omitempty"`
	ULTxP90Dbm        *float64 `json:"ul_tx_p90_dbm,omitempty" yaml:"ul_tx_p90_dbm,omitempty"`
	HealthyBlerPct    *float64 `json:"healthy_bler_pct,omitempty" yaml:"healthy_bler_pct,omitempty"`
	ULBlerPct         *float64 `json:"ul_bler_pct,omitempty" yaml:"ul_bler_pct,omitempty"`
	DropBlerPct       *float64 `json:"drop_bler_pct,omitempty" yaml:"drop_bler_pct,omitempty"`
	BlerCollapsePct   *float64 `json:"bler_collapse_pct,omitempty" yaml:"bler_collapse_pct,omitempty"`
	BlerExtremePct    *float64 `json:"bler_extreme_pct,omitempty" yaml:"bler_extreme_pct,omitempty"`

	// Pilot dominance
	LowDeltaDb             *float64 `json:"low_delta_db,omitempty" yaml:"low_delta_db,omitempty"`
	ActiveSetDeltaDb       *float64 `json:"active_set_delta_db,omitempty" yaml:"active_set_delta_db,omitempty"`
	DominanceDeltaMedianDb *float64 `json:"dominance_delta_median_db,omitempty" yaml:"dominance_delta_median_db,omitempty"`
	DominanceLowRatio      *float64 `json:"dominance_low_ratio,omitempty" yaml:"dominance_low_ratio,omitempty"`
	DominanceDeltaStdDb    *float64 `json:"dominance_delta_std_db,omitempty" yaml:"dominance_delta_std_db,omitempty"`
	DominanceActiveSetMax  *int     `json:"dominance_active_set_max,omitempty" yaml:"dominance_active_set_max,omitempty"`
	DominanceActiveSetMean *float64 `json:"dominance_active_set_mean,omitempty" yaml:"dominance_active_set_mean,omitempty"`
	DominanceSwitches      *int     `json:"dominance_switches,omitempty" yaml:"dominance_switches,omitempty"`
	WeightDeltaMedian      *int     `json:"weight_delta_median,omitempty" yaml:"weight_delta_median,omitempty"`
	WeightLowRatio         *int     `json:"weight_low_ratio,omitempty" yaml:"weight_low_ratio,omitempty"`
	WeightDeltaStd         *int     `json:"weight_delta_std,omitempty" yaml:"weight_delta_std,omitempty"`
	WeightActiveSetMax     *int     `json:"weight_active_set_max,omitempty" yaml:"weight_active_set_max,omitempty"`
	WeightActiveSetMean    *int     `json:"weight_active_set_mean,omitempty" yaml:"weight_active_set_mean,omitempty"`
	WeightSwitches         *int     `json:"weight_switches,omitempty" yaml:"weight_switches,omitempty"`
	WeightInterferenceBler *int     `json:"weight_interference_bler,omitempty" yaml:"weight_interference_bler,omitempty"`
	WeightInterferenceEcNo *int     `json:"weight_interference_ecno,omitempty" yaml:"weight_interference_ecno,omitempty"`
	WeightInterferenceRSCP *int     `json:"weight_interference_rscp,omitempty" yaml:"weight_interference_rscp,omitempty"`
	WeightInterferenceTx   *int     `json:"weight_interference_tx,omitempty" yaml:"weight_interference_tx,omitempty"`
	PollutionHighScore     *int     `json:"pollution_high_score,omitempty" yaml:"pollution_high_score,omitempty"`
	PollutionModerateScore *int     `json:"pollution_moderate_score,omitempty" yaml:"pollution_moderate_score,omitempty"`
	StrongRSCPShareMin     *float64 `json:"strong_rscp_share_min,omitempty" yaml:"strong_rscp_share_min,omitempty"`

	// Classifier
	MobilityProximitySeconds *float64 `json:"mobility_proximity_seconds,omitempty" yaml:"mobility_proximity_seconds,omitempty"`
	CoreScoreMin             *int     `json:"core_score_min,omitempty" yaml:"core_score_min,omitempty"`
	CoreConfidenceCap        *float64 `json:"core_confidence_cap,omitempty" yaml:"core_confidence_cap,omitempty"`
	MaxRecommendations       *int     `json:"max_recommendations,omitempty" yaml:"max_recommendations,omitempty"`

	// Context bundle and timestamp reconstruction
	ContextRadioSeconds     *float64 `json:"context_radio_seconds,omitempty" yaml:"context_radio_seconds,omitempty"`
	ContextSignalingSeconds *float64 `json:"context_signaling_seconds,omitempty" yaml:"context_signaling_seconds,omitempty"`
	RolloverThreshold       *string  `json:"rollover_threshold,omitempty" yaml:"rollover_threshold,omitempty"` // duration string like "6h"
}

// Thresholds is the resolved, plain-value view of a TuningConfig consumed by
// the engine packages.
type Thresholds struct {
	WindowSeconds          float64
	BlerEvidenceMinSamples int
	DominanceCoverageMin   float64

	StrongRSCPDbm     float64
	AcceptableRSCPDbm float64
	WeakRSCPDbm       float64
	DLCoverageRSCPDbm float64
	HealthyEcNoDb     float64
	BorderlineEcNoDb  float64
	BadEcNoDb         float64
	SevereEcNoDb      float64
	LowTxP90Dbm       float64
	HealthyTxP90Dbm   float64
	ULTxP90Dbm        float64
	HealthyBlerPct    float64
	ULBlerPct         float64
	DropBlerPct       float64
	BlerCollapsePct   float64
	BlerExtremePct    float64

	LowDeltaDb             float64
	ActiveSetDeltaDb       float64
	DominanceDeltaMedianDb float64
	DominanceLowRatio      float64
	DominanceDeltaStdDb    float64
	DominanceActiveSetMax  int
	DominanceActiveSetMean float64
	DominanceSwitches      int
	Dominance              DominanceWeights
	Interference           InterferenceWeights
	PollutionHighScore     int
	PollutionModerateScore int
	StrongRSCPShareMin     float64

	MobilityProximitySeconds float64
	CoreScoreMin             int
	CoreConfidenceCap        float64
	MaxRecommendations       int

	ContextRadioSeconds     float64
	ContextSignalingSeconds float64
	RolloverThreshold       time.Duration
}

// DominanceWeights are the points each overlap indicator adds to the
// dominance score.
type DominanceWeights struct {
	DeltaMedian   int
	LowRatio      int
	DeltaStd      int
	ActiveSetMax  int
	ActiveSetMean int
	Switches      int
}

// InterferenceWeights are the points each interference-under-strong-signal
// indicator adds to the interference score.
type InterferenceWeights struct {
	Bler int
	EcNo int
	RSCP int
	Tx   int
}

// DefaultThresholds returns the production-tuned values. These are field
// heuristics; change them only with drive-test validation.
func DefaultThresholds() Thresholds {
	return Thresholds{
		WindowSeconds:          10,
		BlerEvidenceMinSamples: 3,
		DominanceCoverageMin:   0.30,

		StrongRSCPDbm:     -85,
		AcceptableRSCPDbm: -90,
		WeakRSCPDbm:       -95,
		DLCoverageRSCPDbm: -108,
		HealthyEcNoDb:     -10,
		BorderlineEcNoDb:  -12,
		BadEcNoDb:         -14,
		SevereEcNoDb:      -16,
		LowTxP90Dbm:       18,
		HealthyTxP90Dbm:   20,
		ULTxP90Dbm:        21,
		HealthyBlerPct:    5,
		ULBlerPct:         20,
		DropBlerPct:       50,
		BlerCollapsePct:   80,
		BlerExtremePct:    95,

		LowDeltaDb:             3,
		ActiveSetDeltaDb:       3,
		DominanceDeltaMedianDb: 2,
		DominanceLowRatio:      0.70,
		DominanceDeltaStdDb:    2,
		DominanceActiveSetMax:  3,
		DominanceActiveSetMean: 2,
		DominanceSwitches:      2,
		Dominance: DominanceWeights{
			DeltaMedian:   30,
			LowRatio:      30,
			DeltaStd:      10,
			ActiveSetMax:  20,
			ActiveSetMean: 10,
			Switches:      20,
		},
		Interference: InterferenceWeights{
			Bler: 40,
			EcNo: 30,
			RSCP: 20,
			Tx:   10,
		},
		PollutionHighScore:     60,
		PollutionModerateScore: 35,
		StrongRSCPShareMin:     0.30,

		MobilityProximitySeconds: 5,
		CoreScoreMin:             70,
		CoreConfidenceCap:        0.95,
		MaxRecommendations:       4,

		ContextRadioSeconds:     20,
		ContextSignalingSeconds: 20,
		RolloverThreshold:       6 * time.Hour,
	}
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }
func ptrString(v string) *string    { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a TuningConfig with every field populated from
// DefaultThresholds.
func DefaultTuningConfig() *TuningConfig {
	d := DefaultThresholds()
	return &TuningConfig{
		WindowSeconds:          ptrFloat64(d.WindowSeconds),
		BlerEvidenceMinSamples: ptrInt(d.BlerEvidenceMinSamples),
		DominanceCoverageMin:   ptrFloat64(d.DominanceCoverageMin),

		StrongRSCPDbm:     ptrFloat64(d.StrongRSCPDbm),
		AcceptableRSCPDbm: ptrFloat64(d.AcceptableRSCPDbm),
		WeakRSCPDbm:       ptrFloat64(d.WeakRSCPDbm),
		DLCoverageRSCPDbm: ptrFloat64(d.DLCoverageRSCPDbm),
		HealthyEcNoDb:     ptrFloat64(d.HealthyEcNoDb),
		BorderlineEcNoDb:  ptrFloat64(d.BorderlineEcNoDb),
		BadEcNoDb:         ptrFloat64(d.BadEcNoDb),
		SevereEcNoDb:      ptrFloat64(d.SevereEcNoDb),
		LowTxP90Dbm:       ptrFloat64(d.LowTxP90Dbm),
		HealthyTxP90Dbm:   ptrFloat64(d.HealthyTxP90Dbm),
		ULTxP90Dbm:        ptrFloat64(d.ULTxP90Dbm),
		HealthyBlerPct:    ptrFloat64(d.HealthyBlerPct),
		ULBlerPct:         ptrFloat64(d.ULBlerPct),
		DropBlerPct:       ptrFloat64(d.DropBlerPct),
		BlerCollapsePct:   ptrFloat64(d.BlerCollapsePct),
		BlerExtremePct:    ptrFloat64(d.BlerExtremePct),

		LowDeltaDb:             ptrFloat64(d.LowDeltaDb),
		ActiveSetDeltaDb:       ptrFloat64(d.ActiveSetDeltaDb),
		DominanceDeltaMedianDb: ptrFloat64(d.DominanceDeltaMedianDb),
		DominanceLowRatio:      ptrFloat64(d.DominanceLowRatio),
		DominanceDeltaStdDb:    ptrFloat64(d.DominanceDeltaStdDb),
		DominanceActiveSetMax:  ptrInt(d.DominanceActiveSetMax),
		DominanceActiveSetMean: ptrFloat64(d.DominanceActiveSetMean),
		DominanceSwitches:      ptrInt(d.DominanceSwitches),
		WeightDeltaMedian:      ptrInt(d.Dominance.DeltaMedian),
		WeightLowRatio:         ptrInt(d.Dominance.LowRatio),
		WeightDeltaStd:         ptrInt(d.Dominance.DeltaStd),
		WeightActiveSetMax:     ptrInt(d.Dominance.ActiveSetMax),
		WeightActiveSetMean:    ptrInt(d.Dominance.ActiveSetMean),
		WeightSwitches:         ptrInt(d.Dominance.Switches),
		WeightInterferenceBler: ptrInt(d.Interference.Bler),
		WeightInterferenceEcNo: ptrInt(d.Interference.EcNo),
		WeightInterferenceRSCP: ptrInt(d.Interference.RSCP),
		WeightInterferenceTx:   ptrInt(d.Interference.Tx),
		PollutionHighScore:     ptrInt(d.PollutionHighScore),
		PollutionModerateScore: ptrInt(d.PollutionModerateScore),
		StrongRSCPShareMin:     ptrFloat64(d.StrongRSCPShareMin),

		MobilityProximitySeconds: ptrFloat64(d.MobilityProximitySeconds),
		CoreScoreMin:             ptrInt(d.CoreScoreMin),
		CoreConfidenceCap:        ptrFloat64(d.CoreConfidenceCap),
		MaxRecommendations:       ptrInt(d.MaxRecommendations),

		ContextRadioSeconds:     ptrFloat64(d.ContextRadioSeconds),
		ContextSignalingSeconds: ptrFloat64(d.ContextSignalingSeconds),
		RolloverThreshold:       ptrString(d.RolloverThreshold.String()),
	}
}

// LoadTuningConfig loads a TuningConfig from a JSON or YAML file.
// The file is validated to ensure it has a supported extension and is under the max file size.
// Fields omitted from the file retain their default values, so
// partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	// Check file size for safety (max 1MB)
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

	cfg := EmptyTuningConfig()
	if ext == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.WindowSeconds != nil && *c.WindowSeconds <= 0 {
		return fmt.Errorf("window_seconds must be positive, got %f", *c.WindowSeconds)
	}
	if c.BlerEvidenceMinSamples != nil && *c.BlerEvidenceMinSamples < 1 {
		return fmt.Errorf("bler_evidence_min_samples must be at least 1, got %d", *c.BlerEvidenceMinSamples)
	}
	for name, v := range map[string]*float64{
		"dominance_coverage_min": c.DominanceCoverageMin,
		"dominance_low_ratio":    c.DominanceLowRatio,
		"strong_rscp_share_min":  c.StrongRSCPShareMin,
		"core_confidence_cap":    c.CoreConfidenceCap,
	} {
		if v != nil && (*v < 0 || *v > 1) {
			return fmt.Errorf("%s must be between 0 and 1, got %f", name, *v)
		}
	}
	for name, v := range map[string]*int{
		"pollution_high_score":     c.PollutionHighScore,
		"pollution_moderate_score": c.PollutionModerateScore,
		"core_score_min":           c.CoreScoreMin,
	} {
		if v != nil && (*v < 0 || *v > 100) {
			return fmt.Errorf("%s must be between 0 and 100, got %d", name, *v)
		}
	}
	if c.PollutionHighScore != nil && c.PollutionModerateScore != nil && *c.PollutionModerateScore > *c.PollutionHighScore {
		return fmt.Errorf("pollution_moderate_score (%d) must not exceed pollution_high_score (%d)", *c.PollutionModerateScore, *c.PollutionHighScore)
	}
	if c.MaxRecommendations != nil && *c.MaxRecommendations < 1 {
		return fmt.Errorf("max_recommendations must be at least 1, got %d", *c.MaxRecommendations)
	}
	if c.ContextRadioSeconds != nil && *c.ContextRadioSeconds <= 0 {
		return fmt.Errorf("context_radio_seconds must be positive, got %f", *c.ContextRadioSeconds)
	}
	if c.ContextSignalingSeconds != nil && *c.ContextSignalingSeconds <= 0 {
		return fmt.Errorf("context_signaling_seconds must be positive, got %f", *c.ContextSignalingSeconds)
	}
	if c.RolloverThreshold != nil && *c.RolloverThreshold != "" {
		d, err := time.ParseDuration(*c.RolloverThreshold)
		if err != nil {
			return fmt.Errorf("invalid rollover_threshold '%s': %w", *c.RolloverThreshold, err)
		}
		if d <= 0 || d >= 24*time.Hour {
			return fmt.Errorf("rollover_threshold must be within (0, 24h), got %s", d)
		}
	}
	return nil
}

// GetWindowSeconds returns the snapshot window length or the default.
func (c *TuningConfig) GetWindowSeconds() float64 {
	if c.WindowSeconds == nil {
		return DefaultThresholds().WindowSeconds
	}
	return *c.WindowSeconds
}

// GetRolloverThreshold parses and returns the RolloverThreshold as a time.Duration.
func (c *TuningConfig) GetRolloverThreshold() time.Duration {
	if c.RolloverThreshold == nil || *c.RolloverThreshold == "" {
		return 6 * time.Hour // default
	}
	d, err := time.ParseDuration(*c.RolloverThreshold)
	if err != nil {
		return 6 * time.Hour // default on parse error
	}
	return d
}

// Thresholds resolves the config into plain values, falling back to
// DefaultThresholds for every nil field.
func (c *TuningConfig) Thresholds() Thresholds {
	t := DefaultThresholds()
	if c == nil {
		return t
	}

	setFloat(&t.WindowSeconds, c.WindowSeconds)
	setInt(&t.BlerEvidenceMinSamples, c.BlerEvidenceMinSamples)
	setFloat(&t.DominanceCoverageMin, c.DominanceCoverageMin)

	setFloat(&t.StrongRSCPDbm, c.StrongRSCPDbm)
	setFloat(&t.AcceptableRSCPDbm, c.AcceptableRSCPDbm)
	setFloat(&t.WeakRSCPDbm, c.WeakRSCPDbm)
	setFloat(&t.DLCoverageRSCPDbm, c.DLCoverageRSCPDbm)
	setFloat(&t.HealthyEcNoDb, c.HealthyEcNoDb)
	setFloat(&t.BorderlineEcNoDb, c.BorderlineEcNoDb)
	setFloat(&t.BadEcNoDb, c.BadEcNoDb)
	setFloat(&t.SevereEcNoDb, c.SevereEcNoDb)
	setFloat(&t.LowTxP90Dbm, c.LowTxP90Dbm)
	setFloat(&t.HealthyTxP90Dbm, c.HealthyTxP90Dbm)
	setFloat(&t.ULTxP90Dbm, c.ULTxP90Dbm)
	setFloat(&t.HealthyBlerPct, c.HealthyBlerPct)
	setFloat(&t.ULBlerPct, c.ULBlerPct)
	setFloat(&t.DropBlerPct, c.DropBlerPct)
	setFloat(&t.BlerCollapsePct, c.BlerCollapsePct)
	setFloat(&t.BlerExtremePct, c.BlerExtremePct)

	setFloat(&t.LowDeltaDb, c.LowDeltaDb)
	setFloat(&t.ActiveSetDeltaDb, c.ActiveSetDeltaDb)
	setFloat(&t.DominanceDeltaMedianDb, c.DominanceDeltaMedianDb)
	setFloat(&t.DominanceLowRatio, c.DominanceLowRatio)
	setFloat(&t.DominanceDeltaStdDb, c.DominanceDeltaStdDb)
	setInt(&t.DominanceActiveSetMax, c.DominanceActiveSetMax)
	setFloat(&t.DominanceActiveSetMean, c.DominanceActiveSetMean)
	setInt(&t.DominanceSwitches, c.DominanceSwitches)
	setInt(&t.Dominance.DeltaMedian, c.WeightDeltaMedian)
	setInt(&t.Dominance.LowRatio, c.WeightLowRatio)
	setInt(&t.Dominance.DeltaStd, c.WeightDeltaStd)
	setInt(&t.Dominance.ActiveSetMax, c.WeightActiveSetMax)
	setInt(&t.Dominance.ActiveSetMean, c.WeightActiveSetMean)
	setInt(&t.Dominance.Switches, c.WeightSwitches)
	setInt(&t.Interference.Bler, c.WeightInterferenceBler)
	setInt(&t.Interference.EcNo, c.WeightInterferenceEcNo)
	setInt(&t.Interference.RSCP, c.WeightInterferenceRSCP)
	setInt(&t.Interference.Tx, c.WeightInterferenceTx)
	setInt(&t.PollutionHighScore, c.PollutionHighScore)
	setInt(&t.PollutionModerateScore, c.PollutionModerateScore)
	setFloat(&t.StrongRSCPShareMin, c.StrongRSCPShareMin)

	setFloat(&t.MobilityProximitySeconds, c.MobilityProximitySeconds)
	setInt(&t.CoreScoreMin, c.CoreScoreMin)
	setFloat(&t.CoreConfidenceCap, c.CoreConfidenceCap)
	setInt(&t.MaxRecommendations, c.MaxRecommendations)

	setFloat(&t.ContextRadioSeconds, c.ContextRadioSeconds)
	setFloat(&t.ContextSignalingSeconds, c.ContextSignalingSeconds)
	t.RolloverThreshold = c.GetRolloverThreshold()

	return t
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

// WindowMillis returns the snapshot window in milliseconds, never below one second.
func (t Thresholds) WindowMillis() int64 {
	return secondsToMillis(t.WindowSeconds)
}

// ContextRadioMillis returns the context bundle radio window in milliseconds.
func (t Thresholds) ContextRadioMillis() int64 {
	return secondsToMillis(t.ContextRadioSeconds)
}

// ContextSignalingMillis returns the context bundle signalling half-window in milliseconds.
func (t Thresholds) ContextSignalingMillis() int64 {
	return secondsToMillis(t.ContextSignalingSeconds)
}

// Pollution and dominance levels.
const (
	LevelHigh     = "High"
	LevelModerate = "Moderate"
	LevelLow      = "Low"
)

// PollutionLevel maps a 0-100 score to High, Moderate or Low.
func (t Thresholds) PollutionLevel(score int) string {
	switch {
	case score >= t.PollutionHighScore:
		return LevelHigh
	case score >= t.PollutionModerateScore:
		return LevelModerate
	default:
		return LevelLow
	}
}

func secondsToMillis(s float64) int64 {
	if s < 1 {
		s = 1
	}
	return int64(s * 1000)
}
