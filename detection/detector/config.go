package detector

import (
	"fmt"

	"github.com/4O4-Not-F0und/gura-langid/detection/common"
)

type DefaultDetectorConfig struct {
	// Positive
	Weight int `yaml:"weight"`

	// Language codes the detector should be able to report. Empty means every
	// language the detector knows.
	DetectLangs []string `yaml:"detect_langs"`

	// Minimum confidence of the best candidate.
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`

	// Languages accepted as a detection result. Empty accepts any language.
	LanguageFilter []string `yaml:"language_filter"`

	// Optional. Failover
	Failover common.FailoverConfig `yaml:"failover,omitempty"`
}

type DetectorConfig struct {
	DefaultDetectorConfig `yaml:",inline"`

	// Required
	Name string `yaml:"name"`

	// Required
	Type string `yaml:"type"`

	// Positive
	Timeout int64 `yaml:"timeout"`

	// Optional
	Token string `yaml:"token"`

	// Optional
	RateLimit common.RateLimitConfig `yaml:"rate_limit"`

	// Required by the langdetect type
	LangDetect LangDetectConfig `yaml:"langdetect"`
}

// LangDetectConfig configures the built-in n-gram classifier.
type LangDetectConfig struct {
	// Directory of JSON language profiles. Ignored if TableSnapshot is set.
	ProfilesDir string `yaml:"profiles_dir"`

	// Compiled table written by the compile command.
	TableSnapshot string `yaml:"table_snapshot"`

	// Optional TOML normalization table, must match the one used to
	// generate the profiles.
	NormalizationTable string `yaml:"normalization_table"`

	Alpha          float64 `yaml:"alpha"`
	Seed           *uint64 `yaml:"seed"`
	Trials         int     `yaml:"trials"`
	MaxTextLength  int     `yaml:"max_text_length"`
	ParallelTrials bool    `yaml:"parallel_trials"`
}

func (c *LangDetectConfig) check() (err error) {
	if c.ProfilesDir == "" && c.TableSnapshot == "" {
		err = fmt.Errorf("langdetect: profiles_dir or table_snapshot is required")
		return
	}
	if c.Alpha < 0 {
		err = fmt.Errorf("langdetect: alpha must not be negative")
		return
	}
	if c.Trials < 0 || c.MaxTextLength < 0 {
		err = fmt.Errorf("langdetect: trials and max_text_length must not be negative")
	}
	return
}

func (dc *DetectorConfig) CheckAndMergeDefaultConfig(def DefaultDetectorConfig) (err error) {
	if dc.Name == "" {
		err = fmt.Errorf("detector name is required")
		return
	}

	if dc.Type == "" {
		err = fmt.Errorf("%s: type is required", dc.Name)
		return
	}

	if dc.Weight <= 0 {
		if def.Weight <= 0 {
			err = fmt.Errorf("%s: weight must be positive", dc.Name)
			return
		}
		dc.Weight = def.Weight
	}

	if dc.Timeout <= 0 {
		err = fmt.Errorf("%s: timeout must be positive", dc.Name)
		return
	}

	if len(dc.DetectLangs) == 0 {
		dc.DetectLangs = def.DetectLangs
	}
	if len(dc.LanguageFilter) == 0 {
		dc.LanguageFilter = def.LanguageFilter
	}

	if dc.ConfidenceThreshold <= 0 {
		dc.ConfidenceThreshold = def.ConfidenceThreshold
	}
	if dc.ConfidenceThreshold < 0 || dc.ConfidenceThreshold > 1 {
		err = fmt.Errorf("%s: confidence threshold must in 0-1", dc.Name)
		return
	}

	if dc.Type == LANGDETECT {
		if err = dc.LangDetect.check(); err != nil {
			err = fmt.Errorf("%s: %w", dc.Name, err)
			return
		}
	}

	// Failover
	err = dc.Failover.CheckAndMerge(def.Failover)
	if err != nil {
		err = fmt.Errorf("%s: %w", dc.Name, err)
		return
	}

	// Rate Limit
	err = dc.RateLimit.Check()
	if err != nil {
		err = fmt.Errorf("%s: %w", dc.Name, err)
	}
	return
}
