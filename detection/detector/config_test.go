package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/4O4-Not-F0und/gura-langid/detection/common"
)

func defaultConfig() DefaultDetectorConfig {
	return DefaultDetectorConfig{
		Weight:              2,
		DetectLangs:         []string{"en", "fr"},
		ConfidenceThreshold: 0.3,
		Failover:            common.FailoverConfig{MaxFailures: 3, CooldownBaseSec: 120, MaxDisableCycles: 6},
	}
}

func TestCheckAndMergeDefaultConfig(t *testing.T) {
	c := DetectorConfig{
		Name:    "ld",
		Type:    LANGDETECT,
		Timeout: 3,
		LangDetect: LangDetectConfig{
			ProfilesDir: "profiles",
		},
	}
	require.NoError(t, c.CheckAndMergeDefaultConfig(defaultConfig()))

	assert.Equal(t, 2, c.Weight)
	assert.Equal(t, []string{"en", "fr"}, c.DetectLangs)
	assert.InDelta(t, 0.3, c.ConfidenceThreshold, 1e-9)
	assert.Equal(t, 3, c.Failover.MaxFailures)
}

func TestCheckAndMergeDefaultConfigErrors(t *testing.T) {
	valid := func() DetectorConfig {
		return DetectorConfig{Name: "x", Type: LINGUA, Timeout: 1}
	}

	cases := map[string]func(*DetectorConfig){
		"no name":    func(c *DetectorConfig) { c.Name = "" },
		"no type":    func(c *DetectorConfig) { c.Type = "" },
		"no timeout": func(c *DetectorConfig) { c.Timeout = 0 },
		"threshold":  func(c *DetectorConfig) { c.ConfidenceThreshold = 1.5 },
		"langdetect": func(c *DetectorConfig) { c.Type = LANGDETECT },
		"negative alpha": func(c *DetectorConfig) {
			c.Type = LANGDETECT
			c.LangDetect = LangDetectConfig{ProfilesDir: "p", Alpha: -1}
		},
		"rate limit": func(c *DetectorConfig) { c.RateLimit = common.RateLimitConfig{Enabled: true} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(&c)
			assert.Error(t, c.CheckAndMergeDefaultConfig(defaultConfig()))
		})
	}

	noWeight := valid()
	def := defaultConfig()
	def.Weight = 0
	assert.Error(t, noWeight.CheckAndMergeDefaultConfig(def))
}
