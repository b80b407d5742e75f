package detector

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/4O4-Not-F0und/detectlanguage-go"

	"github.com/4O4-Not-F0und/gura-langid/langdetect"
)

const (
	DETECT_LANGUAGE = "detect_language"
)

func init() {
	registerDetectorInstance(DETECT_LANGUAGE, newDetectLanguageInstance)
}

// InstanceDetectLanguage queries the detectlanguage.com API.
type InstanceDetectLanguage struct {
	baseInstance
	languages []string
	client    *detectlanguage.Client
}

func newDetectLanguageInstance(conf DetectorConfig) (instance Instance, err error) {
	if conf.Token == "" {
		err = fmt.Errorf("%s: token is required", conf.Name)
		return
	}

	ld := &InstanceDetectLanguage{
		baseInstance: newBaseInstance(conf),
		client:       detectlanguage.New(conf.Token),
	}
	for _, l := range conf.DetectLangs {
		ld.languages = append(ld.languages, strings.ToLower(l))
	}
	slices.Sort(ld.languages)

	// Check API status
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ld.logger.Debug("checking detectlanguage api instance status")
	var user *detectlanguage.UserStatusResponse
	user, err = ld.client.UserStatus(ctx)
	if err != nil {
		err = fmt.Errorf("detectlanguage api status error: %w", err)
		return
	}
	if user.Status != "ACTIVE" {
		err = fmt.Errorf("detectlanguage api status error, user status: %s", user.Status)
		return
	}

	b, _ := json.Marshal(user)
	ld.logger.Info(string(b))

	return ld, nil
}

// Languages returns the configured languages; the API does not restrict its
// answers to them.
func (ld *InstanceDetectLanguage) Languages() []string {
	return append([]string(nil), ld.languages...)
}

func (ld *InstanceDetectLanguage) Detect(ctx context.Context, req DetectRequest) (resp *DetectResponse, err error) {
	var r []*detectlanguage.DetectionResult
	r, err = ld.client.Detect(ctx, req.Text)
	if err != nil {
		return
	}
	b, _ := json.Marshal(r)
	ld.logger.Debug(string(b))

	ranking := make([]langdetect.Result, 0, len(r))
	for _, cv := range r {
		if !cv.Reliable {
			continue
		}
		ranking = append(ranking, langdetect.Result{
			Language:    strings.ToLower(cv.Language),
			Probability: float64(cv.Confidence),
		})
	}
	sortRanking(ranking)
	return ld.response(ranking)
}
