package langdetect_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/cucumber/godog"

	"github.com/4O4-Not-F0und/gura-langid/langdetect"
)

type detectionContext struct {
	builder *langdetect.Builder
	table   *langdetect.Table
	lang    string
	ranking []langdetect.Result
	err     error
}

func (c *detectionContext) theLanguageProfilesIn(dir string) (err error) {
	profiles, err := langdetect.LoadProfiles(context.Background(), os.DirFS(dir), nil)
	if err != nil {
		return
	}
	c.builder = langdetect.NewBuilder()
	for _, p := range profiles {
		if err = c.builder.AddProfile(p); err != nil {
			return
		}
	}
	c.table, err = c.builder.Build()
	return
}

func (c *detectionContext) iDetectTheLanguageOf(text string, seed int) error {
	d := c.table.NewDetector(langdetect.WithSeed(uint64(seed)))
	d.Append(text)
	c.lang, c.err = d.Detect()
	return nil
}

func (c *detectionContext) iRankTheLanguagesOf(text string, seed int) error {
	d := c.table.NewDetector(langdetect.WithSeed(uint64(seed)))
	d.Append(text)
	c.ranking, c.err = d.DetectAll()
	return nil
}

func (c *detectionContext) theDetectedLanguageIs(lang string) error {
	if c.err != nil {
		return c.err
	}
	if c.lang != lang {
		return fmt.Errorf("expected %q, got %q", lang, c.lang)
	}
	return nil
}

func (c *detectionContext) theRankingStartsWith(lang string) error {
	if c.err != nil {
		return c.err
	}
	if c.ranking[0].Language != lang {
		return fmt.Errorf("expected ranking to start with %q, got %v", lang, c.ranking)
	}
	return nil
}

func (c *detectionContext) theRankingHasEntries(n int) error {
	if len(c.ranking) != n {
		return fmt.Errorf("expected %d entries, got %d", n, len(c.ranking))
	}
	return nil
}

func (c *detectionContext) iAddAnotherProfileNamed(name string) error {
	p := langdetect.NewProfile(name)
	p.Add("z")
	c.err = c.builder.AddProfile(p)
	return nil
}

func (c *detectionContext) addingFailsBecauseTheLanguageIsAlreadyDefined() error {
	return expectError(c.err, langdetect.ErrDuplicateLanguage)
}

func (c *detectionContext) detectionFailsBecauseThereIsNoText() error {
	return expectError(c.err, langdetect.ErrNoText)
}

func (c *detectionContext) theTableHasTheLanguages(list string) (err error) {
	table, err := c.builder.Build()
	if err != nil {
		return
	}
	got := strings.Join(table.Languages(), ",")
	if got != list {
		err = fmt.Errorf("expected languages %q, got %q", list, got)
	}
	return
}

func expectError(err, target error) error {
	if !errors.Is(err, target) {
		return fmt.Errorf("expected error %q, got %v", target, err)
	}
	return nil
}

func initializeScenario(sc *godog.ScenarioContext) {
	c := &detectionContext{}

	sc.Step(`^the language profiles in "([^"]*)"$`, c.theLanguageProfilesIn)
	sc.Step(`^I detect the language of "([^"]*)" with seed (\d+)$`, c.iDetectTheLanguageOf)
	sc.Step(`^I rank the languages of "([^"]*)" with seed (\d+)$`, c.iRankTheLanguagesOf)
	sc.Step(`^the detected language is "([^"]*)"$`, c.theDetectedLanguageIs)
	sc.Step(`^the ranking starts with "([^"]*)"$`, c.theRankingStartsWith)
	sc.Step(`^the ranking has (\d+) entries$`, c.theRankingHasEntries)
	sc.Step(`^I add another profile named "([^"]*)"$`, c.iAddAnotherProfileNamed)
	sc.Step(`^adding fails because the language is already defined$`, c.addingFailsBecauseTheLanguageIsAlreadyDefined)
	sc.Step(`^detection fails because there is no text$`, c.detectionFailsBecauseThereIsNoText)
	sc.Step(`^the table has the languages "([^"]*)"$`, c.theTableHasTheLanguages)
}

func TestFeatures(t *testing.T) {
	format := os.Getenv("GODOG_FORMAT")
	if format == "" {
		format = "pretty"
	}

	suite := godog.TestSuite{
		ScenarioInitializer: initializeScenario,
		Options: &godog.Options{
			Format:   format,
			Paths:    []string{"features"},
			TestingT: t,
			Strict:   true,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
