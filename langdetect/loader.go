package langdetect

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"path"
	"runtime"
	"slices"
	"strings"

	"fortio.org/safecast"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
)

// ProfileDocument is the serialized form of a Profile.
type ProfileDocument struct {
	Name   string           `json:"name"`
	NWords []int64          `json:"n_words"`
	Freq   map[string]int64 `json:"freq"`
}

// Profile converts the document, rejecting negative or missing counts.
func (doc *ProfileDocument) Profile() (p *Profile, err error) {
	if doc.Name == "" {
		err = fmt.Errorf("profile name is required")
		return
	}
	if len(doc.NWords) != MaxNGramLength {
		err = fmt.Errorf("%s: n_words must have %d entries, got %d", doc.Name, MaxNGramLength, len(doc.NWords))
		return
	}

	p = NewProfile(doc.Name)
	for i, total := range doc.NWords {
		if p.NWords[i], err = safecast.Conv[uint64](total); err != nil {
			return nil, fmt.Errorf("%s: n_words[%d]: %w", doc.Name, i, err)
		}
	}
	for gram, count := range doc.Freq {
		if p.Freq[gram], err = safecast.Conv[uint64](count); err != nil {
			return nil, fmt.Errorf("%s: freq[%q]: %w", doc.Name, gram, err)
		}
	}
	return
}

// NewProfileDocument returns the serializable form of p.
func NewProfileDocument(p *Profile) (doc *ProfileDocument, err error) {
	doc = &ProfileDocument{
		Name:   p.Name,
		NWords: make([]int64, MaxNGramLength),
		Freq:   make(map[string]int64, len(p.Freq)),
	}
	for i, total := range p.NWords {
		if doc.NWords[i], err = safecast.Conv[int64](total); err != nil {
			return nil, fmt.Errorf("%s: n_words[%d]: %w", p.Name, i, err)
		}
	}
	for gram, count := range p.Freq {
		if doc.Freq[gram], err = safecast.Conv[int64](count); err != nil {
			return nil, fmt.Errorf("%s: freq[%q]: %w", p.Name, gram, err)
		}
	}
	return
}

// ReadProfile decodes one JSON profile document.
func ReadProfile(r io.Reader) (p *Profile, err error) {
	var doc ProfileDocument
	if err = json.NewDecoder(r).Decode(&doc); err != nil {
		err = fmt.Errorf("decode language profile failed: %w", err)
		return
	}
	return doc.Profile()
}

// WriteProfile encodes p as a JSON profile document.
func WriteProfile(w io.Writer, p *Profile) error {
	doc, err := NewProfileDocument(p)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(doc)
}

// isProfileFile accepts "*.json" files and extension-less files, the two
// layouts profile sets are distributed in.
func isProfileFile(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	ext := path.Ext(name)
	return ext == ".json" || ext == ""
}

// LoadProfiles reads every profile document in the root of fsys. When langs
// is not empty only those languages are returned, and each of them must be
// present. Profiles are returned sorted by name.
func LoadProfiles(ctx context.Context, fsys fs.FS, langs []string) (profiles []*Profile, err error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		err = fmt.Errorf("read profile directory failed: %w", err)
		return
	}

	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && isProfileFile(e.Name()) {
			files = append(files, e.Name())
		}
	}

	loaded := make([]*Profile, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, name := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := readProfileFile(fsys, name)
			if err != nil {
				return err
			}
			loaded[i] = p
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return
	}

	for _, p := range loaded {
		if len(langs) > 0 && !slices.Contains(langs, p.Name) {
			continue
		}
		if _, perr := language.Parse(p.Name); perr != nil {
			logrus.WithField("language", p.Name).Warnf("profile name is not a valid BCP 47 tag: %v", perr)
		}
		profiles = append(profiles, p)
	}

	for _, lang := range langs {
		if !slices.ContainsFunc(profiles, func(p *Profile) bool { return p.Name == lang }) {
			err = fmt.Errorf("language profile not found: %s", lang)
			return nil, err
		}
	}

	slices.SortFunc(profiles, func(a, b *Profile) int {
		return strings.Compare(a.Name, b.Name)
	})
	return
}

func readProfileFile(fsys fs.FS, name string) (p *Profile, err error) {
	f, err := fsys.Open(name)
	if err != nil {
		return
	}
	defer f.Close()

	p, err = ReadProfile(f)
	if err != nil {
		err = fmt.Errorf("%s: %w", name, err)
	}
	return
}

// LoadTable loads the profiles of fsys and builds a Table from them.
func LoadTable(ctx context.Context, fsys fs.FS, langs []string) (t *Table, err error) {
	profiles, err := LoadProfiles(ctx, fsys, langs)
	if err != nil {
		return
	}

	b := NewBuilder()
	for _, p := range profiles {
		if err = b.AddProfile(p); err != nil {
			return
		}
	}
	return b.Build()
}
