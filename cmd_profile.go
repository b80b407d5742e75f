package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/4O4-Not-F0und/gura-langid/langdetect"
)

type profileOptions struct {
	lang          string
	out           string
	normalization string
	keepRare      bool
}

func newProfileCmd() *cobra.Command {
	opts := &profileOptions{}

	cmd := &cobra.Command{
		Use:   "profile --lang <code> [corpus files...]",
		Short: "Generate a language profile from a text corpus",
		Long: `Counts the n-grams of every line of the corpus files, or of standard
input when no file is given, and writes a JSON language profile.`,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if opts.lang == "" {
				return fmt.Errorf("--lang is required")
			}

			n := langdetect.DefaultNormalizer()
			if opts.normalization != "" {
				if n, err = langdetect.LoadNormalizer(opts.normalization); err != nil {
					return
				}
			}

			p := langdetect.NewProfile(opts.lang)
			if len(args) == 0 {
				err = addCorpus(p, n, cmd.InOrStdin())
			}
			for _, name := range args {
				if err = addCorpusFile(p, n, name); err != nil {
					return
				}
			}
			if err != nil {
				return
			}

			if !opts.keepRare {
				p.OmitLessFrequent()
			}
			logrus.WithField("language", p.Name).
				Infof("profile has %d n-grams, totals %v", len(p.Freq), p.NWords)

			w := cmd.OutOrStdout()
			if opts.out != "" {
				var f *os.File
				if f, err = os.Create(opts.out); err != nil {
					return
				}
				defer f.Close()
				w = f
			}
			return langdetect.WriteProfile(w, p)
		},
	}

	cmd.Flags().StringVarP(&opts.lang, "lang", "l", "", "language code of the corpus")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&opts.normalization, "normalization", "", "TOML normalization table (default: built-in)")
	cmd.Flags().BoolVar(&opts.keepRare, "keep-rare", false, "keep rare n-grams")
	return cmd
}

func addCorpusFile(p *langdetect.Profile, n *langdetect.Normalizer, name string) (err error) {
	f, err := os.Open(name)
	if err != nil {
		return
	}
	defer f.Close()

	if err = addCorpus(p, n, f); err != nil {
		err = fmt.Errorf("read corpus '%s' failed: %w", name, err)
	}
	return
}

func addCorpus(p *langdetect.Profile, n *langdetect.Normalizer, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		p.AddText(n, scanner.Text())
	}
	return scanner.Err()
}
