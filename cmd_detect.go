package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/4O4-Not-F0und/gura-langid/langdetect"
)

var (
	languageColor    = color.New(color.FgGreen, color.Bold)
	probabilityColor = color.New(color.FgYellow)
	candidateColor   = color.New(color.FgCyan)
)

// tableOptions selects the probability table of the offline commands.
type tableOptions struct {
	profilesDir string
	snapshot    string
	langs       []string
}

func (o *tableOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.profilesDir, "profiles", "profiles", "directory of JSON language profiles")
	cmd.Flags().StringVar(&o.snapshot, "table", "", "compiled table snapshot, used instead of --profiles")
	cmd.Flags().StringSliceVar(&o.langs, "langs", nil, "restrict detection to these languages")
}

func (o *tableOptions) load(ctx context.Context) (t *langdetect.Table, err error) {
	if o.snapshot == "" {
		return langdetect.LoadTable(ctx, os.DirFS(o.profilesDir), o.langs)
	}

	f, err := os.Open(o.snapshot)
	if err != nil {
		return
	}
	defer f.Close()
	if len(o.langs) > 0 {
		err = fmt.Errorf("--langs cannot be combined with --table")
		return
	}
	return langdetect.ReadSnapshot(f)
}

type detectOptions struct {
	table         tableOptions
	normalization string
	alpha         float64
	seed          uint64
	all           bool
}

func newDetectCmd() *cobra.Command {
	opts := &detectOptions{}

	cmd := &cobra.Command{
		Use:   "detect [text...]",
		Short: "Detect the language of text",
		Long: `Detects the language of the arguments, or of standard input when no
argument is given.`,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			text := strings.Join(args, " ")
			if len(args) == 0 {
				var b []byte
				if b, err = io.ReadAll(cmd.InOrStdin()); err != nil {
					return
				}
				text = string(b)
			}
			return runDetect(cmd, opts, text)
		},
	}

	opts.table.addFlags(cmd)
	cmd.Flags().StringVar(&opts.normalization, "normalization", "", "TOML normalization table (default: built-in)")
	cmd.Flags().Float64Var(&opts.alpha, "alpha", langdetect.DefaultAlpha, "smoothing parameter")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "random seed for reproducible results (default: random)")
	cmd.Flags().BoolVarP(&opts.all, "all", "a", false, "print every candidate language")
	return cmd
}

func runDetect(cmd *cobra.Command, opts *detectOptions, text string) (err error) {
	table, err := opts.table.load(cmd.Context())
	if err != nil {
		return
	}

	detectorOpts := []langdetect.Option{langdetect.WithAlpha(opts.alpha)}
	if cmd.Flags().Changed("seed") {
		detectorOpts = append(detectorOpts, langdetect.WithSeed(opts.seed))
	}
	if opts.normalization != "" {
		var n *langdetect.Normalizer
		if n, err = langdetect.LoadNormalizer(opts.normalization); err != nil {
			return
		}
		detectorOpts = append(detectorOpts, langdetect.WithNormalizer(n))
	}

	d := table.NewDetector(detectorOpts...)
	d.Append(text)

	out := cmd.OutOrStdout()
	if !opts.all {
		var lang string
		if lang, err = d.Detect(); err != nil {
			return
		}
		languageColor.Fprintln(out, lang)
		return
	}

	results, err := d.DetectAll()
	if err != nil {
		return
	}
	for i, r := range results {
		c := candidateColor
		if i == 0 {
			c = languageColor
		}
		c.Fprintf(out, "%-8s", r.Language)
		probabilityColor.Fprintf(out, " %.5f\n", r.Probability)
	}
	return
}
