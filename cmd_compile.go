package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newCompileCmd() *cobra.Command {
	var (
		table tableOptions
		out   string
	)

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile language profiles into a table snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if table.snapshot != "" {
				return fmt.Errorf("compile reads --profiles, not --table")
			}
			t, err := table.load(cmd.Context())
			if err != nil {
				return
			}

			f, err := os.Create(out)
			if err != nil {
				return
			}
			if err = t.WriteSnapshot(f); err != nil {
				f.Close()
				return
			}
			if err = f.Close(); err != nil {
				return
			}

			logrus.Infof("wrote %d languages, %d n-grams to '%s'", t.NumLanguages(), t.Len(), out)
			languageColor.Fprintln(cmd.OutOrStdout(), out)
			return
		},
	}

	table.addFlags(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "table.msgpack", "output file")
	return cmd
}
