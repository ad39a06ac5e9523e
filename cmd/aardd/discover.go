package main

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"aardd/internal/app"
)

func newDiscoverCmd(opts *options) *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:     "discover",
		Short:   "Replace the dictionary list with the dictionaries found in the dictionary directories",
		Example: "  aardd discover --dict-dir ~/dictionaries",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(opts.cfg.DictionaryDirs) == 0 {
				return fmt.Errorf("no dictionary directories configured (use --dict-dir)")
			}
			acfg, err := appConfig(opts.cfg, opts.log)
			if err != nil {
				return err
			}
			var bar *progressbar.ProgressBar
			if !quiet {
				bar = progressbar.NewOptions(-1,
					progressbar.OptionSetDescription("Scanning"),
					progressbar.OptionSetWriter(cmd.ErrOrStderr()),
					progressbar.OptionSpinnerType(14),
					progressbar.OptionShowCount(),
					progressbar.OptionClearOnFinish(),
				)
				acfg.ScanProgress = func(string) { _ = bar.Add(1) }
			}
			a, err := app.NewWithConfig(acfg)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()
			if err := a.Start(ctx, nil); err != nil {
				return err
			}

			type outcome struct {
				added int
				err   error
			}
			done := make(chan outcome, 1)
			if err := a.FindSources(ctx, func(added int, err error) { done <- outcome{added, err} }); err != nil {
				return err
			}
			var o outcome
			select {
			case o = <-done:
			case <-ctx.Done():
				return ctx.Err()
			}
			if bar != nil {
				_ = bar.Finish()
			}
			if o.err != nil {
				return o.err
			}
			out := cmd.OutOrStdout()
			for _, d := range a.Descriptors() {
				fmt.Fprintf(out, "%s\t%s\t%s\n", d.ID, d.Label, d.Path)
			}
			fmt.Fprintf(out, "%d dictionaries\n", o.added)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not show the progress spinner")
	return cmd
}
