package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"aardd/internal/app"
	"aardd/internal/dict"
)

func newLookupCmd(opts *options) *cobra.Command {
	var (
		limit     int
		preferred string
	)
	cmd := &cobra.Command{
		Use:     "lookup QUERY",
		Short:   "Look up a word in the configured dictionaries",
		Example: "  aardd lookup serendipity\n  aardd lookup --preferred wordnet-3.1 apple",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			acfg, err := appConfig(opts.cfg, opts.log)
			if err != nil {
				return err
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
			query := strings.Join(args, " ")

			var entries []dict.Entry
			if cmd.Flags().Changed("preferred") {
				if entries, err = a.FindIn(ctx, query, preferred); err != nil {
					return err
				}
			} else {
				res, err := a.LookupSync(ctx, query)
				if err != nil {
					return err
				}
				entries = res.Entries(limit)
				if err := res.Err(); err != nil {
					return err
				}
			}
			out := cmd.OutOrStdout()
			for _, e := range entries {
				fmt.Fprintf(out, "%s\t%s\t%s\n", e.Key, e.SourceID, a.ContentURL(e))
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "no matches")
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum entries to print")
	cmd.Flags().StringVar(&preferred, "preferred", "", "Run a preferred lookup consulting this dictionary first")
	return cmd
}
