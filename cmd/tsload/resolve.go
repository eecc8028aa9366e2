package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"tsload/internal/hooks"
)

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <specifier> <parent>",
		Short: "Show where an import from a TypeScript file resolves to",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer s.finish()

			chain, err := s.chain()
			if err != nil {
				return err
			}
			parent, err := filepath.Abs(args[1])
			if err != nil {
				return err
			}
			res, err := chain.Resolve(cmd.Context(), args[0], hooks.ResolveContext{ParentURL: hooks.PathToFileURL(parent)})
			if err != nil {
				return err
			}

			target := res.URL
			if p, err := hooks.FileURLToPath(res.URL); err == nil {
				target = p
			}
			if res.Format != "" {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", target, res.Format)
			} else {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), target)
			}
			return err
		},
	}
}
