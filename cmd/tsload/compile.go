package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tsload/internal/buildpipeline"
	"tsload/internal/diag"
	"tsload/internal/engine/esbuild"
	"tsload/internal/modformat"
)

func newCompileCmd() *cobra.Command {
	var (
		hintFlag   string
		outputPath string
		showFormat bool
	)
	cmd := &cobra.Command{
		Use:   "compile <file>",
		Short: "Transpile one TypeScript file and print the JavaScript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer s.finish()

			hint, err := modformat.Parse(hintFlag)
			if err != nil {
				return err
			}

			p := buildpipeline.New(esbuild.New(), s.cfg.Loader, s.pipelineOptions()...)
			out, err := p.Compile(cmd.Context(), args[0], hint)
			if err != nil {
				var perr *buildpipeline.Error
				if errors.As(err, &perr) {
					fmt.Fprint(cmd.ErrOrStderr(), perr.Format(diag.FormatOptions{Pretty: true, Color: s.useColor}))
					return errReported
				}
				return err
			}

			if showFormat {
				fmt.Fprintf(cmd.ErrOrStderr(), "format: %s\n", out.Format)
			}
			if outputPath != "" {
				return os.WriteFile(outputPath, []byte(out.Source), 0o644)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out.Source)
			return err
		},
	}
	cmd.Flags().StringVar(&hintFlag, "format", "", "module format to use when tsconfig leaves it open (module|commonjs)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "write JavaScript to this file instead of stdout")
	cmd.Flags().BoolVar(&showFormat, "show-format", false, "print the chosen module format to stderr")
	return cmd
}
