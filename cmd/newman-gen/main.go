// Command newman-gen writes the newman registration table of a Go package.
//
//	//go:generate go run github.com/scbrown/newman/cmd/newman-gen
package main

import (
	"fmt"
	"os"

	"github.com/scbrown/newman/internal/gen"
	"github.com/spf13/cobra"
)

func main() {
	var opts gen.Options
	root := &cobra.Command{
		Use:   "newman-gen",
		Short: "Generate the newman table for a Go package",
		Long: `newman-gen reads the exported functions of the package in --dir and writes
a newman.Module table describing their parameters, defaults and docs.

Defaults are declared in doc comments:

	//newman:default precision=2
	func Divide(a, b float64, precision int) (float64, error)

Functions marked //newman:skip are left out.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := gen.Run(opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	root.Flags().StringVar(&opts.Dir, "dir", ".", "package directory")
	root.Flags().StringVar(&opts.Out, "out", gen.DefaultOut, "output file name inside --dir")
	root.Flags().StringVar(&opts.Var, "var", gen.DefaultVar, "name of the generated variable")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "newman-gen:", err)
		os.Exit(1)
	}
}
