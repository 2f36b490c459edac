package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [dir...]",
		Short: "Validate definition YAML files (the built-in catalog when no dir is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{""}
			}
			for _, dir := range args {
				cat, err := openCatalog(dir)
				if err != nil {
					return err
				}
				for _, d := range cat.List() {
					fmt.Fprintf(cmd.OutOrStdout(), "ok  %-20s %d questions, %d bands\n", d.ID, len(d.Questions), len(d.Bands))
				}
			}
			return nil
		},
	}
}
