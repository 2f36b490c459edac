package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mind-engage/mindengage-selfcheck/internal/assessment"
	"github.com/mind-engage/mindengage-selfcheck/internal/catalog"
)

func newScoreCmd() *cobra.Command {
	var (
		assessmentID string
		responses    string
		catalogDir   string
	)
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a responses JSON file against an assessment and print the result",
		Example: `  selfcheckd score --assessment adhd --responses answers.json
  echo '{"adhd-1":"Often"}' | selfcheckd score -a adhd -r -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := openCatalog(catalogDir)
			if err != nil {
				return err
			}
			def, err := cat.Get(assessmentID)
			if err != nil {
				return err
			}
			resp, err := readResponses(cmd.InOrStdin(), responses)
			if err != nil {
				return err
			}
			res, err := assessment.Compute(def, resp)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	cmd.Flags().StringVarP(&assessmentID, "assessment", "a", "", "assessment id")
	cmd.Flags().StringVarP(&responses, "responses", "r", "-", "responses JSON file, - for stdin")
	cmd.Flags().StringVar(&catalogDir, "catalog", "", "directory of definition YAML files (default: built-in catalog)")
	_ = cmd.MarkFlagRequired("assessment")
	return cmd
}

func openCatalog(dir string) (*catalog.Catalog, error) {
	if dir == "" {
		return catalog.Builtin()
	}
	return catalog.Load(os.DirFS(dir))
}

func readResponses(stdin io.Reader, file string) (assessment.Responses, error) {
	var r io.Reader = stdin
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var resp assessment.Responses
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, fmt.Errorf("read responses: %w", err)
	}
	return resp, nil
}
