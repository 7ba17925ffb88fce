package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/MrWong99/inquiro/internal/agent"
	"github.com/MrWong99/inquiro/internal/eval"
)

func newEvaluateCmd() *cobra.Command {
	var saveCatalogue bool

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Run the synthetic evaluation catalogue and write a report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = rt.shutdown(cmd.Context()) }()

			if saveCatalogue {
				path := filepath.Join(rt.cfg.Eval.OutputDir, "test_cases.json")
				if err := eval.SaveCatalogue(path); err != nil {
					return err
				}
				fmt.Printf("Test catalogue written to %s\n", path)
			}

			harness := eval.NewHarness(func() *agent.Agent {
				return rt.newSession()
			}, rt.cfg.Eval)

			report, err := harness.Run(cmd.Context())
			if err != nil {
				return err
			}

			path, err := report.Write(rt.cfg.Eval.OutputDir)
			if err != nil {
				return err
			}

			fmt.Println(report.Summary())
			fmt.Printf("Report written to %s\n", path)

			if report.FailedTests > 0 {
				return fmt.Errorf("%d of %d test cases failed", report.FailedTests, report.TotalTests)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&saveCatalogue, "save-catalogue", false, "also write the test catalogue JSON to the output directory")
	return cmd
}
