package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MrWong99/inquiro/internal/agent"
)

func newQueryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query <text>",
		Short: "Ask a single research question and print the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = rt.shutdown(cmd.Context()) }()

			session := rt.newSession()
			out := session.ProcessQuery(cmd.Context(), strings.Join(args, " "))
			printResult(out)
			return nil
		},
	}
}

// printResult renders one agent result for terminal output.
func printResult(out *agent.Result) {
	resp := out.Response
	fmt.Printf("\n%s\n", resp.Text)
	if len(resp.Citations) > 0 {
		fmt.Println("\nSources:")
		for i, src := range resp.Citations {
			fmt.Printf("%d. %s\n", i+1, src)
		}
	}
	fmt.Printf("\n[confidence: %.2f", resp.Confidence)
	if len(resp.ToolsUsed) > 0 {
		fmt.Printf(", tools: %s", strings.Join(resp.ToolsUsed, ", "))
	}
	if resp.Degraded {
		fmt.Print(", degraded")
	}
	fmt.Printf(", %.2fs]\n", resp.Latency.Seconds())
}
