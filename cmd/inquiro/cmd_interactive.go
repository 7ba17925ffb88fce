package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// historyTurns is how many recent turns the in-loop history command prints.
const historyTurns = 5

func newInteractiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Start an interactive research session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = rt.shutdown(cmd.Context()) }()

			session := rt.newSession()
			printStartupSummary(rt.cfg)
			fmt.Println("Type a question, or 'clear', 'history', 'quit'.")

			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					break
				}
				line := strings.TrimSpace(scanner.Text())

				switch strings.ToLower(line) {
				case "":
					continue
				case "quit", "exit":
					fmt.Println("Goodbye.")
					return nil
				case "clear":
					session.Reset()
					fmt.Println("Conversation memory cleared.")
					continue
				case "history":
					turns := session.Memory().Recent(historyTurns)
					if len(turns) == 0 {
						fmt.Println("No conversation history yet.")
						continue
					}
					for _, t := range turns {
						fmt.Printf("[%d] You: %s\n", t.Seq, t.Query)
						fmt.Printf("[%d] Inquiro: %s\n", t.Seq, t.Response)
					}
					continue
				}

				out := session.ProcessQuery(cmd.Context(), line)
				printResult(out)
			}
			return scanner.Err()
		},
	}
}
