package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/sokrates/internal/eventlog"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded LLM request events",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM events",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		dataDir, err := resolveDataDir(cmd)
		if err != nil {
			return err
		}

		repo, err := eventlog.Open(filepath.Join(dataDir, "events.db"))
		if err != nil {
			return err
		}
		defer repo.Close()

		events, err := repo.Recent(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Println("No LLM events found.")
			return nil
		}

		fmt.Printf("%-5s  %-19s  %-14s  %-28s  %-6s  %-6s  %-7s  %s\n",
			"ID", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
		fmt.Println(strings.Repeat("-", 100))

		for _, e := range events {
			if purpose != "" && e.Purpose != purpose {
				continue
			}
			ok := "yes"
			if !e.Success {
				ok = "no"
			}
			model := e.Model
			if len(model) > 28 {
				model = model[:28]
			}
			fmt.Printf("%-5d  %-19s  %-14s  %-28s  %-6d  %-6d  %-7d  %s\n",
				e.ID,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Purpose,
				model,
				e.InputTokens,
				e.OutputTokens,
				e.LatencyMs,
				ok,
			)
		}
		return nil
	},
}

func init() {
	llmListCmd.Flags().Int("limit", 50, "Maximum events to show")
	llmListCmd.Flags().String("purpose", "", "Filter by purpose label")
	llmCmd.AddCommand(llmListCmd)
}
