package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abhisek/sokrates/internal/session"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage saved tutoring sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSessionStore(cmd)
		if err != nil {
			return err
		}

		items, err := store.List()
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Println("No saved sessions.")
			return nil
		}

		fmt.Printf("%-32s  %-16s  %s\n", "ID", "SUBJECT", "GOAL")
		for _, it := range items {
			fmt.Printf("%-32s  %-16s  %s\n", it.ID, it.Subject, it.Goal)
		}
		return nil
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a session by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSessionStore(cmd)
		if err != nil {
			return err
		}

		existed, err := store.Delete(args[0])
		if err != nil {
			return err
		}
		if !existed {
			fmt.Println("No such session:", args[0])
			return nil
		}
		fmt.Println("Deleted", args[0])
		return nil
	},
}

func init() {
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
}

func openSessionStore(cmd *cobra.Command) (*session.Store, error) {
	dataDir, err := resolveDataDir(cmd)
	if err != nil {
		return nil, err
	}
	return session.NewStore(filepath.Join(dataDir, "sessions"))
}
