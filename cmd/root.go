package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abhisek/sokrates/internal/eventlog"
	"github.com/abhisek/sokrates/internal/llm"
	"github.com/abhisek/sokrates/internal/session"
	"github.com/abhisek/sokrates/internal/tutor"
	"github.com/abhisek/sokrates/internal/websearch"
)

var rootCmd = &cobra.Command{
	Use:           "sokrates",
	Short:         "Socratic AI tutoring sessions in your terminal",
	Long:          "Sokrates is a conversational AI tutor with persistent sessions, web-augmented answers, and quiz-based checkups.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("data", "", "Path to the data directory (overrides SOKRATES_DATA)")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(transcribeCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDataDir returns the data directory using --data (highest
// priority), then SOKRATES_DATA, then the default XDG path.
func resolveDataDir(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("data"); p != "" {
		return p, nil
	}
	return session.DefaultDataDir()
}

// deps bundles everything a command needs to run tutoring operations.
type deps struct {
	dataDir  string
	sessions *session.Store
	events   eventlog.Repo
	provider llm.Provider
	search   *websearch.Client
	orch     *tutor.Orchestrator

	closeEvents func()
}

// buildDeps wires the stores, event log, provider, and orchestrator.
// The event log is best-effort: on failure events are dropped with a
// warning.
func buildDeps(ctx context.Context, cmd *cobra.Command) (*deps, error) {
	dataDir, err := resolveDataDir(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve data directory: %w", err)
	}

	sessions, err := session.NewStore(filepath.Join(dataDir, "sessions"))
	if err != nil {
		return nil, err
	}

	d := &deps{
		dataDir:     dataDir,
		sessions:    sessions,
		events:      eventlog.Nop(),
		closeEvents: func() {},
	}

	if repo, err := eventlog.Open(filepath.Join(dataDir, "events.db")); err != nil {
		fmt.Fprintf(os.Stderr, "warning: event log unavailable: %v\n", err)
	} else {
		d.events = repo
		d.closeEvents = func() { repo.Close() }
	}

	provider, err := llm.NewProviderFromEnv(ctx, d.events)
	if err != nil {
		d.closeEvents()
		return nil, err
	}
	d.provider = provider

	d.search = websearch.NewClientFromEnv()
	d.orch = tutor.New(sessions, provider, d.search)
	return d, nil
}
