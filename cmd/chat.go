package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/sokrates/internal/llm"
	"github.com/abhisek/sokrates/internal/session"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start or resume a tutoring session",
	Long: "Starts a new tutoring session (or resumes one with --session) and runs an " +
		"interactive prompt. Type your questions; an empty line or \"exit\" ends the chat.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		d, err := buildDeps(ctx, cmd)
		if err != nil {
			return err
		}
		defer d.closeEvents()

		subject, _ := cmd.Flags().GetString("subject")
		goal, _ := cmd.Flags().GetString("goal")
		language, _ := cmd.Flags().GetString("language")
		sessionID, _ := cmd.Flags().GetString("session")
		search, _ := cmd.Flags().GetBool("search")
		reuse, _ := cmd.Flags().GetBool("reuse")

		var sess *session.Session
		switch {
		case sessionID != "":
			sess, err = d.sessions.Load(sessionID)
			if err != nil {
				return err
			}
		default:
			if reuse {
				id, err := d.sessions.FindBySubjectGoal(subject, goal)
				if err != nil {
					return err
				}
				if id != "" {
					sess, err = d.sessions.Load(id)
					if err != nil {
						return err
					}
				}
			}
			if sess == nil {
				sess, err = d.orch.StartSession(ctx, subject, goal, language)
				if err != nil {
					return err
				}
				fmt.Printf("Session %s started (%s)\n\n", sess.ID, sess.Subject)
			}
		}

		printTranscript(sess)

		if search && !d.search.IsConfigured() {
			fmt.Fprintln(os.Stderr, "note: TAVILY_API_KEY is not set, web search disabled")
			search = false
		}

		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for {
			fmt.Print("you> ")
			if !scanner.Scan() {
				break
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" || line == "exit" {
				break
			}

			sess, err = d.orch.ContinueSession(ctx, sess.ID, line, search)
			if err != nil {
				fmt.Fprintln(os.Stderr, "error:", err)
				continue
			}
			if last := lastAssistant(sess); last != "" {
				fmt.Printf("\ntutor> %s\n\n", last)
			}
		}
		return scanner.Err()
	},
}

func init() {
	chatCmd.Flags().String("subject", "Mathematics", "Subject to tutor")
	chatCmd.Flags().String("goal", "", "Optional learning goal")
	chatCmd.Flags().String("language", "en", "Session language tag")
	chatCmd.Flags().String("session", "", "Resume an existing session by id")
	chatCmd.Flags().Bool("search", false, "Augment answers with Tavily web findings")
	chatCmd.Flags().Bool("reuse", false, "Reuse an existing session with the same subject and goal")
}

func printTranscript(sess *session.Session) {
	for _, m := range sess.Messages {
		switch m.Role {
		case llm.RoleUser:
			fmt.Printf("you> %s\n\n", m.Content)
		case llm.RoleAssistant:
			fmt.Printf("tutor> %s\n\n", m.Content)
		}
	}
}

func lastAssistant(sess *session.Session) string {
	for i := len(sess.Messages) - 1; i >= 0; i-- {
		if sess.Messages[i].Role == llm.RoleAssistant {
			return sess.Messages[i].Content
		}
	}
	return ""
}
