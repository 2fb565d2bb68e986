package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/sokrates/internal/quiz"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Generate and take a quiz for a session",
	Long: "Generates a multiple-choice quiz from the session's conversation, runs it " +
		"interactively, scores the answers, and offers a remediation lesson for mistakes.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		d, err := buildDeps(ctx, cmd)
		if err != nil {
			return err
		}
		defer d.closeEvents()

		sessionID, _ := cmd.Flags().GetString("session")
		topic, _ := cmd.Flags().GetString("topic")
		num, _ := cmd.Flags().GetInt("num")
		difficulty, _ := cmd.Flags().GetString("difficulty")

		sess, err := d.sessions.Load(sessionID)
		if err != nil {
			return err
		}

		quizStore, err := quiz.NewStore(d.dataDir)
		if err != nil {
			return err
		}

		gen := quiz.NewGenerator(d.provider)
		q, err := gen.Generate(ctx, sess.Subject, topic, sess.Messages, num, quiz.Difficulty(difficulty))
		if err != nil {
			return err
		}

		if err := quizStore.SaveQuiz(sess.ID, q); err != nil {
			return err
		}

		if q.Meta != nil && !q.Meta.TopicUsed {
			fmt.Printf("Note: topic %q was not used. %s\n\n", topic, q.Meta.IgnoredReason)
		}

		selections := runQuiz(q)
		result := quiz.Score(sess.ID, q, selections)

		// Best-effort: a failed result save must not hide the score.
		if err := quizStore.SaveResult(result); err != nil {
			fmt.Fprintln(os.Stderr, "warning: could not save quiz result:", err)
		}

		fmt.Printf("\nScore: %d/%d\n", result.CorrectAnswers, result.TotalQuestions)
		if len(result.IncorrectIndices) == 0 {
			fmt.Println("Perfect score, nothing to review.")
			return nil
		}

		fmt.Println("\nPreparing a short review of what you missed...")
		rem := quiz.NewRemediator(d.provider)
		lesson, err := rem.Generate(ctx, sess.Subject, topic, q, result.IncorrectIndices, sess.Language)
		if err != nil {
			return err
		}
		fmt.Println("\n" + lesson)
		return nil
	},
}

func init() {
	quizCmd.Flags().String("session", "", "Session id to quiz on (required)")
	quizCmd.Flags().String("topic", "", "Quiz topic")
	quizCmd.Flags().Int("num", 5, "Number of questions (3-10)")
	quizCmd.Flags().String("difficulty", "medium", "Difficulty: easy, medium, or hard")
	quizCmd.MarkFlagRequired("session")

	quizResultsCmd.Flags().String("session", "", "Filter results by session id")

	quizRetakeCmd.Flags().String("session", "", "Session id the quiz belongs to (required)")
	quizRetakeCmd.Flags().String("quiz", "", "Quiz id to retake (required)")
	quizRetakeCmd.MarkFlagRequired("session")
	quizRetakeCmd.MarkFlagRequired("quiz")

	quizCmd.AddCommand(quizResultsCmd)
	quizCmd.AddCommand(quizRetakeCmd)
}

// runQuiz asks each question on stdin and returns the chosen option
// text per question ("" = unanswered).
func runQuiz(q *quiz.MCQQuiz) []string {
	scanner := bufio.NewScanner(os.Stdin)
	selections := make([]string, len(q.Questions))

	for i, question := range q.Questions {
		fmt.Printf("\n%d) %s\n", i+1, question.Question)
		for j, opt := range question.Options {
			fmt.Printf("   %d. %s\n", j+1, opt)
		}
		fmt.Print("answer (number, empty to skip)> ")
		if !scanner.Scan() {
			break
		}
		choice, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err != nil || choice < 1 || choice > len(question.Options) {
			continue
		}
		selections[i] = question.Options[choice-1]
	}
	return selections
}

var quizResultsCmd = &cobra.Command{
	Use:   "results",
	Short: "List stored quiz results",
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")

		dataDir, err := resolveDataDir(cmd)
		if err != nil {
			return err
		}
		quizStore, err := quiz.NewStore(dataDir)
		if err != nil {
			return err
		}

		results, err := quizStore.ListResults(sessionID)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Println("No quiz results found.")
			return nil
		}

		fmt.Printf("%-32s  %-32s  %-20s  %s\n", "SESSION", "QUIZ", "TOPIC", "SCORE")
		for _, r := range results {
			fmt.Printf("%-32s  %-32s  %-20s  %d/%d\n",
				r.SessionID, r.QuizID, r.Topic, r.CorrectAnswers, r.TotalQuestions)
		}
		return nil
	},
}

var quizRetakeCmd = &cobra.Command{
	Use:   "retake",
	Short: "Retake a previously generated quiz",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		d, err := buildDeps(ctx, cmd)
		if err != nil {
			return err
		}
		defer d.closeEvents()

		sessionID, _ := cmd.Flags().GetString("session")
		quizID, _ := cmd.Flags().GetString("quiz")

		sess, err := d.sessions.Load(sessionID)
		if err != nil {
			return err
		}

		quizStore, err := quiz.NewStore(d.dataDir)
		if err != nil {
			return err
		}
		q, err := quizStore.LoadQuiz(sessionID, quizID)
		if err != nil {
			return err
		}

		selections := runQuiz(q)
		result := quiz.Score(sess.ID, q, selections)

		if err := quizStore.SaveResult(result); err != nil {
			fmt.Fprintln(os.Stderr, "warning: could not save quiz result:", err)
		}

		fmt.Printf("\nScore: %d/%d\n", result.CorrectAnswers, result.TotalQuestions)
		if len(result.IncorrectIndices) == 0 {
			fmt.Println("Perfect score, nothing to review.")
			return nil
		}

		fmt.Println("\nPreparing a short review of what you missed...")
		rem := quiz.NewRemediator(d.provider)
		lesson, err := rem.Generate(ctx, sess.Subject, q.Topic, q, result.IncorrectIndices, sess.Language)
		if err != nil {
			return err
		}
		fmt.Println("\n" + lesson)
		return nil
	},
}
