package quiz

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Store persists quizzes and graded results as JSON files keyed by
// "<session_id>__<quiz_id>.json" under separate directories.
type Store struct {
	quizzesDir string
	resultsDir string
}

// NewStore creates a quiz store rooted at baseDir.
func NewStore(baseDir string) (*Store, error) {
	s := &Store{
		quizzesDir: filepath.Join(baseDir, "quizzes"),
		resultsDir: filepath.Join(baseDir, "quiz_results"),
	}
	for _, dir := range []string{s.quizzesDir, s.resultsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create quiz directory: %w", err)
		}
	}
	return s, nil
}

func recordName(sessionID, quizID string) string {
	return sessionID + "__" + quizID + ".json"
}

// SaveQuiz persists a generated quiz for the session.
func (s *Store) SaveQuiz(sessionID string, quiz *MCQQuiz) error {
	payload, err := json.MarshalIndent(quiz, "", "  ")
	if err != nil {
		return fmt.Errorf("encode quiz %s: %w", quiz.QuizID, err)
	}
	path := filepath.Join(s.quizzesDir, recordName(sessionID, quiz.QuizID))
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("save quiz %s: %w", quiz.QuizID, err)
	}
	return nil
}

// LoadQuiz reads a stored quiz.
func (s *Store) LoadQuiz(sessionID, quizID string) (*MCQQuiz, error) {
	raw, err := os.ReadFile(filepath.Join(s.quizzesDir, recordName(sessionID, quizID)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ErrNotFound{SessionID: sessionID, QuizID: quizID}
		}
		return nil, fmt.Errorf("read quiz %s: %w", quizID, err)
	}
	var quiz MCQQuiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return nil, fmt.Errorf("decode quiz %s: %w", quizID, err)
	}
	return &quiz, nil
}

// SaveResult persists one graded attempt.
func (s *Store) SaveResult(result *Result) error {
	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result %s: %w", result.QuizID, err)
	}
	path := filepath.Join(s.resultsDir, recordName(result.SessionID, result.QuizID))
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("save result %s: %w", result.QuizID, err)
	}
	return nil
}

// ListResults enumerates stored results, optionally filtered by session
// id (empty string means all). Order follows the lexicographic storage
// layout; unreadable files are skipped.
func (s *Store) ListResults(sessionID string) ([]Result, error) {
	entries, err := os.ReadDir(s.resultsDir)
	if err != nil {
		return nil, fmt.Errorf("list quiz results: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var results []Result
	for _, name := range names {
		raw, err := os.ReadFile(filepath.Join(s.resultsDir, name))
		if err != nil {
			continue
		}
		var res Result
		if err := json.Unmarshal(raw, &res); err != nil {
			continue
		}
		if sessionID != "" && res.SessionID != sessionID {
			continue
		}
		results = append(results, res)
	}
	return results, nil
}
