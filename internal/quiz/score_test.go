package quiz

import (
	"reflect"
	"testing"
)

func scoringQuiz(n int) *MCQQuiz {
	quiz := &MCQQuiz{
		QuizID:     "quiz-1",
		Subject:    "Mathematics",
		Topic:      "derivatives",
		Difficulty: DifficultyMedium,
	}
	for range n {
		quiz.Questions = append(quiz.Questions, MCQQuestion{
			Question:     "pick the right one",
			Options:      []string{"right", "wrong", "worse", "worst"},
			CorrectIndex: 0,
			Explanation:  "first is right",
		})
	}
	return quiz
}

func TestScoreMixedAnswers(t *testing.T) {
	quiz := scoringQuiz(5)
	// Correct on questions 0, 2, 4; wrong on 1 and 3.
	selections := []string{"right", "wrong", "right", "worse", "right"}

	res := Score("sess-1", quiz, selections)

	if res.SessionID != "sess-1" || res.QuizID != "quiz-1" {
		t.Errorf("identity = %q/%q", res.SessionID, res.QuizID)
	}
	if res.TotalQuestions != 5 {
		t.Errorf("total = %d, want 5", res.TotalQuestions)
	}
	if res.CorrectAnswers != 3 {
		t.Errorf("correct = %d, want 3", res.CorrectAnswers)
	}
	if want := []int{1, 3}; !reflect.DeepEqual(res.IncorrectIndices, want) {
		t.Errorf("incorrect indices = %v, want %v", res.IncorrectIndices, want)
	}
	if want := []int{0, 1, 0, 2, 0}; !reflect.DeepEqual(res.SelectedIndices, want) {
		t.Errorf("selected indices = %v, want %v", res.SelectedIndices, want)
	}
}

func TestScoreUnansweredAndUnknownSelections(t *testing.T) {
	quiz := scoringQuiz(3)
	// Blank, not an option at all, and short of the question count.
	selections := []string{"", "no such option"}

	res := Score("sess-1", quiz, selections)

	if res.CorrectAnswers != 0 {
		t.Errorf("correct = %d, want 0", res.CorrectAnswers)
	}
	if want := []int{-1, -1, -1}; !reflect.DeepEqual(res.SelectedIndices, want) {
		t.Errorf("selected indices = %v, want %v", res.SelectedIndices, want)
	}
	if want := []int{0, 1, 2}; !reflect.DeepEqual(res.IncorrectIndices, want) {
		t.Errorf("incorrect indices = %v, want %v", res.IncorrectIndices, want)
	}
}

func TestScorePerfect(t *testing.T) {
	quiz := scoringQuiz(3)
	res := Score("sess-1", quiz, []string{"right", "right", "right"})

	if res.CorrectAnswers != 3 {
		t.Errorf("correct = %d, want 3", res.CorrectAnswers)
	}
	if len(res.IncorrectIndices) != 0 {
		t.Errorf("incorrect indices = %v, want empty", res.IncorrectIndices)
	}
	if res.IncorrectIndices == nil {
		t.Error("incorrect indices should marshal as [], not null")
	}
}
