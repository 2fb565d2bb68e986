package quiz

// Score grades one quiz attempt. selections holds the chosen option
// text per question, aligned positionally with quiz.Questions; an empty
// string (or a missing entry) means unanswered. The selected option is
// resolved to its index within that question's option list, -1 when
// unanswered or not found; a question counts correct only when the
// resolved index equals the declared correct_index.
func Score(sessionID string, quiz *MCQQuiz, selections []string) *Result {
	res := &Result{
		SessionID:        sessionID,
		QuizID:           quiz.QuizID,
		Topic:            quiz.Topic,
		TotalQuestions:   len(quiz.Questions),
		SelectedIndices:  make([]int, 0, len(quiz.Questions)),
		IncorrectIndices: []int{},
	}

	for i, q := range quiz.Questions {
		resolved := -1
		if i < len(selections) && selections[i] != "" {
			for j, opt := range q.Options {
				if opt == selections[i] {
					resolved = j
					break
				}
			}
		}
		res.SelectedIndices = append(res.SelectedIndices, resolved)

		if resolved >= 0 && resolved == q.CorrectIndex {
			res.CorrectAnswers++
		} else {
			res.IncorrectIndices = append(res.IncorrectIndices, i)
		}
	}

	return res
}
