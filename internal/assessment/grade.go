package assessment

// Grade scores answers with an all-or-nothing bar: the attempt passes only
// when every answer selects the correct label. An empty attempt fails.
func Grade(answers []Answer) Result {
	res := Result{
		Total:   len(answers),
		Attempt: make([]AttemptItem, 0, len(answers)),
	}
	for _, a := range answers {
		right := a.Selected != "" && a.Selected == a.Correct
		if right {
			res.CorrectCount++
		}
		res.Attempt = append(res.Attempt, AttemptItem{
			Question: a.Question,
			Selected: a.Selected,
			Correct:  a.Correct,
			IsRight:  right,
		})
	}
	res.Passed = res.Total > 0 && res.CorrectCount == res.Total
	return res
}
