package ragjudge

// Summary counts verdicts for one group of records.
type Summary struct {
	Correct   int `json:"number of samples correct"`
	Incorrect int `json:"number of samples incorrect"`
	Unscored  int `json:"number of samples unscored"`
	Total     int `json:"number of samples"`
}

// Add counts one verdict. A nil verdict counts as unscored.
func (s *Summary) Add(v *Verdict) {
	s.Total++
	switch {
	case v == nil:
		s.Unscored++
	case v.Score == ScoreCorrect:
		s.Correct++
	case v.Score == ScoreIncorrect:
		s.Incorrect++
	default:
		s.Unscored++
	}
}

// Accuracy returns the fraction of records judged correct, or 0 for an
// empty group.
func (s Summary) Accuracy() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Total)
}

// Summarize counts verdicts per group.
func Summarize(d Dataset) map[string]Summary {
	out := make(map[string]Summary, len(d))
	for group, records := range d {
		var s Summary
		for _, r := range records {
			s.Add(r.Response)
		}
		out[group] = s
	}
	return out
}

// Total sums the summaries of every group.
func Total(summaries map[string]Summary) Summary {
	var t Summary
	for _, s := range summaries {
		t.Correct += s.Correct
		t.Incorrect += s.Incorrect
		t.Unscored += s.Unscored
		t.Total += s.Total
	}
	return t
}
