package vad

// ScriptedScorer replays a fixed sequence of scores, repeating the last
// one once the script is exhausted. Intended for tests.
type ScriptedScorer struct {
	Scores []float64
	next   int
}

func (s *ScriptedScorer) Score(_ []float32) (float64, error) {
	if len(s.Scores) == 0 {
		return 0, nil
	}
	if s.next >= len(s.Scores) {
		return s.Scores[len(s.Scores)-1], nil
	}
	score := s.Scores[s.next]
	s.next++
	return score, nil
}
