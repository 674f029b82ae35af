package catalog

import "sort"

// Grade devuelve la letra de la banda que contiene el score.
// Scores fuera de [0,100] se acotan antes de buscar.
func (s ScoringConfig) Grade(score float64) string {
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	bands := s.sortedGrades()
	for _, b := range bands {
		if score >= b.Min {
			return b.Letter
		}
	}
	return bands[len(bands)-1].Letter
}

// GradeMin devuelve el límite inferior inclusivo de una letra.
func (s ScoringConfig) GradeMin(letter string) (float64, bool) {
	for _, b := range s.Grades {
		if b.Letter == letter {
			return b.Min, true
		}
	}
	return 0, false
}

func (s ScoringConfig) sortedGrades() []GradeBand {
	bands := append([]GradeBand(nil), s.Grades...)
	sort.Slice(bands, func(i, j int) bool { return bands[i].Min > bands[j].Min })
	return bands
}
