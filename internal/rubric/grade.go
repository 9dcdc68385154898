package rubric

// gradeScale is the institutional stepped conversion from an aggregate
// percentage to a 1.0-7.0 grade. Thresholds are checked in descending
// order; the greatest threshold <= the percentage wins. Percentages are
// clamped to [0,100] before conversion, so the table is total.
var gradeScale = []struct {
	threshold float64
	grade     float64
}{
	{100, 7.0}, {90, 6.5}, {80, 6.0}, {70, 5.5},
	{60, 5.0}, {50, 4.5}, {40, 4.0}, {30, 3.5},
	{20, 3.0}, {10, 2.0}, {0, 1.0},
}

// GradeFromPercent converts a percentage to the stepped 1.0-7.0 scale.
func GradeFromPercent(percent float64) float64 {
	for _, step := range gradeScale {
		if percent >= step.threshold {
			return step.grade
		}
	}
	return 1.0
}

// PassingGrade is the minimum grade for APROBADO status.
const PassingGrade = 4.0
