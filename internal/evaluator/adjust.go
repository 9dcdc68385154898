package evaluator

import "github.com/vmonsalve/rubrica/internal/evidence"

// Minimum dataset count expected under the raw data directory; each
// missing dataset costs a penalty unit.
const (
	rawDataDir       = "data/01_raw/"
	minRawDatasets   = 3
	datasetPenalty   = 10.0
	vizBonus         = 3.0
	testsBonus       = 5.0
	structurePenalty = 20.0
)

// ComputeAdjustments derives the named bonus and penalty deltas from the
// repository snapshot. Deltas are percentage points; they apply once per
// evaluation, after criterion weighting and before clamping.
func ComputeAdjustments(snap *evidence.Snapshot) []Adjustment {
	var adj []Adjustment

	if snap.HasPathContaining("kedro-viz", "kedro_viz") {
		adj = append(adj, Adjustment{Name: "kedro_viz", Delta: vizBonus})
	}

	if snap.HasDirectory("tests") || snap.HasPathContaining("test_", "_test.") {
		adj = append(adj, Adjustment{Name: "tests_unitarios", Delta: testsBonus})
	}

	if missing := minRawDatasets - snap.CountFilesUnder(rawDataDir); missing > 0 {
		adj = append(adj, Adjustment{
			Name:  "datasets_faltantes",
			Delta: -datasetPenalty * float64(missing),
		})
	}

	if !snap.HasDirectory("src") && !snap.HasDirectory("conf") {
		adj = append(adj, Adjustment{Name: "sin_estructura_ejecutable", Delta: -structurePenalty})
	}

	return adj
}
