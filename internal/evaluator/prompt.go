package evaluator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vmonsalve/rubrica/internal/evidence"
	"github.com/vmonsalve/rubrica/internal/rubric"
)

const systemPrompt = "Eres un evaluador académico experto en proyectos de " +
	"Machine Learning con Kedro y metodología CRISP-DM. Evalúas con rigor, " +
	"citando evidencia concreta del repositorio, y respondes únicamente con " +
	"el JSON solicitado."

// Rendering caps keep the prompt bounded for large repositories. The
// file list is sorted first, so truncation is deterministic.
const (
	maxPromptDirs  = 40
	maxPromptFiles = 80
)

// buildCriterionPrompt renders the user prompt for one criterion: the
// criterion's levels with their grade equivalents, the evidence hints,
// and a bounded factual summary of the repository snapshot.
func buildCriterionPrompt(c rubric.Criterion, snap *evidence.Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Evalúa el siguiente criterio de la rúbrica para el proyecto %q.\n\n", snap.Name)
	fmt.Fprintf(&b, "CRITERIO: %s\n", c.Name)
	if c.Description != "" {
		fmt.Fprintf(&b, "DESCRIPCIÓN: %s\n", c.Description)
	}
	fmt.Fprintf(&b, "PESO: %.0f%% de la nota final\n\n", c.Weight*100)

	b.WriteString("NIVELES DE LOGRO:\n")
	levels := make([]int, 0, len(c.Levels))
	for pct := range c.Levels {
		levels = append(levels, pct)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(levels)))
	for _, pct := range levels {
		fmt.Fprintf(&b, "- %d%% (nota %.1f): %s\n", pct, rubric.GradeFromPercent(float64(pct)), c.Levels[pct])
	}

	if len(c.EvidenceHints) > 0 {
		b.WriteString("\nARCHIVOS CLAVE A REVISAR:\n")
		for _, h := range c.EvidenceHints {
			fmt.Fprintf(&b, "- %s\n", h)
		}
	}

	b.WriteString("\nCONTENIDO DEL REPOSITORIO:\n")
	writeSnapshot(&b, snap)

	b.WriteString("\nResponde EXCLUSIVAMENTE con un objeto JSON con los campos: ")
	b.WriteString(`"score" (entero 0-100), "grade" (número 1.0-7.0), `)
	b.WriteString(`"feedback" (string), "evidence" (lista de strings), `)
	b.WriteString(`"suggestions" (lista de strings). Sin texto adicional.`)

	return b.String()
}

func writeSnapshot(b *strings.Builder, snap *evidence.Snapshot) {
	if snap.Description != "" {
		fmt.Fprintf(b, "Descripción: %s\n", snap.Description)
	}
	fmt.Fprintf(b, "README presente: %v\n", snap.ReadmePresent)
	fmt.Fprintf(b, "requirements.txt presente: %v\n", snap.RequirementsPresent)
	fmt.Fprintf(b, ".gitignore presente: %v\n", snap.GitignorePresent)

	dirs := snap.SortedDirectories()
	if len(dirs) > 0 {
		b.WriteString("Directorios:\n")
		for i, d := range dirs {
			if i == maxPromptDirs {
				fmt.Fprintf(b, "  ... y %d más\n", len(dirs)-maxPromptDirs)
				break
			}
			fmt.Fprintf(b, "  %s/\n", d)
		}
	}

	files := snap.SortedFiles()
	if len(files) > 0 {
		b.WriteString("Archivos:\n")
		for i, f := range files {
			if i == maxPromptFiles {
				fmt.Fprintf(b, "  ... y %d más\n", len(files)-maxPromptFiles)
				break
			}
			fmt.Fprintf(b, "  %s\n", f)
		}
	}
}
