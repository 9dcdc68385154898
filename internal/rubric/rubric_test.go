package rubric

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func equalWeightDef(n int) Definition {
	def := Definition{Name: "test"}
	w := 1.0 / float64(n)
	for i := 0; i < n; i++ {
		def.Criteria = append(def.Criteria, Criterion{
			Name:   string(rune('A' + i)),
			Weight: w,
			Levels: map[int]string{0: "nada", 100: "todo"},
		})
	}
	return def
}

func TestNew_ValidRubric(t *testing.T) {
	r, err := New(equalWeightDef(4))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Len() != 4 {
		t.Fatalf("expected 4 criteria, got %d", r.Len())
	}
}

func TestNew_PreservesOrder(t *testing.T) {
	def := Definition{
		Name: "ordered",
		Criteria: []Criterion{
			{Name: "zeta", Weight: 0.5, Levels: standardLevels},
			{Name: "alfa", Weight: 0.5, Levels: standardLevels},
		},
	}
	r, err := New(def)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := r.Criteria()
	if got[0].Name != "zeta" || got[1].Name != "alfa" {
		t.Fatalf("definition order not preserved: %v", got)
	}
}

func TestNew_WeightSumOutsideTolerance(t *testing.T) {
	def := Definition{
		Criteria: []Criterion{
			{Name: "a", Weight: 0.5},
			{Name: "b", Weight: 0.4}, // sums to 0.9
		},
	}
	_, err := New(def)
	if !errors.Is(err, ErrInvalidRubric) {
		t.Fatalf("expected ErrInvalidRubric, got %v", err)
	}
}

func TestNew_WeightSumWithinTolerance(t *testing.T) {
	def := Definition{
		Criteria: []Criterion{
			{Name: "a", Weight: 0.51},
			{Name: "b", Weight: 0.50}, // sums to 1.01, within ±0.02
		},
	}
	if _, err := New(def); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_WeightOutOfRange(t *testing.T) {
	def := Definition{
		Criteria: []Criterion{
			{Name: "a", Weight: 1.2},
			{Name: "b", Weight: -0.2},
		},
	}
	_, err := New(def)
	if !errors.Is(err, ErrInvalidRubric) {
		t.Fatalf("expected ErrInvalidRubric, got %v", err)
	}
}

func TestNew_DuplicateCriterion(t *testing.T) {
	def := Definition{
		Criteria: []Criterion{
			{Name: "a", Weight: 0.5},
			{Name: "a", Weight: 0.5},
		},
	}
	_, err := New(def)
	if !errors.Is(err, ErrInvalidRubric) {
		t.Fatalf("expected ErrInvalidRubric, got %v", err)
	}
}

func TestNew_EmptyRubric(t *testing.T) {
	_, err := New(Definition{})
	if !errors.Is(err, ErrInvalidRubric) {
		t.Fatalf("expected ErrInvalidRubric, got %v", err)
	}
}

func TestKedroML_WeightSum(t *testing.T) {
	r := KedroML()
	sum := 0.0
	for _, c := range r.Criteria() {
		sum += c.Weight
	}
	if math.Abs(sum-1.0) > 0.02 {
		t.Fatalf("weight sum %.3f outside tolerance", sum)
	}
	if r.Len() != 10 {
		t.Fatalf("expected 10 criteria, got %d", r.Len())
	}
}

func TestLoadFile(t *testing.T) {
	yaml := `
name: Mini rúbrica
description: prueba
criteria:
  - name: Estructura
    description: estructura del proyecto
    weight: 0.6
    levels:
      0: "nada"
      60: "aceptable"
      100: "completo"
    evidence_hints: ["README.md"]
  - name: Documentación
    description: calidad de la documentación
    weight: 0.4
    levels:
      0: "nada"
      100: "completo"
`
	path := filepath.Join(t.TempDir(), "rubrica.yml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if r.Len() != 2 {
		t.Fatalf("expected 2 criteria, got %d", r.Len())
	}
	c, ok := r.Criterion("Estructura")
	if !ok {
		t.Fatal("criterion Estructura not found")
	}
	if c.Levels[60] != "aceptable" {
		t.Fatalf("levels not parsed: %v", c.Levels)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile("/does/not/exist.yml"); err == nil {
		t.Fatal("expected error")
	}
}
