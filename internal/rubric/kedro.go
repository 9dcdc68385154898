package rubric

// standardLevels are the level descriptors shared by all criteria of the
// built-in rubric.
var standardLevels = map[int]string{
	100: "Logro completo de todos los aspectos - Muy buen desempeño",
	80:  "Alto desempeño con mínimas omisiones - Buen desempeño",
	60:  "Logro de elementos básicos - Desempeño aceptable",
	40:  "Importantes omisiones o errores - Desempeño incipiente",
	20:  "Desempeño incorrecto - Desempeño insuficiente",
	0:   "No cumple requisitos mínimos - No logrado",
}

// KedroML returns the built-in rubric for Kedro machine-learning projects:
// ten equal-weight criteria covering the CRISP-DM workflow. Used when no
// rubric file is supplied.
func KedroML() *Rubric {
	def := Definition{
		Name:        "Evaluación Parcial 1 - Machine Learning con Kedro",
		Description: "Rúbrica para evaluar proyectos de ML usando framework Kedro y metodología CRISP-DM",
		Criteria: []Criterion{
			{
				Name:          "Estructura y Configuración del Proyecto Kedro",
				Description:   "Proyecto Kedro correctamente estructurado con configuración completa",
				Weight:        0.10,
				Levels:        standardLevels,
				EvidenceHints: []string{"conf/base/catalog.yml", "conf/base/parameters.yml", "README.md", "requirements.txt"},
			},
			{
				Name:          "Implementación del Catálogo de Datos",
				Description:   "Configuración correcta de mínimo 3 datasets en el catálogo",
				Weight:        0.10,
				Levels:        standardLevels,
				EvidenceHints: []string{"conf/base/catalog.yml", "data/01_raw/"},
			},
			{
				Name:          "Desarrollo de Nodos y Funciones",
				Description:   "Nodos modulares con funciones puras, docstrings y manejo de errores",
				Weight:        0.10,
				Levels:        standardLevels,
				EvidenceHints: []string{"src/*/pipelines/*/nodes.py"},
			},
			{
				Name:          "Construcción de Pipelines",
				Description:   "Pipelines organizados por fase CRISP-DM con dependencias claras",
				Weight:        0.10,
				Levels:        standardLevels,
				EvidenceHints: []string{"src/*/pipelines/*/pipeline.py", "src/*/pipeline_registry.py"},
			},
			{
				Name:          "Análisis Exploratorio de Datos (EDA)",
				Description:   "EDA exhaustivo con visualizaciones y análisis de patrones",
				Weight:        0.10,
				Levels:        standardLevels,
				EvidenceHints: []string{"notebooks/02_data_understanding.ipynb"},
			},
			{
				Name:          "Limpieza y Tratamiento de Datos",
				Description:   "Estrategias diferenciadas para manejo de missing values y outliers",
				Weight:        0.10,
				Levels:        standardLevels,
				EvidenceHints: []string{"src/*/pipelines/data_engineering/"},
			},
			{
				Name:          "Transformación y Feature Engineering",
				Description:   "Transformaciones avanzadas justificadas con feature engineering creativo",
				Weight:        0.10,
				Levels:        standardLevels,
				EvidenceHints: []string{"src/*/pipelines/data_science/", "notebooks/03_data_preparation.ipynb"},
			},
			{
				Name:          "Identificación de Targets para ML",
				Description:   "Targets correctos para regresión/clasificación con justificación sólida",
				Weight:        0.10,
				Levels:        standardLevels,
				EvidenceHints: []string{"notebooks/01_business_understanding.ipynb"},
			},
			{
				Name:          "Documentación y Notebooks",
				Description:   "Documentación excepcional con notebooks estructurados por CRISP-DM",
				Weight:        0.10,
				Levels:        standardLevels,
				EvidenceHints: []string{"README.md", "notebooks/", "docs/"},
			},
			{
				Name:          "Reproducibilidad y Mejores Prácticas",
				Description:   "Proyecto completamente reproducible siguiendo mejores prácticas",
				Weight:        0.10,
				Levels:        standardLevels,
				EvidenceHints: []string{"requirements.txt", ".gitignore", "conf/base/parameters.yml"},
			},
		},
	}

	r, err := New(def)
	if err != nil {
		// The built-in rubric is validated by tests; a failure here is
		// a programming error.
		panic(err)
	}
	return r
}
