package agents

// criterionResources maps rubric criteria to curated study material.
// Criteria without an entry fall back to defaultResources.
var criterionResources = map[string][]string{
	"Estructura y Configuración del Proyecto Kedro": {
		"https://docs.kedro.org/en/stable/get_started/kedro_concepts.html",
		"https://docs.kedro.org/en/stable/kedro_project_setup/index.html",
	},
	"Implementación del Catálogo de Datos": {
		"https://docs.kedro.org/en/stable/data/data_catalog.html",
	},
	"Desarrollo de Nodos y Funciones": {
		"https://docs.kedro.org/en/stable/nodes_and_pipelines/nodes.html",
	},
	"Construcción de Pipelines": {
		"https://docs.kedro.org/en/stable/nodes_and_pipelines/pipeline_introduction.html",
	},
	"Análisis Exploratorio de Datos (EDA)": {
		"https://pandas.pydata.org/docs/user_guide/visualization.html",
		"https://seaborn.pydata.org/tutorial.html",
	},
	"Limpieza y Tratamiento de Datos": {
		"https://pandas.pydata.org/docs/user_guide/missing_data.html",
	},
	"Transformación y Feature Engineering": {
		"https://scikit-learn.org/stable/modules/preprocessing.html",
	},
	"Identificación de Targets para ML": {
		"https://scikit-learn.org/stable/tutorial/basic/tutorial.html",
	},
	"Documentación y Notebooks": {
		"https://docs.kedro.org/en/stable/notebooks_and_ipython/index.html",
	},
	"Reproducibilidad y Mejores Prácticas": {
		"https://docs.kedro.org/en/stable/development/linting.html",
		"https://pip.pypa.io/en/stable/user_guide/#requirements-files",
	},
}

var defaultResources = []string{
	"https://docs.kedro.org/en/stable/",
	"https://www.datacamp.com/tutorial/crisp-dm",
}

// resourcesFor returns study material for a criterion, never empty.
func resourcesFor(criterion string) []string {
	if res, ok := criterionResources[criterion]; ok {
		return res
	}
	return defaultResources
}
