package utils

import "strings"

// UnknownCategoryLabel is shown when a category id resolves nowhere.
const UnknownCategoryLabel = "Categoría no especificada"

// Nombres comerciales fijos; tienen prioridad sobre el catálogo.
var categoryLabels = map[string]string{
	"1": "Vehículo Chico",
	"2": "Vehículo Mediano",
	"3": "Vehículo Grande",
}

// CategoryLabel returns the fixed label for a category id, or "" when the id
// is not one of the well-known ones.
func CategoryLabel(id string) string {
	return categoryLabels[strings.TrimSpace(id)]
}
