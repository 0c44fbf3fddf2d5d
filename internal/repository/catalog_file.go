package repository

import (
	"fmt"
	"os"

	"github.com/jrreynao/widgetamericanrent/internal/db"

	"gopkg.in/yaml.v3"
)

// LoadCatalogFile reads a YAML catalog from disk.
func LoadCatalogFile(path string) (*db.CatalogData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	data, err := ParseCatalogYAML(raw)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return data, nil
}

// ParseCatalogYAML decodes a catalog document. Every row needs an id.
func ParseCatalogYAML(raw []byte) (*db.CatalogData, error) {
	var data db.CatalogData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse catalog yaml: %w", err)
	}
	if err := validateCatalog(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

func validateCatalog(data *db.CatalogData) error {
	for i, c := range data.Categorias {
		if c.ID == "" {
			return fmt.Errorf("categorias[%d]: missing id", i)
		}
	}
	for i, v := range data.Vehiculos {
		if v.ID == "" {
			return fmt.Errorf("vehiculos[%d]: missing id", i)
		}
		if v.Precio < 0 {
			return fmt.Errorf("vehiculos[%d]: negative precio", i)
		}
	}
	for i, e := range data.Extras {
		if e.ID == "" {
			return fmt.Errorf("extras[%d]: missing id", i)
		}
	}
	return nil
}

// MarshalCatalogYAML is the inverse of ParseCatalogYAML.
func MarshalCatalogYAML(data *db.CatalogData) ([]byte, error) {
	return yaml.Marshal(data)
}
