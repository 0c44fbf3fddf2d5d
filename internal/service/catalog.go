package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/jrreynao/widgetamericanrent/internal/config"
	"github.com/jrreynao/widgetamericanrent/internal/db"
	"github.com/jrreynao/widgetamericanrent/internal/repository"
	"github.com/jrreynao/widgetamericanrent/internal/web"
)

const (
	CatalogSourceFile     = "file"
	CatalogSourceDatabase = "database"
	CatalogSourceEmbedded = "embedded"
)

// Catalog is the read-only vehicle, category and extras data. It is built once
// and shared between requests without locking; nothing mutates it afterwards.
type Catalog struct {
	source     string
	categories []db.Category
	vehicles   []db.Vehicle
	extras     []db.Extra

	categoryByID map[string]db.Category
	vehicleByID  map[string]db.Vehicle
	extraByID    map[string]db.Extra
}

func NewCatalog(data *db.CatalogData, source string) *Catalog {
	c := &Catalog{
		source:       source,
		categoryByID: make(map[string]db.Category),
		vehicleByID:  make(map[string]db.Vehicle),
		extraByID:    make(map[string]db.Extra),
	}
	if data == nil {
		return c
	}

	c.categories = append([]db.Category(nil), data.Categorias...)
	c.vehicles = append([]db.Vehicle(nil), data.Vehiculos...)
	c.extras = append([]db.Extra(nil), data.Extras...)

	// Ante ids repetidos gana la primera fila.
	for _, cat := range c.categories {
		if _, dup := c.categoryByID[cat.ID]; !dup {
			c.categoryByID[cat.ID] = cat
		}
	}
	for _, v := range c.vehicles {
		if _, dup := c.vehicleByID[v.ID]; !dup {
			c.vehicleByID[v.ID] = v
		}
	}
	for _, e := range c.extras {
		if _, dup := c.extraByID[e.ID]; !dup {
			c.extraByID[e.ID] = e
		}
	}
	return c
}

// LoadCatalog picks the first configured source: CATALOG_PATH, then
// DATABASE_URL, then the embedded default.
func LoadCatalog(ctx context.Context, cfg *config.Config) (*Catalog, error) {
	switch {
	case cfg.CatalogPath != "":
		data, err := repository.LoadCatalogFile(cfg.CatalogPath)
		if err != nil {
			return nil, err
		}
		return NewCatalog(data, CatalogSourceFile), nil

	case cfg.DatabaseURL != "":
		conn, err := repository.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		defer conn.Close()

		data, err := repository.NewCatalogRepository(conn).Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load catalog from database: %w", err)
		}
		return NewCatalog(data, CatalogSourceDatabase), nil

	default:
		data, err := repository.ParseCatalogYAML(web.CatalogYAML)
		if err != nil {
			return nil, fmt.Errorf("embedded catalog: %w", err)
		}
		return NewCatalog(data, CatalogSourceEmbedded), nil
	}
}

func (c *Catalog) Source() string { return c.source }

func (c *Catalog) Category(id string) (db.Category, bool) {
	cat, ok := c.categoryByID[strings.TrimSpace(id)]
	return cat, ok
}

func (c *Catalog) Vehicle(id string) (db.Vehicle, bool) {
	v, ok := c.vehicleByID[strings.TrimSpace(id)]
	return v, ok
}

func (c *Catalog) Extra(id string) (db.Extra, bool) {
	e, ok := c.extraByID[strings.TrimSpace(id)]
	return e, ok
}

// VehiclesInCategory returns the category's vehicles in catalog order.
func (c *Catalog) VehiclesInCategory(categoryID string) []db.Vehicle {
	var out []db.Vehicle
	for _, v := range c.vehicles {
		if v.CategoriaID == categoryID {
			out = append(out, v)
		}
	}
	return out
}

// Data returns a copy of the raw rows.
func (c *Catalog) Data() *db.CatalogData {
	return &db.CatalogData{
		Categorias: append([]db.Category(nil), c.categories...),
		Vehiculos:  append([]db.Vehicle(nil), c.vehicles...),
		Extras:     append([]db.Extra(nil), c.extras...),
	}
}
