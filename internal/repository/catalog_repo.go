package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jrreynao/widgetamericanrent/internal/db"

	_ "github.com/lib/pq"
)

// CatalogRepository reads the catalog tables (categorias, vehiculos, extras).
type CatalogRepository struct {
	DB *sql.DB
}

func NewCatalogRepository(conn *sql.DB) *CatalogRepository {
	return &CatalogRepository{DB: conn}
}

// OpenPostgres opens and pings a lib/pq connection.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return conn, nil
}

// Load reads the whole catalog in one pass.
func (r *CatalogRepository) Load(ctx context.Context) (*db.CatalogData, error) {
	categorias, err := r.GetCategories(ctx)
	if err != nil {
		return nil, err
	}
	vehiculos, err := r.GetVehicles(ctx)
	if err != nil {
		return nil, err
	}
	extras, err := r.GetExtras(ctx)
	if err != nil {
		return nil, err
	}
	return &db.CatalogData{Categorias: categorias, Vehiculos: vehiculos, Extras: extras}, nil
}

func (r *CatalogRepository) GetCategories(ctx context.Context) ([]db.Category, error) {
	query := `SELECT id::text, nombre FROM categorias ORDER BY id`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query categorias: %w", err)
	}
	defer rows.Close()

	var categorias []db.Category
	for rows.Next() {
		var c db.Category
		if err := rows.Scan(&c.ID, &c.Nombre); err != nil {
			return nil, err
		}
		categorias = append(categorias, c)
	}
	return categorias, rows.Err()
}

// GetVehicles keeps table order so ties on price resolve to the first row.
func (r *CatalogRepository) GetVehicles(ctx context.Context) ([]db.Vehicle, error) {
	query := `
	SELECT id::text, categoria_id::text, nombre, precio, COALESCE(imagen, '')
	FROM vehiculos
	ORDER BY orden, id
	`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query vehiculos: %w", err)
	}
	defer rows.Close()

	var vehiculos []db.Vehicle
	for rows.Next() {
		var v db.Vehicle
		if err := rows.Scan(&v.ID, &v.CategoriaID, &v.Nombre, &v.Precio, &v.Imagen); err != nil {
			return nil, err
		}
		vehiculos = append(vehiculos, v)
	}
	return vehiculos, rows.Err()
}

func (r *CatalogRepository) GetExtras(ctx context.Context) ([]db.Extra, error) {
	query := `SELECT id::text, nombre, precio FROM extras ORDER BY id`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query extras: %w", err)
	}
	defer rows.Close()

	var extras []db.Extra
	for rows.Next() {
		var e db.Extra
		if err := rows.Scan(&e.ID, &e.Name, &e.Price); err != nil {
			return nil, err
		}
		extras = append(extras, e)
	}
	return extras, rows.Err()
}
