package db

// Category is a vehicle category row.
type Category struct {
	ID     string `yaml:"id"`
	Nombre string `yaml:"nombre"`
}

type Vehicle struct {
	ID          string `yaml:"id"`
	CategoriaID string `yaml:"categoriaId"`
	Nombre      string `yaml:"nombre"`
	Precio      int64  `yaml:"precio"`
	Imagen      string `yaml:"imagen,omitempty"`
}

type Extra struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Price int64  `yaml:"price"`
}

// CatalogData is the raw catalog as stored on disk or in the database.
type CatalogData struct {
	Categorias []Category `yaml:"categorias"`
	Vehiculos  []Vehicle  `yaml:"vehiculos"`
	Extras     []Extra    `yaml:"extras"`
}
