package repository

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jrreynao/widgetamericanrent/internal/web"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEmbeddedCatalog(t *testing.T) {
	data, err := ParseCatalogYAML(web.CatalogYAML)
	require.NoError(t, err)

	assert.Len(t, data.Categorias, 3)
	assert.NotEmpty(t, data.Vehiculos)
	require.NotEmpty(t, data.Extras)
	assert.Equal(t, "1", data.Extras[0].ID)
	assert.Equal(t, "Llevar vehículo a mi dirección", data.Extras[0].Name)
}

func TestLoadCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	doc := `
categorias:
  - {id: "9", nombre: Premium}
vehiculos:
  - {id: a, categoriaId: "9", nombre: A, precio: 100}
extras:
  - {id: x, name: GPS, price: 10}
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	data, err := LoadCatalogFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Premium", data.Categorias[0].Nombre)
	assert.Equal(t, int64(100), data.Vehiculos[0].Precio)
	assert.Equal(t, "GPS", data.Extras[0].Name)
}

func TestLoadCatalogFileErrors(t *testing.T) {
	_, err := LoadCatalogFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = ParseCatalogYAML([]byte("vehiculos:\n  - {nombre: sin id}\n"))
	assert.ErrorContains(t, err, "missing id")

	_, err = ParseCatalogYAML([]byte("categorias: [\n"))
	assert.Error(t, err)
}

func TestMarshalRoundTripKeepsOrder(t *testing.T) {
	data, err := ParseCatalogYAML(web.CatalogYAML)
	require.NoError(t, err)

	out, err := MarshalCatalogYAML(data)
	require.NoError(t, err)

	again, err := ParseCatalogYAML(out)
	require.NoError(t, err)
	assert.Equal(t, data, again)
}
