package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Requiere una base con las tablas del catálogo; se saltea si no está configurada.
func TestCatalogRepositoryLoad(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := OpenPostgres(ctx, dsn)
	require.NoError(t, err)
	defer conn.Close()

	data, err := NewCatalogRepository(conn).Load(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, data.Categorias)
}
