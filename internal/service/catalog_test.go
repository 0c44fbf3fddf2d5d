package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jrreynao/widgetamericanrent/internal/config"
	"github.com/jrreynao/widgetamericanrent/internal/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCatalogEmbedded(t *testing.T) {
	cat, err := LoadCatalog(context.Background(), &config.Config{})
	require.NoError(t, err)

	assert.Equal(t, CatalogSourceEmbedded, cat.Source())
	extra, ok := cat.Extra("1")
	require.True(t, ok)
	assert.Equal(t, "Llevar vehículo a mi dirección", extra.Name)
	assert.Len(t, cat.VehiclesInCategory("2"), 2)
}

func TestLoadCatalogFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("categorias:\n  - {id: \"7\", nombre: Lujo}\n"), 0o600))

	cat, err := LoadCatalog(context.Background(), &config.Config{CatalogPath: path, DatabaseURL: "postgres://ignored"})
	require.NoError(t, err)
	assert.Equal(t, CatalogSourceFile, cat.Source())

	c, ok := cat.Category("7")
	require.True(t, ok)
	assert.Equal(t, "Lujo", c.Nombre)
}

func TestLoadCatalogMissingFileFails(t *testing.T) {
	_, err := LoadCatalog(context.Background(), &config.Config{CatalogPath: filepath.Join(t.TempDir(), "nope.yaml")})
	assert.Error(t, err)
}

func TestCatalogIsDetachedFromInput(t *testing.T) {
	data := &db.CatalogData{Extras: []db.Extra{{ID: "a", Name: "GPS", Price: 1}, {ID: "a", Name: "dup", Price: 2}}}
	cat := NewCatalog(data, "test")
	data.Extras[0].Name = "mutated"

	e, ok := cat.Extra("a")
	require.True(t, ok)
	assert.Equal(t, "GPS", e.Name)

	out := cat.Data()
	out.Extras[0].Name = "changed"
	e, _ = cat.Extra("a")
	assert.Equal(t, "GPS", e.Name)
	assert.Equal(t, "GPS", cat.Data().Extras[0].Name)
}

func TestNilCatalogData(t *testing.T) {
	cat := NewCatalog(nil, "")
	_, ok := cat.Extra("1")
	assert.False(t, ok)
	assert.Empty(t, cat.VehiclesInCategory("1"))
}
