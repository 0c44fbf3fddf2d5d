package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryLabel(t *testing.T) {
	assert.Equal(t, "Vehículo Chico", CategoryLabel("1"))
	assert.Equal(t, "Vehículo Mediano", CategoryLabel(" 2 "))
	assert.Equal(t, "Vehículo Grande", CategoryLabel("3"))
	assert.Equal(t, "", CategoryLabel("4"))
	assert.Equal(t, "", CategoryLabel(""))
}
