package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatARS(t *testing.T) {
	assert.Equal(t, "$45.000", FormatARS(45000))
	assert.Equal(t, "$5.000", FormatARS(5000))
	assert.Equal(t, "$1.250.000", FormatARS(1250000))
	assert.Equal(t, "$500", FormatARS(500))
	assert.Equal(t, "$0", FormatARS(0))
}

func TestFormatRange(t *testing.T) {
	assert.Equal(t, "$38.000 - $42.000 / día", FormatRange(38000, 42000))
	assert.Equal(t, "$50.000 / día", FormatRange(50000, 50000))
	assert.Equal(t, "$50.000 / día", FormatRange(50000, 0))
	assert.Equal(t, "", FormatRange(0, 30000))
	assert.Equal(t, "", FormatRange(0, 0))
}
