package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsPattern_EscapesWildcards(t *testing.T) {
	assert.Equal(t, "%bolt%", containsPattern("bolt"))
	assert.Equal(t, `%50\% off%`, containsPattern("50% off"))
	assert.Equal(t, `%M8\_steel%`, containsPattern("M8_steel"))
	assert.Equal(t, `%a\\b%`, containsPattern(`a\b`))
	assert.Equal(t, "%%", containsPattern(""))
}
