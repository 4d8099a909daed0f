package dateutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAgeInYear(t *testing.T) {
	tests := []struct {
		name      string
		birthYear int
		year      int
		expected  int
	}{
		{"Retirement age", 1959, 2024, 65},
		{"Birth year itself", 2024, 2024, 0},
		{"Year before birth", 2024, 2020, 0},
		{"Centenarian", 1924, 2024, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AgeInYear(tt.birthYear, tt.year))
		})
	}
}

func TestYearsInclusive(t *testing.T) {
	assert.Equal(t, 7, YearsInclusive(2024, 2030))
	assert.Equal(t, 1, YearsInclusive(2024, 2024))
	assert.Equal(t, 0, YearsInclusive(2030, 2024))
}
