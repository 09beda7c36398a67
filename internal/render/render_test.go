package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehicle-search/internal/models"
)

func init() {
	color.NoColor = true
}

func TestThousands(t *testing.T) {
	tests := map[int]string{
		0:       "0",
		999:     "999",
		1000:    "1.000",
		45000:   "45.000",
		1234567: "1.234.567",
		-12000:  "-12.000",
	}
	for in, want := range tests {
		assert.Equal(t, want, Thousands(in))
	}
}

func TestMoney(t *testing.T) {
	tests := map[float64]string{
		0:          "0,00",
		95000:      "95.000,00",
		1234.5:     "1.234,50",
		999.999:    "1.000,00",
		1234567.89: "1.234.567,89",
		-50.25:     "-50,25",
	}
	for in, want := range tests {
		assert.Equal(t, want, Money(in))
	}
}

func TestResults_Table(t *testing.T) {
	var buf bytes.Buffer
	err := Results(&buf, []models.VehicleDTO{
		{Make: "Toyota", Model: "Corolla", Year: 2020, Color: "Prata", MileageKM: 30000, Price: 95000},
		{Make: "Honda", Model: "HR-V", Year: 2019, Color: "Preto", MileageKM: 45000, Price: 98000.5},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Resultados (2)", lines[0])
	assert.Contains(t, lines[1], "Marca")
	assert.Contains(t, lines[1], "Preço (R$)")
	assert.Contains(t, lines[2], "30.000")
	assert.Contains(t, lines[2], "95.000,00")
	assert.Contains(t, lines[3], "98.000,50")
}

func TestResults_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Results(&buf, nil))
	assert.Equal(t, NoResults+"\n", buf.String())
}
