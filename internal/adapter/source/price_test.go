package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	cases := map[string]float64{
		"$1.290":        1290,
		"$ 1.290 c/u":   1290,
		"1.290,50":      1290.5,
		"1,290.50":      1290.5,
		"990":           990,
		"CLP 2.490":     2490,
		"$1.290.000":    1290000,
		"12,5":          12.5,
		"2.49":          2.49,
		"Oferta $3.990.": 3990,
	}
	for raw, want := range cases {
		got, err := ParsePrice(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
}

func TestParsePrice_Rejects(t *testing.T) {
	for _, raw := range []string{"", "Agotado", "$ --"} {
		_, err := ParsePrice(raw)
		assert.ErrorIs(t, err, ErrParse, raw)
	}
}

func TestParseUnit(t *testing.T) {
	cases := map[string]string{
		"Arroz grado 1 1 kg":        "1 kg",
		"Leche entera 1L":           "1 l",
		"Yogurt 125 gr":             "125 g",
		"Aceite maravilla 900 ml":   "900 ml",
		"Bebida 1,5 litros":         "1.5 l",
		"Huevos blancos 12 un":      "12 un",
		"Pan amasado":               "",
	}
	for label, want := range cases {
		assert.Equal(t, want, ParseUnit(label), label)
	}
}
