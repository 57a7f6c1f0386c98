package story

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `{
  "story": "Dipetik di lereng Sesean.",
  "flavor_profile": "Rempah, cokelat",
  "acidity_level": "Sedang",
  "health_safety": {
    "is_safe_for_gerd": false,
    "warning": "Asam sedang",
    "age_recommendation": "Dewasa",
    "conditions_to_avoid": ["GERD"]
  },
  "pairing_food": "Pisang goreng",
  "fun_fact": "Toraja pernah diekspor ke Jepang."
}`

func TestDecode(t *testing.T) {
	s, err := Decode(sample)
	require.NoError(t, err)
	assert.Equal(t, AcidityMedium, s.AcidityLevel)
	assert.False(t, s.HealthSafety.IsSafeForGERD)
	assert.Equal(t, []string{"GERD"}, s.HealthSafety.ConditionsToAvoid)
}

func TestDecode_StripsFences(t *testing.T) {
	s, err := Decode("```json\n" + sample + "\n```")
	require.NoError(t, err)
	assert.Equal(t, "Pisang goreng", s.PairingFood)
}

func TestDecode_Malformed(t *testing.T) {
	cases := map[string]string{
		"empty":        "  ",
		"not json":     "Kopi ini enak sekali",
		"unknown key":  `{"story":"a","flavor_profile":"b","acidity_level":"Sedang","health_safety":{"is_safe_for_gerd":true},"pairing_food":"c","fun_fact":"d","extra":1}`,
		"missing gerd": `{"story":"a","flavor_profile":"b","acidity_level":"Sedang","health_safety":{},"pairing_food":"c","fun_fact":"d"}`,
		"bad acidity":  `{"story":"a","flavor_profile":"b","acidity_level":"Tinggi Sekali","health_safety":{"is_safe_for_gerd":true},"pairing_food":"c","fun_fact":"d"}`,
		"trailing":     sample + ` {}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(raw)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestDecodeNames(t *testing.T) {
	names, err := DecodeNames("```\n[\"Gayo Wine\", \" \", \"Kalosi\"]\n```")
	require.NoError(t, err)
	assert.Equal(t, []string{"Gayo Wine", "Kalosi"}, names)

	_, err = DecodeNames(`{"names":[]}`)
	assert.ErrorIs(t, err, ErrMalformed)
}
