package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDraft() Draft {
	return Draft{Name: " Sapan ", Origin: "Toraja", RoastLevel: "Medium", Price: 150000, Description: "fruity"}
}

func TestNew(t *testing.T) {
	p, err := New(validDraft(), "seller-1")
	require.NoError(t, err)
	assert.Equal(t, "Sapan", p.Name)
	assert.Equal(t, RoastMedium, p.RoastLevel)
	assert.Equal(t, "seller-1", p.CreatedBy)

	_, err = New(validDraft(), " ")
	assert.ErrorIs(t, err, ErrInvalidOwner)
}

func TestDraft_Validate(t *testing.T) {
	cases := []struct {
		name string
		mod  func(*Draft)
		want error
	}{
		{"name", func(d *Draft) { d.Name = "  " }, ErrInvalidName},
		{"origin", func(d *Draft) { d.Origin = "" }, ErrInvalidOrigin},
		{"roast", func(d *Draft) { d.RoastLevel = "espresso" }, ErrInvalidRoastLevel},
		{"price", func(d *Draft) { d.Price = -1 }, ErrInvalidPrice},
		{"price above max", func(d *Draft) { d.Price = MaxPrice + 1 }, ErrInvalidPrice},
		{"description", func(d *Draft) { d.Description = "" }, ErrInvalidDescription},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := validDraft()
			tc.mod(&d)
			_, err := New(d, "seller-1")
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestPatch_Apply(t *testing.T) {
	p, err := New(validDraft(), "seller-1")
	require.NoError(t, err)
	p.ID = "p1"

	price := int64(175000)
	out, err := Patch{Price: &price}.Apply(p)
	require.NoError(t, err)
	assert.Equal(t, int64(175000), out.Price)
	assert.Equal(t, "p1", out.ID)
	assert.Equal(t, p.Name, out.Name)

	empty := ""
	_, err = Patch{Name: &empty}.Apply(p)
	assert.ErrorIs(t, err, ErrInvalidName)

	assert.True(t, Patch{}.IsEmpty())
}

func TestRoastLevel_Label(t *testing.T) {
	assert.Equal(t, "Light Roast", RoastLight.Label())
	assert.Equal(t, "Dark Roast", RoastDark.Label())
	assert.Equal(t, "Medium Roast", RoastLevel("").Label())
}

func TestFormatRupiah(t *testing.T) {
	assert.Equal(t, "Rp 150.000", FormatRupiah(150000))
	assert.Equal(t, "Rp 0", FormatRupiah(0))
	assert.Equal(t, "Rp 1.250.000", FormatRupiah(1250000))
	assert.Equal(t, "-Rp 5.000", FormatRupiah(-5000))
	assert.Equal(t, "Rp 30.000", Product{Price: 30000}.PriceLabel())
}
