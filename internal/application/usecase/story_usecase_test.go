package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	productdom "coplace/internal/domain/product"
	storydom "coplace/internal/domain/story"
)

const storyJSON = `{"story":"Dari Gayo.","flavor_profile":"Wine","acidity_level":"Tinggi",
"health_safety":{"is_safe_for_gerd":false,"warning":"","age_recommendation":"Dewasa","conditions_to_avoid":[]},
"pairing_food":"Roti","fun_fact":"Fermentasi panjang."}`

func TestStoryUsecase_Analyze(t *testing.T) {
	gen := &fakeGenerator{reply: "```json\n" + storyJSON + "\n```"}
	uc := NewStoryUsecase(gen)

	s, err := uc.Analyze(context.Background(), kopi("p1", 150000))
	require.NoError(t, err)
	assert.Equal(t, storydom.AcidityHigh, s.AcidityLevel)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Kopi p1")
	assert.Contains(t, gen.prompts[0], "Rp 150.000")
}

func TestStoryUsecase_AnalyzeFailuresCollapse(t *testing.T) {
	cases := map[string]*StoryUsecase{
		"no generator": NewStoryUsecase(nil),
		"backend":      NewStoryUsecase(&fakeGenerator{err: errBoom}),
		"malformed":    NewStoryUsecase(&fakeGenerator{reply: "maaf, saya tidak bisa"}),
		"panic":        NewStoryUsecase(&fakeGenerator{panics: true}),
	}
	for name, uc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.Analyze(context.Background(), kopi("p1", 1))
			assert.Equal(t, ErrAnalysisFailed, err)
		})
	}
}

func TestStoryUsecase_Recommend(t *testing.T) {
	self := productdom.Product{ID: "00", Name: "Kopi 00"}
	catalog := []productdom.Product{self}
	for i := 1; i <= 11; i++ {
		id := fmt.Sprintf("%02d", i)
		catalog = append(catalog, productdom.Product{ID: id, Name: "Kopi " + id})
	}

	gen := &fakeGenerator{reply: `["Kopi 00", "Kopi 03", "Kopi Palsu", "Kopi 03", "Kopi 01", "Kopi 02", "Kopi 04"]`}
	got := NewStoryUsecase(gen).Recommend(context.Background(), self, catalog)

	var ids []string
	for _, p := range got {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"03", "01", "02"}, ids)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Kopi 10")
	assert.NotContains(t, gen.prompts[0], "Kopi 11")
}

func TestStoryUsecase_RecommendFailuresAreEmpty(t *testing.T) {
	p := kopi("p1", 1)
	catalog := []productdom.Product{p, kopi("p2", 1)}

	assert.Empty(t, NewStoryUsecase(nil).Recommend(context.Background(), p, catalog))
	assert.Empty(t, NewStoryUsecase(&fakeGenerator{err: errBoom}).Recommend(context.Background(), p, catalog))
	assert.Empty(t, NewStoryUsecase(&fakeGenerator{reply: "bukan json"}).Recommend(context.Background(), p, catalog))

	gen := &fakeGenerator{reply: `[]`}
	assert.Empty(t, NewStoryUsecase(gen).Recommend(context.Background(), p, []productdom.Product{p}))
	assert.Empty(t, gen.prompts)
}
