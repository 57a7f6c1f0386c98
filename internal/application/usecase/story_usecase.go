// internal/application/usecase/story_usecase.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	productdom "coplace/internal/domain/product"
	storydom "coplace/internal/domain/story"
)

// ErrAnalysisFailed is the only error Analyze returns; the cause is logged.
var ErrAnalysisFailed = errors.New("analysis failed")

const (
	maxRecommendCandidates = 10
	maxRecommendations     = 3
)

// StoryUsecase asks the generative model about a product.
type StoryUsecase struct {
	gen storydom.TextGenerator
}

func NewStoryUsecase(gen storydom.TextGenerator) *StoryUsecase {
	return &StoryUsecase{gen: gen}
}

// Analyze returns the typed story for p. Any generator or parse failure is
// ErrAnalysisFailed; the raw model output is not kept.
func (uc *StoryUsecase) Analyze(ctx context.Context, p productdom.Product) (story storydom.CoffeeStory, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[story] panic id=%s: %v", p.ID, r)
			story, err = storydom.CoffeeStory{}, ErrAnalysisFailed
		}
	}()

	if uc == nil || uc.gen == nil {
		return storydom.CoffeeStory{}, ErrAnalysisFailed
	}
	raw, err := uc.gen.Generate(ctx, storyPrompt(p))
	if err != nil {
		log.Printf("[story] generate failed id=%s: %v", p.ID, err)
		return storydom.CoffeeStory{}, ErrAnalysisFailed
	}
	s, err := storydom.Decode(raw)
	if err != nil {
		log.Printf("[story] decode failed id=%s: %v", p.ID, err)
		return storydom.CoffeeStory{}, ErrAnalysisFailed
	}
	return s, nil
}

// Recommend asks for up to three similar products out of (at most ten of)
// the others in catalog. Names the model invents are dropped. Any failure
// yields an empty list.
func (uc *StoryUsecase) Recommend(ctx context.Context, p productdom.Product, catalog []productdom.Product) []productdom.Product {
	out := []productdom.Product{}
	if uc == nil || uc.gen == nil {
		return out
	}

	candidates := make([]productdom.Product, 0, maxRecommendCandidates)
	for _, c := range catalog {
		if c.ID == p.ID {
			continue
		}
		candidates = append(candidates, c)
		if len(candidates) == maxRecommendCandidates {
			break
		}
	}
	if len(candidates) == 0 {
		return out
	}

	raw, err := uc.gen.Generate(ctx, recommendPrompt(p, candidates))
	if err != nil {
		log.Printf("[story] recommend failed id=%s: %v", p.ID, err)
		return out
	}
	names, err := storydom.DecodeNames(raw)
	if err != nil {
		log.Printf("[story] recommend decode failed id=%s: %v", p.ID, err)
		return out
	}

	byName := make(map[string]productdom.Product, len(catalog))
	for _, c := range catalog {
		if c.ID == p.ID {
			continue
		}
		if _, dup := byName[c.Name]; !dup {
			byName[c.Name] = c
		}
	}
	seen := map[string]struct{}{}
	for _, n := range names {
		c, ok := byName[n]
		if !ok {
			continue
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
		if len(out) == maxRecommendations {
			break
		}
	}
	return out
}

func storyPrompt(p productdom.Product) string {
	var b strings.Builder
	b.WriteString("Kamu adalah AI Barista ahli kopi Indonesia. Analisis kopi berikut dan berikan respons dalam format JSON yang valid (tanpa markdown code block):\n\n")
	b.WriteString("Data Kopi:\n")
	fmt.Fprintf(&b, "- Nama: %s\n", p.Name)
	fmt.Fprintf(&b, "- Asal: %s\n", p.Origin)
	fmt.Fprintf(&b, "- Level Roasting: %s\n", p.RoastLevel)
	fmt.Fprintf(&b, "- Harga: %s\n", productdom.FormatRupiah(p.Price))
	fmt.Fprintf(&b, "- Deskripsi: %s\n\n", p.Description)
	b.WriteString(`Berikan respons JSON dengan struktur berikut:
{
  "story": "Cerita menarik tentang kopi ini dalam 2-3 kalimat, gaya bahasa Gen Z Indonesia",
  "flavor_profile": "Profil rasa dalam 1 kalimat",
  "acidity_level": "Rendah/Sedang/Tinggi",
  "health_safety": {
    "is_safe_for_gerd": true/false,
    "warning": "Peringatan kesehatan jika ada",
    "age_recommendation": "Rekomendasi usia",
    "conditions_to_avoid": ["kondisi1", "kondisi2"]
  },
  "pairing_food": "Rekomendasi makanan pendamping",
  "fun_fact": "Fakta unik tentang kopi ini"
}

PENTING: Respons HANYA JSON valid, tanpa teks tambahan atau markdown.`)
	return b.String()
}

func recommendPrompt(p productdom.Product, candidates []productdom.Product) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Berdasarkan kopi %q dari %s dengan roast level %s, rekomendasikan 3 kopi serupa dari daftar berikut:\n\n",
		p.Name, p.Origin, p.RoastLevel)
	for _, c := range candidates {
		fmt.Fprintf(&b, "- %s (%s, %s)\n", c.Name, c.Origin, c.RoastLevel)
	}
	b.WriteString("\nRespons dalam format JSON array nama kopi saja, contoh: [\"Kopi A\", \"Kopi B\", \"Kopi C\"]\n")
	b.WriteString("PENTING: Respons HANYA JSON valid.")
	return b.String()
}
