// Package catalog carries the static launch catalog of the collectible
// line. It backs the stats and collection endpoints when the database is
// unreachable and feeds the seed subcommand.
package catalog

import (
	"fmt"

	"doflin-hub/internal/model"
	"doflin-hub/internal/rarity"
)

type seedItem struct {
	name        string
	series      string
	rarity      model.Rarity
	probability int
}

var seed = []seedItem{
	{"Brisa Solar", model.SeriesAnimals, model.RarityCommon, 45},
	{"Jaguar Prisma", model.SeriesAnimals, model.RarityCommon, 45},
	{"Koala Bronce", model.SeriesAnimals, model.RarityCommon, 45},
	{"Lobo Ceniza", model.SeriesAnimals, model.RarityCommon, 45},
	{"Panda Nube", model.SeriesAnimals, model.RarityCommon, 45},
	{"Mono Magma", model.SeriesAnimals, model.RarityCommon, 45},
	{"Tigre Arena", model.SeriesAnimals, model.RarityCommon, 45},
	{"Pulpo Jade", model.SeriesAnimals, model.RarityCommon, 45},
	{"Axolote Coral", model.SeriesAnimals, model.RarityCommon, 45},
	{"Búho Cobre", model.SeriesAnimals, model.RarityCommon, 45},
	{"Tortuga Hielo", model.SeriesMultiverse, model.RarityCommon, 45},
	{"Fénix Menta", model.SeriesMultiverse, model.RarityCommon, 45},
	{"León Quartz", model.SeriesMultiverse, model.RarityCommon, 45},
	{"Delfín Aurora", model.SeriesMultiverse, model.RarityCommon, 45},
	{"Coyote Volt", model.SeriesMultiverse, model.RarityRare, 25},
	{"Pantera Pixel", model.SeriesMultiverse, model.RarityRare, 25},
	{"Rana Nova", model.SeriesMultiverse, model.RarityRare, 25},
	{"Gacela Fractal", model.SeriesMultiverse, model.RarityRare, 25},
	{"Erizo Vapor", model.SeriesMultiverse, model.RarityRare, 25},
	{"Halcón Neon", model.SeriesMultiverse, model.RarityRare, 25},
	{"Lince Rayo", model.SeriesMultiverse, model.RarityRare, 25},
	{"Tiburón Cobalto", model.SeriesMultiverse, model.RarityRare, 25},
	{"Dragón Plasma", model.SeriesMultiverse, model.RarityEpic, 15},
	{"Mantis Vortex", model.SeriesMultiverse, model.RarityEpic, 15},
	{"Cuervo Quantum", model.SeriesMultiverse, model.RarityEpic, 15},
	{"Fuego Ártico", model.SeriesMultiverse, model.RarityEpic, 15},
	{"Centella Dorada", model.SeriesMultiverse, model.RarityLegendary, 8},
	{"Titanio Lunar", model.SeriesMultiverse, model.RarityLegendary, 8},
	{"Omega Carmesí", model.SeriesMultiverse, model.RarityUltra, 5},
	{"Sombra Eterna", model.SeriesMultiverse, model.RarityMythic, 2},
}

// Fallback returns the static catalog as full Doflin rows. IDs and
// collection numbers follow seed order, matching the launch seeding.
func Fallback() []model.Doflin {
	items := make([]model.Doflin, 0, len(seed))
	for i, item := range seed {
		number := i + 1
		padded := fmt.Sprintf("%02d", number)

		imageURL := fmt.Sprintf("/images/doflins/doflin-%s.webp", padded)
		silhouetteURL := fmt.Sprintf("/images/doflins/silueta-%s.webp", padded)
		if number == 1 {
			imageURL = "/images/doflins/demo-3d.svg"
			silhouetteURL = "/images/doflins/demo-silhouette.svg"
		}

		items = append(items, model.Doflin{
			ID:               int64(number),
			Name:             "Doflin " + item.name,
			BaseModel:        "Doflin " + item.name,
			VariantName:      "Original",
			Slug:             fmt.Sprintf("doflin-%s", padded),
			Series:           item.series,
			CollectionNumber: number,
			Rarity:           item.rarity,
			Probability:      item.probability,
			ImageURL:         imageURL,
			SilhouetteURL:    silhouetteURL,
			Active:           true,
		})
	}
	return items
}

// FallbackRemaining returns the static remaining-by-rarity table served
// when the database cannot be queried. Every registry tier is present.
func FallbackRemaining() (map[model.Rarity]int, int) {
	remaining := make(map[model.Rarity]int, len(rarity.Order))
	for _, tier := range rarity.Order {
		remaining[tier] = 0
	}

	total := 0
	for _, item := range Fallback() {
		remaining[item.Rarity]++
		total++
	}
	return remaining, total
}
