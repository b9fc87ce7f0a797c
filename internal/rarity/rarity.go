// Package rarity holds the fixed, ordered table of rarity tiers. The Order
// slice is the single source of truth for tier ranking; rank is position in
// the slice, not a separate mapping.
package rarity

import "doflin-hub/internal/model"

type Tier struct {
	Rarity      model.Rarity
	Label       string
	Probability int
	Description string
}

// Order lists the tiers from most common to rarest.
var Order = []model.Rarity{
	model.RarityCommon,
	model.RarityRare,
	model.RarityEpic,
	model.RarityLegendary,
	model.RarityUltra,
	model.RarityMythic,
}

var tiers = []Tier{
	{model.RarityCommon, "Común", 45, "Habitante frecuente de la colección Animals"},
	{model.RarityRare, "Raro", 25, "Aparece menos y sube valor de colección"},
	{model.RarityEpic, "Épico", 15, "Edición especial con acabado destacado"},
	{model.RarityLegendary, "Legendario", 8, "Muy limitado en circulación"},
	{model.RarityUltra, "Ultra", 5, "Extremadamente raro en cada pack"},
	{model.RarityMythic, "Mítico", 2, "Edición secreta de la línea Animals"},
}

// Rank returns the position of r in Order, or -1 for unknown values.
func Rank(r model.Rarity) int {
	for i, tier := range Order {
		if tier == r {
			return i
		}
	}
	return -1
}

func Valid(r model.Rarity) bool {
	return Rank(r) >= 0
}

func Lookup(r model.Rarity) (Tier, bool) {
	idx := Rank(r)
	if idx < 0 {
		return Tier{}, false
	}
	return tiers[idx], true
}

func Label(r model.Rarity) string {
	tier, ok := Lookup(r)
	if !ok {
		return string(r)
	}
	return tier.Label
}

// Highest returns the rarest of the given values. Ties keep the first
// encountered; unknown values never win over known ones.
func Highest(values []model.Rarity) model.Rarity {
	if len(values) == 0 {
		return ""
	}

	highest := values[0]
	for _, value := range values[1:] {
		if Rank(value) > Rank(highest) {
			highest = value
		}
	}
	return highest
}
