package model

import "time"

// Rarity is one of the six fixed tiers. Ordering and weights live in the
// rarity package; the model only carries the stored value.
type Rarity string

const (
	RarityCommon    Rarity = "COMMON"
	RarityRare      Rarity = "RARE"
	RarityEpic      Rarity = "EPIC"
	RarityLegendary Rarity = "LEGENDARY"
	RarityUltra     Rarity = "ULTRA"
	RarityMythic    Rarity = "MYTHIC"
)

const (
	SeriesAnimals    = "Animals"
	SeriesMultiverse = "Multiverse"
)

// Doflin is one catalog entry of the collectible line. Rows are written by
// the admin surface; this service only reads them.
type Doflin struct {
	ID               int64     `db:"id" json:"id"`
	Name             string    `db:"nombre" json:"name"`
	BaseModel        string    `db:"modelo_base" json:"baseModel"`
	VariantName      string    `db:"variante" json:"variantName"`
	Slug             string    `db:"slug" json:"slug"`
	Series           string    `db:"serie" json:"series"`
	CollectionNumber int       `db:"numero_coleccion" json:"collectionNumber"`
	Rarity           Rarity    `db:"rareza" json:"rarity"`
	Probability      int       `db:"probabilidad" json:"probability"`
	ImageURL         string    `db:"imagen_url" json:"imageUrl"`
	SilhouetteURL    string    `db:"silueta_url" json:"silhouetteUrl"`
	Active           bool      `db:"activo" json:"active"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}
