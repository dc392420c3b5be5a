package domain

// Product categories found in the marketplace catalog
const (
	CategoryTools       = "Tools"
	CategoryEquipment   = "Equipment"
	CategoryFruits      = "Fruits"
	CategoryVegetables  = "Vegetables"
	CategorySeeds       = "Seeds"
	CategoryPlants      = "Plants"
	CategoryFertilizers = "Fertilizers"
	CategorySoil        = "Soil"
	CategoryPestControl = "Pest Control"
)

// Categories lists every known product category in display order
var Categories = []string{
	CategoryTools,
	CategoryEquipment,
	CategoryFruits,
	CategoryVegetables,
	CategorySeeds,
	CategoryPlants,
	CategoryFertilizers,
	CategorySoil,
	CategoryPestControl,
}

// Product represents a marketplace catalog entry
type Product struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Category      string   `json:"category"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"originalPrice,omitempty"`
	Seller        string   `json:"seller"`
	Location      string   `json:"location"`
	Image         string   `json:"image"`
	Organic       bool     `json:"organic"`
	Quantity      string   `json:"quantity"`
	InStock       bool     `json:"inStock"`
	Featured      bool     `json:"featured"`
	Tags          []string `json:"tags"`
	Description   string   `json:"description"`
	UseCases      []string `json:"useCases"`

	// Match surface used by the assistant; never sent to clients
	Keywords []string `json:"-"`
	Crops    []string `json:"-"`
}

// ProductFilter narrows a catalog listing
type ProductFilter struct {
	Category string
	Organic  *bool
	Featured *bool
}
