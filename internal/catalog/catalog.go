// Package catalog loads the marketplace product corpus and the assistant's
// decision matrix. A Catalog is immutable once loaded and safe to share
// between goroutines.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/agrihope/backend/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCorpus []byte

// CropMapping ties a crop name to the product names that authoritatively serve it
type CropMapping struct {
	Crop     string   `yaml:"crop"`
	Products []string `yaml:"products"`
}

// UseCaseMapping ties a snake_case use case to product names
type UseCaseMapping struct {
	UseCase  string   `yaml:"useCase"`
	Products []string `yaml:"products"`
}

// Phrase returns the use case as it would appear in free text
func (m UseCaseMapping) Phrase() string {
	return strings.ReplaceAll(m.UseCase, "_", " ")
}

// Domain is a named subject area with a curated keyword surface
type Domain struct {
	Name     string   `yaml:"name"`
	Triggers []string `yaml:"triggers"`
	Keywords []string `yaml:"keywords"`
	Crops    []string `yaml:"crops"`
}

// productRecord mirrors the corpus file layout
type productRecord struct {
	ID            string   `yaml:"id"`
	Name          string   `yaml:"name"`
	Category      string   `yaml:"category"`
	Price         float64  `yaml:"price"`
	OriginalPrice *float64 `yaml:"originalPrice"`
	Seller        string   `yaml:"seller"`
	Location      string   `yaml:"location"`
	Image         string   `yaml:"image"`
	Organic       bool     `yaml:"organic"`
	Quantity      string   `yaml:"quantity"`
	InStock       bool     `yaml:"inStock"`
	Featured      bool     `yaml:"featured"`
	Tags          []string `yaml:"tags"`
	Description   string   `yaml:"description"`
	UseCases      []string `yaml:"useCases"`
	Keywords      []string `yaml:"aiKeywords"`
	Crops         []string `yaml:"crops"`
}

type corpusFile struct {
	Products []productRecord  `yaml:"products"`
	Crops    []CropMapping    `yaml:"crops"`
	UseCases []UseCaseMapping `yaml:"useCases"`
	Domains  []Domain         `yaml:"domains"`
}

// Catalog is the read-only product corpus
type Catalog struct {
	products []domain.Product
	crops    []CropMapping
	useCases []UseCaseMapping
	domains  []Domain
}

// Default loads the corpus embedded in the binary
func Default() (*Catalog, error) {
	return Parse(defaultCorpus)
}

// MustDefault is Default for callers that cannot start without a catalog
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse decodes and validates a YAML corpus
func Parse(data []byte) (*Catalog, error) {
	var file corpusFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCatalog, err)
	}

	products := make([]domain.Product, 0, len(file.Products))
	for _, rec := range file.Products {
		products = append(products, rec.toProduct())
	}

	return New(products, file.Crops, file.UseCases, file.Domains)
}

// New builds a catalog from already decoded parts
func New(products []domain.Product, crops []CropMapping, useCases []UseCaseMapping, domains []Domain) (*Catalog, error) {
	c := &Catalog{
		products: cloneProducts(products),
		crops:    append([]CropMapping(nil), crops...),
		useCases: append([]UseCaseMapping(nil), useCases...),
		domains:  append([]Domain(nil), domains...),
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Products returns a copy of every product in declaration order
func (c *Catalog) Products() []domain.Product {
	return cloneProducts(c.products)
}

// Len returns the number of products
func (c *Catalog) Len() int {
	return len(c.products)
}

// Crops returns the crop mappings in priority order
func (c *Catalog) Crops() []CropMapping {
	return c.crops
}

// CropNames returns the crop keys in priority order
func (c *Catalog) CropNames() []string {
	names := make([]string, 0, len(c.crops))
	for _, m := range c.crops {
		names = append(names, m.Crop)
	}
	return names
}

// UseCases returns the use case mappings in priority order
func (c *Catalog) UseCases() []UseCaseMapping {
	return c.useCases
}

// Domains returns the named matching domains
func (c *Catalog) Domains() []Domain {
	return c.domains
}

// FindByID looks up a product by identifier
func (c *Catalog) FindByID(id string) (domain.Product, bool) {
	for _, p := range c.products {
		if p.ID == id {
			return cloneProduct(p), true
		}
	}
	return domain.Product{}, false
}

// Filter lists products matching the filter, in catalog order
func (c *Catalog) Filter(f domain.ProductFilter) []domain.Product {
	result := make([]domain.Product, 0, len(c.products))
	for _, p := range c.products {
		if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
			continue
		}
		if f.Organic != nil && p.Organic != *f.Organic {
			continue
		}
		if f.Featured != nil && p.Featured != *f.Featured {
			continue
		}
		result = append(result, cloneProduct(p))
	}
	return result
}

func (c *Catalog) validate() error {
	seen := make(map[string]bool, len(c.products))
	for _, p := range c.products {
		if p.ID == "" {
			return fmt.Errorf("%w: product %q has no id", domain.ErrInvalidCatalog, p.Name)
		}
		if seen[p.ID] {
			return fmt.Errorf("%w: duplicate product id %s", domain.ErrInvalidCatalog, p.ID)
		}
		seen[p.ID] = true

		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("%w: product %s has no name", domain.ErrInvalidCatalog, p.ID)
		}
		if !isKnownCategory(p.Category) {
			return fmt.Errorf("%w: product %s has unknown category %q", domain.ErrInvalidCatalog, p.ID, p.Category)
		}
		if p.Price < 0 {
			return fmt.Errorf("%w: product %s has negative price", domain.ErrInvalidCatalog, p.ID)
		}
		if p.OriginalPrice != nil && *p.OriginalPrice < p.Price {
			return fmt.Errorf("%w: product %s original price below price", domain.ErrInvalidCatalog, p.ID)
		}
		if len(p.Tags) == 0 || len(p.UseCases) == 0 {
			return fmt.Errorf("%w: product %s needs tags and use cases", domain.ErrInvalidCatalog, p.ID)
		}
	}

	for _, m := range c.crops {
		if m.Crop == "" || m.Crop != strings.ToLower(m.Crop) {
			return fmt.Errorf("%w: crop key %q must be lowercase", domain.ErrInvalidCatalog, m.Crop)
		}
		if len(m.Products) == 0 {
			return fmt.Errorf("%w: crop %s maps to no products", domain.ErrInvalidCatalog, m.Crop)
		}
	}
	for _, m := range c.useCases {
		if m.UseCase == "" || len(m.Products) == 0 {
			return fmt.Errorf("%w: use case %q maps to no products", domain.ErrInvalidCatalog, m.UseCase)
		}
	}
	for _, d := range c.domains {
		if len(d.Triggers) == 0 {
			return fmt.Errorf("%w: domain %s has no triggers", domain.ErrInvalidCatalog, d.Name)
		}
	}

	return nil
}

func isKnownCategory(category string) bool {
	for _, c := range domain.Categories {
		if c == category {
			return true
		}
	}
	return false
}

func (r productRecord) toProduct() domain.Product {
	tags := make([]string, 0, len(r.Tags))
	for _, t := range r.Tags {
		tags = append(tags, strings.ToLower(t))
	}

	return domain.Product{
		ID:            r.ID,
		Name:          r.Name,
		Category:      r.Category,
		Price:         r.Price,
		OriginalPrice: r.OriginalPrice,
		Seller:        r.Seller,
		Location:      r.Location,
		Image:         r.Image,
		Organic:       r.Organic,
		Quantity:      r.Quantity,
		InStock:       r.InStock,
		Featured:      r.Featured,
		Tags:          tags,
		Description:   r.Description,
		UseCases:      r.UseCases,
		Keywords:      r.Keywords,
		Crops:         r.Crops,
	}
}

func cloneProducts(in []domain.Product) []domain.Product {
	out := make([]domain.Product, len(in))
	for i, p := range in {
		out[i] = cloneProduct(p)
	}
	return out
}

func cloneProduct(p domain.Product) domain.Product {
	if p.OriginalPrice != nil {
		v := *p.OriginalPrice
		p.OriginalPrice = &v
	}
	p.Tags = append([]string(nil), p.Tags...)
	p.UseCases = append([]string(nil), p.UseCases...)
	p.Keywords = append([]string(nil), p.Keywords...)
	p.Crops = append([]string(nil), p.Crops...)
	return p
}
