package handlers

import (
	"fmt"
	"sort"
)

// Product represents a product item in the demo catalog
type Product struct {
	ID          int
	Name        string
	Category    string
	Description string
	Price       int64
}

// DisplayPrice returns the price as shown on listing and product pages
func (p Product) DisplayPrice() string {
	return fmt.Sprintf("$%d", p.Price)
}

// Category is a catalog section with its display name and URL slug
type Category struct {
	Slug string
	Name string
}

// Catalog is a read-only product list
type Catalog struct {
	categories []Category
	products   []Product
	byID       map[int]Product
}

// NewCatalog creates a catalog from categories and products
func NewCatalog(categories []Category, products []Product) *Catalog {
	byID := make(map[int]Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return &Catalog{categories: categories, products: products, byID: byID}
}

// DefaultCatalog returns the phones, laptops and monitors sold by the demo storefront
func DefaultCatalog() *Catalog {
	return NewCatalog(
		[]Category{
			{Slug: "phone", Name: "Phones"},
			{Slug: "notebook", Name: "Laptops"},
			{Slug: "monitor", Name: "Monitors"},
		},
		[]Product{
			{ID: 1, Name: "Samsung galaxy s6", Category: "phone", Price: 360, Description: "The Samsung Galaxy S6 is powered by 1.5GHz octa-core Samsung Exynos 7420 processor."},
			{ID: 2, Name: "Nokia lumia 1520", Category: "phone", Price: 820, Description: "The Nokia Lumia 1520 is powered by 2.2GHz quad-core Qualcomm Snapdragon 800 processor."},
			{ID: 3, Name: "Nexus 6", Category: "phone", Price: 650, Description: "The Motorola Google Nexus 6 is powered by 2.7GHz quad-core Qualcomm Snapdragon 805 processor."},
			{ID: 5, Name: "Iphone 6 32gb", Category: "phone", Price: 790, Description: "It comes with 1GB of RAM."},
			{ID: 8, Name: "Sony vaio i5", Category: "notebook", Price: 790, Description: "Sony is so confident that the VAIO S is a superior ultraportable laptop."},
			{ID: 9, Name: "Sony vaio i7", Category: "notebook", Price: 790, Description: "REVIEW Sony is so confident that the VAIO S is a superior ultraportable laptop."},
			{ID: 11, Name: "MacBook air", Category: "notebook", Price: 700, Description: "1.6GHz dual-core Intel Core i5 (Turbo Boost up to 2.7GHz) with 3MB shared L3 cache."},
			{ID: 12, Name: "Dell i7 8gb", Category: "notebook", Price: 700, Description: "6th Generation Intel Core i7-6500U processor."},
			{ID: 15, Name: "MacBook Pro", Category: "notebook", Price: 1100, Description: "Apple has introduced three new versions of its MacBook Pro line."},
			{ID: 10, Name: "Apple monitor 24", Category: "monitor", Price: 400, Description: "LED Cinema Display features a 27-inch glossy LED-backlit TFT active-matrix LCD display."},
			{ID: 14, Name: "ASUS Full HD", Category: "monitor", Price: 230, Description: "ASUS VS247H-P 23.6- Inch Full HD."},
		},
	)
}

// Categories returns the catalog sections in display order
func (c *Catalog) Categories() []Category {
	return c.categories
}

// List returns products of the given category slug, or every product for an empty slug
func (c *Catalog) List(slug string) []Product {
	out := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		if slug == "" || p.Category == slug {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Get returns the product with the given ID
func (c *Catalog) Get(id int) (Product, bool) {
	p, ok := c.byID[id]
	return p, ok
}
