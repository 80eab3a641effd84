package storefront

// Selectors locates storefront elements. Row* selectors are resolved inside a cart row.
type Selectors struct {
	CategoryLink string
	ProductCard  string
	ProductTitle string
	ProductPrice string

	DetailName  string
	DetailPrice string
	AddToCart   string

	CartPath  string
	CartRow   string
	RowName   string
	RowPrice  string
	RowDelete string
	CartTotal string
}

// DefaultSelectors matches the markup of the demo storefront and the public one it mirrors
func DefaultSelectors() Selectors {
	return Selectors{
		CategoryLink: "a.list-group-item",
		ProductCard:  "#tbodyid .card",
		ProductTitle: ".card-title a",
		ProductPrice: ".card-block h5",

		DetailName:  ".name",
		DetailPrice: ".price-container",
		AddToCart:   "a:has-text('Add to cart')",

		CartPath:  "/cart.html",
		CartRow:   "#tbodyid > tr",
		RowName:   "td:nth-child(2)",
		RowPrice:  "td:nth-child(3)",
		RowDelete: "a:has-text('Delete')",
		CartTotal: "#totalp",
	}
}
