package handlers

import (
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// StoreName is shown in the navigation bar of every page
const StoreName = "PRODUCT STORE"

// HomeHandler renders the catalog, optionally filtered by the "cat" query parameter
type HomeHandler struct {
	template *template.Template
	catalog  *Catalog
	logger   zerolog.Logger
}

// NewHomeHandler creates a new HomeHandler
func NewHomeHandler(tmpl *template.Template, catalog *Catalog, logger zerolog.Logger) *HomeHandler {
	return &HomeHandler{template: tmpl, catalog: catalog, logger: logger}
}

// HomeData is the data for the index template
type HomeData struct {
	StoreName  string
	Categories []Category
	Products   []Product
}

// ServeHTTP handles the GET / request
func (h *HomeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}

	data := HomeData{
		StoreName:  StoreName,
		Categories: h.catalog.Categories(),
		Products:   h.catalog.List(r.URL.Query().Get("cat")),
	}
	render(w, h.template, "index.html", data, h.logger)
}

// ProductHandler renders a single product page selected by the "idp_" query parameter
type ProductHandler struct {
	template *template.Template
	catalog  *Catalog
	logger   zerolog.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(tmpl *template.Template, catalog *Catalog, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{template: tmpl, catalog: catalog, logger: logger}
}

// ProductData is the data for the product template
type ProductData struct {
	StoreName string
	Product   Product
}

// ServeHTTP handles the GET /prod.html request
func (h *ProductHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, err := strconv.Atoi(r.URL.Query().Get("idp_"))
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}
	product, ok := h.catalog.Get(id)
	if !ok {
		http.NotFound(w, r)
		return
	}

	render(w, h.template, "product.html", ProductData{StoreName: StoreName, Product: product}, h.logger)
}

// CartPageHandler renders the cart shell; rows are filled in by the page from the cart API
type CartPageHandler struct {
	template    *template.Template
	deleteDelay time.Duration
	logger      zerolog.Logger
}

// NewCartPageHandler creates a new CartPageHandler. deleteDelay is how long the page waits
// after a deletion before it re-renders the cart.
func NewCartPageHandler(tmpl *template.Template, deleteDelay time.Duration, logger zerolog.Logger) *CartPageHandler {
	return &CartPageHandler{template: tmpl, deleteDelay: deleteDelay, logger: logger}
}

// CartPageData is the data for the cart template
type CartPageData struct {
	StoreName         string
	DeleteDelayMillis int64
}

// ServeHTTP handles the GET /cart.html request
func (h *CartPageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data := CartPageData{StoreName: StoreName, DeleteDelayMillis: h.deleteDelay.Milliseconds()}
	render(w, h.template, "cart.html", data, h.logger)
}

func render(w http.ResponseWriter, tmpl *template.Template, name string, data any, logger zerolog.Logger) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		logger.Error().Err(err).Str("template", name).Msg("failed to render page")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
