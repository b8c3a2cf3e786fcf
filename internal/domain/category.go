package domain

type Category struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image,omitempty"`
	Position int    `json:"position"`
}

// Menu is what the menu source returns.
type Menu struct {
	Categories []Category `json:"categories"`
	Products   []Product  `json:"products"`
}

// Product finds a product by id.
func (m Menu) Product(id string) (Product, bool) {
	for _, p := range m.Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}
