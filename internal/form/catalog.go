package form

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/h0rv/posdash/internal/domain"
	"github.com/shopspring/decimal"
)

// ProductForm holds the raw text of the product editor. Ref is empty when
// creating.
type ProductForm struct {
	Ref         string
	Name        string
	Description string
	Price       string
	Stock       string
	Barcode     string
	Category    string
	ImageID     *int
}

// ProductFormFrom seeds the editor from an existing product.
func ProductFormFrom(p domain.Product) ProductForm {
	f := ProductForm{
		Ref:         p.Ref(),
		Name:        p.Name,
		Description: p.Description,
		Price:       decimal.NewFromFloat(p.Price).String(),
		Stock:       strconv.Itoa(p.Stock),
		Barcode:     p.Barcode,
	}
	if p.Category != nil {
		f.Category = strconv.Itoa(p.Category.ID)
	}
	if p.Image != nil {
		id := p.Image.ID
		f.ImageID = &id
	}
	return f
}

// Editing reports whether the form updates an existing product.
func (f ProductForm) Editing() bool { return f.Ref != "" }

// Validate returns domain.FieldErrors for every missing or non-positive field.
func (f ProductForm) Validate() error {
	fe := domain.FieldErrors{}
	if strings.TrimSpace(f.Name) == "" {
		fe.Add("name", "Name is required")
	}
	if price, err := decimal.NewFromString(strings.TrimSpace(f.Price)); err != nil || !price.IsPositive() {
		fe.Add("price", "Price is required")
	}
	if stock, err := strconv.Atoi(strings.TrimSpace(f.Stock)); err != nil || stock <= 0 {
		fe.Add("stock", "Stock is required")
	}
	if strings.TrimSpace(f.Barcode) == "" {
		fe.Add("barcode", "Barcode is required")
	}
	if strings.TrimSpace(f.Category) == "" {
		fe.Add("category", "Category is required")
	}
	return fe.Err()
}

// Payload converts a validated form.
func (f ProductForm) Payload() domain.ProductPayload {
	price, _ := decimal.NewFromString(strings.TrimSpace(f.Price))
	stock, _ := strconv.Atoi(strings.TrimSpace(f.Stock))
	return domain.ProductPayload{
		Name:        strings.TrimSpace(f.Name),
		Description: strings.TrimSpace(f.Description),
		Price:       price.InexactFloat64(),
		Stock:       stock,
		Barcode:     strings.TrimSpace(f.Barcode),
		Category:    strings.TrimSpace(f.Category),
		Image:       f.ImageID,
	}
}

// CategoryForm holds the category editor. Ref is empty when creating.
type CategoryForm struct {
	Ref         string
	Name        string
	Description string
}

// CategoryFormFrom seeds the editor from an existing category.
func CategoryFormFrom(c domain.Category) CategoryForm {
	return CategoryForm{Ref: c.Ref(), Name: c.Name, Description: c.Description}
}

// Editing reports whether the form updates an existing category.
func (f CategoryForm) Editing() bool { return f.Ref != "" }

// Validate enforces a 1..40 character name and, when given, a 5..200
// character description.
func (f CategoryForm) Validate() error {
	fe := domain.FieldErrors{}
	name := utf8.RuneCountInString(strings.TrimSpace(f.Name))
	switch {
	case name == 0:
		fe.Add("name", "Name is required")
	case name > 40:
		fe.Add("name", "Name must be at most 40 characters")
	}
	if desc := utf8.RuneCountInString(strings.TrimSpace(f.Description)); desc > 0 {
		if desc < 5 {
			fe.Add("description", "Description must be at least 5 characters")
		} else if desc > 200 {
			fe.Add("description", "Description must be at most 200 characters")
		}
	}
	return fe.Err()
}

// Payload converts a validated form.
func (f CategoryForm) Payload() domain.CategoryPayload {
	return domain.CategoryPayload{
		Name:        strings.TrimSpace(f.Name),
		Description: strings.TrimSpace(f.Description),
	}
}
