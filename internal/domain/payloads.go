package domain

// SaleLinePayload is one product line of a new sale. Product is the stringified
// product id.
type SaleLinePayload struct {
	Product  string  `json:"product"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// SalePayload is the body of a sale transaction.
type SalePayload struct {
	CustomerName   string            `json:"customer_name"`
	InvoiceNumber  string            `json:"invoice_number"`
	CustomerEmail  string            `json:"customer_email,omitempty"`
	CustomerPhone  string            `json:"customer_phone,omitempty"`
	Date           string            `json:"date"`
	Notes          string            `json:"notes,omitempty"`
	Products       []SaleLinePayload `json:"products"`
	Subtotal       float64           `json:"subtotal"`
	DiscountAmount float64           `json:"discount_amount"`
	TaxAmount      float64           `json:"tax_amount"`
	Total          float64           `json:"total"`
}

// ProductPayload is the body of a product create or update. Category and Image
// are relation ids.
type ProductPayload struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Barcode     string  `json:"barcode"`
	Category    string  `json:"category"`
	Image       *int    `json:"image,omitempty"`
}

// CategoryPayload is the body of a category create or update.
type CategoryPayload struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Credentials is the body of a local login.
type Credentials struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// Registration is the body of an account sign-up.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is the result of a successful login.
type Session struct {
	JWT  string `json:"jwt"`
	User User   `json:"user"`
}
