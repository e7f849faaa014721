package events

// Payloads shared by producers and consumers.

type UserRegistered struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type PasswordResetRequested struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Code      string `json:"code"`
	ExpiresIn int    `json:"expires_in_minutes"`
}

type OrderLine struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type OrderCreated struct {
	OrderID       string      `json:"order_id"`
	OrderNumber   string      `json:"order_number"`
	ShopID        string      `json:"shop_id"`
	UserID        string      `json:"user_id,omitempty"`
	CustomerName  string      `json:"customer_name"`
	Email         string      `json:"email"`
	Phone         string      `json:"phone"`
	PaymentMethod string      `json:"payment_method"`
	OrderStatus   string      `json:"order_status"`
	PaymentStatus string      `json:"payment_status"`
	GrandTotal    float64     `json:"grand_total"`
	Items         []OrderLine `json:"items"`
}

type OrderStatusChanged struct {
	OrderID       string `json:"order_id"`
	OrderNumber   string `json:"order_number"`
	ShopID        string `json:"shop_id"`
	CustomerName  string `json:"customer_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	FromStatus    string `json:"from_status"`
	ToStatus      string `json:"to_status"`
	PaymentStatus string `json:"payment_status"`
	Note          string `json:"note,omitempty"`
}

type PaymentResult struct {
	PaymentID   string  `json:"payment_id"`
	OrderID     string  `json:"order_id"`
	Provider    string  `json:"provider"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Status      string  `json:"status"`
	ProviderRef string  `json:"provider_ref,omitempty"`
	Email       string  `json:"email,omitempty"`
	Phone       string  `json:"phone,omitempty"`
	Reason      string  `json:"reason,omitempty"`
}

// StockChanged carries the row version; consumers drop events older than
// the last one applied, since queue delivery is unordered.
type StockChanged struct {
	ProductID  string `json:"product_id"`
	ShopID     string `json:"shop_id"`
	Quantity   int    `json:"quantity"`
	Reserved   int    `json:"reserved"`
	Available  int    `json:"available"`
	Status     string `json:"status"`
	ChangeType string `json:"change_type"`
	Version    int64  `json:"version"`
}
