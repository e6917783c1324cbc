package order

// Payment methods accepted at checkout.
const (
	PaymentCOD   = "COD"
	PaymentVNPay = "VNPAY"
	PaymentMoMo  = "MOMO"
)

// paymentPaths maps a payment method to its gateway path segment.
var paymentPaths = map[string]string{
	PaymentVNPay: "vn_pay",
	PaymentMoMo:  "momo",
}

const defaultPaymentPath = "vn_pay"

// PlaceInput is the checkout request.
type PlaceInput struct {
	CartItemIDs     []int64 `json:"cartItemIds" validate:"required,min=1,dive,gt=0"`
	ShippingName    string  `json:"shippingName" validate:"required"`
	ShippingPhone   string  `json:"shippingPhone" validate:"required"`
	ShippingAddress string  `json:"shippingAddress" validate:"required"`
	Note            string  `json:"note,omitempty"`
	PaymentMethod   string  `json:"paymentMethod" validate:"omitempty,oneof=COD VNPAY MOMO"`
}

// Item is an order line.
type Item struct {
	ID               int64   `json:"id"`
	ProductID        int64   `json:"productId"`
	ProductName      string  `json:"productName"`
	ProductThumbnail string  `json:"productThumbnail,omitempty"`
	Quantity         int     `json:"quantity"`
	UnitPrice        float64 `json:"unitPrice"`
	TotalPrice       float64 `json:"totalPrice"`
}

// Payment describes how an order was paid.
type Payment struct {
	Method        string `json:"method"`
	Status        string `json:"status"`
	TransactionID string `json:"transactionId,omitempty"`
	PaidAt        string `json:"paidAt,omitempty"`
}

// Order is a placed order.
type Order struct {
	ID              int64    `json:"id"`
	OrderCode       string   `json:"orderCode"`
	CustomerID      int64    `json:"customerId"`
	CustomerName    string   `json:"customerName"`
	Items           []Item   `json:"items"`
	Subtotal        float64  `json:"subtotal"`
	ShippingFee     float64  `json:"shippingFee"`
	TotalAmount     float64  `json:"totalAmount"`
	ShippingName    string   `json:"shippingName"`
	ShippingPhone   string   `json:"shippingPhone"`
	ShippingAddress string   `json:"shippingAddress"`
	Note            string   `json:"note,omitempty"`
	Status          string   `json:"status"`
	Payment         *Payment `json:"payment,omitempty"`
	CreatedAt       string   `json:"createdAt,omitempty"`
}
