package gatewayprotocol

const (
	Created    PaymentStatus = "created"
	Authorized PaymentStatus = "authorized"
	Captured   PaymentStatus = "captured"
	Refunded   PaymentStatus = "refunded"
	Failed     PaymentStatus = "failed"
)

type PaymentStatus string

// OrderRequest amounts are in minor units (paise for INR).
type OrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type Order struct {
	ID         string `json:"id"`
	Entity     string `json:"entity"`
	Amount     int64  `json:"amount"`
	AmountPaid int64  `json:"amount_paid"`
	AmountDue  int64  `json:"amount_due"`
	Currency   string `json:"currency"`
	Receipt    string `json:"receipt"`
	Status     string `json:"status"`
	Attempts   int    `json:"attempts"`
	CreatedAt  int64  `json:"created_at"`
}

type Payment struct {
	ID        string        `json:"id"`
	Entity    string        `json:"entity"`
	Amount    int64         `json:"amount"`
	Currency  string        `json:"currency"`
	Status    PaymentStatus `json:"status"`
	OrderID   string        `json:"order_id"`
	Method    string        `json:"method"`
	Captured  bool          `json:"captured"`
	Email     string        `json:"email"`
	CreatedAt int64         `json:"created_at"`
}

type PaymentCollection struct {
	Entity string    `json:"entity"`
	Count  int       `json:"count"`
	Items  []Payment `json:"items"`
}

type ErrorResponse struct {
	Error ErrorDetails `json:"error"`
}

type ErrorDetails struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Field       string `json:"field,omitempty"`
	Source      string `json:"source,omitempty"`
	Reason      string `json:"reason,omitempty"`
}
