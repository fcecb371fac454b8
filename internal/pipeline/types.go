package pipeline

// NotAvailable is the sentinel for a text attribute the message does not mention.
const NotAvailable = "N/A"

// Class is the coarse intent of a message.
type Class string

const (
	BuyingRequest Class = "BUYING_REQUEST"
	Other         Class = "OTHER"
)

// Extraction holds the product attributes read from a message. OK is false
// when the model gave no usable answer; callers must show such rows as failed
// rather than drop them.
type Extraction struct {
	OK           bool   `json:"ok"`
	Product      string `json:"product"`
	Make         string `json:"make"`
	Type         string `json:"type"`
	Year         string `json:"year"`
	PriceKSh     int64  `json:"price_ksh"`
	OtherDetails string `json:"other_details"`
}

// FraudFinding is a phone number a message reports as fraudulent.
// PhoneNumber is canonical.
type FraudFinding struct {
	PhoneNumber string
	Reason      string
}
