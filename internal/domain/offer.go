package domain

// Offer labels.
const (
	LabelNoData    = "No data yet"
	LabelBasic     = "Basic"
	LabelDetailed  = "Detailed"
	LabelHighValue = "High-value"
)

// Offer is the computed value of the entries currently held.
type Offer struct {
	Amount int    `json:"amount"`
	Label  string `json:"label"`
}

// NoOffer is returned when there is nothing to value.
var NoOffer = Offer{Amount: 0, Label: LabelNoData}
