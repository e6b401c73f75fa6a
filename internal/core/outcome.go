package core

// Outcome is the routing result of a relayed event.
type Outcome int

const (
	OutcomeDropped Outcome = iota
	OutcomeDelivered
	OutcomeNotified
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDelivered:
		return "delivered"
	case OutcomeNotified:
		return "notified"
	default:
		return "dropped"
	}
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}
