package ledger

import "strings"

// Kind tells sales and purchases apart. Both share one Ledger implementation.
type Kind string

const (
	KindSale     Kind = "SALE"
	KindPurchase Kind = "PURCHASE"
)

// Direction is the sign a kind applies to stock.
type Direction int

const (
	Outbound Direction = -1
	Inbound  Direction = 1
)

// Delta turns a positive line quantity into a signed stock change.
func (d Direction) Delta(quantity int) int {
	return int(d) * quantity
}

func (k Kind) Direction() Direction {
	if k == KindSale {
		return Outbound
	}
	return Inbound
}

func (k Kind) Valid() bool {
	return k == KindSale || k == KindPurchase
}

// ParseKind accepts the kind name or its plural route form ("sales", "purchases").
func ParseKind(s string) (Kind, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SALE", "SALES":
		return KindSale, true
	case "PURCHASE", "PURCHASES":
		return KindPurchase, true
	}
	return "", false
}

func (k Kind) label() string {
	return strings.ToLower(string(k))
}
