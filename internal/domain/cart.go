package domain

// GuestLinePrefix prefixes the synthesized id of an anonymous cart line.
const GuestLinePrefix = "guest-"

// CartLine is one line of a cart. For signed-in users ID is the cart_items row id;
// for guests it is GuestLineID(product id).
type CartLine struct {
	ID       string          `json:"id"`
	Quantity int             `json:"quantity"`
	Product  ProductSnapshot `json:"products"`
}

// GuestLineID returns the synthesized line id for productID.
func GuestLineID(productID string) string {
	return GuestLinePrefix + productID
}

// CountItems sums the quantities of lines.
func CountItems(lines []CartLine) int {
	total := 0
	for _, l := range lines {
		total += l.Quantity
	}
	return total
}
