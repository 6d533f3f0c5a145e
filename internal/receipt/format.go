package receipt

import (
	"github.com/shopspring/decimal"

	"posapi/internal/model"
)

// Line is one normalized receipt line. Both the PDF renderer and the email
// summary consume this, so the single-vs-multi item branching lives in exactly
// one place.
type Line struct {
	ProductName string
	Quantity    int
	UnitPrice   float64
	Total       float64
}

// Lines normalizes a request into its receipt lines according to its item mode.
func Lines(req model.ReceiptRequest) []Line {
	if !req.IsMultiple {
		return []Line{{
			ProductName: req.ProductName,
			Quantity:    req.Quantity,
			UnitPrice:   req.Price,
			Total:       req.TotalPrice,
		}}
	}

	out := make([]Line, 0, len(req.Items))
	for _, it := range req.Items {
		out = append(out, Line{
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.Price,
			Total:       it.TotalPrice,
		})
	}
	return out
}

// FormatMoney renders an amount with the currency symbol and exactly two
// decimal places.
func FormatMoney(symbol string, amount float64) string {
	return symbol + decimal.NewFromFloat(amount).StringFixed(2)
}
