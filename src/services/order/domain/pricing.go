package domain

import "github.com/shopspring/decimal"

// TaxRate is applied uniformly to every order.
var TaxRate = decimal.RequireFromString("0.10")

const currencyPlaces = 2

type PriceBreakdown struct {
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// Price is the single owner of the order total rule: sum(quantity * price)
// plus TaxRate, each rounded to currency precision.
func Price(items []LineItem) PriceBreakdown {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	subtotal = subtotal.Round(currencyPlaces)
	tax := subtotal.Mul(TaxRate).Round(currencyPlaces)
	return PriceBreakdown{
		Subtotal:  subtotal,
		TaxAmount: tax,
		Total:     subtotal.Add(tax),
	}
}
