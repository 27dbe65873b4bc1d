package models

import "github.com/shopspring/decimal"

func init() {
	// Amounts travel as JSON numbers to match the frontend contract.
	decimal.MarshalJSONWithoutQuotes = true
}
