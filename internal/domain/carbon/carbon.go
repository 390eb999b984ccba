// Package carbon estimates the CO2 avoided by buying a second-hand product
// instead of a new one, based on per-category emission factors.
package carbon

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Emission factors in kg CO2 per kg of product.
var (
	electronicsFactor = decimal.RequireFromString("45.2")
	furnitureFactor   = decimal.RequireFromString("12.8")
	booksFactor       = decimal.RequireFromString("2.7")
	clothingFactor    = decimal.RequireFromString("15.1")
	defaultFactor     = decimal.RequireFromString("10.0")
)

// transportFactor is the fraction of new-product emissions attributed to a
// second-hand sale (transport and handling only).
var transportFactor = decimal.RequireFromString("0.15")

// factorsByCategory maps lowercase category names to emission factors.
var factorsByCategory = map[string]decimal.Decimal{
	"electronics": electronicsFactor,
	"computers":   electronicsFactor,
	"phones":      electronicsFactor,
	"gadgets":     electronicsFactor,
	"furniture":   furnitureFactor,
	"home":        furnitureFactor,
	"appliances":  furnitureFactor,
	"books":       booksFactor,
	"education":   booksFactor,
	"textbooks":   booksFactor,
	"clothing":    clothingFactor,
	"fashion":     clothingFactor,
	"apparel":     clothingFactor,
}

// Category describes the product category inputs the model needs. Name is
// matched case-insensitively against the known factor table; Factor is the
// category's own configured fallback.
type Category struct {
	Name   string
	Factor *decimal.Decimal
}

// Savings estimates the kg CO2 avoided by selling a product second-hand.
// A nil weight is treated as 1 kg. The result is rounded to 2 decimal
// places, half-up. It never fails: unknown categories fall back to the
// category's own factor, then to the default factor.
func Savings(weightKg *decimal.Decimal, category *Category) decimal.Decimal {
	weight := decimal.NewFromInt(1)
	if weightKg != nil {
		weight = *weightKg
	}

	newEmissions := weight.Mul(emissionFactor(category))
	secondHandEmissions := newEmissions.Mul(transportFactor)

	return newEmissions.Sub(secondHandEmissions).Round(2)
}

// TreesEquivalent converts saved CO2 into a yearly tree-absorption
// equivalent (one tree absorbs roughly 21.77 kg CO2 per year), 2dp half-up.
func TreesEquivalent(co2Saved decimal.Decimal) decimal.Decimal {
	return co2Saved.DivRound(decimal.RequireFromString("21.77"), 2)
}

// WaterSavedLiters estimates the liters of water saved per kg CO2 avoided,
// rounded to whole liters, half-up.
func WaterSavedLiters(co2Saved decimal.Decimal) decimal.Decimal {
	return co2Saved.Mul(decimal.RequireFromString("45.2")).Round(0)
}

func emissionFactor(category *Category) decimal.Decimal {
	if category == nil {
		return defaultFactor
	}

	if f, ok := factorsByCategory[strings.ToLower(category.Name)]; ok {
		return f
	}

	if category.Factor != nil {
		return *category.Factor
	}
	return defaultFactor
}
