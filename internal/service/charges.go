package service

import "shop-manager/internal/domain"

// DefaultChargeTiers is the standard withdrawal fee schedule. Brackets
// are inclusive on both ends; amounts above the highest bracket fall
// through to zero.
var DefaultChargeTiers = []domain.ChargeTier{
	{Min: 0, Max: 5000, Charge: 100},
	{Min: 5001, Max: 10000, Charge: 200},
	{Min: 10001, Max: 20000, Charge: 500},
	{Min: 20001, Max: 50000, Charge: 1000},
	{Min: 50001, Max: 1000000, Charge: 2000},
}

// ServiceChargeFor maps a withdrawal amount to its flat fee.
func ServiceChargeFor(tiers []domain.ChargeTier, amount float64) float64 {
	for _, tier := range tiers {
		if amount >= tier.Min && amount <= tier.Max {
			return tier.Charge
		}
	}
	return 0
}
