// Package rates holds the conversion and reward constants of the economy.
package rates

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Asset is a conversion target for MokTokens.
type Asset string

const (
	AssetCash        Asset = "cash"
	AssetUSDC        Asset = "usdc"
	AssetTravelMiles Asset = "travel_miles"
)

// ParseAsset validates an asset name.
func ParseAsset(s string) (Asset, error) {
	switch a := Asset(s); a {
	case AssetCash, AssetUSDC, AssetTravelMiles:
		return a, nil
	}
	return "", fmt.Errorf("unknown asset %q", s)
}

// Table is the global rate and reward-rule configuration.
type Table struct {
	TokenToCash        decimal.Decimal
	TokenToUSDC        decimal.Decimal
	TokenToTravelMiles decimal.Decimal

	// Applied per unit moved into investment.
	InvestTokenReward decimal.Decimal
	InvestXPReward    decimal.Decimal
	// Applied per unit moved out of investment.
	WithdrawTokenPenalty decimal.Decimal
	WithdrawXPPenalty    decimal.Decimal

	MissionXPMultiplier decimal.Decimal
	// Learning tokens are xp / LearningTokenDivisor.
	LearningTokenDivisor int64

	LevelStep int64
}

// Default returns the stock rate table.
func Default() Table {
	return Table{
		TokenToCash:          decimal.RequireFromString("0.01"),
		TokenToUSDC:          decimal.RequireFromString("0.01"),
		TokenToTravelMiles:   decimal.RequireFromString("0.5"),
		InvestTokenReward:    decimal.NewFromInt(2),
		InvestXPReward:       decimal.NewFromInt(3),
		WithdrawTokenPenalty: decimal.NewFromInt(2),
		WithdrawXPPenalty:    decimal.NewFromInt(3),
		MissionXPMultiplier:  decimal.RequireFromString("1.5"),
		LearningTokenDivisor: 2,
		LevelStep:            250,
	}
}

// Rate returns the token conversion rate for an asset.
func (t Table) Rate(a Asset) (decimal.Decimal, error) {
	switch a {
	case AssetCash:
		return t.TokenToCash, nil
	case AssetUSDC:
		return t.TokenToUSDC, nil
	case AssetTravelMiles:
		return t.TokenToTravelMiles, nil
	}
	return decimal.Zero, fmt.Errorf("unknown asset %q", a)
}

// Validate rejects tables that would break ledger invariants.
func (t Table) Validate() error {
	positive := map[string]decimal.Decimal{
		"token_to_cash":         t.TokenToCash,
		"token_to_usdc":         t.TokenToUSDC,
		"token_to_travel_miles": t.TokenToTravelMiles,
	}
	for name, v := range positive {
		if !v.IsPositive() {
			return fmt.Errorf("rate %s must be positive, got %s", name, v)
		}
	}
	nonNegative := map[string]decimal.Decimal{
		"invest_token_reward":    t.InvestTokenReward,
		"invest_xp_reward":       t.InvestXPReward,
		"withdraw_token_penalty": t.WithdrawTokenPenalty,
		"withdraw_xp_penalty":    t.WithdrawXPPenalty,
		"mission_xp_multiplier":  t.MissionXPMultiplier,
	}
	for name, v := range nonNegative {
		if v.IsNegative() {
			return fmt.Errorf("rate %s must not be negative, got %s", name, v)
		}
	}
	if t.LearningTokenDivisor <= 0 {
		return fmt.Errorf("learning_token_divisor must be positive, got %d", t.LearningTokenDivisor)
	}
	if t.LevelStep <= 0 {
		return fmt.Errorf("level_step must be positive, got %d", t.LevelStep)
	}
	return nil
}
