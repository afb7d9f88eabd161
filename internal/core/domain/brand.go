package domain

import (
	"fmt"
	"slices"
	"strings"
)

type RedeemMode string

const (
	RedeemTPlus1  RedeemMode = "t_plus_1"
	RedeemInstant RedeemMode = "instant"
)

const (
	BtcUSDCBrandKey = "btcUSDC"
	BtcUSDCCoinType = "0x6d9fc33611f4881a3f5c0cd4899d95a862236ce52b3a38fef039077b0c5b5834::btc_usdc::BtcUSDC"

	DefaultBrandKey = BtcUSDCBrandKey

	// PlaceholderCoinType marks a brand whose coin type was never filled in.
	PlaceholderCoinType = "TODO_REPLACE_ME"
)

type Brand struct {
	Key                  string
	DisplayName          string
	CoinType             string
	SupportedRedeemModes []RedeemMode
	Tags                 []string
	Notes                string
}

var brands = []Brand{
	{
		Key:                  BtcUSDCBrandKey,
		DisplayName:          "btcUSDC",
		CoinType:             BtcUSDCCoinType,
		SupportedRedeemModes: []RedeemMode{RedeemTPlus1},
		Tags:                 []string{"stable", "mainnet-only"},
		Notes:                "only mainnet btcUSDC is supported",
	},
}

func Brands() []Brand {
	return append([]Brand{}, brands...)
}

func BrandByKey(key string) (Brand, bool) {
	for _, b := range brands {
		if b.Key == key {
			return b, true
		}
	}
	return Brand{}, false
}

func DefaultBrand() Brand {
	if b, ok := BrandByKey(DefaultBrandKey); ok {
		return b
	}
	return brands[0]
}

// IsConfigured reports whether the brand can be used to build transactions.
func (b Brand) IsConfigured() bool {
	return IsValidCoinType(b.CoinType)
}

func (b Brand) ConfigErrors() []string {
	errs := make([]string, 0)
	if b.CoinType == PlaceholderCoinType || len(b.CoinType) <= 0 {
		errs = append(errs, "coin type not configured")
	} else if !strings.Contains(b.CoinType, "::") {
		errs = append(errs, "malformed coin type, expected <address>::<module>::<name>")
	}
	if len(b.SupportedRedeemModes) <= 0 {
		errs = append(errs, "no supported redeem mode")
	}
	return errs
}

func (b Brand) SupportsRedeemMode(mode RedeemMode) bool {
	return slices.Contains(b.SupportedRedeemModes, mode)
}

func (b Brand) String() string {
	return fmt.Sprintf("%s (%s)", b.DisplayName, b.CoinType)
}

func IsValidCoinType(coinType string) bool {
	return len(coinType) > 0 &&
		coinType != PlaceholderCoinType &&
		strings.Contains(coinType, "::")
}
