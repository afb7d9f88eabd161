package application

import (
	"errors"
	"strings"

	"github.com/StarryDeserts/StableLayer-quickstart/internal/core/ports"
)

const (
	CategoryUnknown Category = iota
	CategoryInsufficientDeposit
	CategoryInsufficientGas
	CategoryUserRejected
	CategoryInsufficientBalance
	CategoryContractAborted
)

type Category int

func (c Category) String() string {
	switch c {
	case CategoryInsufficientDeposit:
		return "insufficient-protocol-deposit"
	case CategoryInsufficientGas:
		return "insufficient-gas"
	case CategoryUserRejected:
		return "user-rejected-signature"
	case CategoryInsufficientBalance:
		return "insufficient-token-balance"
	case CategoryContractAborted:
		return "contract-aborted"
	default:
		return "unknown"
	}
}

// Classification is a user facing explanation of a failed operation.
type Classification struct {
	Category Category
	Friendly string
	Details  string
	Raw      string
}

type explanation struct {
	friendly string
	details  string
}

var explanations = map[Category]explanation{
	CategoryInsufficientDeposit: {
		friendly: "Insufficient redeemable deposit, or no redeemable position yet",
		details: "The protocol aborted with err_insufficient_deposit (104). Possible causes:\n\n" +
			"Redeem\n" +
			"1. The brand coins came from a transfer instead of a protocol mint.\n" +
			"   Mint a small amount (e.g. 1 USDC) to open a deposit record.\n" +
			"2. The deposit record of a very recent mint is not available yet.\n" +
			"   Wait a few minutes and retry.\n" +
			"3. A previous T+1 redeem has not settled yet.\n" +
			"   Check the pending redeems and wait for settlement.\n\n" +
			"Claim\n" +
			"4. There are no rewards to claim yet.\n" +
			"   Wait for liquidity mining rewards to accrue.\n" +
			"5. The account never minted through the protocol.\n" +
			"   Mint first to open a deposit.",
	},
	CategoryInsufficientGas: {
		friendly: "Not enough SUI to pay for gas",
		details:  "Make sure the wallet holds enough SUI to cover the transaction fee, usually 0.01 to 0.1 SUI.",
	},
	CategoryUserRejected: {
		friendly: "Signature request rejected",
		details:  "The signature was cancelled in the wallet, nothing was submitted on chain.",
	},
	CategoryInsufficientBalance: {
		friendly: "Insufficient token balance",
		details:  "The wallet does not hold enough tokens for this operation. Check the balances and retry.",
	},
	CategoryContractAborted: {
		friendly: "Contract execution aborted on chain",
		details: "The contract aborted the transaction, likely because a precondition on balance, " +
			"permissions or state was not met. Check the inputs and the account state.",
	},
	CategoryUnknown: {
		friendly: "Transaction failed",
		details:  "See the raw error below for details.",
	},
}

// Substring rules in priority order, the first match wins.
var messageRules = []struct {
	category Category
	patterns []string
}{
	{CategoryInsufficientDeposit, []string{"err_insufficient_deposit", "function: 104"}},
	{CategoryInsufficientGas, []string{"InsufficientGas", "gas"}},
	{CategoryUserRejected, []string{"reject", "denied", "cancel"}},
	{CategoryInsufficientBalance, []string{"Insufficient", "balance"}},
	{CategoryContractAborted, []string{"MoveAbort"}},
}

var failureCategories = map[ports.FailureKind]Category{
	ports.KindInsufficientDeposit: CategoryInsufficientDeposit,
	ports.KindInsufficientGas:     CategoryInsufficientGas,
	ports.KindRejected:            CategoryUserRejected,
	ports.KindInsufficientBalance: CategoryInsufficientBalance,
	ports.KindAborted:             CategoryContractAborted,
}

// Classify explains err, trusting a kind tagged by the adapter before
// falling back to matching the message.
func Classify(err error) Classification {
	if err == nil {
		return ClassifyMessage("")
	}

	var failure *ports.Failure
	if errors.As(err, &failure) {
		if category, ok := failureCategories[failure.Kind]; ok {
			return newClassification(category, err.Error())
		}
	}
	return ClassifyMessage(err.Error())
}

// ClassifyMessage explains a raw failure message.
func ClassifyMessage(msg string) Classification {
	for _, rule := range messageRules {
		for _, p := range rule.patterns {
			if strings.Contains(msg, p) {
				return newClassification(rule.category, msg)
			}
		}
	}
	return newClassification(CategoryUnknown, msg)
}

func newClassification(category Category, raw string) Classification {
	if len(raw) <= 0 {
		raw = "unknown error"
	}
	e := explanations[category]
	return Classification{
		Category: category,
		Friendly: e.friendly,
		Details:  e.details,
		Raw:      raw,
	}
}
