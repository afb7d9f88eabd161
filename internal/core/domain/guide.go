package domain

import "github.com/shopspring/decimal"

const (
	StepMint   StepKey = "mint"
	StepRedeem StepKey = "redeem"
	StepClaim  StepKey = "claim"
)

const (
	StepCurrent StepStatus = iota
	StepDone
	StepPending
	StepLocked
)

const (
	ReasonWalletNotConnected     = "connect a wallet first"
	ReasonBrandNotConfigured     = "brand not configured, coin type is " + PlaceholderCoinType
	ReasonInsufficientUSDC       = "insufficient USDC balance"
	ReasonInsufficientBrandFunds = "insufficient brand balance"
)

type StepKey string

func (k StepKey) String() string {
	return string(k)
}

func (k StepKey) Action() Action {
	return Action(k)
}

func ParseStepKey(s string) (StepKey, bool) {
	switch k := StepKey(s); k {
	case StepMint, StepRedeem, StepClaim:
		return k, true
	default:
		return "", false
	}
}

type StepStatus int

func (s StepStatus) String() string {
	switch s {
	case StepDone:
		return "done"
	case StepPending:
		return "pending"
	case StepLocked:
		return "locked"
	default:
		return "current"
	}
}

type Step struct {
	Key            StepKey
	Title          string
	Subtitle       string
	Status         StepStatus
	BlockingReason string
}

func (s Step) Icon() string {
	switch s.Status {
	case StepDone:
		return "✓"
	case StepPending:
		return "⏳"
	case StepLocked:
		return "🔒"
	default:
		return "▶"
	}
}

type GuideInput struct {
	WalletConnected bool
	BrandConfigured bool
	USDCBalance     decimal.Decimal
	BrandBalance    decimal.Decimal
	History         []TxRecord
	Pendings        []PendingRedeem
}

// LastSuccess returns the most recent successful record of a
// most-recent-first history.
func LastSuccess(history []TxRecord) (TxRecord, bool) {
	for _, r := range history {
		if r.IsSuccess() {
			return r, true
		}
	}
	return TxRecord{}, false
}

// DeriveSteps computes the status of the mint, redeem and claim steps.
// For each step the first matching rule wins.
func DeriveSteps(in GuideInput) [3]Step {
	last, hasLast := LastSuccess(in.History)
	lastIs := func(a Action) bool {
		return hasLast && last.Action == a
	}
	hasUSDC := in.USDCBalance.IsPositive()
	hasBrand := in.BrandBalance.IsPositive()

	mint := Step{
		Key:      StepMint,
		Title:    "Mint",
		Subtitle: "Deposit USDC to mint the brand stablecoin",
	}
	switch {
	case !in.WalletConnected:
		mint.Status, mint.BlockingReason = StepLocked, ReasonWalletNotConnected
	case !in.BrandConfigured:
		mint.Status, mint.BlockingReason = StepLocked, ReasonBrandNotConfigured
	case !hasUSDC:
		mint.Status, mint.BlockingReason = StepLocked, ReasonInsufficientUSDC
	case hasBrand || lastIs(ActionMint):
		mint.Status = StepDone
	}

	redeem := Step{
		Key:      StepRedeem,
		Title:    "Redeem",
		Subtitle: "Burn the stablecoin to get USDC back",
	}
	switch {
	case !in.WalletConnected:
		redeem.Status, redeem.BlockingReason = StepLocked, ReasonWalletNotConnected
	case !in.BrandConfigured:
		redeem.Status, redeem.BlockingReason = StepLocked, ReasonBrandNotConfigured
	case !hasBrand:
		redeem.Status, redeem.BlockingReason = StepLocked, ReasonInsufficientBrandFunds
	case len(in.Pendings) > 0 || lastIs(ActionRedeem):
		redeem.Status = StepPending
		redeem.Subtitle = "T+1 redeem submitted, settlement expected next day"
	}

	claim := Step{
		Key:      StepClaim,
		Title:    "Claim",
		Subtitle: "Claim liquidity mining rewards",
	}
	switch {
	case !in.WalletConnected:
		claim.Status, claim.BlockingReason = StepLocked, ReasonWalletNotConnected
	case !in.BrandConfigured:
		claim.Status, claim.BlockingReason = StepLocked, ReasonBrandNotConfigured
	case lastIs(ActionClaim):
		claim.Status = StepDone
	}

	return [3]Step{mint, redeem, claim}
}

func FindStep(steps [3]Step, key StepKey) (Step, bool) {
	for _, s := range steps {
		if s.Key == key {
			return s, true
		}
	}
	return Step{}, false
}

// NextStep is where the flow moves after action succeeded. Claim is the
// last step.
func NextStep(action Action) (StepKey, bool) {
	switch action {
	case ActionMint:
		return StepRedeem, true
	case ActionRedeem:
		return StepClaim, true
	default:
		return "", false
	}
}
