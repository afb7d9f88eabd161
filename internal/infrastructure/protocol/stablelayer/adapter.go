package stablelayer

import (
	"context"
	"fmt"
	"strings"

	"github.com/StarryDeserts/StableLayer-quickstart/internal/core/domain"
	"github.com/StarryDeserts/StableLayer-quickstart/internal/core/ports"
	"github.com/StarryDeserts/StableLayer-quickstart/internal/utils"
	"github.com/StarryDeserts/StableLayer-quickstart/pkg/amount"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const stableModule = "stable_layer"

type adapter struct {
	configs      map[domain.Network]Config
	capabilities utils.SupportedType[ports.Capability]
	balances     ports.BalanceReader
}

// NewAdapter builds protocol operations for the brands listed in
// capabilities, on networks with a valid config. The balance reader, if
// any, is used to check the sender owns USDC before minting.
func NewAdapter(
	configs map[domain.Network]Config, capabilities []ports.Capability,
	balances ports.BalanceReader,
) (ports.ProtocolAdapter, error) {
	supported := make(utils.SupportedType[ports.Capability])
	for _, c := range capabilities {
		cfg, ok := configs[c.Network]
		if !ok {
			return nil, fmt.Errorf("missing protocol config for %s", c.Network)
		}
		if !cfg.IsValid() {
			log.Warnf(
				"protocol config for %s is invalid (%s), skipping %s",
				c.Network, strings.Join(cfg.Errors(), ", "), c.CoinType,
			)
			continue
		}
		if !domain.IsValidCoinType(c.CoinType) {
			return nil, fmt.Errorf("invalid coin type %q", c.CoinType)
		}
		supported[capabilityKey(c.Network, c.CoinType)] = c
	}
	if len(supported) <= 0 {
		return nil, fmt.Errorf("no usable capability")
	}

	return &adapter{configs, supported, balances}, nil
}

// DefaultCapabilities is what the deployed protocol supports: btcUSDC on
// mainnet, T+1 redeems only.
func DefaultCapabilities() []ports.Capability {
	return []ports.Capability{
		{
			Network:     domain.Mainnet,
			CoinType:    domain.BtcUSDCCoinType,
			RedeemModes: []domain.RedeemMode{domain.RedeemTPlus1},
		},
	}
}

func (a *adapter) Capabilities() []ports.Capability {
	list := make([]ports.Capability, 0, len(a.capabilities))
	for _, c := range a.capabilities {
		list = append(list, c)
	}
	return list
}

func (a *adapter) BuildMint(ctx context.Context, args ports.MintArgs) (*ports.BuildResult, error) {
	if err := validateSender(args.Sender); err != nil {
		return nil, err
	}
	if err := validateCoinType(args.BrandCoinType, "brand coin type"); err != nil {
		return nil, err
	}
	if err := validateCoinType(args.USDCCoinType, "USDC coin type"); err != nil {
		return nil, err
	}
	if !args.Amount.IsPositive() {
		return nil, fmt.Errorf("mint amount must be greater than 0")
	}
	capability, err := a.capability(args.Network, args.BrandCoinType)
	if err != nil {
		return nil, err
	}

	if a.balances != nil {
		owned, err := a.balances.Balance(ctx, args.Network, args.Sender, args.USDCCoinType)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch USDC coins: %s", err)
		}
		if owned.IsZero() {
			return nil, ports.NewFailure(
				ports.KindInsufficientBalance, "Insufficient USDC: no USDC coins in wallet",
			)
		}
	}

	op := a.operation(domain.ActionMint, args.Network, args.Sender, capability.CoinType, "mint")
	op.USDCCoinType = args.USDCCoinType
	op.Amount = args.Amount

	return &ports.BuildResult{
		Operation: op,
		Summary: ports.Summary{
			Operation:       domain.ActionMint,
			BrandCoinType:   args.BrandCoinType,
			AmountFormatted: amount.Format(args.Amount, args.Decimals),
		},
	}, nil
}

func (a *adapter) BuildRedeem(_ context.Context, args ports.RedeemArgs) (*ports.BuildResult, error) {
	if err := validateSender(args.Sender); err != nil {
		return nil, err
	}
	if err := validateCoinType(args.BrandCoinType, "brand coin type"); err != nil {
		return nil, err
	}

	hasAmount := !args.Amount.IsZero()
	if !hasAmount && !args.All {
		return nil, fmt.Errorf("redeem requires an amount greater than 0 or all")
	}
	if hasAmount && args.All {
		return nil, fmt.Errorf("redeem accepts either an amount or all, not both")
	}

	capability, err := a.capability(args.Network, args.BrandCoinType)
	if err != nil {
		return nil, err
	}
	if !supportsMode(capability, args.Mode) {
		return nil, fmt.Errorf("redeem mode %q not supported for %s", args.Mode, args.BrandCoinType)
	}

	op := a.operation(domain.ActionRedeem, args.Network, args.Sender, capability.CoinType, "burn")
	op.Amount = args.Amount
	op.All = args.All
	op.Mode = args.Mode

	summary := ports.Summary{
		Operation:     domain.ActionRedeem,
		BrandCoinType: args.BrandCoinType,
		Mode:          args.Mode,
	}
	if args.All {
		summary.AmountFormatted = "ALL"
	} else {
		summary.AmountFormatted = amount.Format(args.Amount, args.Decimals)
	}
	if args.Mode == domain.RedeemTPlus1 {
		summary.Notes = []string{"T+1 redeem, USDC is expected to settle the next day"}
	}

	return &ports.BuildResult{Operation: op, Summary: summary}, nil
}

func (a *adapter) BuildClaim(_ context.Context, args ports.ClaimArgs) (*ports.BuildResult, error) {
	if err := validateSender(args.Sender); err != nil {
		return nil, err
	}
	if err := validateCoinType(args.BrandCoinType, "brand coin type"); err != nil {
		return nil, err
	}
	capability, err := a.capability(args.Network, args.BrandCoinType)
	if err != nil {
		return nil, err
	}

	op := a.operation(domain.ActionClaim, args.Network, args.Sender, capability.CoinType, "claim")

	return &ports.BuildResult{
		Operation: op,
		Summary: ports.Summary{
			Operation:     domain.ActionClaim,
			BrandCoinType: args.BrandCoinType,
		},
	}, nil
}

func (a *adapter) capability(network domain.Network, coinType string) (ports.Capability, error) {
	if c, ok := a.capabilities[capabilityKey(network, coinType)]; ok {
		return c, nil
	}

	networks := make(map[domain.Network]struct{})
	for _, c := range a.capabilities {
		networks[c.Network] = struct{}{}
	}
	if _, ok := networks[network]; !ok {
		return ports.Capability{}, fmt.Errorf(
			"network %s not supported, supported: %s", network, a.capabilities,
		)
	}
	return ports.Capability{}, fmt.Errorf(
		"coin type %s not supported on %s, supported: %s", coinType, network, a.capabilities,
	)
}

func (a *adapter) operation(
	action domain.Action, network domain.Network, sender, coinType, function string,
) ports.Operation {
	return ports.Operation{
		ID:            uuid.New().String(),
		Action:        action,
		Network:       network,
		Sender:        sender,
		Target:        a.configs[network].target(stableModule, function),
		BrandCoinType: coinType,
	}
}

func capabilityKey(network domain.Network, coinType string) string {
	return fmt.Sprintf("%s/%s", network, coinType)
}

func supportsMode(c ports.Capability, mode domain.RedeemMode) bool {
	for _, m := range c.RedeemModes {
		if m == mode {
			return true
		}
	}
	return false
}

func validateSender(sender string) error {
	if len(sender) <= 0 {
		return fmt.Errorf("missing sender address")
	}
	if !strings.HasPrefix(sender, "0x") {
		return fmt.Errorf("invalid sender address %q, must start with 0x", sender)
	}
	return nil
}

func validateCoinType(coinType, field string) error {
	if len(coinType) <= 0 {
		return fmt.Errorf("missing %s", field)
	}
	if coinType == domain.PlaceholderCoinType {
		return fmt.Errorf("%s not configured", field)
	}
	if !strings.Contains(coinType, "::") {
		return fmt.Errorf("malformed %s %q, expected a :: separator", field, coinType)
	}
	return nil
}
