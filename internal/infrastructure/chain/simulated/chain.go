// Package simulated is an in-process stand-in for the chain: it signs and
// executes protocol operations against a ledger persisted in a KV store.
package simulated

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/StarryDeserts/StableLayer-quickstart/internal/core/domain"
	"github.com/StarryDeserts/StableLayer-quickstart/internal/core/ports"
	"github.com/StarryDeserts/StableLayer-quickstart/pkg/amount"
	"github.com/btcsuite/btcd/btcutil/base58"
	log "github.com/sirupsen/logrus"
)

const (
	SuiCoinType        = "0x2::sui::SUI"
	suiDecimals uint32 = 9

	// DefaultGasFee is 0.01 SUI.
	DefaultGasFee uint64 = 10_000_000
	// DefaultRewardRateBps accrues 0.1% of every mint as claimable USDC.
	DefaultRewardRateBps int64 = 10
	DefaultSettlePeriod        = 24 * time.Hour
)

type Config struct {
	Store         ports.KVStore
	GasFee        uint64
	RewardRateBps int64
	// SettlePeriod is how long a T+1 redeem takes to pay out.
	SettlePeriod time.Duration
	Now          func() time.Time
}

type Chain struct {
	store        ports.KVStore
	gasFee       amount.Amount
	rewardBps    int64
	settlePeriod time.Duration
	now          func() time.Time

	lock   *sync.Mutex
	reject bool
}

func NewChain(cfg Config) (*Chain, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("missing kv store")
	}
	if cfg.GasFee == 0 {
		cfg.GasFee = DefaultGasFee
	}
	if cfg.RewardRateBps <= 0 {
		cfg.RewardRateBps = DefaultRewardRateBps
	}
	if cfg.SettlePeriod <= 0 {
		cfg.SettlePeriod = DefaultSettlePeriod
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if _, err := loadLedger(cfg.Store); err != nil {
		return nil, err
	}

	return &Chain{
		store:        cfg.Store,
		gasFee:       amount.FromUint64(cfg.GasFee),
		rewardBps:    cfg.RewardRateBps,
		settlePeriod: cfg.SettlePeriod,
		now:          cfg.Now,
		lock:         &sync.Mutex{},
	}, nil
}

// RejectSignatures makes the wallet refuse every signature request until
// turned off again.
func (c *Chain) RejectSignatures(reject bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.reject = reject
}

// Faucet credits owner with v base units of coinType.
func (c *Chain) Faucet(network domain.Network, owner, coinType string, v amount.Amount) error {
	if !domain.IsValidCoinType(coinType) {
		return fmt.Errorf("invalid coin type %q", coinType)
	}
	return c.update(func(l *ledger) error {
		l.credit(account(network, owner), coinType, v)
		return nil
	})
}

func (c *Chain) Balance(
	_ context.Context, network domain.Network, owner, coinType string,
) (amount.Amount, error) {
	var balance amount.Amount
	err := c.update(func(l *ledger) error {
		balance = l.balance(account(network, owner), coinType)
		return nil
	})
	return balance, err
}

func (c *Chain) CoinMetadata(
	_ context.Context, network domain.Network, coinType string,
) (*ports.CoinMetadata, error) {
	netCfg, ok := network.Config()
	if !ok {
		return nil, fmt.Errorf("unknown network %s", network)
	}
	switch coinType {
	case netCfg.USDCCoinType:
		return &ports.CoinMetadata{Decimals: 6, Symbol: "USDC"}, nil
	case domain.BtcUSDCCoinType:
		return &ports.CoinMetadata{Decimals: 6, Symbol: "btcUSDC"}, nil
	case SuiCoinType:
		return &ports.CoinMetadata{Decimals: suiDecimals, Symbol: "SUI"}, nil
	default:
		return nil, fmt.Errorf("coin metadata not found for %s", coinType)
	}
}

// PendingSettlements returns the T+1 payouts not yet credited to owner.
func (c *Chain) PendingSettlements(network domain.Network, owner string) ([]amount.Amount, error) {
	list := make([]amount.Amount, 0)
	err := c.update(func(l *ledger) error {
		for _, s := range l.pendingSettlements(account(network, owner)) {
			list = append(list, s.Amount)
		}
		return nil
	})
	return list, err
}

func (c *Chain) SignAndSubmit(ctx context.Context, op ports.Operation) (*ports.SubmitResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.lock.Lock()
	reject := c.reject
	c.lock.Unlock()
	if reject {
		return nil, ports.NewFailure(ports.KindRejected, "User rejected the request")
	}

	var digest string
	err := c.update(func(l *ledger) error {
		if err := c.execute(l, op); err != nil {
			return err
		}
		l.Nonce++
		digest = makeDigest(op, l.Nonce)
		return nil
	})
	if err != nil {
		log.WithError(err).Debugf("simulated %s failed", op.Action)
		return nil, err
	}
	return &ports.SubmitResult{Digest: digest}, nil
}

func (c *Chain) execute(l *ledger, op ports.Operation) error {
	acc := account(op.Network, op.Sender)
	position := fmt.Sprintf("%s/%s", acc, op.BrandCoinType)

	if l.balance(acc, SuiCoinType).Cmp(c.gasFee) < 0 {
		return ports.NewFailure(
			ports.KindInsufficientGas,
			"InsufficientGas: balance of gas object is lower than the needed amount %s SUI",
			amount.Format(c.gasFee, suiDecimals),
		)
	}

	switch op.Action {
	case domain.ActionMint:
		if err := l.debit(acc, op.USDCCoinType, op.Amount); err != nil {
			return ports.NewFailure(
				ports.KindInsufficientBalance, "InsufficientCoinBalance in command 0: %s", err,
			)
		}
		l.credit(acc, op.BrandCoinType, op.Amount)
		l.Deposits[position] = l.deposit(position).Add(op.Amount)
		accrued, _ := amount.FromInt(op.Amount.Int().MulRaw(c.rewardBps).QuoRaw(10_000))
		l.Rewards[position] = l.reward(position).Add(accrued)

	case domain.ActionRedeem:
		value := op.Amount
		if op.All {
			value = l.balance(acc, op.BrandCoinType)
		}
		if !value.IsPositive() {
			return ports.NewFailure(ports.KindInsufficientBalance, "Insufficient balance: nothing to redeem")
		}
		if l.deposit(position).Cmp(value) < 0 {
			return insufficientDeposit(op)
		}
		if err := l.debit(acc, op.BrandCoinType, value); err != nil {
			return ports.NewFailure(
				ports.KindInsufficientBalance, "InsufficientCoinBalance in command 0: %s", err,
			)
		}
		left, _ := l.deposit(position).Sub(value)
		l.Deposits[position] = left

		netCfg, _ := op.Network.Config()
		if op.Mode == domain.RedeemInstant {
			l.credit(acc, netCfg.USDCCoinType, value)
		} else {
			l.Settlements = append(l.Settlements, settlement{
				Account:  acc,
				CoinType: netCfg.USDCCoinType,
				Amount:   value,
				Due:      c.now().Add(c.settlePeriod).UnixMilli(),
			})
		}

	case domain.ActionClaim:
		rewards := l.reward(position)
		if !rewards.IsPositive() {
			return insufficientDeposit(op)
		}
		netCfg, _ := op.Network.Config()
		l.credit(acc, netCfg.USDCCoinType, rewards)
		l.Rewards[position] = amount.Zero()

	default:
		return fmt.Errorf("unsupported operation %s", op.Action)
	}

	return l.debit(acc, SuiCoinType, c.gasFee)
}

// update loads the ledger, settles due redeems, applies fn and persists the
// result unless fn fails.
func (c *Chain) update(fn func(l *ledger) error) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	l, err := loadLedger(c.store)
	if err != nil {
		return err
	}
	if settled := l.settle(c.now()); settled > 0 {
		if err := l.save(c.store); err != nil {
			return fmt.Errorf("failed to persist settlements: %s", err)
		}
	}
	if err := fn(l); err != nil {
		return err
	}
	if err := l.save(c.store); err != nil {
		return fmt.Errorf("failed to persist ledger: %s", err)
	}
	return nil
}

func insufficientDeposit(op ports.Operation) error {
	return ports.NewFailure(
		ports.KindInsufficientDeposit,
		"MoveAbort(MoveLocation { module: %s, function: 104 }, 104) err_insufficient_deposit",
		op.Target,
	)
}

func makeDigest(op ports.Operation, nonce uint64) string {
	h := sha256.New()
	h.Write([]byte(op.ID))
	h.Write([]byte(op.Sender))
	h.Write([]byte(op.Target))
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], nonce)
	h.Write(buf[:])
	return base58.Encode(h.Sum(nil))
}
