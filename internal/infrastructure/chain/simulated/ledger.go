package simulated

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/StarryDeserts/StableLayer-quickstart/internal/core/domain"
	"github.com/StarryDeserts/StableLayer-quickstart/internal/core/ports"
	"github.com/StarryDeserts/StableLayer-quickstart/pkg/amount"
)

const ledgerKey = "oneclick_sim_ledger"

type settlement struct {
	Account  string        `json:"account"`
	CoinType string        `json:"coinType"`
	Amount   amount.Amount `json:"amount"`
	Due      int64         `json:"due"`
}

// ledger is the whole simulated chain state, keyed by network/owner.
type ledger struct {
	Balances    map[string]map[string]amount.Amount `json:"balances"`
	Deposits    map[string]amount.Amount            `json:"deposits"`
	Rewards     map[string]amount.Amount            `json:"rewards"`
	Settlements []settlement                        `json:"settlements"`
	Nonce       uint64                              `json:"nonce"`
}

func newLedger() *ledger {
	return &ledger{
		Balances:    make(map[string]map[string]amount.Amount),
		Deposits:    make(map[string]amount.Amount),
		Rewards:     make(map[string]amount.Amount),
		Settlements: make([]settlement, 0),
	}
}

func loadLedger(store ports.KVStore) (*ledger, error) {
	value, ok, err := store.Get(ledgerKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %s", err)
	}
	l := newLedger()
	if !ok || len(value) <= 0 {
		return l, nil
	}
	if err := json.Unmarshal([]byte(value), l); err != nil {
		return nil, fmt.Errorf("failed to decode ledger: %s", err)
	}
	if l.Balances == nil {
		l.Balances = make(map[string]map[string]amount.Amount)
	}
	if l.Deposits == nil {
		l.Deposits = make(map[string]amount.Amount)
	}
	if l.Rewards == nil {
		l.Rewards = make(map[string]amount.Amount)
	}
	return l, nil
}

func (l *ledger) save(store ports.KVStore) error {
	buf, err := json.Marshal(l)
	if err != nil {
		return err
	}
	return store.Set(ledgerKey, string(buf))
}

func account(network domain.Network, owner string) string {
	return fmt.Sprintf("%s/%s", network, owner)
}

func (l *ledger) balance(acc, coinType string) amount.Amount {
	coins, ok := l.Balances[acc]
	if !ok {
		return amount.Zero()
	}
	if v, ok := coins[coinType]; ok {
		return v
	}
	return amount.Zero()
}

func (l *ledger) credit(acc, coinType string, v amount.Amount) {
	if _, ok := l.Balances[acc]; !ok {
		l.Balances[acc] = make(map[string]amount.Amount)
	}
	l.Balances[acc][coinType] = l.balance(acc, coinType).Add(v)
}

func (l *ledger) debit(acc, coinType string, v amount.Amount) error {
	left, err := l.balance(acc, coinType).Sub(v)
	if err != nil {
		return err
	}
	if _, ok := l.Balances[acc]; !ok {
		l.Balances[acc] = make(map[string]amount.Amount)
	}
	l.Balances[acc][coinType] = left
	return nil
}

func (l *ledger) deposit(key string) amount.Amount {
	if v, ok := l.Deposits[key]; ok {
		return v
	}
	return amount.Zero()
}

func (l *ledger) reward(key string) amount.Amount {
	if v, ok := l.Rewards[key]; ok {
		return v
	}
	return amount.Zero()
}

// settle credits every settlement due at now.
func (l *ledger) settle(now time.Time) int {
	pending := make([]settlement, 0, len(l.Settlements))
	settled := 0
	for _, s := range l.Settlements {
		if s.Due > now.UnixMilli() {
			pending = append(pending, s)
			continue
		}
		l.credit(s.Account, s.CoinType, s.Amount)
		settled++
	}
	l.Settlements = pending
	return settled
}

func (l *ledger) pendingSettlements(acc string) []settlement {
	list := make([]settlement, 0)
	for _, s := range l.Settlements {
		if s.Account == acc {
			list = append(list, s)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Due < list[j].Due })
	return list
}
