package application_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/StarryDeserts/StableLayer-quickstart/internal/core/application"
	"github.com/StarryDeserts/StableLayer-quickstart/internal/core/domain"
	"github.com/StarryDeserts/StableLayer-quickstart/internal/core/ports"
	"github.com/StarryDeserts/StableLayer-quickstart/internal/infrastructure/chain/simulated"
	"github.com/StarryDeserts/StableLayer-quickstart/internal/infrastructure/db"
	inmemorydb "github.com/StarryDeserts/StableLayer-quickstart/internal/infrastructure/db/inmemory"
	"github.com/StarryDeserts/StableLayer-quickstart/internal/infrastructure/protocol/stablelayer"
	"github.com/StarryDeserts/StableLayer-quickstart/pkg/amount"
	"github.com/stretchr/testify/require"
)

const wallet = "0x5ea1"

type mockScheduler struct {
	lock   sync.Mutex
	delays []time.Duration
	tasks  []func()
}

func (m *mockScheduler) Start() {}
func (m *mockScheduler) Stop()  {}

func (m *mockScheduler) ScheduleTaskOnce(delay time.Duration, task func()) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.delays = append(m.delays, delay)
	m.tasks = append(m.tasks, task)
	return nil
}

func (m *mockScheduler) runAll() {
	m.lock.Lock()
	tasks := m.tasks
	m.tasks = nil
	m.lock.Unlock()
	for _, task := range tasks {
		task()
	}
}

type testEnv struct {
	svc       *application.Service
	chain     *simulated.Chain
	repos     ports.RepoManager
	scheduler *mockScheduler
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithReader(t, nil)
}

// newTestEnvWithReader lets reader wrap the chain as the balance reader of
// the service. The adapter keeps reading the chain directly.
func newTestEnvWithReader(
	t *testing.T, reader func(*simulated.Chain) ports.BalanceReader,
) *testEnv {
	now := func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }

	store, err := inmemorydb.NewKVStore()
	require.NoError(t, err)
	repos, err := db.NewServiceWithStore(store, now)
	require.NoError(t, err)

	chain, err := simulated.NewChain(simulated.Config{Store: store, Now: now})
	require.NoError(t, err)
	adapter, err := stablelayer.NewAdapter(
		stablelayer.DefaultConfigs(), stablelayer.DefaultCapabilities(), chain,
	)
	require.NoError(t, err)

	state, err := application.NewAppState(domain.Mainnet, domain.BtcUSDCBrandKey)
	require.NoError(t, err)

	var balances ports.BalanceReader = chain
	if reader != nil {
		balances = reader(chain)
	}

	scheduler := &mockScheduler{}
	svc, err := application.NewService(application.Config{
		AdvanceDelay: time.Millisecond,
		Now:          now,
	}, state, adapter, chain, balances, repos, scheduler)
	require.NoError(t, err)

	return &testEnv{svc, chain, repos, scheduler}
}

func (e *testEnv) fund(t *testing.T, usdc, sui uint64) {
	require.NoError(t, e.chain.Faucet(domain.Mainnet, wallet, domain.MainnetUSDCCoinType, amount.FromUint64(usdc)))
	require.NoError(t, e.chain.Faucet(domain.Mainnet, wallet, simulated.SuiCoinType, amount.FromUint64(sui)))
}

// usdcDecimals reports custom decimals for mainnet USDC.
type usdcDecimals struct {
	*simulated.Chain
	decimals uint32
}

func (r usdcDecimals) CoinMetadata(
	ctx context.Context, network domain.Network, coinType string,
) (*ports.CoinMetadata, error) {
	metadata, err := r.Chain.CoinMetadata(ctx, network, coinType)
	if err != nil {
		return nil, err
	}
	if coinType == domain.MainnetUSDCCoinType {
		metadata.Decimals = r.decimals
	}
	return metadata, nil
}

func statuses(steps [3]domain.Step) []domain.StepStatus {
	return []domain.StepStatus{steps[0].Status, steps[1].Status, steps[2].Status}
}

func TestServiceGuidedFlow(t *testing.T) {
	env := newTestEnv(t)
	svc := env.svc
	ctx := context.Background()

	require.Equal(t, []domain.StepStatus{
		domain.StepLocked, domain.StepLocked, domain.StepLocked,
	}, statuses(svc.Steps()))

	require.NoError(t, svc.State().Connect(wallet))
	env.fund(t, 100_000_000, 1_000_000_000)
	_, err := svc.RefreshBalances(ctx)
	require.NoError(t, err)
	require.Equal(t, "100", svc.Balances().USDC.Formatted())
	require.Equal(t, []domain.StepStatus{
		domain.StepCurrent, domain.StepLocked, domain.StepCurrent,
	}, statuses(svc.Steps()))

	// mint
	outcome, err := svc.Mint(ctx, "10")
	require.NoError(t, err)
	require.True(t, outcome.Succeeded())
	require.NotEmpty(t, outcome.Session.Digest)
	require.Nil(t, outcome.Failure)
	require.Equal(t, "10", outcome.Summary.AmountFormatted)
	require.Equal(t, "10 USDC", outcome.Record.Amount)
	waitDone(t, outcome.Advanced)
	require.Equal(t, domain.StepRedeem, svc.ActiveStep())
	require.Equal(t, "10", svc.Balances().Brand.Formatted())
	require.Equal(t, []time.Duration{application.DefaultSettleDelay}, env.scheduler.delays)

	svc.Reset()
	require.Equal(t, application.PhaseIdle, svc.Session().Phase)

	// redeem
	outcome, err = svc.Redeem(ctx, application.RedeemRequest{Amount: "4"})
	require.NoError(t, err)
	require.True(t, outcome.Succeeded())
	require.Equal(t, domain.RedeemTPlus1, outcome.Summary.Mode)
	waitDone(t, outcome.Advanced)
	require.Equal(t, domain.StepClaim, svc.ActiveStep())

	pendings := svc.Pendings()
	require.Len(t, pendings, 1)
	require.Equal(t, outcome.Session.Digest, pendings[0].Digest)
	require.Equal(t, "4 btcUSDC", pendings[0].Amount)
	require.Equal(t, domain.BtcUSDCCoinType, pendings[0].BrandCoinType)
	require.Equal(t, []domain.StepStatus{
		domain.StepDone, domain.StepPending, domain.StepCurrent,
	}, statuses(svc.Steps()))

	// claim
	outcome, err = svc.Claim(ctx)
	require.NoError(t, err)
	require.True(t, outcome.Succeeded())
	waitDone(t, outcome.Advanced)
	require.Equal(t, domain.StepClaim, svc.ActiveStep())
	require.Equal(t, domain.StepDone, svc.Steps()[2].Status)

	history := svc.History()
	require.Len(t, history, 3)
	require.Equal(t, domain.ActionClaim, history[0].Action)
	require.Equal(t, domain.ActionRedeem, history[1].Action)
	require.Equal(t, domain.ActionMint, history[2].Action)

	svc.ConfirmPending(pendings[0].Digest)
	require.Empty(t, svc.Pendings())

	select {
	case <-outcome.Settled:
		t.Fatal("settled before the scheduled refresh ran")
	default:
	}
	env.scheduler.runAll()
	waitDone(t, outcome.Settled)
	require.Equal(t, "6", svc.Balances().Brand.Formatted())
}

func TestServiceValidation(t *testing.T) {
	env := newTestEnv(t)
	svc := env.svc
	ctx := context.Background()

	_, err := svc.Mint(ctx, "1")
	require.ErrorIs(t, err, application.ErrValidation)
	require.ErrorIs(t, err, application.ErrNotConnected)
	require.Equal(t, application.PhaseIdle, svc.Session().Phase)

	require.ErrorIs(t, svc.State().Connect("abc"), application.ErrValidation)
	require.NoError(t, svc.State().Connect(wallet))
	env.fund(t, 100_000_000, 1_000_000_000)

	fixtures := []struct {
		name string
		run  func() error
		is   error
	}{
		{"malformed amount", func() error { _, err := svc.Mint(ctx, "1."); return err }, amount.ErrInvalidFormat},
		{"too precise", func() error { _, err := svc.Mint(ctx, "1.0000001"); return err }, amount.ErrPrecisionExceeded},
		{"zero amount", func() error { _, err := svc.Mint(ctx, "0"); return err }, application.ErrValidation},
		{"redeem without balance", func() error {
			_, err := svc.Redeem(ctx, application.RedeemRequest{Amount: "1"})
			return err
		}, application.ErrValidation},
	}
	for _, f := range fixtures {
		err := f.run()
		require.ErrorIs(t, err, application.ErrValidation, f.name)
		require.ErrorIs(t, err, f.is, f.name)
	}
	require.Empty(t, svc.History())

	outcome, err := svc.Mint(ctx, "5")
	require.NoError(t, err)
	require.True(t, outcome.Succeeded())

	redeems := []application.RedeemRequest{
		{Amount: "1", All: true},
		{},
		{Amount: "6"},
		{Amount: "1", Mode: domain.RedeemInstant},
	}
	for _, req := range redeems {
		_, err := svc.Redeem(ctx, req)
		require.ErrorIs(t, err, application.ErrValidation, "%+v", req)
	}
	_, err = svc.Redeem(ctx, application.RedeemRequest{All: true, Mode: domain.RedeemInstant})
	require.ErrorIs(t, err, application.ErrUnsupported)

	outcome, err = svc.Redeem(ctx, application.RedeemRequest{All: true})
	require.NoError(t, err)
	require.True(t, outcome.Succeeded())
	require.Equal(t, "ALL btcUSDC", outcome.Record.Amount)
}

func TestServiceUnsupportedNetwork(t *testing.T) {
	env := newTestEnv(t)
	svc := env.svc
	ctx := context.Background()

	require.NoError(t, svc.State().Connect(wallet))
	require.NoError(t, svc.State().SetNetwork(domain.Testnet))
	require.NoError(t, env.chain.Faucet(
		domain.Testnet, wallet, domain.TestnetUSDCCoinType, amount.FromUint64(100_000_000),
	))
	require.NoError(t, env.chain.Faucet(
		domain.Testnet, wallet, simulated.SuiCoinType, amount.FromUint64(1_000_000_000),
	))

	phases := svc.Lifecycle().Subscribe()
	defer svc.Lifecycle().Unsubscribe(phases)

	operations := []func() error{
		func() error { _, err := svc.Mint(ctx, "1"); return err },
		func() error { _, err := svc.Redeem(ctx, application.RedeemRequest{All: true}); return err },
		func() error { _, err := svc.Claim(ctx); return err },
	}
	for _, run := range operations {
		err := run()
		require.ErrorIs(t, err, application.ErrValidation)
		require.ErrorIs(t, err, application.ErrUnsupported)
	}

	require.Equal(t, application.PhaseIdle, svc.Session().Phase)
	require.Empty(t, svc.History())
	require.Empty(t, phases)
}

func TestServiceCoinDecimals(t *testing.T) {
	env := newTestEnvWithReader(t, func(chain *simulated.Chain) ports.BalanceReader {
		return usdcDecimals{chain, 8}
	})
	svc := env.svc
	ctx := context.Background()

	require.NoError(t, svc.State().Connect(wallet))
	env.fund(t, 100_000_000_000, 1_000_000_000)

	balances, err := svc.RefreshBalances(ctx)
	require.NoError(t, err)
	require.Equal(t, uint32(8), balances.USDC.Decimals)
	require.Equal(t, "1000", balances.USDC.Formatted())

	outcome, err := svc.Mint(ctx, "1.5")
	require.NoError(t, err)
	require.True(t, outcome.Succeeded())
	require.Equal(t, "1.5", outcome.Summary.AmountFormatted)
	require.Equal(t, "1.5 USDC", outcome.Record.Amount)

	minted, err := env.chain.Balance(ctx, domain.Mainnet, wallet, domain.BtcUSDCCoinType)
	require.NoError(t, err)
	require.Equal(t, "150000000", minted.String())

	svc.Reset()
	outcome, err = svc.Mint(ctx, "0.0000001")
	require.NoError(t, err)
	require.True(t, outcome.Succeeded())

	_, err = svc.Mint(ctx, "0.000000001")
	require.ErrorIs(t, err, application.ErrValidation)
	require.ErrorIs(t, err, amount.ErrPrecisionExceeded)
}

func TestServiceFailures(t *testing.T) {
	t.Run("build failure", func(t *testing.T) {
		env := newTestEnv(t)
		svc := env.svc
		require.NoError(t, svc.State().Connect(wallet))
		env.fund(t, 0, 1_000_000_000)

		outcome, err := svc.Mint(context.Background(), "1")
		require.NoError(t, err)
		require.False(t, outcome.Succeeded())
		require.Equal(t, application.PhaseError, outcome.Session.Phase)
		require.NotNil(t, outcome.Failure)
		require.Equal(t, application.CategoryInsufficientBalance, outcome.Failure.Category)

		history := svc.History()
		require.Len(t, history, 1)
		require.Equal(t, domain.TxError, history[0].Status)
		require.Equal(t, outcome.Session.Error, history[0].Error)
		require.Empty(t, svc.Pendings())
		require.Empty(t, env.scheduler.delays)
		waitDone(t, outcome.Settled)
	})

	t.Run("insufficient gas", func(t *testing.T) {
		env := newTestEnv(t)
		svc := env.svc
		require.NoError(t, svc.State().Connect(wallet))
		env.fund(t, 10_000_000, 0)

		outcome, err := svc.Mint(context.Background(), "1")
		require.NoError(t, err)
		require.Equal(t, application.CategoryInsufficientGas, outcome.Failure.Category)
	})

	t.Run("rejected signature", func(t *testing.T) {
		env := newTestEnv(t)
		svc := env.svc
		require.NoError(t, svc.State().Connect(wallet))
		env.chain.RejectSignatures(true)

		outcome, err := svc.Claim(context.Background())
		require.NoError(t, err)
		require.Equal(t, application.CategoryUserRejected, outcome.Failure.Category)
		require.Equal(t, "User rejected the request", outcome.Session.Error)
		require.Equal(t, domain.ActionClaim, svc.History()[0].Action)
	})

	t.Run("claim without deposit", func(t *testing.T) {
		env := newTestEnv(t)
		svc := env.svc
		require.NoError(t, svc.State().Connect(wallet))
		env.fund(t, 0, 1_000_000_000)

		outcome, err := svc.Claim(context.Background())
		require.NoError(t, err)
		require.Equal(t, application.CategoryInsufficientDeposit, outcome.Failure.Category)
	})
}

func TestAppState(t *testing.T) {
	t.Parallel()

	_, err := application.NewAppState("devnet", domain.BtcUSDCBrandKey)
	require.ErrorIs(t, err, application.ErrValidation)

	_, err = application.NewAppState(domain.Mainnet, "ethUSDC")
	require.ErrorIs(t, err, application.ErrValidation)

	state, err := application.NewAppState(domain.Mainnet, domain.BtcUSDCBrandKey)
	require.NoError(t, err)
	require.False(t, state.IsConnected())

	require.Error(t, state.Connect(""))
	require.NoError(t, state.Connect(" 0xabc "))
	require.Equal(t, "0xabc", state.Address())

	require.NoError(t, state.SetNetwork(domain.Testnet))
	require.Equal(t, domain.Testnet, state.Network())

	state.Disconnect()
	require.False(t, state.IsConnected())
}
