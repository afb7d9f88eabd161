package application

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/StarryDeserts/StableLayer-quickstart/internal/core/domain"
	"github.com/StarryDeserts/StableLayer-quickstart/internal/core/ports"
	"github.com/StarryDeserts/StableLayer-quickstart/pkg/amount"
	log "github.com/sirupsen/logrus"
)

const DefaultSettleDelay = 2 * time.Second

type Config struct {
	// SettleDelay is how long after a successful operation balances are
	// read again.
	SettleDelay time.Duration
	// AdvanceDelay is how long after a successful operation the guided
	// flow moves to the next step.
	AdvanceDelay time.Duration
	Now          func() time.Time
}

// Outcome is the result of a mint, redeem or claim that passed validation.
type Outcome struct {
	Action  domain.Action
	Session Session
	Summary *ports.Summary
	Record  domain.TxRecord
	// Failure explains the error of a failed operation.
	Failure *Classification
	// Advanced is closed once the guided flow handled the success.
	Advanced <-chan struct{}
	// Settled is closed once balances were read again after the settle
	// delay. For a failure it is already closed.
	Settled <-chan struct{}
}

func (o *Outcome) Succeeded() bool {
	return o.Session.Phase == PhaseSuccess
}

type RedeemRequest struct {
	Amount string
	All    bool
	Mode   domain.RedeemMode
}

type Service struct {
	cfg Config

	state     *AppState
	adapter   ports.ProtocolAdapter
	balances  ports.BalanceReader
	repos     ports.RepoManager
	scheduler ports.SchedulerService
	lifecycle *Lifecycle
	navigator *Navigator

	running *atomic.Bool

	lock           *sync.RWMutex
	cachedBalances Balances
	// balancesOf is the selection the cached balances were read for.
	balancesOf string
}

func NewService(
	cfg Config, state *AppState,
	adapter ports.ProtocolAdapter, signer ports.Signer, balances ports.BalanceReader,
	repos ports.RepoManager, scheduler ports.SchedulerService,
) (*Service, error) {
	if state == nil {
		return nil, fmt.Errorf("missing app state")
	}
	if adapter == nil || signer == nil || balances == nil {
		return nil, fmt.Errorf("missing chain adapters")
	}
	if repos == nil {
		return nil, fmt.Errorf("missing repositories")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = DefaultSettleDelay
	}
	if cfg.AdvanceDelay <= 0 {
		cfg.AdvanceDelay = DefaultAdvanceDelay
	}

	svc := &Service{
		cfg:       cfg,
		state:     state,
		adapter:   adapter,
		balances:  balances,
		repos:     repos,
		scheduler: scheduler,
		lifecycle: NewLifecycle(signer),
		running:   &atomic.Bool{},
		lock:      &sync.RWMutex{},
	}
	svc.navigator = NewNavigator(svc.Steps, cfg.AdvanceDelay)
	return svc, nil
}

func (s *Service) State() *AppState {
	return s.state
}

func (s *Service) Lifecycle() *Lifecycle {
	return s.lifecycle
}

func (s *Service) Session() Session {
	return s.lifecycle.Session()
}

// Reset clears a terminated operation.
func (s *Service) Reset() {
	s.lifecycle.Reset()
}

// Balances returns the last balances read for the current selection of
// network, brand and address, zero if none were read yet.
func (s *Service) Balances() Balances {
	balances, ok := s.cached()
	if !ok {
		return emptyBalances(s.state.Network(), s.state.Brand())
	}
	return balances
}

// RefreshBalances reads the balances of the connected address. On failure
// the balances are reset to zero.
func (s *Service) RefreshBalances(ctx context.Context) (Balances, error) {
	selection := s.selection()
	balances, err := s.fetchBalances(ctx)

	s.lock.Lock()
	s.cachedBalances = balances
	s.balancesOf = selection
	s.lock.Unlock()

	return balances, err
}

func (s *Service) Steps() [3]domain.Step {
	balances := s.Balances()
	return domain.DeriveSteps(domain.GuideInput{
		WalletConnected: s.state.IsConnected(),
		BrandConfigured: s.state.Brand().IsConfigured(),
		USDCBalance:     balances.USDC.Decimal(),
		BrandBalance:    balances.Brand.Decimal(),
		History:         s.repos.History().List(),
		Pendings:        s.repos.Pendings().List(),
	})
}

func (s *Service) ActiveStep() domain.StepKey {
	return s.navigator.Active()
}

func (s *Service) SetActiveStep(key domain.StepKey) {
	s.navigator.SetActiveStep(key)
}

func (s *Service) GoToStep(key domain.StepKey) bool {
	return s.navigator.GoToStep(key)
}

func (s *Service) History() []domain.TxRecord {
	return s.repos.History().List()
}

func (s *Service) AddRecord(record domain.TxRecord) {
	s.repos.History().Add(record)
}

func (s *Service) ClearHistory() {
	s.repos.History().Clear()
}

func (s *Service) Pendings() []domain.PendingRedeem {
	return s.repos.Pendings().List()
}

// ConfirmPending drops a settled redeem.
func (s *Service) ConfirmPending(digest string) {
	s.repos.Pendings().Remove(digest)
}

func (s *Service) ClearPendings() {
	s.repos.Pendings().Clear()
}

func (s *Service) Mint(ctx context.Context, amountStr string) (*Outcome, error) {
	op, err := s.operationContext()
	if err != nil {
		return nil, err
	}
	balances, err := s.loadedBalances(ctx)
	if err != nil {
		return nil, err
	}

	decimals := balances.USDC.Decimals
	value, err := parsePositive(amountStr, decimals)
	if err != nil {
		return nil, err
	}
	netCfg, _ := op.network.Config()

	args := ports.MintArgs{
		Network:       op.network,
		Sender:        op.sender,
		BrandCoinType: op.brand.CoinType,
		USDCCoinType:  netCfg.USDCCoinType,
		Amount:        value,
		Decimals:      decimals,
	}
	label := fmt.Sprintf("%s USDC", amount.Format(value, decimals))

	return s.run(ctx, domain.ActionMint, label, "", func(ctx context.Context) (*ports.BuildResult, error) {
		return s.adapter.BuildMint(ctx, args)
	})
}

func (s *Service) Redeem(ctx context.Context, req RedeemRequest) (*Outcome, error) {
	op, err := s.operationContext()
	if err != nil {
		return nil, err
	}
	balances, err := s.loadedBalances(ctx)
	if err != nil {
		return nil, err
	}

	mode := req.Mode
	if len(mode) <= 0 {
		mode = domain.RedeemTPlus1
	}
	if !supportsMode(op.capability, mode) {
		return nil, fmt.Errorf(
			"%w: %w: %s redeem mode %s", ErrValidation, ErrUnsupported, op.brand.DisplayName, mode,
		)
	}

	hasAmount := len(req.Amount) > 0
	if hasAmount == req.All {
		return nil, fmt.Errorf("%w: either an amount or all must be given", ErrValidation)
	}
	if !balances.Brand.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: no %s balance to redeem", ErrValidation, op.brand.DisplayName)
	}

	decimals := balances.Brand.Decimals
	args := ports.RedeemArgs{
		Network:       op.network,
		Sender:        op.sender,
		BrandCoinType: op.brand.CoinType,
		Decimals:      decimals,
		All:           req.All,
		Mode:          mode,
	}
	label := fmt.Sprintf("ALL %s", op.brand.DisplayName)
	if hasAmount {
		value, err := parsePositive(req.Amount, decimals)
		if err != nil {
			return nil, err
		}
		if value.Cmp(balances.Brand.Amount) > 0 {
			return nil, fmt.Errorf(
				"%w: amount %s exceeds %s balance %s", ErrValidation,
				amount.Format(value, decimals), op.brand.DisplayName,
				balances.Brand.Formatted(),
			)
		}
		args.Amount = value
		label = fmt.Sprintf("%s %s", amount.Format(value, decimals), op.brand.DisplayName)
	}

	return s.run(ctx, domain.ActionRedeem, label, mode, func(ctx context.Context) (*ports.BuildResult, error) {
		return s.adapter.BuildRedeem(ctx, args)
	})
}

func (s *Service) Claim(ctx context.Context) (*Outcome, error) {
	op, err := s.operationContext()
	if err != nil {
		return nil, err
	}

	args := ports.ClaimArgs{
		Network:       op.network,
		Sender:        op.sender,
		BrandCoinType: op.brand.CoinType,
	}
	return s.run(ctx, domain.ActionClaim, "", "", func(ctx context.Context) (*ports.BuildResult, error) {
		return s.adapter.BuildClaim(ctx, args)
	})
}

func (s *Service) run(
	ctx context.Context, action domain.Action, label string, mode domain.RedeemMode,
	build func(ctx context.Context) (*ports.BuildResult, error),
) (*Outcome, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer s.running.Store(false)

	network, brand := s.state.Network(), s.state.Brand()

	var summary *ports.Summary
	ok := s.lifecycle.Execute(ctx, func(ctx context.Context) (*ports.Operation, error) {
		res, err := build(ctx)
		if err != nil {
			return nil, err
		}
		summary = &res.Summary
		return &res.Operation, nil
	})
	session := s.lifecycle.Session()

	args := domain.RecordArgs{
		Digest:   session.Digest,
		Network:  network,
		BrandKey: brand.Key,
		Action:   action,
		Amount:   label,
	}
	now := s.cfg.Now()
	outcome := &Outcome{
		Action:  action,
		Session: session,
		Summary: summary,
	}

	if !ok {
		outcome.Record = domain.NewErrorRecord(args, session.Error, now)
		classification := Classify(session.Err)
		outcome.Failure = &classification
		s.repos.History().Add(outcome.Record)

		log.WithField("category", classification.Category).
			Infof("%s failed: %s", action, session.Error)
		done := make(chan struct{})
		close(done)
		outcome.Advanced = done
		outcome.Settled = done
		return outcome, nil
	}

	outcome.Record = domain.NewSuccessRecord(args, now)
	s.repos.History().Add(outcome.Record)
	if action == domain.ActionRedeem && mode == domain.RedeemTPlus1 {
		s.repos.Pendings().Add(domain.NewPendingRedeem(session.Digest, network, brand, label, now))
	}
	log.Infof("%s succeeded with digest %s", action, session.Digest)

	if _, err := s.RefreshBalances(ctx); err != nil {
		log.WithError(err).Warn("failed to refresh balances")
	}
	outcome.Advanced = s.navigator.OnActionSuccess(action, mode)
	outcome.Settled = s.scheduleRefresh()

	return outcome, nil
}

func (s *Service) scheduleRefresh() <-chan struct{} {
	settled := make(chan struct{})
	if s.scheduler == nil {
		close(settled)
		return settled
	}
	if err := s.scheduler.ScheduleTaskOnce(s.cfg.SettleDelay, func() {
		defer close(settled)
		if _, err := s.RefreshBalances(context.Background()); err != nil {
			log.WithError(err).Warn("failed to refresh balances")
		}
	}); err != nil {
		log.WithError(err).Warn("failed to schedule balance refresh")
		close(settled)
	}
	return settled
}

// opContext is the current selection an operation is sent for, together
// with the adapter capability serving it.
type opContext struct {
	network    domain.Network
	brand      domain.Brand
	sender     string
	capability ports.Capability
}

func (s *Service) operationContext() (*opContext, error) {
	network, brand, sender := s.state.Network(), s.state.Brand(), s.state.Address()
	if len(sender) <= 0 {
		return nil, fmt.Errorf("%w: %w", ErrValidation, ErrNotConnected)
	}
	if !brand.IsConfigured() {
		return nil, fmt.Errorf("%w: %w: %s", ErrValidation, ErrBrandNotConfigured, brand.Key)
	}

	capability, ok := findCapability(s.adapter.Capabilities(), network, brand.CoinType)
	if !ok {
		return nil, fmt.Errorf(
			"%w: %w: %s on %s", ErrValidation, ErrUnsupported, brand.DisplayName, network,
		)
	}
	return &opContext{network, brand, sender, capability}, nil
}

func findCapability(
	capabilities []ports.Capability, network domain.Network, coinType string,
) (ports.Capability, bool) {
	for _, c := range capabilities {
		if c.Network == network && c.CoinType == coinType {
			return c, true
		}
	}
	return ports.Capability{}, false
}

func supportsMode(c ports.Capability, mode domain.RedeemMode) bool {
	for _, m := range c.RedeemModes {
		if m == mode {
			return true
		}
	}
	return false
}

func (s *Service) loadedBalances(ctx context.Context) (Balances, error) {
	if balances, ok := s.cached(); ok {
		return balances, nil
	}
	return s.RefreshBalances(ctx)
}

func (s *Service) cached() (Balances, bool) {
	selection := s.selection()

	s.lock.RLock()
	defer s.lock.RUnlock()
	if len(s.balancesOf) <= 0 || s.balancesOf != selection {
		return Balances{}, false
	}
	return s.cachedBalances, true
}

func (s *Service) selection() string {
	return fmt.Sprintf("%s/%s/%s", s.state.Network(), s.state.Brand().Key, s.state.Address())
}

func parsePositive(s string, decimals uint32) (amount.Amount, error) {
	value, err := amount.Parse(s, decimals)
	if err != nil {
		return amount.Amount{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if !value.IsPositive() {
		return amount.Amount{}, fmt.Errorf("%w: amount must be greater than 0", ErrValidation)
	}
	return value, nil
}
