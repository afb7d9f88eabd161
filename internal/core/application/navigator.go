package application

import (
	"sync"
	"time"

	"github.com/StarryDeserts/StableLayer-quickstart/internal/core/domain"
	log "github.com/sirupsen/logrus"
)

const DefaultAdvanceDelay = 100 * time.Millisecond

// StepsProvider returns the currently derived steps.
type StepsProvider func() [3]domain.Step

// Navigator tracks the active guided step.
type Navigator struct {
	steps StepsProvider
	delay time.Duration

	lock   *sync.RWMutex
	active domain.StepKey
}

func NewNavigator(steps StepsProvider, delay time.Duration) *Navigator {
	if delay < 0 {
		delay = 0
	}
	return &Navigator{
		steps:  steps,
		delay:  delay,
		lock:   &sync.RWMutex{},
		active: domain.StepMint,
	}
}

func (n *Navigator) Active() domain.StepKey {
	n.lock.RLock()
	defer n.lock.RUnlock()
	return n.active
}

// SetActiveStep selects key regardless of its status.
func (n *Navigator) SetActiveStep(key domain.StepKey) {
	n.lock.Lock()
	defer n.lock.Unlock()
	n.active = key
}

// GoToStep selects key unless the step is locked, and reports whether it
// did.
func (n *Navigator) GoToStep(key domain.StepKey) bool {
	step, ok := domain.FindStep(n.steps(), key)
	if !ok || step.Status == domain.StepLocked {
		log.Debugf("navigator: step %s not reachable", key)
		return false
	}
	n.SetActiveStep(key)
	return true
}

// OnActionSuccess moves to the step following action after the advance
// delay. Step statuses are evaluated when the delay expires. The returned
// channel is closed once the move was attempted.
func (n *Navigator) OnActionSuccess(action domain.Action, mode domain.RedeemMode) <-chan struct{} {
	done := make(chan struct{})

	next, ok := domain.NextStep(action)
	if !ok {
		close(done)
		return done
	}

	log.Debugf("navigator: %s succeeded (mode %q), advancing to %s", action, mode, next)
	time.AfterFunc(n.delay, func() {
		defer close(done)
		n.GoToStep(next)
	})
	return done
}
