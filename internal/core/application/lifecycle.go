package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/StarryDeserts/StableLayer-quickstart/internal/core/ports"
	"github.com/StarryDeserts/StableLayer-quickstart/internal/utils"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	PhaseIdle Phase = iota
	PhaseBuilding
	PhaseSigning
	PhaseSubmitting
	PhaseSuccess
	PhaseError
)

type Phase int

func (p Phase) String() string {
	switch p {
	case PhaseBuilding:
		return "building"
	case PhaseSigning:
		return "signing"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSuccess:
		return "success"
	case PhaseError:
		return "error"
	default:
		return "idle"
	}
}

func (p Phase) IsTerminal() bool {
	return p == PhaseSuccess || p == PhaseError
}

func (p Phase) IsLoading() bool {
	return p == PhaseBuilding || p == PhaseSigning || p == PhaseSubmitting
}

// Session is the state of the operation currently tracked by a Lifecycle.
type Session struct {
	ID     string
	Phase  Phase
	Digest string
	// Error is the failure message exactly as the builder or signer reported it.
	Error string
	Err   error
}

// BuildFunc produces the operation to be signed.
type BuildFunc func(ctx context.Context) (*ports.Operation, error)

// Lifecycle drives a single operation through building, signing and
// submission. Callers must not run Execute concurrently on the same
// Lifecycle.
type Lifecycle struct {
	signer ports.Signer

	lock    *sync.RWMutex
	session Session
	events  *utils.Broadcaster[Phase]
}

func NewLifecycle(signer ports.Signer) *Lifecycle {
	return &Lifecycle{
		signer: signer,
		lock:   &sync.RWMutex{},
		events: utils.NewBroadcaster[Phase](16),
	}
}

// Execute builds an operation, hands it to the signer and records the
// outcome. It reports whether the operation reached the success phase.
func (l *Lifecycle) Execute(ctx context.Context, build BuildFunc) bool {
	l.update(func(s *Session) {
		*s = Session{ID: uuid.New().String(), Phase: PhaseBuilding}
	})

	op, err := build(ctx)
	if err == nil && op == nil {
		err = fmt.Errorf("builder returned no operation")
	}
	if err != nil {
		l.fail(err)
		return false
	}

	l.update(func(s *Session) { s.Phase = PhaseSigning })

	res, err := l.signer.SignAndSubmit(ctx, *op)
	if err != nil {
		l.fail(err)
		return false
	}

	l.update(func(s *Session) { s.Phase = PhaseSubmitting })
	l.update(func(s *Session) {
		s.Phase = PhaseSuccess
		s.Digest = res.Digest
	})
	return true
}

// Reset moves a terminated session back to idle.
func (l *Lifecycle) Reset() {
	if phase := l.Session().Phase; !phase.IsTerminal() {
		log.Debugf("lifecycle: ignoring reset in phase %s", phase)
		return
	}
	l.update(func(s *Session) { *s = Session{Phase: PhaseIdle} })
}

func (l *Lifecycle) Session() Session {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return l.session
}

func (l *Lifecycle) IsLoading() bool {
	return l.Session().Phase.IsLoading()
}

// Subscribe returns a channel receiving every phase the lifecycle enters.
func (l *Lifecycle) Subscribe() chan Phase {
	return l.events.Subscribe()
}

func (l *Lifecycle) Unsubscribe(ch chan Phase) {
	l.events.Unsubscribe(ch)
}

func (l *Lifecycle) fail(err error) {
	l.update(func(s *Session) {
		s.Phase = PhaseError
		s.Digest = ""
		s.Error = err.Error()
		s.Err = err
	})
}

func (l *Lifecycle) update(fn func(s *Session)) {
	l.lock.Lock()
	fn(&l.session)
	session := l.session
	l.lock.Unlock()

	log.WithField("session", session.ID).Debugf("lifecycle: %s", session.Phase)
	l.events.Publish(session.Phase)
}
