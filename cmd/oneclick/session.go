package main

import (
	"encoding/json"

	"github.com/StarryDeserts/StableLayer-quickstart/internal/core/application"
	"github.com/StarryDeserts/StableLayer-quickstart/internal/core/domain"
	"github.com/StarryDeserts/StableLayer-quickstart/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

const sessionKey = "oneclick_cli_session"

// cliSession carries the selections of one invocation over to the next.
type cliSession struct {
	Address    string         `json:"address,omitempty"`
	ActiveStep domain.StepKey `json:"activeStep,omitempty"`
}

type sessionStore struct {
	store ports.KVStore
}

func newSessionStore(store ports.KVStore) *sessionStore {
	return &sessionStore{store}
}

func (s *sessionStore) restore(svc *application.Service) error {
	value, ok, err := s.store.Get(sessionKey)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	var data cliSession
	if err := json.Unmarshal([]byte(value), &data); err != nil {
		log.WithError(err).Warn("ignoring malformed cli session")
		return nil
	}

	if len(data.Address) > 0 {
		if err := svc.State().Connect(data.Address); err != nil {
			log.WithError(err).Warn("ignoring stored address")
		}
	}
	if key, ok := domain.ParseStepKey(data.ActiveStep.String()); ok {
		svc.SetActiveStep(key)
	}
	return nil
}

func (s *sessionStore) save(svc *application.Service) error {
	buf, err := json.Marshal(cliSession{
		Address:    svc.State().Address(),
		ActiveStep: svc.ActiveStep(),
	})
	if err != nil {
		return err
	}
	return s.store.Set(sessionKey, string(buf))
}
