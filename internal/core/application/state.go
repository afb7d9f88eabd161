package application

import (
	"fmt"
	"strings"
	"sync"

	"github.com/StarryDeserts/StableLayer-quickstart/internal/core/domain"
)

// AppState holds the user selections shared by every operation: network,
// brand and connected address. Setters are the only way to change it.
type AppState struct {
	lock    *sync.RWMutex
	network domain.Network
	brand   domain.Brand
	address string
}

func NewAppState(network domain.Network, brandKey string) (*AppState, error) {
	s := &AppState{lock: &sync.RWMutex{}}
	if err := s.SetNetwork(network); err != nil {
		return nil, err
	}
	if err := s.SelectBrand(brandKey); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *AppState) Network() domain.Network {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.network
}

func (s *AppState) Brand() domain.Brand {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.brand
}

func (s *AppState) Address() string {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.address
}

func (s *AppState) IsConnected() bool {
	return len(s.Address()) > 0
}

func (s *AppState) SetNetwork(network domain.Network) error {
	if _, ok := network.Config(); !ok {
		return fmt.Errorf("%w: unknown network %q", ErrValidation, network)
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.network = network
	return nil
}

func (s *AppState) SelectBrand(key string) error {
	brand, ok := domain.BrandByKey(key)
	if !ok {
		return fmt.Errorf("%w: unknown brand %q", ErrValidation, key)
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.brand = brand
	return nil
}

// Connect sets the address operations are sent from.
func (s *AppState) Connect(address string) error {
	address = strings.TrimSpace(address)
	if err := validateSender(address); err != nil {
		return err
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.address = address
	return nil
}

func (s *AppState) Disconnect() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.address = ""
}

func validateSender(address string) error {
	if len(address) <= 0 {
		return fmt.Errorf("%w: missing sender address", ErrValidation)
	}
	if !strings.HasPrefix(address, "0x") {
		return fmt.Errorf("%w: invalid sender address %q, must start with 0x", ErrValidation, address)
	}
	return nil
}
