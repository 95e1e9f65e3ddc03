package session

import (
	"context"
	"sync"

	"github.com/SIMPLYBOYS/tachi/internal/ethereum"
	"github.com/SIMPLYBOYS/tachi/pkg/logger"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// Factory builds a contract façade. A nil signer yields a read-only façade.
type Factory func(signer *bind.TransactOpts) ethereum.ContractService

// ContractFactory binds façades to the contract at address on backend.
func ContractFactory(address common.Address, backend ethereum.EthereumClient, opts ...ethereum.Option) Factory {
	return func(signer *bind.TransactOpts) ethereum.ContractService {
		all := append([]ethereum.Option{}, opts...)
		if signer != nil {
			all = append(all, ethereum.WithSigner(signer))
		}
		return ethereum.NewContract(address, backend, all...)
	}
}

// Session holds at most one read-only façade and one signer-bound façade.
// The signer façade is rebuilt only when the signing address changes.
type Session struct {
	factory Factory

	mu         sync.RWMutex
	readOnly   ethereum.ContractService
	signer     ethereum.ContractService
	signerAddr common.Address
}

func New(factory Factory) *Session {
	return &Session{
		factory:  factory,
		readOnly: factory(nil),
	}
}

func (s *Session) ReadOnly() ethereum.ContractService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readOnly
}

// Signer returns the signer-bound façade, if one is attached.
func (s *Session) Signer() (ethereum.ContractService, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.signer, s.signer != nil
}

// Contract prefers the signer-bound façade and falls back to read-only.
func (s *Session) Contract() ethereum.ContractService {
	if signer, ok := s.Signer(); ok {
		return signer
	}
	return s.ReadOnly()
}

// Attach binds a signer. It reports whether a new façade was built.
func (s *Session) Attach(opts *bind.TransactOpts) bool {
	if opts == nil {
		s.Detach()
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.signer != nil && s.signerAddr == opts.From {
		return false
	}
	s.signer = s.factory(opts)
	s.signerAddr = opts.From
	logger.Info("Signer attached: %s", opts.From.Hex())
	return true
}

func (s *Session) Detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.signer != nil {
		logger.Info("Signer detached: %s", s.signerAddr.Hex())
	}
	s.signer = nil
	s.signerAddr = common.Address{}
}

// SignerAddress returns the attached signing address.
func (s *Session) SignerAddress() (common.Address, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.signerAddr, s.signer != nil
}

// IsOrganizer reports whether the attached signer is the contract organizer.
// Addresses are compared case-insensitively.
func (s *Session) IsOrganizer(ctx context.Context) (bool, error) {
	addr, ok := s.SignerAddress()
	if !ok {
		return false, nil
	}
	organizer, err := s.ReadOnly().GetOrganizer(ctx)
	if err != nil {
		return false, err
	}
	return ethereum.SameAddress(organizer, addr.Hex()), nil
}
