// Package wallet provides the connected account: a secp256k1 key with a
// derived P2PKH address, payload signing, and account-change notifications.
package wallet

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	crypto "github.com/bsv-blockchain/go-sdk/primitives/hash"
	"github.com/bsv-blockchain/go-sdk/script"
)

// ErrNotConnected is returned when an operation needs a connected account
// and none is present.
var ErrNotConnected = errors.New("no wallet connected")

// Provider holds the active account and fans out account-change
// notifications to subscribers.
type Provider struct {
	mu      sync.RWMutex
	privKey *ec.PrivateKey
	address string
	subs    []func(address string)
}

// Load creates a provider from a WIF-encoded private key.
func Load(wif string) (*Provider, error) {
	if wif == "" {
		return nil, fmt.Errorf("no wallet key provided")
	}

	privKey, address, err := deriveAccount(wif)
	if err != nil {
		return nil, err
	}

	slog.Info("wallet loaded", "address", address)
	return &Provider{privKey: privKey, address: address}, nil
}

// Generate creates a provider with a fresh random key.
func Generate() (*Provider, error) {
	privKey, err := ec.NewPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}

	addr, err := script.NewAddressFromPublicKey(privKey.PubKey(), true)
	if err != nil {
		return nil, fmt.Errorf("derive address: %w", err)
	}

	slog.Info("wallet generated", "address", addr.AddressString)
	return &Provider{privKey: privKey, address: addr.AddressString}, nil
}

// Disconnected creates a provider with no account. Submit and status
// operations against it fail with ErrNotConnected until SwitchAccount
// connects one.
func Disconnected() *Provider {
	return &Provider{}
}

func deriveAccount(wif string) (*ec.PrivateKey, string, error) {
	privKey, err := ec.PrivateKeyFromWif(wif)
	if err != nil {
		return nil, "", fmt.Errorf("decode WIF: %w", err)
	}

	addr, err := script.NewAddressFromPublicKey(privKey.PubKey(), true)
	if err != nil {
		return nil, "", fmt.Errorf("derive address: %w", err)
	}
	return privKey, addr.AddressString, nil
}

// Connected reports whether an account is present.
func (p *Provider) Connected() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.privKey != nil
}

// Address returns the active account address, or "" when disconnected.
func (p *Provider) Address() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.address
}

// Sign produces a DER-encoded ECDSA signature of the double-SHA256 hash
// of data.
func (p *Provider) Sign(data []byte) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.privKey == nil {
		return nil, ErrNotConnected
	}

	hash := crypto.Sha256d(data)
	sig, err := p.privKey.Sign(hash)
	if err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}
	return sig.Serialize(), nil
}

// OnChange registers fn to be called with the new address whenever the
// active account changes.
func (p *Provider) OnChange(fn func(address string)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subs = append(p.subs, fn)
}

// SwitchAccount replaces the active account with the one derived from wif
// and notifies subscribers.
func (p *Provider) SwitchAccount(wif string) error {
	privKey, address, err := deriveAccount(wif)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.privKey = privKey
	p.address = address
	subs := make([]func(string), len(p.subs))
	copy(subs, p.subs)
	p.mu.Unlock()

	slog.Info("wallet account changed", "address", address)
	for _, fn := range subs {
		fn(address)
	}
	return nil
}

// WIF returns the active key in WIF encoding, or "" when disconnected.
func (p *Provider) WIF() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.privKey == nil {
		return ""
	}
	return p.privKey.Wif()
}
