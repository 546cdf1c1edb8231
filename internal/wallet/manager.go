package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Wallet types.
const (
	TypeWatchOnly = "watch-only"
	TypeSigning   = "signing"
)

// Errors.
var (
	ErrWalletNotFound = errors.New("wallet not found")
	ErrWalletExists   = errors.New("wallet already exists")
	ErrInvalidKey     = errors.New("invalid private key")
	ErrInvalidAddress = errors.New("invalid address")
)

// Wallet holds metadata for a single wallet.
type Wallet struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	Type      string `json:"type"`
	KeyRef    string `json:"key_ref,omitempty"` // keychain reference for signing wallets
	IsDefault bool   `json:"is_default"`
	CreatedAt string `json:"created_at"`
}

// CanSign reports whether the wallet holds a private key.
func (w *Wallet) CanSign() bool { return w.Type == TypeSigning }

// Store is an interface for persisting wallets.
type Store interface {
	Load() ([]*Wallet, error)
	Save([]*Wallet) error
}

// Manager handles wallet CRUD. It is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	store    Store
	keystore KeystoreBackend
	wallets  map[string]*Wallet
	loaded   bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithInMemoryStore uses an in-memory store (useful for tests).
func WithInMemoryStore() Option {
	return func(m *Manager) {
		m.store = &memStore{}
	}
}

// WithStore sets a custom store.
func WithStore(s Store) Option {
	return func(m *Manager) {
		m.store = s
	}
}

// WithKeystore sets where private keys of signing wallets are kept.
func WithKeystore(ks KeystoreBackend) Option {
	return func(m *Manager) {
		m.keystore = ks
	}
}

// NewManager creates a new wallet manager. Without options it keeps both
// wallets and keys in memory.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		wallets:  make(map[string]*Wallet),
		store:    &memStore{},
		keystore: NewInMemoryKeystore(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Keystore returns the keystore used for signing wallets.
func (m *Manager) Keystore() KeystoreBackend { return m.keystore }

// Add registers a pre-built wallet.
func (m *Manager) Add(name string, w *Wallet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.load(); err != nil {
		return err
	}
	if _, exists := m.wallets[name]; exists {
		return ErrWalletExists
	}
	w.Name = name
	if w.CreatedAt == "" {
		w.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	m.wallets[name] = w
	if err := m.persist(); err != nil {
		delete(m.wallets, name)
		return err
	}
	return nil
}

// AddWatchOnly registers an address that can be queried but never signs.
func (m *Manager) AddWatchOnly(name, address string) error {
	if !common.IsHexAddress(address) {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	return m.Add(name, &Wallet{
		Address: common.HexToAddress(address).Hex(),
		Type:    TypeWatchOnly,
	})
}

// AddWithKey derives an EVM address from a hex private key and stores the wallet.
// The private key is stored in the keystore.
func (m *Manager) AddWithKey(name, hexKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.load(); err != nil {
		return err
	}
	if _, exists := m.wallets[name]; exists {
		return ErrWalletExists
	}

	privKey, err := crypto.HexToECDSA(normaliseHexKey(hexKey))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	ref, err := m.keystore.Store(name, normaliseHexKey(hexKey))
	if err != nil {
		return fmt.Errorf("storing key: %w", err)
	}

	m.wallets[name] = &Wallet{
		Name:      name,
		Address:   crypto.PubkeyToAddress(privKey.PublicKey).Hex(),
		Type:      TypeSigning,
		KeyRef:    ref,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := m.persist(); err != nil {
		delete(m.wallets, name)
		if derr := m.keystore.Delete(ref); derr != nil {
			return fmt.Errorf("%w (and removing stored key: %v)", err, derr)
		}
		return err
	}
	return nil
}

// Get returns a wallet by name.
func (m *Manager) Get(name string) (*Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.load(); err != nil {
		return nil, err
	}
	w, ok := m.wallets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrWalletNotFound, name)
	}
	return w, nil
}

// Remove deletes a wallet by name, along with its stored key.
func (m *Manager) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.load(); err != nil {
		return err
	}
	w, ok := m.wallets[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrWalletNotFound, name)
	}
	if w.KeyRef != "" {
		if err := m.keystore.Delete(w.KeyRef); err != nil {
			return fmt.Errorf("deleting key: %w", err)
		}
	}
	delete(m.wallets, name)
	return m.persist()
}

// List returns all wallets sorted by name.
func (m *Manager) List() ([]*Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.load(); err != nil {
		return nil, err
	}
	return m.sorted(), nil
}

// SetDefault marks a wallet as the default.
func (m *Manager) SetDefault(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.load(); err != nil {
		return err
	}
	if _, ok := m.wallets[name]; !ok {
		return fmt.Errorf("%w: %q", ErrWalletNotFound, name)
	}
	for _, w := range m.wallets {
		w.IsDefault = w.Name == name
	}
	return m.persist()
}

// Default returns the default wallet, or nil if none.
func (m *Manager) Default() *Wallet {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.load(); err != nil {
		return nil
	}
	for _, w := range m.wallets {
		if w.IsDefault {
			return w
		}
	}
	// Fallback: return the only wallet.
	if len(m.wallets) == 1 {
		for _, w := range m.wallets {
			return w
		}
	}
	return nil
}

// --- internal ---

func (m *Manager) load() error {
	if m.loaded {
		return nil
	}
	wallets, err := m.store.Load()
	if err != nil {
		return fmt.Errorf("loading wallets: %w", err)
	}
	for _, w := range wallets {
		m.wallets[w.Name] = w
	}
	m.loaded = true
	return nil
}

func (m *Manager) persist() error {
	return m.store.Save(m.sorted())
}

func (m *Manager) sorted() []*Wallet {
	out := make([]*Wallet, 0, len(m.wallets))
	for _, w := range m.wallets {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// --- in-memory store ---

type memStore struct {
	wallets []*Wallet
}

func (s *memStore) Load() ([]*Wallet, error) {
	return s.wallets, nil
}

func (s *memStore) Save(wallets []*Wallet) error {
	s.wallets = wallets
	return nil
}

// --- JSON file store ---

// JSONStore persists wallets to a JSON file.
type JSONStore struct {
	path string
}

// NewJSONStore creates a JSON-backed wallet store.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func (s *JSONStore) Load() ([]*Wallet, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var wallets []*Wallet
	if err := json.Unmarshal(data, &wallets); err != nil {
		return nil, err
	}
	return wallets, nil
}

func (s *JSONStore) Save(wallets []*Wallet) error {
	data, err := json.MarshalIndent(wallets, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}
