package persistence

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// IdentityVersion is the current version of the identity file format.
const IdentityVersion = 1

// IdentityFile is the file name used inside the data directory.
const IdentityFile = "identity.yaml"

// ErrInvalidIdentity is returned when the identity file holds no valid UUID.
var ErrInvalidIdentity = errors.New("persistence: invalid device identity")

// Identity is the persistent identity of the device.
type Identity struct {
	// Version is the identity file format version.
	Version int `yaml:"version"`

	// DeviceID is the device UUID.
	DeviceID string `yaml:"device_id"`

	// CreatedAt is when the identity was generated.
	CreatedAt time.Time `yaml:"created_at"`
}

// IdentityStore manages the identity file.
type IdentityStore struct {
	mu   sync.Mutex
	path string

	// newID generates device IDs. Replaced in tests.
	newID func() string
	now   func() time.Time
}

// NewIdentityStore creates a store for the identity file in dataDir.
func NewIdentityStore(dataDir string) *IdentityStore {
	return &IdentityStore{
		path:  filepath.Join(dataDir, IdentityFile),
		newID: func() string { return uuid.NewString() },
		now:   time.Now,
	}
}

// Path returns the identity file path.
func (s *IdentityStore) Path() string {
	return s.path
}

// Load reads the identity from disk.
// Returns nil, nil if the file doesn't exist.
func (s *IdentityStore) Load() (*Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// LoadOrCreate returns the stored identity, generating and saving a new one
// on first start.
func (s *IdentityStore) LoadOrCreate() (*Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.load()
	if err != nil {
		return nil, err
	}
	if id != nil {
		return id, nil
	}

	id = &Identity{
		DeviceID:  s.newID(),
		CreatedAt: s.now().UTC(),
	}
	if err := s.save(id); err != nil {
		return nil, err
	}
	return id, nil
}

// Save persists the identity to disk.
func (s *IdentityStore) Save(id *Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(id)
}

// Clear removes the identity file. The next LoadOrCreate generates a new
// device ID.
func (s *IdentityStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *IdentityStore) load() (*Identity, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	id := &Identity{}
	if err := yaml.Unmarshal(data, id); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	if _, err := uuid.Parse(id.DeviceID); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidIdentity, id.DeviceID)
	}
	return id, nil
}

func (s *IdentityStore) save(id *Identity) error {
	if _, err := uuid.Parse(id.DeviceID); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidIdentity, id.DeviceID)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	id.Version = IdentityVersion
	if id.CreatedAt.IsZero() {
		id.CreatedAt = s.now().UTC()
	}

	data, err := yaml.Marshal(id)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}
