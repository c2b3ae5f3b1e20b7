package splitpane

import (
	"fmt"
	"sort"
	"strconv"
	"sync"

	"go.uber.org/zap"
)

// Store persists per user values.  Profile reports ok=false for keys that
// were never set.
type Store interface {
	Profile(user, key string) (value string, ok bool, err error)
	SetProfile(user, key, value string) error
}

// Manager knows the panes of the application and the divider positions each
// user left them in.
type Manager struct {
	store Store
	log   *zap.Logger

	mu    sync.RWMutex
	panes map[string]Pane
}

// NewManager returns a manager persisting to store.
func NewManager(store Store, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{store: store, log: log, panes: make(map[string]Pane)}
}

// Define adds a pane to the application.  A pane defined twice is replaced.
func (m *Manager) Define(p *Pane) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.panes[p.Name] = *p
}

// Names returns the defined panes in alphabetical order.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.panes))
	for name := range m.panes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Pane returns a copy of the named pane with the divider where user left it.
func (m *Manager) Pane(user, name string) (*Pane, error) {
	m.mu.RLock()
	def, ok := m.panes[name]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown pane %q", name)
	}
	p := def
	value, ok, err := m.store.Profile(user, profileKey(name))
	if err != nil {
		return nil, fmt.Errorf("failed to load layout of pane %q: %w", name, err)
	}
	if !ok {
		return &p, nil
	}
	ratio, err := strconv.ParseFloat(value, 64)
	if err != nil {
		m.log.Warn("ignoring stored divider position", zap.String("pane", name), zap.String("user", user), zap.String("value", value))
		return &p, nil
	}
	p.SetRatio(ratio)
	return &p, nil
}

// Save stores the divider position of p for user.
func (m *Manager) Save(user string, p *Pane) error {
	m.mu.RLock()
	_, ok := m.panes[p.Name]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("unknown pane %q", p.Name)
	}
	value := strconv.FormatFloat(p.Ratio, 'f', 4, 64)
	if err := m.store.SetProfile(user, profileKey(p.Name), value); err != nil {
		return fmt.Errorf("failed to save layout of pane %q: %w", p.Name, err)
	}
	m.log.Debug("saved divider position", zap.String("pane", p.Name), zap.String("user", user), zap.String("ratio", value))
	return nil
}

func profileKey(name string) string {
	return "layout." + name
}
