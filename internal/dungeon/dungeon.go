package dungeon

import "sync"

// State is a snapshot of a dungeon's current configuration.
type State struct {
	Config Config `json:"config"`
}

// Dungeon holds the active configuration of one scene's drawing. Writes are
// forwarded to the persist callback, which is how the owning scene stores
// them.
type Dungeon struct {
	mu      sync.Mutex
	config  Config
	persist func(Config) error
}

// New returns a dungeon with cfg as its configuration. A nil cfg starts from
// DefaultConfig. persist may be nil.
func New(cfg Config, persist func(Config) error) *Dungeon {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	return &Dungeon{config: cfg.Clone(), persist: persist}
}

// State returns a copy of the current configuration.
func (d *Dungeon) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()

	return State{Config: d.config.Clone()}
}

// SetConfig merges cfg over the current configuration and persists the
// result. The in-memory configuration only changes once persistence succeeds.
func (d *Dungeon) SetConfig(cfg Config) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.commit(d.config.Merge(cfg))
}

// Reset replaces the configuration with DefaultConfig.
func (d *Dungeon) Reset() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.commit(DefaultConfig())
}

func (d *Dungeon) commit(next Config) error {
	if d.persist != nil {
		if err := d.persist(next.Clone()); err != nil {
			return err
		}
	}
	d.config = next

	return nil
}
