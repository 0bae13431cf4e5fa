// Package scene is the host scene model the sheets operate on: named scenes
// with display properties and an optional dungeon drawing, persisted as one
// JSON document in the settings store.
package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/devnullvoid/dungeondraw/internal/dungeon"
	"github.com/devnullvoid/dungeondraw/internal/logger"
	"github.com/devnullvoid/dungeondraw/pkg/interfaces"
)

// Settings location of the scene document.
const (
	ModuleID   = "core"
	SettingKey = "scenes"
)

// ErrSceneNotFound is returned when no scene matches an id or name.
var ErrSceneNotFound = errors.New("scene not found")

// Scene is a canvas the dungeon is drawn on.
type Scene struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	BackgroundColor string         `json:"backgroundColor"`
	GridAlpha       float64        `json:"gridAlpha"`
	GridColor       string         `json:"gridColor"`
	Dungeon         dungeon.Config `json:"dungeon,omitempty"`
}

// HasDungeon reports whether the scene carries a drawing.
func (s Scene) HasDungeon() bool {
	return s.Dungeon != nil
}

func (s Scene) clone() Scene {
	s.Dungeon = s.Dungeon.Clone()
	return s
}

// Apply sets the properties present in props.
func (s *Scene) Apply(props dungeon.SceneProps) {
	if props.BackgroundColor != nil {
		s.BackgroundColor = *props.BackgroundColor
	}
	if props.GridAlpha != nil {
		s.GridAlpha = *props.GridAlpha
	}
	if props.GridColor != nil {
		s.GridColor = *props.GridColor
	}
}

// Store manages the scenes kept in a settings store. Writes from one Store
// are serialized; separate processes race last-writer-wins.
type Store struct {
	mu       sync.Mutex
	settings interfaces.SettingsStore
	log      interfaces.Logger
}

// NewStore creates a scene store backed by settings. A nil log uses the
// package logger.
func NewStore(settings interfaces.SettingsStore, log interfaces.Logger) *Store {
	if log == nil {
		log = logger.GetPackageLogger("scene")
	}

	return &Store{settings: settings, log: log}
}

func (s *Store) load() (map[string]Scene, error) {
	raw, err := s.settings.Get(ModuleID, SettingKey)
	if err != nil {
		return nil, fmt.Errorf("read scenes: %w", err)
	}

	scenes := map[string]Scene{}
	if strings.TrimSpace(raw) == "" {
		return scenes, nil
	}

	if err := json.Unmarshal([]byte(raw), &scenes); err != nil {
		return nil, fmt.Errorf("parse scenes: %w", err)
	}
	if scenes == nil {
		scenes = map[string]Scene{}
	}

	return scenes, nil
}

func (s *Store) save(scenes map[string]Scene) error {
	data, err := json.Marshal(scenes)
	if err != nil {
		return fmt.Errorf("serialize scenes: %w", err)
	}

	if err := s.settings.Set(ModuleID, SettingKey, string(data)); err != nil {
		return fmt.Errorf("save scenes: %w", err)
	}

	return nil
}

// mutate runs fn on the scene with id and saves the result.
func (s *Store) mutate(id string, fn func(*Scene)) (Scene, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	scenes, err := s.load()
	if err != nil {
		return Scene{}, err
	}

	sc, ok := scenes[id]
	if !ok {
		return Scene{}, fmt.Errorf("%w: %s", ErrSceneNotFound, id)
	}

	fn(&sc)
	scenes[id] = sc

	if err := s.save(scenes); err != nil {
		return Scene{}, err
	}

	return sc.clone(), nil
}

// Create adds a scene with the default display properties and no drawing.
func (s *Store) Create(name string) (Scene, error) {
	if strings.TrimSpace(name) == "" {
		return Scene{}, errors.New("scene name must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	scenes, err := s.load()
	if err != nil {
		return Scene{}, err
	}

	sc := Scene{ID: uuid.NewString(), Name: name}
	sc.Apply(dungeon.DefaultConfig().SceneProps())
	scenes[sc.ID] = sc

	if err := s.save(scenes); err != nil {
		return Scene{}, err
	}

	s.log.Debug("Created scene %s (%s)", sc.Name, sc.ID)

	return sc, nil
}

// Get returns the scene with id.
func (s *Store) Get(id string) (Scene, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	scenes, err := s.load()
	if err != nil {
		return Scene{}, err
	}

	sc, ok := scenes[id]
	if !ok {
		return Scene{}, fmt.Errorf("%w: %s", ErrSceneNotFound, id)
	}

	return sc, nil
}

// Find returns the scene whose id or name is ref. Ids take precedence.
func (s *Store) Find(ref string) (Scene, error) {
	list, err := s.List()
	if err != nil {
		return Scene{}, err
	}

	for _, sc := range list {
		if sc.ID == ref {
			return sc, nil
		}
	}
	for _, sc := range list {
		if sc.Name == ref {
			return sc, nil
		}
	}

	return Scene{}, fmt.Errorf("%w: %s", ErrSceneNotFound, ref)
}

// List returns all scenes ordered by name, then id.
func (s *Store) List() ([]Scene, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	scenes, err := s.load()
	if err != nil {
		return nil, err
	}

	list := make([]Scene, 0, len(scenes))
	for _, sc := range scenes {
		list = append(list, sc)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})

	return list, nil
}

// Update applies the display properties present in props.
func (s *Store) Update(id string, props dungeon.SceneProps) (Scene, error) {
	return s.mutate(id, func(sc *Scene) {
		sc.Apply(props)
	})
}

// SetDungeonConfig replaces the scene's drawing configuration.
func (s *Store) SetDungeonConfig(id string, cfg dungeon.Config) error {
	if cfg == nil {
		cfg = dungeon.Config{}
	}

	_, err := s.mutate(id, func(sc *Scene) {
		sc.Dungeon = cfg.Clone()
	})

	return err
}

// Delete removes the scene with id.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scenes, err := s.load()
	if err != nil {
		return err
	}

	if _, ok := scenes[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSceneNotFound, id)
	}
	delete(scenes, id)

	return s.save(scenes)
}

// Dungeon returns the scene's drawing, writing through to the store. When the
// scene has no drawing it returns nil, unless create is set, in which case a
// drawing with the default configuration is returned and stored on its first
// change.
func (s *Store) Dungeon(id string, create bool) (*dungeon.Dungeon, error) {
	sc, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if !sc.HasDungeon() && !create {
		return nil, nil
	}

	return dungeon.New(sc.Dungeon, func(cfg dungeon.Config) error {
		return s.SetDungeonConfig(id, cfg)
	}), nil
}

// Updater returns an updater that writes display properties to scene id.
func (s *Store) Updater(id string) *Updater {
	return &Updater{store: s, id: id}
}

// Updater pushes display properties to one scene.
type Updater struct {
	store *Store
	id    string
}

// UpdateScene applies props to the scene.
func (u *Updater) UpdateScene(props dungeon.SceneProps) error {
	if props.IsZero() {
		return nil
	}

	_, err := u.store.Update(u.id, props)

	return err
}
