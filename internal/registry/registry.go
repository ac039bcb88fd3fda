// Package registry keeps the named games the platform can start: the
// local versus round and the scripted demo scenarios. Games register
// themselves in init() functions, so the CLI and the menus can list and
// create them without knowing the concrete types.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/tui-brix/internal/core"
)

// Game is what the platform drives. Games contain pure logic with no
// terminal dependencies; the platform handles input mapping, timing and
// turning the screen buffer into output.
type Game interface {
	// ID returns a unique identifier, used on the command line.
	ID() string

	// Title returns a human-readable name for display.
	Title() string

	// Reset starts a new round with the given screen size and seed.
	Reset(cfg core.RuntimeConfig) error

	// Step advances the simulation by one fixed tick with the input of
	// both seats.
	Step(in core.MultiInputFrame) (core.StepResult, error)

	// Render draws the current state into the screen buffer.
	// The screen is pre-cleared before this call.
	Render(dst *core.Screen)

	// State returns the current game state.
	State() core.GameState
}

// GameInfo contains metadata about a registered game.
type GameInfo struct {
	ID    string
	Title string
}

// Factory creates a new instance of a game.
type Factory func() Game

var (
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds a game factory. Panics if the ID is already taken.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: game %q already registered", id))
	}

	factories[id] = f
	titles[id] = f().Title()
}

// List returns all registered games, sorted by ID.
func List() []GameInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]GameInfo, 0, len(factories))
	for id := range factories {
		result = append(result, GameInfo{ID: id, Title: titles[id]})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result
}

// Create instantiates a game by its ID.
func Create(id string) (Game, error) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := factories[id]
	if !ok {
		return nil, fmt.Errorf("registry: unknown game %q", id)
	}
	return f(), nil
}

// Exists checks if a game with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}
