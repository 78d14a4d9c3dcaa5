package weights

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"benchcoach/internal/factor"
)

const (
	globalWeightsFile = "factor_weights.json"
	playerWeightsFile = "player_weights.json"
)

// Config holds the current global weight vector and the sparse per-player
// overrides. Reads return immutable snapshots and are safe for concurrent
// use; all mutation and persistence goes through a single-writer mutex.
type Config struct {
	mu        sync.RWMutex
	configDir string
	global    Vector
	players   map[string]map[string]float64
}

// Load reads both weight stores from configDir. A missing file means "use
// the documented defaults" and is not an error; an unreadable file is logged
// and treated the same way.
func Load(configDir string) *Config {
	c := &Config{
		configDir: configDir,
		global:    Defaults(),
		players:   make(map[string]map[string]float64),
	}

	if raw, err := os.ReadFile(filepath.Join(configDir, globalWeightsFile)); err == nil {
		var stored map[string]float64
		if err := json.Unmarshal(raw, &stored); err != nil {
			log.Printf("error parsing %s, using defaults: %v", globalWeightsFile, err)
		} else {
			merged := Defaults().Map()
			for k, v := range stored {
				if factor.Known(k) && v >= 0 {
					merged[k] = v
				}
			}
			c.global = Vector{w: merged}
		}
	} else if !os.IsNotExist(err) {
		log.Printf("error loading %s, using defaults: %v", globalWeightsFile, err)
	}

	if raw, err := os.ReadFile(filepath.Join(configDir, playerWeightsFile)); err == nil {
		var stored map[string]map[string]float64
		if err := json.Unmarshal(raw, &stored); err != nil {
			log.Printf("error parsing %s, ignoring overrides: %v", playerWeightsFile, err)
		} else {
			for player, overrides := range stored {
				clean := make(map[string]float64, len(overrides))
				for k, v := range overrides {
					if factor.Known(k) && v >= 0 {
						clean[k] = v
					}
				}
				if len(clean) > 0 {
					c.players[player] = clean
				}
			}
		}
	} else if !os.IsNotExist(err) {
		log.Printf("error loading %s, ignoring overrides: %v", playerWeightsFile, err)
	}

	return c
}

// Weights returns the effective vector for a player: the per-player override
// merged over the global vector, override winning key-wise. An empty player
// ID returns the global vector.
func (c *Config) Weights(playerID string) Vector {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if playerID == "" {
		return c.global
	}
	overrides, ok := c.players[playerID]
	if !ok {
		return c.global
	}
	ov := make(map[string]float64, len(overrides))
	for k, v := range overrides {
		ov[k] = v
	}
	return c.global.Merge(Vector{w: ov})
}

// Global returns the current global vector snapshot.
func (c *Config) Global() Vector {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.global
}

// SetGlobalWeight replaces one factor's global weight.
func (c *Config) SetGlobalWeight(name string, weight float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, err := c.global.Set(name, weight)
	if err != nil {
		return err
	}
	c.global = next
	return nil
}

// SetGlobal replaces the entire global vector, for calibration write-back.
func (c *Config) SetGlobal(v Vector) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.global = v
}

// SetPlayerWeight stores one per-player override.
func (c *Config) SetPlayerWeight(playerID, name string, weight float64) error {
	if !factor.Known(name) {
		return fmt.Errorf("unknown factor: %s", name)
	}
	if weight < 0 {
		return fmt.Errorf("negative weight %.4f for factor %s", weight, name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.players[playerID] == nil {
		c.players[playerID] = make(map[string]float64)
	}
	c.players[playerID][name] = weight
	return nil
}

// SetPlayerWeights replaces a player's full override map.
func (c *Config) SetPlayerWeights(playerID string, overrides map[string]float64) error {
	clean := make(map[string]float64, len(overrides))
	for name, weight := range overrides {
		if !factor.Known(name) {
			return fmt.Errorf("unknown factor: %s", name)
		}
		if weight < 0 {
			return fmt.Errorf("negative weight %.4f for factor %s", weight, name)
		}
		clean[name] = weight
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.players[playerID] = clean
	return nil
}

// ResetPlayer drops a player's overrides, reverting them to global weights.
func (c *Config) ResetPlayer(playerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.players, playerID)
}

// PlayersWithOverrides lists players carrying custom weights, sorted.
func (c *Config) PlayersWithOverrides() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.players))
	for player := range c.players {
		out = append(out, player)
	}
	sort.Strings(out)
	return out
}

// SaveGlobal persists the global vector. The write is atomic: a temp file in
// the same directory renamed over the target, so a concurrent reader never
// observes a torn store.
func (c *Config) SaveGlobal() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return writeJSONAtomic(filepath.Join(c.configDir, globalWeightsFile), c.global.Map())
}

// SavePlayers persists the per-player override store.
func (c *Config) SavePlayers() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return writeJSONAtomic(filepath.Join(c.configDir, playerWeightsFile), c.players)
}

// SaveAll persists both stores.
func (c *Config) SaveAll() error {
	if err := c.SaveGlobal(); err != nil {
		return err
	}
	return c.SavePlayers()
}

func writeJSONAtomic(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal weights: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp weights file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write weights: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close weights file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace weights file: %w", err)
	}
	return nil
}
