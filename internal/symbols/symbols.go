// Package symbols holds the corridor's text content: the pools of contextual
// messages the event director draws from.
package symbols

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Message pool names
const (
	PoolHighParanoia  = "high_paranoia"
	PoolReentry       = "reentry"
	PoolLookBack      = "look_back"
	PoolStationary    = "stationary"
	PoolMovement      = "movement"
	PoolContradiction = "contradiction"
)

// KnownPools lists every pool the director understands
var KnownPools = []string{
	PoolHighParanoia,
	PoolReentry,
	PoolLookBack,
	PoolStationary,
	PoolMovement,
	PoolContradiction,
}

//go:embed messages.yaml
var defaultMessages []byte

// file is the on-disk message format
type file struct {
	Pools map[string][]string `yaml:"pools"`
}

// Library is a set of message pools, read-only once loaded
type Library struct {
	pools map[string][]string
}

// Default returns the embedded messages
func Default() *Library {
	lib, err := Parse(defaultMessages)
	if err != nil {
		// the embedded file is covered by tests
		panic(fmt.Sprintf("symbols: embedded messages: %v", err))
	}
	return lib
}

// Load reads messages from a YAML file. An empty path yields the embedded set.
// Pools missing from the file fall back to the embedded ones.
func Load(path string) (*Library, error) {
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read messages: %w", err)
	}
	lib, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	base := Default()
	for name, msgs := range base.pools {
		if len(lib.pools[name]) == 0 {
			lib.pools[name] = msgs
		}
	}
	return lib, nil
}

// Parse decodes a YAML document of message pools
func Parse(raw []byte) (*Library, error) {
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse messages: %w", err)
	}

	lib := &Library{pools: make(map[string][]string, len(f.Pools))}
	for name, msgs := range f.Pools {
		if !isKnown(name) {
			return nil, fmt.Errorf("unknown pool %q", name)
		}
		cleaned := make([]string, 0, len(msgs))
		for _, m := range msgs {
			if m = strings.TrimSpace(m); m != "" {
				cleaned = append(cleaned, m)
			}
		}
		lib.pools[name] = cleaned
	}
	return lib, nil
}

// Messages returns the pool's messages, nil for an unknown pool
func (l *Library) Messages(pool string) []string {
	return l.pools[pool]
}

// Pools returns the names of non-empty pools in alphabetical order
func (l *Library) Pools() []string {
	names := make([]string, 0, len(l.pools))
	for name, msgs := range l.pools {
		if len(msgs) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func isKnown(name string) bool {
	for _, p := range KnownPools {
		if p == name {
			return true
		}
	}
	return false
}
