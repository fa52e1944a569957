package container

import "sync"

// AliasTable maps alternative names onto canonical component names.
// Chains are allowed (alias → alias → name); cycles are not.
type AliasTable struct {
	mu      sync.RWMutex
	aliases map[string]string // alias → target (canonical name or another alias)
}

// NewAliasTable creates an empty alias table.
func NewAliasTable() *AliasTable {
	return &AliasTable{aliases: make(map[string]string)}
}

// Register makes alias resolve to name. Registering an alias equal to the
// name itself removes any mapping for it. Re-registering an alias replaces
// its target. Returns ErrAliasCycle if the mapping would make resolution
// loop.
func (t *AliasTable) Register(name, alias string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if alias == name {
		delete(t.aliases, alias)
		return nil
	}
	// Walking from the target: if we can reach the alias, adding the
	// mapping would close a loop.
	for cur := name; ; {
		if cur == alias {
			return creationErr("alias", alias, ErrAliasCycle)
		}
		next, ok := t.aliases[cur]
		if !ok {
			break
		}
		cur = next
	}
	t.aliases[alias] = name
	return nil
}

// Remove drops an alias. Reports whether it existed.
func (t *AliasTable) Remove(alias string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.aliases[alias]
	delete(t.aliases, alias)
	return ok
}

// IsAlias reports whether name is registered as an alias.
func (t *AliasTable) IsAlias(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.aliases[name]
	return ok
}

// Canonical resolves name through zero or more alias hops to its canonical
// form. Names with no alias entry resolve to themselves.
func (t *AliasTable) Canonical(name string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	cur := name
	for {
		next, ok := t.aliases[cur]
		if !ok {
			return cur
		}
		cur = next
	}
}

// Aliases returns every registered alias that resolves to name.
func (t *AliasTable) Aliases(name string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []string
	for alias := range t.aliases {
		cur := alias
		for {
			next, ok := t.aliases[cur]
			if !ok {
				break
			}
			cur = next
		}
		if cur == name {
			out = append(out, alias)
		}
	}
	return out
}
