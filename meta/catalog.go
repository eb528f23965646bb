package meta

import "fmt"

// Catalog is a complete set of scopes and members produced by a provider.
type Catalog struct {
	// Scopes contains every declaring scope referenced by Members, outer
	// scopes included.
	Scopes []*TypeDef

	// Members contains fields, properties and methods in provider order.
	Members []Member

	// Warnings contains non-fatal issues encountered while building.
	Warnings []Warning
}

// AddScope adds a declaring scope to the catalog.
func (c *Catalog) AddScope(s *TypeDef) {
	c.Scopes = append(c.Scopes, s)
}

// AddMember adds a member to the catalog.
func (c *Catalog) AddMember(m Member) {
	c.Members = append(c.Members, m)
}

// AddWarning adds a warning to the catalog.
func (c *Catalog) AddWarning(w Warning) {
	c.Warnings = append(c.Warnings, w)
}

// FindScope looks up a scope by simple name. Returns nil if not found.
func (c *Catalog) FindScope(name string) *TypeDef {
	for _, s := range c.Scopes {
		if s.Name.Name == name {
			return s
		}
	}
	return nil
}

// FindMember looks up a member by its Key ("Type.Member"). Returns nil if
// not found.
func (c *Catalog) FindMember(key string) Member {
	for _, m := range c.Members {
		if Key(m) == key {
			return m
		}
	}
	return nil
}

// Keys returns the keys of all members in catalog order.
func (c *Catalog) Keys() []string {
	keys := make([]string, len(c.Members))
	for i, m := range c.Members {
		keys[i] = Key(m)
	}
	return keys
}

// DuplicateWarnings returns one DUPLICATE_KEY warning for each key shared by
// more than one member, in catalog order. Lookups by key only reach the
// first such member.
func (c *Catalog) DuplicateWarnings() []Warning {
	counts := make(map[string]int, len(c.Members))
	for _, m := range c.Members {
		counts[Key(m)]++
	}
	var out []Warning
	for _, m := range c.Members {
		key := Key(m)
		n := counts[key]
		if n < 2 {
			continue
		}
		counts[key] = 0
		w := Warning{
			Code:    "DUPLICATE_KEY",
			Message: fmt.Sprintf("%d members share key %s; only the first is reachable by key", n, key),
		}
		if s := m.Declaring(); s != nil {
			w.TypeName = s.Name.Name
		}
		out = append(out, w)
	}
	return out
}
