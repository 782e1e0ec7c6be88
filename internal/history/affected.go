package history

// entityAction is implemented by actions that touch exactly one entity.
type entityAction interface {
	EntityID() string
}

func (a *TransformChange) EntityID() string     { return a.ID }
func (a *Rename) EntityID() string              { return a.ID }
func (a *Visibility) EntityID() string          { return a.ID }
func (a *Reparent) EntityID() string            { return a.ID }
func (a *CapabilityChange[T]) EntityID() string { return a.ID }

// Affected lists the entities an action touches, in action order and
// without duplicates. Settings changes touch none.
func Affected(a Action) []string {
	seen := make(map[string]bool)
	var out []string
	var walk func(Action)
	walk = func(a Action) {
		add := func(id string) {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
		switch v := a.(type) {
		case *Batch:
			for _, child := range v.Actions {
				walk(child)
			}
		case *Spawn:
			for _, s := range v.Snapshots {
				add(s.ID)
			}
		case *Despawn:
			for _, s := range v.Snapshots {
				add(s.ID)
			}
		case entityAction:
			add(v.EntityID())
		}
	}
	walk(a)
	return out
}

// ChangesSettings reports whether undoing or redoing a touches the
// scene-wide settings block.
func ChangesSettings(a Action) bool {
	switch v := a.(type) {
	case *SettingsChange:
		return true
	case *Batch:
		for _, child := range v.Actions {
			if ChangesSettings(child) {
				return true
			}
		}
	}
	return false
}
