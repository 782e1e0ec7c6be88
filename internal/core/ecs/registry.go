package ecs

// Registry lists the component stores of a World so a destroy reaches all
// of them.
type Registry struct {
	stores []Store
}

func NewRegistry() *Registry {
	return &Registry{stores: make([]Store, 0, 16)}
}

func (r *Registry) Register(store Store) {
	r.stores = append(r.stores, store)
}

// Forget drops id from every store.
func (r *Registry) Forget(id EntityID) {
	for _, s := range r.stores {
		s.Remove(id)
	}
}

func (r *Registry) Len() int { return len(r.stores) }
