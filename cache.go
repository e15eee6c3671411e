package archon

// nameCache is a bounded name-to-index lookup for the narrower job this
// engine needs: resolving a registered component/family/prefab name to its
// slot without a linear scan.
//
// Scoped down from a generic cache over arbitrary payload types — this
// engine only ever caches Handles, so the type parameter is dropped in
// favor of a concrete value type; there is exactly one consumer (the
// world's name registry) and no second instantiation to justify keeping it
// generic.
type nameCache struct {
	indices  map[string]int
	items    []Handle
	byHandle map[Handle]string
	capacity int
}

func newNameCache(capacity int) *nameCache {
	return &nameCache{
		indices:  make(map[string]int, capacity),
		byHandle: make(map[Handle]string, capacity),
		capacity: capacity,
	}
}

// lookup returns the handle registered under name, if any.
func (c *nameCache) lookup(name string) (Handle, bool) {
	idx, ok := c.indices[name]
	if !ok {
		return 0, false
	}
	return c.items[idx], true
}

// nameOf is the reverse of lookup: the name a handle was registered under,
// mirroring the source's ecs_id (entity.c:707), which reads the name back
// off the entity's attached EcsId component.
func (c *nameCache) nameOf(h Handle) (string, bool) {
	name, ok := c.byHandle[h]
	return name, ok
}

// register adds name → h, failing once the cache reaches capacity.
func (c *nameCache) register(name string, h Handle) error {
	if _, exists := c.indices[name]; exists {
		return ErrNameExists{Name: name}
	}
	if c.capacity > 0 && len(c.items) >= c.capacity {
		return ErrCacheFull{Capacity: c.capacity}
	}
	idx := len(c.items)
	c.indices[name] = idx
	c.items = append(c.items, h)
	c.byHandle[h] = name
	return nil
}
