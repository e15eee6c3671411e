package archon

// Config holds process-wide defaults: a single mutable package-level
// registry for the notification hook and registry sizing, in the style of
// a package-level settings object rather than per-world constructor
// arguments.
var Config = config{
	nameCacheCapacity: 4096,
}

type config struct {
	// notifyHook receives every init/deinit observer dispatch. Nil by default: a world with no hook
	// registered still runs commits correctly, it just has no observers.
	notifyHook NotifyFunc

	// nameCacheCapacity bounds the component/family/prefab name registry
	// per world (see cache.go). Components are also bounded independently
	// by the family bitset width (DESIGN.md, family cardinality bound);
	// this is a separate, larger-by-default cap on name lookups, since
	// families and prefabs share the same name cache as components.
	nameCacheCapacity int
}

// SetNotifyHook installs the callback invoked for every init/deinit
// observer dispatch in worlds created after the call: NewWorld copies the
// hook once, so a world that already exists keeps the hook it was built
// with. The core does not run a scheduler
// — this hook is the single seam through which an
// external scheduler or observer library hears about effective
// component changes.
func (c *config) SetNotifyHook(fn NotifyFunc) {
	c.notifyHook = fn
}

// SetNameCacheCapacity overrides the default name registry capacity. Must
// be called before any world is created to take effect for that world.
func (c *config) SetNameCacheCapacity(n int) {
	c.nameCacheCapacity = n
}
