// Package tier provides the tier catalog: the static configuration that maps
// complexity-score ranges to workflow tiers.
//
// # Overview
//
// Each tier declares whether direct (unrestricted) mutating actions are
// allowed, the minimum number of prerequisite steps, and the ordered list of
// mandatory step identifiers. The catalog is loaded once per process and is
// immutable; hot reload swaps the whole catalog atomically through a Holder.
//
// Ranges are inclusive on both ends. A nil *Catalog behaves as an empty one,
// so callers never need a nil check before Resolve or Lookup.
//
// # Catalog Format
//
// Catalogs are YAML documents (JSON is accepted since YAML is a superset).
// Tiers may be declared as an ordered list:
//
//	tiers:
//	  - name: low
//	    range: [0, 30]
//	    allow_direct_actions: true
//	  - name: high
//	    range: [70, 100]
//	    required_steps: [plan, review]
//
// or with the legacy map layout, where keys are tier names:
//
//	{"tiers": {"TRIVIAL": {"range": [0, 30], "allowDirectTools": true,
//	  "requiredAgents": [], "minimumAgents": 0}}}
//
// In both layouts the declaration order is significant: when ranges overlap,
// the first declared tier wins. Validate reports overlaps, gaps and minimums
// that exceed the required steps as issues without rejecting the catalog.
//
// # Usage
//
//	catalog, err := tier.LoadFile("config/tiers.yaml")
//	if err != nil {
//	    return err
//	}
//	for _, issue := range catalog.Validate() {
//	    logger.Warn("tier catalog", "issue", issue.String())
//	}
//
//	def, err := catalog.Resolve(72)          // "high"
//	steps := catalog.RequiredSteps(def.Name) // [plan review]
//
// # Hot Reload
//
//	holder := tier.NewHolder("config/tiers.yaml", logger)
//	if err := holder.Load(); err != nil {
//	    // holder.Current() is nil: callers degrade to "tier undetermined"
//	}
//	holder.OnReload(func(c *tier.Catalog, err error) {
//	    // a failed reload keeps the previous catalog
//	})
//	watcher, _ := tier.NewWatcher(tier.DefaultWatcherConfig(), logger)
//	go watcher.Watch(ctx, holder)
//
// # Thread Safety
//
// Catalog is read-only after New and safe for concurrent use. Holder.Current
// may be called from any goroutine while a reload is in progress.
package tier
