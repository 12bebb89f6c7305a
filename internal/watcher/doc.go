// Package watcher reports changes under a project root as debounced batches.
//
// fsnotify is used where it works; polling takes over where it does not
// (network mounts, some container volumes) or when forced. Rapid events for
// the same path are coalesced, and paths ignored by .gitignore are dropped.
// Changes to .gitignore files and to the project config file are reported
// with their own operations so callers can reload rules before re-indexing.
//
// Usage:
//
//	w, err := watcher.NewHybridWatcher(watcher.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	defer w.Stop()
//
//	go func() { _ = w.Start(ctx, root) }()
//
//	for batch := range w.Events() {
//	    for _, ev := range batch {
//	        fmt.Println(ev.Operation, ev.Path)
//	    }
//	}
package watcher
