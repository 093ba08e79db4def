package dedupe

// Package dedupe provides the shared singleflight group used to collapse
// concurrent snapshot reads. Many clients poll the same battle; one read
// per key serves all concurrent callers.

import "golang.org/x/sync/singleflight"

// SnapshotGroup deduplicates battle snapshot reads keyed by join code.
var SnapshotGroup singleflight.Group
