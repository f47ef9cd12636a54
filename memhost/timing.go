// FILE: lixenwraith/motherboard/memhost/timing.go
package memhost

import "time"

// Watcher timing constants.
const (
	SpinWaitInterval     = 5 * time.Millisecond   // CPU-friendly busy-wait quantum
	MinPollInterval      = 100 * time.Millisecond // Hard floor for file stat polling
	ShutdownTimeout      = 100 * time.Millisecond // Graceful watcher termination window
	DefaultDebounce      = 200 * time.Millisecond // File change coalescence period
	DefaultPollInterval  = time.Second            // Fallback file monitoring frequency
	DefaultReloadTimeout = 5 * time.Second        // Maximum duration for reload operations
)

// Watcher notifications that are not property paths. Property paths always
// start with "/", these never do.
const (
	NotifyFileDeleted        = "__file_deleted__"
	NotifyPermissionsChanged = "__permissions_changed__"
	NotifyReloadError        = "__reload_error__"
	NotifyReloadTimeout      = "__reload_timeout__"
)
