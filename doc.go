// File: lixenwraith/motherboard/doc.go

// Package motherboard keeps a real-time audio device in sync with the
// host-managed set of typed properties it reads and writes once per block.
//
// Features:
//   - Typed property caches with pluggable host converters (read-only, write-only)
//   - Batched diff dispatch through a sorted, allocation-free registry
//   - Change-only write back to the host
//   - CV override merge: parameter edits win, connected CV drives, disconnect falls back
//   - Reserved note channel routed to a separate listener
//   - Development-build wiring checks, compiled out with -tags release
//
// Quick Start:
//
//	gain := motherboard.MustProperty(host, "/custom_properties/gain", motherboard.Float64)
//	gainCV := motherboard.MustCVInSocket(host, "gain_cv", motherboard.Float64)
//
//	registry := motherboard.NewRegistry()
//	_ = gain.Register(registry)
//	_ = gainCV.RegisterForUpdate(registry)
//	registry.InitProperties()
//
//	effective := motherboard.NewCVOverride(gain, gainCV)
//	effective.Init()
//
//	// once per block
//	registry.OnUpdate(diffs)
//	if effective.AfterMotherboardUpdate() {
//	    // effective.Value() changed
//	}
//
// Per-block Order:
//  1. Registry.OnUpdate applies the host diff batch to every subscribed cache
//  2. Registry.OnNotesUpdate forwards note-state diffs to a NoteListener
//  3. CVOverride.AfterMotherboardUpdate folds socket state into each CV-aware parameter
//  4. The device renders, then calls Property.StoreOnUpdate for outputs
//
// Thread Safety:
// None. Every type is owned by one device instance and touched only from the
// render goroutine. Registration happens before the first batch; the registry
// rejects new keys once dispatch has started.
//
// Faults:
// Wiring bugs (double init, read before init, update delivered to the wrong
// address, writing a read-only property) panic with a *Fault in development
// builds and degrade to bounded no-ops in release builds.
package motherboard
