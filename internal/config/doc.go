// Package config provides the statebus configuration.
//
// Configuration is organized in layers with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  4. Overrides (CLI flags)   │  ← Highest priority
//	├─────────────────────────────┤
//	│  3. Environment Variables   │  ← STATEBUS_*
//	├─────────────────────────────┤
//	│  2. Config File             │  ← statebus.toml / statebus.yaml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// Layers are deep-merged, so a file that sets only log.level keeps every
// other default.
//
// # Basic Usage
//
//	cfg, err := config.Load("statebus.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	level := cfg.Log().Level
//	debounce, err := cfg.GetDuration("store.debounce")
package config
