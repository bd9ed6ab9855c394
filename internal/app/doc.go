// Package app is the composition root for tote.
//
// # Wiring
//
// Build resolves everything the TUI and the CLI subcommands share:
//
//  1. config.Load: TOML file, then .env, then TOTE_* variables
//  2. logging.New: zap logger writing to the configured log file
//  3. kv store: file (default), redis or memory, per config.Storage
//  4. api.NewClient against config.APIURL
//  5. catalog, session, account, checkout and admin containers
//
// Run adds the user preferences and hands the containers to ui.Run, which
// blocks until the user quits or the context is cancelled.
//
// # Demo Mode
//
// With Options.Demo set, Build first serves a seeded fakeapi backend on a
// loopback port, points the client at it and switches storage to memory.
// Nothing is written outside the log file.
//
// # Error Handling
//
// Configuration, logger, storage and client failures are returned from
// Build. Everything after startup is reported inside the TUI.
package app
