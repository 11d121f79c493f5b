// Package cli provides the interactive vaultkeeper command-line client.
//
// It wires configuration, persisted state, the account store, the vault
// cache, the sync engine and the gRPC transport, and exposes them through a
// small REPL. In the background it keeps a connectivity watcher, periodic
// automatic syncs and a live vault summary shown in the prompt.
//
// Commands:
//   - login, accounts, use <id>, logout [id]
//   - sync
//   - list [all|my|org <id>], groups [all|my|org <id>], orgs, sends
//   - search [vault|orgs|sends] <query>, show <id>
//   - kdf, help, exit
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
