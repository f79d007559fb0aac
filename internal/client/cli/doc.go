// Package cli provides the interactive GophAuth command-line client.
//
// It wires configuration, the local session store, the gRPC auth client
// and a REPL. A session saved by a previous login is restored on start,
// and a background watcher keeps the online/offline indicator current.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
