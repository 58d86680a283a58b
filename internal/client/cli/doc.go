// Package cli provides the sessionkeeper command-line client.
//
// A command can be run once (Execute) or from an interactive REPL (Root).
// Session tokens are held by the underlying client.Client, which persists
// them between runs and renews them transparently.
//
// Commands:
//   - register / login / logout / refresh / whoami
//   - get [id], create, update <id>, delete <id>
//   - ping
package cli
