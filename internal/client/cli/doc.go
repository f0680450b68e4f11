// Package cli provides the interactive Bitácora command-line client.
//
// It wires configuration, the local session database, the API services and
// an interactive REPL. The same screens back the one-shot commands of
// cmd/bitacora.
//
// Screens:
//   - Login / Logout / Whoami
//   - List / Show / Link / Download for service logs
//   - Add / Edit / Delete (with confirmation)
//   - Pay and Report, offered to administrators only
//
// Role checks here only decide what is offered; the server authorizes every
// call. Each mutation is followed by a full reload of the list.
//
// The REPL is started via App.Shell(ctx), which blocks until the user exits.
package cli
