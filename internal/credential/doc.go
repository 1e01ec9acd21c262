// Package credential resolves the access key for the generative endpoint.
//
// Sources are Provider implementations composed with Chain: a StaticProvider
// for the configured key and a DialogProvider that asks a KeySelector (the
// per-user SessionKeyStore of the HTTP API, or a TerminalSelector in the
// command line tool) for an interactively selected key. Credentials are
// resolved at call time and never persisted.
package credential
