// Package binder turns export records into backend registrations.
//
// A record with one contract becomes one registration. A record with several
// contracts becomes a master registration carrying the lifetime and the
// factory, plus one forwarding alias per remaining contract that resolves
// through the master key. A shared record therefore yields the same instance
// whichever contract is asked for. When the record also exports its own
// identity that entry is the master; otherwise a hidden master is keyed
// "master:<uuid>", with the uuid derived from the implementation type.
package binder
