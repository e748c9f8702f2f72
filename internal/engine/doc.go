// Package engine runs a machine of any kind behind one interface.
//
// A machine arrives as an ir.Machine (from the compiler or the store) or as
// a JSON document. Load picks the engine for its kind; Run feeds it one
// input and returns an Outcome with a uniform verdict and trace:
//
//	fa, pda:     accept | reject
//	tm:          accept | reject | loop
//	mealy, moore: ok | stuck, plus the produced output
//
// Operations that exist for one kind only (ToDFA, Minimize, Grammar on
// finite automata) return a RuntimeError with code UNSUPPORTED_OPERATION
// for every other kind.
//
// Runs are deterministic: the same machine and input always produce the
// same trace, so traces can be compared against golden files.
package engine
