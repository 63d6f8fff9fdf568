// Package strategy implements the connect negotiation engine: an ordered,
// exhaustive table of wire-format and timing combinations and a per-session
// selector that walks it.
//
// Field devices rarely document which wire-format quirks their stack expects,
// so connection establishment is a guided brute force. The table enumerates the
// full cross product of the negotiation axes in a fixed, deterministic order;
// the selector remembers which entry worked and resumes there, and recognized
// hardware vendors get a registered fast-path starting index. The same vendor
// hint and the same failure pattern always produce the same attempt sequence.
package strategy
