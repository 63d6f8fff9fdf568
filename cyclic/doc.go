// Package cyclic builds and parses the high-frequency real-time frames that
// carry sensor and actuator data once a session is established.
//
// Per control cycle a session produces exactly one outbound frame and consumes
// exactly one inbound frame. The codec never panics and never aborts on
// malformed input: every failure is returned as a typed error and the session
// owner decides what to do with it. Older per-point wire formats are accepted
// with degraded quality rather than refused; only exact sequence duplication is
// treated as a replay signal.
//
// All region access goes through length-checked slices sized from the channel
// configuration. There is no way to read or write past a declared region.
package cyclic
