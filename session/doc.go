// Package session owns the lifecycle of one application relationship (AR) with
// a remote terminal unit: the connect phase that drives the strategy engine
// through the wire-format table, and the cyclic phase that produces and
// consumes exactly one real-time frame per control cycle.
//
// Connection establishment and cyclic exchange are sequential phases of one
// session and never run concurrently for the same AR. Independent sessions run
// concurrently, each owning its selector, channels and replay trackers; the
// shared pieces (health records, vendor hints, the strategy table) are
// read-mostly and guarded elsewhere. No network I/O ever happens under a lock.
package session
