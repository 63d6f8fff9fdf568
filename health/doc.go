// Package health tracks the operational state of the controller's subsystems
// and gates retries through a per-component circuit breaker.
//
// Every known component gets a record at process start; records are mutated
// only through success and failure reports and live until process exit. The
// breaker answers one question for callers like the connect engine: is this
// component worth trying right now. Which strategy to try is somebody else's
// decision.
package health
