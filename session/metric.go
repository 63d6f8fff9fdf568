package session

import (
	"sync/atomic"
)

// Metrics contains atomic metrics for one session.
// Metrics can be used as the value of a prometheus CounterFunc or GaugeFunc.
type Metrics struct {
	// ConnectAttemptCount indicates the number of connect attempts made.
	ConnectAttemptCount atomic.Uint64
	// ConnectSuccessCount indicates the number of accepted connects.
	ConnectSuccessCount atomic.Uint64
	// StrategyCycleGauge indicates the number of full strategy-table passes
	// in the current connect sequence.
	StrategyCycleGauge atomic.Uint32

	// FrameSendCount indicates the number of outbound cyclic frames produced.
	FrameSendCount atomic.Uint64
	// FrameRecvCount indicates the number of inbound cyclic frames accepted.
	FrameRecvCount atomic.Uint64
	// FrameGapCount indicates the number of tolerated cycle-counter gaps.
	FrameGapCount atomic.Uint64
	// ReplayDropCount indicates the number of frames discarded as replays.
	ReplayDropCount atomic.Uint64
	// DecodeErrCount indicates the number of inbound decode failures.
	DecodeErrCount atomic.Uint64
}

func (m *Metrics) incConnectAttemptCount() {
	m.ConnectAttemptCount.Add(1)
}

func (m *Metrics) incConnectSuccessCount() {
	m.ConnectSuccessCount.Add(1)
}

func (m *Metrics) setStrategyCycleGauge(v uint32) {
	m.StrategyCycleGauge.Store(v)
}

func (m *Metrics) incFrameSendCount() {
	m.FrameSendCount.Add(1)
}

func (m *Metrics) incFrameRecvCount() {
	m.FrameRecvCount.Add(1)
}

func (m *Metrics) incFrameGapCount() {
	m.FrameGapCount.Add(1)
}

func (m *Metrics) incReplayDropCount() {
	m.ReplayDropCount.Add(1)
}

func (m *Metrics) incDecodeErrCount() {
	m.DecodeErrCount.Add(1)
}
