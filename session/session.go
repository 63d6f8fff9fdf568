package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avtomat-labs/go-fieldbus/cyclic"
	"github.com/avtomat-labs/go-fieldbus/internal/pool"
	"github.com/avtomat-labs/go-fieldbus/internal/queue"
	"github.com/avtomat-labs/go-fieldbus/pnrpc"
	"github.com/avtomat-labs/go-fieldbus/strategy"
)

// Well-known endpoint identifiers for the device connect interface.
var (
	deviceObjectID = pnrpc.UUID{
		0xDE, 0xA0, 0x00, 0x00, 0x6C, 0x97, 0x11, 0xD1,
		0x82, 0x71, 0x00, 0xA0, 0x24, 0x42, 0xDF, 0x7D,
	}
	deviceInterfaceID = pnrpc.UUID{
		0xDE, 0xA0, 0x00, 0x01, 0x6C, 0x97, 0x11, 0xD1,
		0x82, 0x71, 0x00, 0xA0, 0x24, 0x42, 0xDF, 0x7D,
	}
)

// controllerByteOrder is the DREP label the controller stamps on outbound
// requests. Inbound messages are decoded by their own label.
const controllerByteOrder = pnrpc.LittleEndian

const (
	arTypeSingle      uint16 = 0x0001
	inputCRReference  uint16 = 0x0001
	outputCRReference uint16 = 0x0002
)

// Session owns one application relationship to one device: the connect
// negotiation that walks the strategy table, and the cyclic exchange that
// follows a successful connect. A Session is driven by a single goroutine
// through Connect and Cycle, or by Run which combines both with reconnection.
// EnqueueCommand, State and Metrics are safe from any goroutine.
type Session struct {
	cfg       *Config
	transport Transport

	selector *strategy.Selector
	stateMgr *ARStateMgr
	metrics  Metrics

	in  *cyclic.Channel
	out *cyclic.Channel

	commands *queue.Ring[Command]
	outputs  []cyclic.ActuatorOutput

	arUUID     pnrpc.UUID
	activityID pnrpc.UUID
	rpcSeqNum  uint32
	sessionKey uint16

	activeTiming *strategy.TimingProfile
	activeLabel  string

	consecutiveErrs int
}

// NewSession creates a session from the configuration and transport. The
// session registers its health component and starts in the not-connected state.
func NewSession(cfg *Config, transport Transport) (*Session, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}
	if transport == nil {
		return nil, ErrTransportNil
	}

	cfg.monitor.Register(cfg.ComponentID())

	s := &Session{
		cfg:       cfg,
		transport: transport,
		selector: strategy.NewSelector(cfg.table,
			strategy.WithSelectorLogger(cfg.logger),
			strategy.WithHintRegistry(cfg.hints),
		),
		stateMgr:   NewARStateMgr(cfg.logger),
		in:         cyclic.NewChannel(cyclic.Input, cfg.inputFrameID, cfg.sensorPoints, cfg.logger),
		out:        cyclic.NewChannel(cyclic.Output, cfg.outputFrameID, cfg.actuatorPoints, cfg.logger),
		commands:   queue.NewRing[Command](cfg.commandQueueSize),
		outputs:    make([]cyclic.ActuatorOutput, cfg.actuatorPoints),
		arUUID:     pnrpc.NewRandomUUID(),
		activityID: pnrpc.NewRandomUUID(),
	}

	return s, nil
}

// State returns the current AR state.
func (s *Session) State() ARState {
	return s.stateMgr.State()
}

// Metrics returns the session's metric counters.
func (s *Session) Metrics() *Metrics {
	return &s.metrics
}

// StationName returns the remote station name.
func (s *Session) StationName() string {
	return s.cfg.stationName
}

// WaitState blocks until the AR reaches the given state or the context ends.
func (s *Session) WaitState(ctx context.Context, state ARState) error {
	return s.stateMgr.WaitState(ctx, state)
}

// AddStateHandler registers handlers invoked on every AR state change.
func (s *Session) AddStateHandler(handlers ...ARStateChangeHandler) {
	s.stateMgr.AddHandler(handlers...)
}

// EnqueueCommand queues one operator actuator command for the next control
// cycle. When the mailbox is full the oldest pending command is dropped.
func (s *Session) EnqueueCommand(cmd Command) {
	if s.commands.Push(cmd) {
		s.cfg.logger.Warn("command mailbox full, oldest command dropped",
			"station", s.cfg.stationName, "point", cmd.Point)
	}
}

// Connect walks the strategy table until the device accepts a connect request
// or the context ends.
//
// Each attempt asks the health monitor first; a denied attempt returns
// ErrCircuitOpen without touching the wire or the selector. A failed attempt
// reports the failure, advances the selector and backs off before the next
// parameter combination. Success pins the selector, closes the breaker and
// moves the AR to running.
func (s *Session) Connect(ctx context.Context) error {
	if s.stateMgr.State().IsRunning() {
		return nil
	}
	if err := s.stateMgr.ToConnecting(); err != nil {
		return err
	}

	if s.cfg.vendorID != 0 {
		if s.selector.ApplyVendorHint(s.cfg.vendorID) {
			s.cfg.logger.Info("vendor hint applied",
				"station", s.cfg.stationName, "vendor_id", s.cfg.vendorID, "index", s.selector.Index())
		}
	}

	componentID := s.cfg.ComponentID()

	for {
		if err := ctx.Err(); err != nil {
			s.stateMgr.ToNotConnected()
			return err
		}

		if !s.cfg.monitor.Allow(componentID) {
			s.stateMgr.ToNotConnected()
			return fmt.Errorf("%w: %s", ErrCircuitOpen, componentID)
		}

		st := s.selector.Current()
		s.metrics.incConnectAttemptCount()
		s.metrics.setStrategyCycleGauge(s.selector.Cycles())

		raw := pnrpc.EncodeConnectRequest(s.buildConnectRequest(st), st.UUIDPolicy)

		attemptCtx, cancel := context.WithTimeout(ctx, s.cfg.connectTimeout)
		data, err := s.transport.SendConnect(attemptCtx, raw)
		cancel()

		if err == nil {
			var rsp *pnrpc.ConnectResponse
			rsp, err = pnrpc.DecodeConnectResponse(data, st.UUIDPolicy, st.NDRMode)
			if err == nil && rsp.Status != 0 {
				err = fmt.Errorf("%w: 0x%04x", ErrConnectStatus, rsp.Status)
			}
			if err == nil {
				s.connectAccepted(st, rsp)
				return nil
			}
		}

		s.cfg.logger.Debug("connect attempt failed",
			"station", s.cfg.stationName,
			"strategy", st.Label,
			"attempt", s.selector.Attempts(),
			"error", err)
		s.cfg.monitor.ReportFailure(componentID, 0, err.Error())
		s.selector.Advance()

		if werr := pool.Wait(ctx, s.cfg.retryBackoff); werr != nil {
			s.stateMgr.ToNotConnected()
			return werr
		}
	}
}

// connectAccepted records a successful negotiation and moves the AR to running.
func (s *Session) connectAccepted(st strategy.Strategy, rsp *pnrpc.ConnectResponse) {
	s.sessionKey = rsp.SessionKey
	s.activeTiming = st.Timing
	s.activeLabel = st.Label
	s.consecutiveErrs = 0

	s.selector.MarkSuccess()
	s.cfg.monitor.ReportSuccess(s.cfg.ComponentID())
	s.in.ResetSequence()
	s.out.ResetSequence()
	s.metrics.incConnectSuccessCount()

	if err := s.stateMgr.ToRunning(); err != nil {
		s.cfg.logger.Error("running transition rejected", "error", err)
	}

	s.cfg.logger.Info("connect accepted",
		"station", s.cfg.stationName,
		"strategy", st.Label,
		"session_key", rsp.SessionKey,
		"attempts", s.metrics.ConnectAttemptCount.Load())
}

// buildConnectRequest assembles the wire message for one parameter combination.
func (s *Session) buildConnectRequest(st strategy.Strategy) *pnrpc.ConnectRequest {
	seq := s.rpcSeqNum
	s.rpcSeqNum++

	slots := st.SlotScope.Apply(s.cfg.slots)

	return &pnrpc.ConnectRequest{
		Header: pnrpc.ConnectHeader{
			ByteOrder:        controllerByteOrder,
			ObjectID:         deviceObjectID,
			InterfaceID:      deviceInterfaceID,
			ActivityID:       s.activityID,
			InterfaceVersion: 1,
			SequenceNumber:   seq,
			OperationNumber:  st.OpNum,
			InterfaceHint:    0xFFFF,
			ActivityHint:     0xFFFF,
		},
		NDRMode: st.NDRMode,
		AR: pnrpc.ARBlock{
			ARType:      arTypeSingle,
			ARUUID:      s.arUUID,
			SessionKey:  s.sessionKey,
			StationName: s.cfg.stationName,
		},
		InputCR: pnrpc.IOCRBlock{
			Direction:      pnrpc.IOCRInput,
			Reference:      inputCRReference,
			FrameID:        s.cfg.inputFrameID,
			DataLength:     uint16(s.in.RegionSize()), //nolint: gosec
			CycleFactor:    st.Timing.CycleFactor,
			ReductionRatio: st.Timing.ReductionRatio,
			WatchdogFactor: st.Timing.WatchdogFactor,
			DataHoldFactor: st.Timing.DataHoldFactor,
			Slots:          slots,
		},
		OutputCR: pnrpc.IOCRBlock{
			Direction:      pnrpc.IOCROutput,
			Reference:      outputCRReference,
			FrameID:        s.cfg.outputFrameID,
			DataLength:     uint16(s.out.RegionSize()), //nolint: gosec
			CycleFactor:    st.Timing.CycleFactor,
			ReductionRatio: st.Timing.ReductionRatio,
			WatchdogFactor: st.Timing.WatchdogFactor,
			DataHoldFactor: st.Timing.DataHoldFactor,
			Slots:          slots,
		},
	}
}

// Cycle runs one control cycle: drain pending operator commands, produce one
// outbound frame, consume one inbound frame, publish the resulting snapshot.
//
// A replayed inbound frame is dropped and counted without disturbing the
// session. Other inbound failures are tolerated up to the configured limit of
// consecutive errors; crossing it reports the failure and drops the AR back to
// not-connected so the caller reconnects.
func (s *Session) Cycle(ctx context.Context) error {
	if !s.stateMgr.State().IsRunning() {
		return ErrNotRunning
	}

	for _, cmd := range s.commands.Drain() {
		if cmd.Point < 0 || cmd.Point >= len(s.outputs) {
			s.cfg.logger.Warn("command for unknown actuator point dropped",
				"station", s.cfg.stationName, "point", cmd.Point)
			continue
		}
		s.outputs[cmd.Point] = cmd.Output
	}

	frame, err := cyclic.EncodeOutputFrame(s.out, s.outputs)
	if err != nil {
		return fmt.Errorf("encode output frame: %w", err)
	}
	if err = s.transport.SendFrame(frame); err != nil {
		return s.cyclicFailure(fmt.Errorf("send output frame: %w", err))
	}
	s.metrics.incFrameSendCount()

	data, err := s.transport.RecvFrame(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return s.cyclicFailure(fmt.Errorf("recv input frame: %w", err))
	}

	result, err := cyclic.DecodeInputFrame(s.in, data)
	switch {
	case errors.Is(err, cyclic.ErrReplayDetected):
		s.metrics.incReplayDropCount()
		s.consecutiveErrs = 0
	case err != nil:
		s.metrics.incDecodeErrCount()
		return s.cyclicFailure(fmt.Errorf("decode input frame: %w", err))
	default:
		s.metrics.incFrameRecvCount()
		if result.SeqResult == cyclic.SeqGap {
			s.metrics.incFrameGapCount()
		}
		s.consecutiveErrs = 0
	}

	s.publish()

	return nil
}

// cyclicFailure tolerates inbound trouble until the consecutive-error limit,
// then tears the AR down so the caller reconnects.
func (s *Session) cyclicFailure(err error) error {
	s.consecutiveErrs++
	if s.consecutiveErrs < s.cfg.decodeErrorLimit {
		s.cfg.logger.Debug("cyclic error tolerated",
			"station", s.cfg.stationName,
			"consecutive", s.consecutiveErrs,
			"error", err)
		return nil
	}

	s.cfg.logger.Warn("cyclic channel lost",
		"station", s.cfg.stationName,
		"consecutive", s.consecutiveErrs,
		"error", err)
	s.cfg.monitor.ReportFailure(s.cfg.ComponentID(), 0, err.Error())
	s.stateMgr.ToNotConnected()

	return fmt.Errorf("cyclic channel lost after %d consecutive errors: %w", s.consecutiveErrs, err)
}

// publish pushes the current session snapshot to the configured publisher.
func (s *Session) publish() {
	if s.cfg.publisher == nil {
		return
	}

	s.cfg.publisher.Publish(Snapshot{
		StationName:     s.cfg.stationName,
		State:           s.stateMgr.State(),
		Readings:        s.in.Readings(),
		DataStatus:      s.in.DataStatus(),
		LastUpdate:      s.in.LastUpdate(),
		CycleCounter:    s.out.CycleCounter(),
		ConnectAttempts: s.metrics.ConnectAttemptCount.Load(),
		StrategyLabel:   s.activeLabel,
	})
}

// Run drives the session until the context ends: connect, then one cycle per
// update interval of the negotiated timing profile, reconnecting whenever the
// cyclic channel is lost. A breaker denial waits out the retry backoff before
// asking again.
func (s *Session) Run(ctx context.Context) error {
	for {
		if err := s.Connect(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, ErrCircuitOpen) {
				if werr := pool.Wait(ctx, s.cfg.retryBackoff); werr != nil {
					return werr
				}
				continue
			}
			return err
		}

		if err := s.cycleLoop(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.cfg.logger.Info("reconnecting", "station", s.cfg.stationName, "cause", err)
		}
	}
}

// cycleLoop ticks the cyclic exchange until the AR drops or the context ends.
func (s *Session) cycleLoop(ctx context.Context) error {
	ticker := time.NewTicker(s.activeTiming.UpdateInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.stateMgr.ToNotConnected()
			return ctx.Err()
		case <-ticker.C:
			if err := s.Cycle(ctx); err != nil {
				return err
			}
		}
	}
}

// Close tears the session down and releases the transport.
func (s *Session) Close() error {
	s.stateMgr.ToNotConnected()
	return s.transport.Close()
}
