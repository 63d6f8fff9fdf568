package main

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/avtomat-labs/go-fieldbus/internal/util"
	"github.com/avtomat-labs/go-fieldbus/session"
)

// maxDatagram bounds one inbound datagram. Connect answers and cyclic frames
// both fit well below this.
const maxDatagram = 4096

// defaultRecvTimeout bounds a cyclic receive when the caller's context carries
// no deadline of its own.
const defaultRecvTimeout = 500 * time.Millisecond

// udpTransport is a session.Transport over a single connected UDP socket.
// Connect traffic and cyclic frames share the socket, matching the one-port
// endpoint convention of the devices.
type udpTransport struct {
	conn *net.UDPConn
	buf  []byte
}

func dialUDP(endpoint string) (*udpTransport, error) {
	addr, err := net.ResolveUDPAddr("udp", endpoint)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", endpoint, err)
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", endpoint, err)
	}

	return &udpTransport{conn: conn, buf: make([]byte, maxDatagram)}, nil
}

var _ session.Transport = (*udpTransport)(nil)

func (t *udpTransport) SendConnect(ctx context.Context, request []byte) ([]byte, error) {
	if _, err := t.conn.Write(request); err != nil {
		return nil, fmt.Errorf("send connect: %w", err)
	}

	return t.read(ctx, defaultRecvTimeout)
}

func (t *udpTransport) SendFrame(frame []byte) error {
	_, err := t.conn.Write(frame)
	return err
}

func (t *udpTransport) RecvFrame(ctx context.Context) ([]byte, error) {
	return t.read(ctx, defaultRecvTimeout)
}

// read receives one datagram, honoring the context deadline when present.
func (t *udpTransport) read(ctx context.Context, fallback time.Duration) ([]byte, error) {
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(fallback)
	}
	if err := t.conn.SetReadDeadline(deadline); err != nil {
		return nil, err
	}

	n, err := t.conn.Read(t.buf)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}

	return util.CloneSlice(t.buf[:n], n), nil
}

func (t *udpTransport) Close() error {
	return t.conn.Close()
}
