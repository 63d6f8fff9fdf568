package main

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUDPTransport(t *testing.T) {
	require := require.New(t)

	// echo endpoint standing in for a device
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(err)
	defer pc.Close()

	go func() {
		buf := make([]byte, maxDatagram)
		for {
			n, addr, err := pc.ReadFrom(buf)
			if err != nil {
				return
			}
			_, _ = pc.WriteTo(buf[:n], addr)
		}
	}()

	tr, err := dialUDP(pc.LocalAddr().String())
	require.NoError(err)
	defer tr.Close()

	t.Run("connect round trip", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		rsp, err := tr.SendConnect(ctx, []byte{0x04, 0x00, 0xAB})
		require.NoError(err)
		require.Equal([]byte{0x04, 0x00, 0xAB}, rsp)
	})

	t.Run("cyclic round trip", func(t *testing.T) {
		require.NoError(tr.SendFrame([]byte{0x80, 0x01, 0xFF}))

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		frame, err := tr.RecvFrame(ctx)
		require.NoError(err)
		require.Equal([]byte{0x80, 0x01, 0xFF}, frame)
	})

	t.Run("receive honors the deadline", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := tr.RecvFrame(ctx)
		require.Error(err)
	})

	t.Run("unresolvable endpoint", func(t *testing.T) {
		_, err := dialUDP("not a host:port")
		require.Error(err)
	})
}

func TestWriteSamplePcap(t *testing.T) {
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "sample.pcap")
	require.NoError(writeSamplePcap(path, 8))

	// pcap global header is 24 bytes; anything beyond it is packet records
	info, err := os.Stat(path)
	require.NoError(err)
	require.Greater(info.Size(), int64(24))
}
