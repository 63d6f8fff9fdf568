package main

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/spf13/cobra"

	"github.com/avtomat-labs/go-fieldbus/cyclic"
	"github.com/avtomat-labs/go-fieldbus/pnrpc"
	"github.com/avtomat-labs/go-fieldbus/strategy"
)

const (
	rtEtherType     = 0x8892
	connectUDPPort  = 34964
	pcapSnapLen     = 65535
	sampleFrameID   = 0x8001
	sampleCycleBase = 100
)

var (
	controllerMAC = net.HardwareAddr{0x02, 0x00, 0x00, 0xAB, 0x00, 0x01}
	deviceMAC     = net.HardwareAddr{0x02, 0x00, 0x00, 0xCD, 0x00, 0x02}
	controllerIP  = net.IP{192, 168, 10, 1}
	deviceIP      = net.IP{192, 168, 10, 5}
)

func newPcapCmd() *cobra.Command {
	var (
		out    string
		frames int
	)

	cmd := &cobra.Command{
		Use:   "pcap",
		Short: "Write sample connect and cyclic traffic to a pcap file",
		Long: `pcap writes a reference capture: one connect request per strategy table
entry followed by a run of cyclic input frames. Useful for exercising DPI
rules and wire-format consumers without a live device.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeSamplePcap(out, frames)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "fieldbus-sample.pcap", "output pcap file")
	cmd.Flags().IntVar(&frames, "frames", 16, "number of cyclic frames to write")

	return cmd
}

func writeSamplePcap(path string, frames int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := pcapgo.NewWriter(f)
	if err := w.WriteFileHeader(pcapSnapLen, layers.LinkTypeEthernet); err != nil {
		return err
	}

	ts := time.Now()

	// one connect request per table entry, in walk order
	for i, st := range strategy.DefaultTable() {
		req := sampleConnectRequest(st, uint32(i)) //nolint: gosec
		payload := pnrpc.EncodeConnectRequest(req, st.UUIDPolicy)

		pkt, err := connectPacket(payload)
		if err != nil {
			return err
		}
		if err := writePacket(w, pkt, ts); err != nil {
			return err
		}
		ts = ts.Add(5 * time.Millisecond)
	}

	// a run of cyclic input frames with one deliberate replay in the middle
	for i := 0; i < frames; i++ {
		seq := uint16(sampleCycleBase + i) //nolint: gosec
		if i == frames/2 && i > 0 {
			seq = uint16(sampleCycleBase + i - 1) //nolint: gosec
		}

		payload := cyclic.EncodeInputFrame(sampleFrameID, sampleReadings(i), seq, cyclic.DataStatusGood)
		pkt, err := rtPacket(payload)
		if err != nil {
			return err
		}
		if err := writePacket(w, pkt, ts); err != nil {
			return err
		}
		ts = ts.Add(time.Millisecond)
	}

	fmt.Fprintf(os.Stdout, "wrote %d connect + %d cyclic packets to %s\n",
		len(strategy.DefaultTable()), frames, path)

	return nil
}

func sampleConnectRequest(st strategy.Strategy, seq uint32) *pnrpc.ConnectRequest {
	slots := st.SlotScope.Apply([]uint16{0, 1, 4})

	return &pnrpc.ConnectRequest{
		Header: pnrpc.ConnectHeader{
			ByteOrder:        pnrpc.LittleEndian,
			ObjectID:         pnrpc.NewRandomUUID(),
			InterfaceID:      pnrpc.NewRandomUUID(),
			ActivityID:       pnrpc.NewRandomUUID(),
			InterfaceVersion: 1,
			SequenceNumber:   seq,
			OperationNumber:  st.OpNum,
		},
		NDRMode: st.NDRMode,
		AR: pnrpc.ARBlock{
			ARType:      0x0001,
			ARUUID:      pnrpc.NewRandomUUID(),
			StationName: "rtu-sample",
		},
		InputCR: pnrpc.IOCRBlock{
			Direction:      pnrpc.IOCRInput,
			Reference:      1,
			FrameID:        sampleFrameID,
			DataLength:     40,
			CycleFactor:    st.Timing.CycleFactor,
			ReductionRatio: st.Timing.ReductionRatio,
			WatchdogFactor: st.Timing.WatchdogFactor,
			DataHoldFactor: st.Timing.DataHoldFactor,
			Slots:          slots,
		},
		OutputCR: pnrpc.IOCRBlock{
			Direction:      pnrpc.IOCROutput,
			Reference:      2,
			FrameID:        sampleFrameID + 1,
			DataLength:     40,
			CycleFactor:    st.Timing.CycleFactor,
			ReductionRatio: st.Timing.ReductionRatio,
			WatchdogFactor: st.Timing.WatchdogFactor,
			DataHoldFactor: st.Timing.DataHoldFactor,
			Slots:          slots,
		},
	}
}

func sampleReadings(i int) []cyclic.SensorReading {
	return []cyclic.SensorReading{
		{Value: 20.0 + float32(i)*0.25, Quality: cyclic.QualityGood},
		{Value: 3.2, Quality: cyclic.QualityGood},
		{Value: 0, Quality: cyclic.QualityBad},
		{Value: 7.75, Quality: cyclic.QualityUncertain},
	}
}

// connectPacket wraps a connect payload in Ethernet/IPv4/UDP toward the
// device's RPC endpoint port.
func connectPacket(payload []byte) ([]byte, error) {
	eth := &layers.Ethernet{
		SrcMAC:       controllerMAC,
		DstMAC:       deviceMAC,
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{
		Version:  4,
		TTL:      64,
		Protocol: layers.IPProtocolUDP,
		SrcIP:    controllerIP,
		DstIP:    deviceIP,
	}
	udp := &layers.UDP{
		SrcPort: connectUDPPort,
		DstPort: connectUDPPort,
	}
	if err := udp.SetNetworkLayerForChecksum(ip); err != nil {
		return nil, err
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, eth, ip, udp, gopacket.Payload(payload)); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// rtPacket wraps a cyclic frame directly in Ethernet with the real-time
// EtherType.
func rtPacket(payload []byte) ([]byte, error) {
	eth := &layers.Ethernet{
		SrcMAC:       deviceMAC,
		DstMAC:       controllerMAC,
		EthernetType: layers.EthernetType(rtEtherType),
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true}
	if err := gopacket.SerializeLayers(buf, opts, eth, gopacket.Payload(payload)); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func writePacket(w *pcapgo.Writer, data []byte, ts time.Time) error {
	return w.WritePacket(gopacket.CaptureInfo{
		Timestamp:     ts,
		CaptureLength: len(data),
		Length:        len(data),
	}, data)
}
