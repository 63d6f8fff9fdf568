package strategy

import (
	"fmt"

	"github.com/avtomat-labs/go-fieldbus/pnrpc"
)

// Strategy is one concrete wire-format and timing combination to try during
// connection establishment. Strategies are value objects; the shared table they
// live in is built once and never mutated.
type Strategy struct {
	UUIDPolicy pnrpc.UUIDPolicy
	NDRMode    pnrpc.NDRMode
	SlotScope  pnrpc.SlotScope
	OpNum      uint16
	Timing     *TimingProfile
	Label      string
}

// opnumName returns the label fragment for an operation number variant.
func opnumName(op uint16) string {
	switch op {
	case pnrpc.OpConnect:
		return "connect"
	case pnrpc.OpControl:
		return "control-connect"
	default:
		return fmt.Sprintf("op%d", op)
	}
}

// BuildTable enumerates the cross product of the negotiation axes in a fixed,
// deterministic order: UUID policy varies fastest, then NDR header presence,
// then slot scope, then the operation number variant, and the timing profile
// varies slowest. Iterating the result visits every combination exactly once
// per full pass.
func BuildTable(opnums []uint16, profiles []*TimingProfile) []Strategy {
	table := make([]Strategy, 0, 4*len(opnums)*len(profiles))

	for _, profile := range profiles {
		for _, opnum := range opnums {
			for _, scope := range []pnrpc.SlotScope{pnrpc.SlotScopeFull, pnrpc.SlotScopeMinimal} {
				for _, ndrMode := range []pnrpc.NDRMode{pnrpc.NDROmit, pnrpc.NDRInclude} {
					for _, policy := range []pnrpc.UUIDPolicy{pnrpc.UUIDAsReceived, pnrpc.UUIDFieldSwapped} {
						table = append(table, Strategy{
							UUIDPolicy: policy,
							NDRMode:    ndrMode,
							SlotScope:  scope,
							OpNum:      opnum,
							Timing:     profile,
							Label: fmt.Sprintf("%s/%s/%s/%s/%s",
								policy, ndrMode, scope, opnumName(opnum), profile.ID),
						})
					}
				}
			}
		}
	}

	return table
}

// defaultTable is the shared, read-only strategy table: 8 wire-format
// combinations per timing profile, 24 entries total. The operation number is
// pinned to the standard connect; legacy opnum variants are reachable through
// BuildTable for stacks that need them.
var defaultTable = BuildTable([]uint16{pnrpc.OpConnect}, Profiles())

// DefaultTable returns the shared strategy table. Callers must not mutate it.
func DefaultTable() []Strategy {
	return defaultTable
}
