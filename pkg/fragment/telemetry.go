package fragment

import (
	"time"

	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Snapshot is a point-in-time view of a Unifier's open-groups container,
// for callers that want to export reassembly health without this module
// owning its own .proto schema.
type Snapshot struct {
	OpenGroups    int
	MinGroupIndex uint64
	PendingTimers int
}

// Snapshot captures the current state of the open-groups container. It
// takes no lock: like the rest of Unifier, it is not safe for concurrent
// use from multiple goroutines.
func (u *Unifier) Snapshot() Snapshot {
	return Snapshot{
		OpenGroups:    len(u.groups),
		MinGroupIndex: u.minGroupIndex,
		PendingTimers: len(u.timerQueue),
	}
}

// SnapshotProto is a protobuf well-known-type rendering of Snapshot,
// suitable for forwarding over gRPC reflection or a structured log sink
// that already speaks protobuf, without requiring a bespoke message type.
type SnapshotProto struct {
	OpenGroups    *wrapperspb.Int64Value
	MinGroupIndex *wrapperspb.UInt64Value
	PendingTimers *wrapperspb.Int64Value
}

// ToProto converts s into its protobuf well-known-type rendering.
func (s Snapshot) ToProto() *SnapshotProto {
	return &SnapshotProto{
		OpenGroups:    wrapperspb.Int64(int64(s.OpenGroups)),
		MinGroupIndex: wrapperspb.UInt64(s.MinGroupIndex),
		PendingTimers: wrapperspb.Int64(int64(s.PendingTimers)),
	}
}

// GroupAge renders a duration as a protobuf well-known Duration, used when
// exporting how long a group has sat in the deadline queue.
func GroupAge(d time.Duration) *durationpb.Duration {
	return durationpb.New(d)
}
