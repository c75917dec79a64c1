package fragment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSnapshotToProto(t *testing.T) {
	u := NewUnifier()
	frames := make([][]byte, 0)
	d := NewDivider(HeaderSize+8, false)
	fs, err := d.Encode(newMessage(40))
	require.NoError(t, err)
	frames = append(frames, fs[0]) // deliver only the first fragment, leaving the group open

	_, _ = u.Decode(frames[0])

	snap := u.Snapshot()
	require.Equal(t, 1, snap.OpenGroups)

	proto := snap.ToProto()
	require.EqualValues(t, 1, proto.OpenGroups.GetValue())
	require.EqualValues(t, snap.MinGroupIndex, proto.MinGroupIndex.GetValue())
	require.EqualValues(t, snap.PendingTimers, proto.PendingTimers.GetValue())
}

func TestGroupAgeProto(t *testing.T) {
	d := GroupAge(250 * time.Millisecond)
	require.Equal(t, int32(250_000_000), d.GetNanos())
}
