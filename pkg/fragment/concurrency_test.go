package fragment

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// TestConcurrentInstancesShareNoState exercises §5's guarantee that two
// Divider/Unifier pairs running on different goroutines need no
// coordination: each worker round-trips its own message independently.
func TestConcurrentInstancesShareNoState(t *testing.T) {
	const workers = 16

	var g errgroup.Group
	for i := 0; i < workers; i++ {
		i := i
		g.Go(func() error {
			m := newMessage(200 + i*37)
			d := NewDivider(HeaderSize+16, i%2 == 0)
			frames, err := d.Encode(m)
			if err != nil {
				return err
			}

			u := NewUnifier()
			var out [][]byte
			for _, f := range frames {
				msgs, _ := u.Decode(f)
				out = append(out, msgs...)
			}
			if len(out) != 1 {
				return errLenMismatch
			}
			if string(out[0]) != string(m) {
				return errContentMismatch
			}
			return nil
		})
	}

	require.NoError(t, g.Wait())
}

var (
	errLenMismatch     = newTestErr("unexpected message count")
	errContentMismatch = newTestErr("reassembled content mismatch")
)

type testErr string

func newTestErr(s string) error { return testErr(s) }
func (e testErr) Error() string { return string(e) }
