// Command xorframe-bench runs N independent Divider/Unifier pairs
// concurrently, one goroutine each, to exercise the §5 guarantee that two
// instances share no state and need no coordination.
package main

import (
	"context"
	"crypto/rand"
	"flag"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/appnet-org/xorframe/pkg/fragment"
	"github.com/appnet-org/xorframe/pkg/logging"
	"go.uber.org/zap"
)

func main() {
	workers := flag.Int("workers", 8, "number of independent Divider/Unifier pairs to run")
	messageSize := flag.Int("message-size", 64*1024, "message size in bytes per worker")
	maxBlockSize := flag.Int("max-block-size", 1100, "max fragment size in bytes")
	useXor := flag.Bool("xor", true, "enable XOR parity fragments")
	flag.Parse()
	defer logging.Sync()

	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < *workers; i++ {
		i := i
		g.Go(func() error {
			return runWorker(ctx, i, *messageSize, *maxBlockSize, *useXor)
		})
	}

	if err := g.Wait(); err != nil {
		logging.Error("worker failed", zap.Error(err))
		return
	}
	logging.Info("all workers completed round-trip successfully", zap.Int("workers", *workers))
}

func runWorker(_ context.Context, id, messageSize, maxBlockSize int, useXor bool) error {
	message := make([]byte, messageSize)
	if _, err := rand.Read(message); err != nil {
		return fmt.Errorf("worker %d: %w", id, err)
	}

	divider := fragment.NewDivider(uint32(maxBlockSize), useXor)
	frames, err := divider.Encode(message)
	if err != nil {
		return fmt.Errorf("worker %d: encode: %w", id, err)
	}

	unifier := fragment.NewUnifier()
	var out [][]byte
	for _, frame := range frames {
		msgs, _ := unifier.Decode(frame)
		out = append(out, msgs...)
	}

	if len(out) != 1 || len(out[0]) != len(message) {
		return fmt.Errorf("worker %d: round-trip failed: got %d messages", id, len(out))
	}

	snap := unifier.Snapshot()
	logging.Debug("worker completed",
		zap.Int("id", id),
		zap.Int("frames", len(frames)),
		zap.Int("openGroups", snap.OpenGroups))
	return nil
}
