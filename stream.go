// SPDX-License-Identifier: EPL-2.0

package ddpfx

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/ik5/ddpfx/audio"
	"github.com/ik5/ddpfx/effect"
)

// DefaultBlockFrames is the number of frames Stream hands to the effect at
// a time.
const DefaultBlockFrames = 1024

// Stream runs src through e into sink, blockFrames frames at a time, and
// returns the number of frames written. e must already be configured for
// the layout of src, see Conform.
//
// Reading and processing run concurrently. The first failure of either
// stops both. Process reporting effect.ErrNoData is not a failure: the
// block is still written, unprocessed.
func Stream(ctx context.Context, e *effect.Effect, src audio.Source, sink audio.Sink, blockFrames int) (int, error) {
	if blockFrames <= 0 {
		return 0, fmt.Errorf("%w: %d frames", ErrInvalidBufferSize, blockFrames)
	}
	inCh, outCh := src.Channels(), e.Config().Output.Channels
	if inCh != e.Config().Input.Channels {
		return 0, fmt.Errorf("%w: %d channels, effect expects %d", ErrInvalidSource, inCh, e.Config().Input.Channels)
	}

	src = audio.AlignFrames(src)

	g, ctx := errgroup.WithContext(ctx)
	blocks := make(chan []int16, 4)

	g.Go(func() error {
		defer close(blocks)
		for {
			buf := make([]int16, blockFrames*inCh)
			n, err := src.ReadPCM(buf)
			if n > 0 {
				select {
				case blocks <- buf[:n]:
				case <-ctx.Done():
					return ctx.Err()
				}
			}

			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("read: %w", err)
			}
		}
	})

	var frames int
	g.Go(func() error {
		out := make([]int16, blockFrames*outCh)
		for in := range blocks {
			n := len(in) / inCh
			dst := out[:n*outCh]
			clear(dst)

			err := e.Process(effect.Buffer{Samples: in, Frames: n}, effect.Buffer{Samples: dst, Frames: n})
			if err != nil && !errors.Is(err, effect.ErrNoData) {
				return fmt.Errorf("process: %w", err)
			}
			if err := sink.WritePCM(dst); err != nil {
				return fmt.Errorf("write: %w", err)
			}
			frames += n
		}
		return nil
	})

	err := g.Wait()
	return frames, err
}
