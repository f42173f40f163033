package storage

import (
	"context"
	"fmt"
	"log"
	"time"
)

// CopyFn abstracts a backend's bulk insert capability. Implementations insert
// the provided rows (aligned to columns) and return the number of rows
// reported as inserted. Repository.CopyFrom satisfies it.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// LoadStats summarizes one LoadBatches call.
type LoadStats struct {
	Rows    int64
	Batches int64
	Elapsed time.Duration
}

// LoadBatches drains rows from in, groups them into batches of batchSize and
// calls copyFn for each non-empty batch. It returns the running totals and
// the first error encountered.
//
// Cancellation: returns ctx.Err() when canceled. Progress is logged on each
// successful flush with rows/sec since the previous flush.
func LoadBatches(
	ctx context.Context,
	columns []string,
	in <-chan []any,
	batchSize int,
	copyFn CopyFn,
) (LoadStats, error) {
	var stats LoadStats
	if batchSize <= 0 {
		return stats, fmt.Errorf("batchSize must be > 0")
	}
	if copyFn == nil {
		return stats, fmt.Errorf("copyFn must not be nil")
	}

	var (
		batch     = make([][]any, 0, batchSize)
		start     = time.Now()
		lastFlush = start
		lastTotal int64
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := copyFn(ctx, columns, batch)
		stats.Rows += n
		batch = batch[:0]

		if err != nil {
			log.Printf("loader: copy failed after=%d total=%d err=%v", n, stats.Rows, err)
			return err
		}

		stats.Batches++
		now := time.Now()
		since := now.Sub(lastFlush)
		rps := float64(0)
		if since > 0 {
			rps = float64(stats.Rows-lastTotal) / since.Seconds()
		}
		log.Printf(
			"loader: batch=%d rps=%.0f inserted=%d total_inserted=%d elapsed=%s",
			stats.Batches, rps, n, stats.Rows, now.Sub(start).Truncate(time.Millisecond),
		)
		lastFlush = now
		lastTotal = stats.Rows
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			stats.Elapsed = time.Since(start)
			return stats, ctx.Err()

		case row, ok := <-in:
			if !ok {
				err := flush()
				stats.Elapsed = time.Since(start)
				if err != nil {
					return stats, err
				}
				log.Printf("loader: input closed total_inserted=%d batches=%d", stats.Rows, stats.Batches)
				return stats, nil
			}
			batch = append(batch, row)
			if len(batch) >= batchSize {
				if err := flush(); err != nil {
					stats.Elapsed = time.Since(start)
					return stats, err
				}
			}
		}
	}
}
