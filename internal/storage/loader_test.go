package storage

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"csvsql/internal/locale"
	"csvsql/internal/parser/csv"
	"csvsql/internal/schema"
)

// feed returns a closed channel holding rows.
func feed(rows [][]any) <-chan []any {
	in := make(chan []any, len(rows))
	for _, r := range rows {
		in <- r
	}
	close(in)
	return in
}

// scoreRows builds n typed rows shaped like "id,name,score" records.
func scoreRows(n int) [][]any {
	var sb strings.Builder
	sb.WriteString("id,name,score\n")
	for i := 0; i < n; i++ {
		sb.WriteString("7,Alice,3.5\n")
	}
	records := csv.Parse(sb.String(), ',').Records()
	gb := locale.MustParse("en-GB")
	return schema.Build(records, schema.Infer(records, true, gb), schema.BuildOptions{
		HasHeader: true,
		Locale:    gb,
	}).Rows
}

func TestLoadBatchesGroupsRows(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		rows      int
		batchSize int
		wantSizes []int
	}{
		{"remainder", 7, 3, []int{3, 3, 1}},
		{"exact", 6, 3, []int{3, 3}},
		{"one_partial", 2, 500, []int{2}},
		{"no_rows", 0, 3, nil},
	}

	columns := []string{"id", "name", "score"}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var (
				sizes []int
				seen  [][]any
			)
			copyFn := func(_ context.Context, cols []string, rows [][]any) (int64, error) {
				if !reflect.DeepEqual(cols, columns) {
					t.Errorf("copyFn columns = %q, want %q", cols, columns)
				}
				sizes = append(sizes, len(rows))
				for _, r := range rows {
					seen = append(seen, append([]any(nil), r...))
				}
				return int64(len(rows)), nil
			}

			rows := scoreRows(tt.rows)
			stats, err := LoadBatches(context.Background(), columns, feed(rows), tt.batchSize, copyFn)
			if err != nil {
				t.Fatalf("LoadBatches() error = %v", err)
			}
			if !reflect.DeepEqual(sizes, tt.wantSizes) {
				t.Fatalf("batch sizes = %v, want %v", sizes, tt.wantSizes)
			}
			if stats.Rows != int64(tt.rows) || stats.Batches != int64(len(tt.wantSizes)) {
				t.Fatalf("stats = %+v, want rows=%d batches=%d", stats, tt.rows, len(tt.wantSizes))
			}
			if tt.rows > 0 && !reflect.DeepEqual(seen[0], []any{int32(7), "Alice", 3.5}) {
				t.Fatalf("first row = %v, want [7 Alice 3.5]", seen[0])
			}
		})
	}
}

func TestLoadBatchesStopsAtFirstCopyError(t *testing.T) {
	t.Parallel()

	errConstraint := errors.New(`value too long for type character varying(4)`)
	var calls int
	copyFn := func(_ context.Context, _ []string, rows [][]any) (int64, error) {
		calls++
		if calls == 2 {
			return 0, errConstraint
		}
		return int64(len(rows)), nil
	}

	stats, err := LoadBatches(context.Background(), []string{"id", "name", "score"}, feed(scoreRows(5)), 2, copyFn)
	if !errors.Is(err, errConstraint) {
		t.Fatalf("LoadBatches() error = %v, want %v", err, errConstraint)
	}
	if calls != 2 || stats.Batches != 1 || stats.Rows != 2 {
		t.Fatalf("calls=%d stats=%+v, want 2 calls and one 2-row batch", calls, stats)
	}
}

func TestLoadBatchesRejectsBadArguments(t *testing.T) {
	t.Parallel()

	ok := func(context.Context, []string, [][]any) (int64, error) { return 0, nil }
	tests := []struct {
		name      string
		batchSize int
		copyFn    CopyFn
	}{
		{"zero_batch", 0, ok},
		{"negative_batch", -1, ok},
		{"nil_copy", 10, nil},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := LoadBatches(context.Background(), nil, feed(nil), tt.batchSize, tt.copyFn); err == nil {
				t.Fatal("LoadBatches() error = nil, want error")
			}
		})
	}
}

func TestLoadBatchesReturnsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// in never closes, so only cancellation can end the load.
	in := make(chan []any)
	done := make(chan error, 1)
	go func() {
		_, err := LoadBatches(ctx, []string{"id"}, in, 100, func(context.Context, []string, [][]any) (int64, error) {
			return 0, nil
		})
		done <- err
	}()

	in <- []any{int32(1)}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("LoadBatches() error = %v, want %v", err, context.Canceled)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("LoadBatches() did not return after cancel")
	}
}
