package doublets

import (
	"context"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"golang.org/x/sync/errgroup"
)

// DanglingReference is an endpoint that names a freed link.
type DanglingReference struct {
	ID       uint64
	Endpoint string
	Value    uint64
}

func (d DanglingReference) String() string {
	return fmt.Sprintf("link %d %s -> freed %d", d.ID, d.Endpoint, d.Value)
}

// VerifyReport summarizes an integrity check.
type VerifyReport struct {
	Allocated uint64
	Live      uint64
	Free      uint64
	// Dangling lists endpoints that name freed ids. Delete does not cascade,
	// so these are legal but usually worth a look.
	Dangling []DanglingReference
}

// Verify audits the store: both index trees (order, subtree sizes,
// membership), the free list (bounds, cycles, length) and the partition of
// allocated ids into live and free. It returns an error wrapping ErrCorrupt
// on the first structural violation.
//
// The indices and the free list are checked concurrently. Verify only
// reads; the caller must not mutate the store while it runs.
func (l *Links[T]) Verify(ctx context.Context) (*VerifyReport, error) {
	report, err := l.verify(ctx)
	var live uint64
	var dangling int
	if report != nil {
		live, dangling = report.Live, len(report.Dangling)
	}
	l.logger.LogVerify(ctx, live, dangling, err)
	return report, err
}

func (l *Links[T]) verify(ctx context.Context) (*VerifyReport, error) {
	table := l.table
	if table == nil {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	live := roaring64.New()
	table.EachLive(func(id T) bool {
		live.Add(uint64(id))
		return true
	})

	var (
		bySource = roaring64.New()
		byTarget = roaring64.New()
		free     = roaring64.New()
	)

	var g errgroup.Group
	g.Go(func() error {
		_, err := table.CheckSourceIndex(func(id T) { bySource.Add(uint64(id)) })
		return err
	})
	g.Go(func() error {
		_, err := table.CheckTargetIndex(func(id T) { byTarget.Add(uint64(id)) })
		return err
	})
	g.Go(func() error {
		return table.WalkFree(func(id T) { free.Add(uint64(id)) })
	})
	if err := g.Wait(); err != nil {
		return nil, translateError(err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !sameSet(live, bySource) {
		return nil, fmt.Errorf("%w: source index does not cover exactly the live links", ErrCorrupt)
	}
	if !sameSet(live, byTarget) {
		return nil, fmt.Errorf("%w: target index does not cover exactly the live links", ErrCorrupt)
	}
	if live.AndCardinality(free) != 0 {
		return nil, fmt.Errorf("%w: ids both live and free", ErrCorrupt)
	}

	allocated := uint64(table.Allocated())
	if live.GetCardinality()+free.GetCardinality() != allocated {
		return nil, fmt.Errorf("%w: %d live and %d free ids do not add up to %d allocated",
			ErrCorrupt, live.GetCardinality(), free.GetCardinality(), allocated)
	}

	report := &VerifyReport{
		Allocated: allocated,
		Live:      live.GetCardinality(),
		Free:      free.GetCardinality(),
	}

	c := &l.constants
	check := func(id T, endpoint string, v T) {
		if v == c.Null || !c.IsInternal(v) || live.Contains(uint64(v)) {
			return
		}
		report.Dangling = append(report.Dangling, DanglingReference{
			ID:       uint64(id),
			Endpoint: endpoint,
			Value:    uint64(v),
		})
	}

	it := live.Iterator()
	for it.HasNext() {
		id := T(it.Next())
		source, target, _ := table.Get(id)
		check(id, "source", source)
		check(id, "target", target)
	}

	return report, nil
}

func sameSet(a, b *roaring64.Bitmap) bool {
	n := a.GetCardinality()
	return n == b.GetCardinality() && a.AndCardinality(b) == n
}
