package receipt

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/terraform-plugin-log/tflog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/dimbot/lexctl/internal/runid"
	"github.com/dimbot/lexctl/internal/target"
)

const contentType = "application/json"

// Publish writes r to every store, at most maxConcurrency at a time. One
// store failing does not stop the others; all failures are joined.
func Publish(ctx context.Context, stores []target.Target, r *Receipt, maxConcurrency int) error {
	if len(stores) == 0 {
		return nil
	}
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}

	data, err := Marshal(r)
	if err != nil {
		return err
	}

	sem := semaphore.NewWeighted(int64(maxConcurrency))
	errs := make([]error, len(stores))
	// A plain Group: one failed store must not cancel writes to the others.
	var g errgroup.Group

	for i, store := range stores {
		g.Go(func() error {
			if err := sem.Acquire(ctx, 1); err != nil {
				errs[i] = fmt.Errorf("receipt: %s: %w", store.Name(), err)
				return errs[i]
			}
			defer sem.Release(1)

			if err := store.Put(ctx, r.Key(), data, contentType); err != nil {
				errs[i] = fmt.Errorf("receipt: put %s to %s: %w", r.Key(), store.Name(), err)
				return errs[i]
			}
			tflog.Debug(ctx, "receipt published", map[string]interface{}{
				"target": store.Name(),
				"key":    r.Key(),
			})
			return nil
		})
	}

	// Wait reports only the first failure; the caller gets all of them.
	if err := g.Wait(); err != nil {
		return errors.Join(errs...)
	}
	return nil
}

// Entry is one stored receipt.
type Entry struct {
	Key   string
	RunID string
}

// List returns the receipts in store, newest run first. Keys that do not
// name a run are skipped.
func List(ctx context.Context, store target.Target) ([]Entry, error) {
	objects, err := store.List(ctx, Prefix)
	if err != nil {
		return nil, fmt.Errorf("receipt: list %s: %w", store.Name(), err)
	}

	var entries []Entry
	for _, obj := range objects {
		id := strings.TrimSuffix(strings.TrimPrefix(obj.Key, Prefix), ".json")
		if !runid.Valid(id) {
			continue
		}
		entries = append(entries, Entry{Key: obj.Key, RunID: id})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].RunID > entries[j].RunID })
	return entries, nil
}

// Load fetches and decodes the receipt for runID.
func Load(ctx context.Context, store target.Target, runID string) (*Receipt, error) {
	data, err := store.Get(ctx, Prefix+runID+".json")
	if err != nil {
		return nil, fmt.Errorf("receipt: get %s from %s: %w", runID, store.Name(), err)
	}
	return Unmarshal(data)
}
