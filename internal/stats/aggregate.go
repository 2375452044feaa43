// Package stats turns the per-file stage traces of one prebundling run into
// a grouped, human-readable performance report. Aggregation is best-effort
// and purely observational: no failure here aborts the run.
package stats

import (
	"context"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/mfreed420/vite-plugin-svelte/internal/prebundle"
	"github.com/mfreed420/vite-plugin-svelte/internal/stage"
)

// UnknownKey groups files whose package lookup failed or returned nothing.
const UnknownKey = "unknown"

// defaultLookupLimit caps concurrent package lookups.
const defaultLookupLimit = 8

// trackedStages lists the reported stage pairs in render order. End carries
// the per-file start→end total.
var trackedStages = []stage.Marker{stage.Read, stage.Preprocessed, stage.Compiled, stage.End}

// PackageResolver supplies package identity for processed files.
type PackageResolver interface {
	ResolvePackagePath(filePath string) (string, error)
	DisplayName(packagePath string) string
}

// GroupStat is the per-package aggregate derived from one run's records.
// Derived fresh each run and never mutated outside the aggregation pass.
type GroupStat struct {
	Key         string
	Name        string
	FileCount   int
	StageTotals map[stage.Marker]float64
	SpanStart   float64
	SpanEnd     float64
}

// Aggregator consumes a finished run's records and renders the report.
type Aggregator struct {
	Resolver PackageResolver
	Logger   *slog.Logger

	// LookupLimit bounds concurrent package lookups; zero means the default.
	LookupLimit int
}

// Aggregate resolves package keys for all records concurrently and folds the
// per-file durations into per-group accumulators, ordered by descending file
// count with ties kept in first-encountered order.
func (a *Aggregator) Aggregate(ctx context.Context, records []prebundle.Record) []GroupStat {
	keys := a.resolveKeys(ctx, records)

	byKey := make(map[string]int)
	groups := make([]GroupStat, 0)

	for i, rec := range records {
		idx, ok := byKey[keys[i]]
		if !ok {
			idx = len(groups)
			byKey[keys[i]] = idx
			groups = append(groups, GroupStat{
				Key:         keys[i],
				Name:        a.displayName(keys[i]),
				StageTotals: make(map[stage.Marker]float64, len(trackedStages)),
			})
		}

		foldRecord(&groups[idx], rec)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].FileCount > groups[j].FileCount
	})

	return groups
}

// resolveKeys fills one package key per record, reusing keys already stamped
// on records. Lookup failures degrade to UnknownKey; they never abort the
// aggregation of the remaining files.
func (a *Aggregator) resolveKeys(ctx context.Context, records []prebundle.Record) []string {
	keys := make([]string, len(records))

	limit := a.LookupLimit
	if limit <= 0 {
		limit = defaultLookupLimit
	}

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(limit)

	for i, rec := range records {
		i, rec := i, rec
		if rec.PackageKey != "" {
			keys[i] = rec.PackageKey

			continue
		}

		group.Go(func() error {
			pkgPath, err := a.Resolver.ResolvePackagePath(rec.Path)
			if err != nil || pkgPath == "" {
				if err != nil && a.Logger != nil {
					a.Logger.DebugContext(ctx, "stats: package lookup failed", "file", rec.Path, "error", err)
				}

				keys[i] = UnknownKey

				return nil
			}

			keys[i] = pkgPath

			return nil
		})
	}

	// Lookup goroutines never return errors; degraded files land in the
	// unknown group instead.
	_ = group.Wait()

	return keys
}

func (a *Aggregator) displayName(key string) string {
	if key == UnknownKey {
		return UnknownKey
	}

	return a.Resolver.DisplayName(key)
}

// foldRecord accumulates one file into its group: count, per-stage duration
// sums, and the group span as min start / max end across members. The span
// may exceed the summed durations because member files run concurrently.
func foldRecord(group *GroupStat, rec prebundle.Record) {
	fileTrace := stage.FromEvents(rec.Events)

	for _, marker := range trackedStages {
		if d, ok := fileTrace.Duration(marker); ok {
			group.StageTotals[marker] += d
		}
	}

	start, startOK := eventTimestamp(rec.Events, stage.Start)
	end, endOK := eventTimestamp(rec.Events, stage.End)

	if startOK && (group.FileCount == 0 || start < group.SpanStart) {
		group.SpanStart = start
	}

	if endOK && (group.FileCount == 0 || end > group.SpanEnd) {
		group.SpanEnd = end
	}

	group.FileCount++
}

func eventTimestamp(events []stage.Event, marker stage.Marker) (float64, bool) {
	for _, ev := range events {
		if ev.Stage == marker {
			return ev.Timestamp, true
		}
	}

	return 0, false
}
