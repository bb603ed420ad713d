package app

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"sentencecards/internal/groups"
	"sentencecards/internal/logging"
	"sentencecards/internal/source"
	"sentencecards/internal/table"
)

// ErrMissingGroupID is returned when no group is configured.
var ErrMissingGroupID = errors.New("group id not defined")

// LoadSentences fetches and parses a group's sentence file. It returns either
// DataLoaded or LoadFailed.
func LoadSentences(ctx context.Context, src source.Source, groupID string) Event {
	data, err := src.Fetch(ctx, source.SentencesPath(groupID))
	if err != nil {
		logging.AppError("loading sentences for %s: %v", groupID, err)
		return LoadFailed{GroupID: groupID, Err: err}
	}
	records := table.Parse(string(data))
	logging.App("loaded %d records for %s", len(records), groupID)
	return DataLoaded{GroupID: groupID, Records: records}
}

// LoadIndex fetches the group index. ok is false when it is unavailable; the
// failure is logged and navigation stays absent.
func LoadIndex(ctx context.Context, src source.Source) (NavigationReady, bool) {
	data, err := src.Fetch(ctx, source.IndexPath)
	if err != nil {
		logging.Get(logging.CategoryApp).Warn("group index unavailable: %v", err)
		return NavigationReady{}, false
	}
	idx, err := groups.ParseIndex(data)
	if err != nil {
		logging.Get(logging.CategoryApp).Warn("group index invalid: %v", err)
		return NavigationReady{}, false
	}
	return NavigationReady{Index: idx}, true
}

// Load fetches a group's sentences and the group index concurrently and
// reports each result through dispatch as it arrives. The two results are
// independent and may arrive in either order. Load returns ErrMissingGroupID
// without fetching anything when groupID is empty; fetch failures are
// delivered as events, not returned.
func Load(ctx context.Context, src source.Source, groupID string, dispatch func(Event)) error {
	if groupID == "" {
		return ErrMissingGroupID
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		dispatch(LoadSentences(gctx, src, groupID))
		return nil
	})
	g.Go(func() error {
		if nav, ok := LoadIndex(gctx, src); ok {
			dispatch(nav)
		}
		return nil
	})
	return g.Wait()
}
