package acquire

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/sonroyaalmerol/kumaplay/internal/sentryhelper"
)

// MediaFetcher turns one item reference into local files using profile p.
// Failures should be *FetchError so the pipeline can tell item-scoped
// problems from batch-scoped ones.
type MediaFetcher interface {
	Fetch(ctx context.Context, ref string, p Profile) ([]string, error)
}

// Recorder persists finished runs.
type Recorder interface {
	SaveRun(ctx context.Context, rep *Report) error
}

type Options struct {
	Fetcher  MediaFetcher
	Source   PlaylistSource // nil disables streaming-service playlists
	Lister   PlaylistLister
	History  Recorder
	Primary  Profile
	Fallback Profile
	// RatePerMin paces consecutive fetches. Zero means unpaced.
	RatePerMin int
	// OnItem is called after every item settles.
	OnItem func(index int, it *Item)
}

type Pipeline struct {
	fetcher  MediaFetcher
	source   PlaylistSource
	lister   PlaylistLister
	history  Recorder
	primary  Profile
	fallback Profile
	limiter  *rate.Limiter
	onItem   func(int, *Item)
}

func New(opts Options) *Pipeline {
	limit := rate.Inf
	if opts.RatePerMin > 0 {
		limit = rate.Every(time.Minute / time.Duration(opts.RatePerMin))
	}
	if opts.Primary.Name == "" {
		opts.Primary = PrimaryProfile("")
	}
	if opts.Fallback.Name == "" {
		opts.Fallback = FallbackProfile("")
	}
	return &Pipeline{
		fetcher:  opts.Fetcher,
		source:   opts.Source,
		lister:   opts.Lister,
		history:  opts.History,
		primary:  opts.Primary,
		fallback: opts.Fallback,
		limiter:  rate.NewLimiter(limit, 1),
		onItem:   opts.OnItem,
	}
}

// Acquire resolves ref and fetches every item. Partial and batch failures are
// reported in the returned Report; only resolution failures return an error.
func (p *Pipeline) Acquire(ctx context.Context, ref Reference) (*Report, error) {
	rep := &Report{
		RunID:     uuid.NewString(),
		Reference: ref,
		StartedAt: time.Now(),
		Profile:   p.primary.Name,
	}

	title, items, err := p.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	rep.Title, rep.Items = title, items
	slog.Info("acquisition started", "run", rep.RunID, "ref", string(ref), "items", len(items))

	if err := p.pass(ctx, items, p.primary, true); err != nil {
		if BatchScoped(err) {
			slog.Warn("primary profile failed for the batch, switching to fallback", "err", err)
			rep.UsedFallback = true
			rep.Profile = p.fallback.Name
			err = p.pass(ctx, items, p.fallback, false)
		}
		if err != nil {
			rep.BatchErr = fmt.Errorf("%w: %w", ErrBatchFailed, err)
			failPending(items, err)
		}
	}

	rep.FinishedAt = time.Now()
	rep.tally()
	slog.Info("acquisition finished", "run", rep.RunID, "succeeded", rep.Succeeded, "failed", rep.Failed,
		"profile", rep.Profile, "duration", rep.FinishedAt.Sub(rep.StartedAt))

	if rep.BatchErr != nil && !errors.Is(rep.BatchErr, context.Canceled) {
		sentryhelper.Capture(rep.BatchErr, map[string]string{"component": "acquire", "profile": rep.Profile})
	}
	p.record(ctx, rep)
	return rep, nil
}

// pass fetches every pending item with profile prof. It stops at the first
// batch-scoped failure, leaving that item and the rest pending, and returns it.
// When retry is set an item-scoped failure gets one more attempt with the
// fallback profile; whatever that attempt returns settles the item, so an
// item that already used the fallback is never pending for a later pass.
func (p *Pipeline) pass(ctx context.Context, items []*Item, prof Profile, retry bool) error {
	for i, it := range items {
		if it.Status != StatusPending {
			continue
		}
		err := p.fetch(ctx, it, prof)
		retried := false
		if err != nil && retry && !BatchScoped(err) && ctx.Err() == nil {
			slog.Warn("item failed, retrying with fallback profile", "item", it.Label, "err", err)
			err = p.fetch(ctx, it, p.fallback)
			retried = true
		}
		switch {
		case err == nil:
		case ctx.Err() != nil:
			return ctx.Err()
		case BatchScoped(err) && !retried:
			return err
		default:
			it.Status = StatusFailed
			slog.Warn("item skipped", "item", it.Label, "profile", it.Profile, "err", err)
		}
		if p.onItem != nil {
			p.onItem(i, it)
		}
	}
	return nil
}

func (p *Pipeline) fetch(ctx context.Context, it *Item, prof Profile) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}
	it.Profile = prof.Name
	paths, err := p.fetcher.Fetch(ctx, it.Ref, prof)
	if err != nil {
		it.Err = err
		return err
	}
	it.Status, it.Paths, it.Err = StatusSucceeded, paths, nil
	slog.Debug("item acquired", "item", it.Label, "profile", prof.Name, "files", len(paths))
	return nil
}

func failPending(items []*Item, cause error) {
	for _, it := range items {
		if it.Status == StatusPending {
			it.Status = StatusFailed
			if it.Err == nil {
				it.Err = cause
			}
		}
	}
}

func (p *Pipeline) record(ctx context.Context, rep *Report) {
	if p.history == nil {
		return
	}
	if err := p.history.SaveRun(context.WithoutCancel(ctx), rep); err != nil {
		slog.Warn("failed to record acquisition history", "run", rep.RunID, "err", err)
	}
}
