// Package site builds the static practice site from a content source, keeps
// it up to date while content changes and publishes it to Cloud Storage.
package site

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"

	"sentencecards/internal/app"
	"sentencecards/internal/groups"
	"sentencecards/internal/logging"
	"sentencecards/internal/render"
	"sentencecards/internal/sentences"
	"sentencecards/internal/source"
	"sentencecards/internal/table"
)

// DefaultConcurrency bounds parallel group builds when Builder.Concurrency
// is unset.
const DefaultConcurrency = 4

// Builder renders every group of a content source into OutDir:
//
//	index.html                       group list
//	groups/<id>/index.html           both levels
//	groups/<id>/intermediate.html
//	groups/<id>/advanced.html
//	groups/<id>/<audio files>        copied when present
type Builder struct {
	Source source.Source
	OutDir string
	// Files maps levels to audio asset names.
	Files        map[sentences.Level]string
	Concurrency  int
	Title        string
	FetchTimeout time.Duration
}

// Report summarizes a build.
type Report struct {
	BuildID  string
	Groups   int
	Pages    int
	Assets   int
	Records  int
	Failed   []string
	Warnings []string
	Duration time.Duration
}

// OK reports whether every group built.
func (r *Report) OK() bool {
	return len(r.Failed) == 0
}

type groupResult struct {
	id       string
	counts   sentences.Counts
	records  int
	pages    int
	assets   int
	failed   bool
	warnings []string
}

// Build renders the whole site. An unreadable group index is fatal: the home
// page shows an error and Build returns it. A group whose sentences cannot be
// fetched gets error pages and is listed in Report.Failed; the build goes on.
func (b *Builder) Build(ctx context.Context) (*Report, error) {
	start := time.Now()
	rep := &Report{BuildID: uuid.NewString()}
	log := logging.WithBuildID(logging.CategorySite, rep.BuildID)
	meta := render.Meta{Title: b.Title, BuildID: rep.BuildID}

	log.Info("building %s into %s", b.Source, b.OutDir)
	if err := os.MkdirAll(b.OutDir, 0o755); err != nil {
		return rep, fmt.Errorf("failed to create output dir: %w", err)
	}

	idx, err := b.loadIndex(ctx)
	if err != nil {
		log.Error("group index: %v", err)
		if werr := b.writePage(filepath.Join(b.OutDir, "index.html"), render.HomePage(render.HomeData{Meta: meta, Err: err})); werr != nil {
			return rep, errors.Join(err, werr)
		}
		rep.Pages++
		rep.Duration = time.Since(start)
		return rep, err
	}

	list := idx.Groups()
	results := make([]groupResult, len(list))

	limit := b.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)
	for i, g := range list {
		i, g := i, g
		eg.Go(func() error {
			res, err := b.buildGroup(gctx, idx, g, meta, log)
			if err != nil {
				return fmt.Errorf("group %s: %w", g.ID, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return rep, err
	}

	counts := make(map[string]sentences.Counts, len(results))
	for _, r := range results {
		rep.Groups++
		rep.Pages += r.pages
		rep.Assets += r.assets
		rep.Records += r.records
		rep.Warnings = append(rep.Warnings, r.warnings...)
		if r.failed {
			rep.Failed = append(rep.Failed, r.id)
			continue
		}
		counts[r.id] = r.counts
	}

	home := render.HomePage(render.HomeData{Meta: meta, Groups: list, Counts: counts})
	if err := b.writePage(filepath.Join(b.OutDir, "index.html"), home); err != nil {
		return rep, err
	}
	rep.Pages++
	sort.Strings(rep.Failed)

	rep.Duration = time.Since(start)
	log.Info("built %d groups, %d pages, %d assets in %v (%d failed)",
		rep.Groups, rep.Pages, rep.Assets, rep.Duration, len(rep.Failed))
	return rep, nil
}

func (b *Builder) loadIndex(ctx context.Context) (*groups.Index, error) {
	data, err := b.fetch(ctx, source.IndexPath)
	if err != nil {
		return nil, err
	}
	return groups.ParseIndex(data)
}

func (b *Builder) buildGroup(ctx context.Context, idx *groups.Index, g groups.Group, meta render.Meta, log *logging.Logger) (groupResult, error) {
	res := groupResult{id: g.ID}
	if !validID(g.ID) {
		log.Error("group %q: id is not usable as a directory name", g.ID)
		res.failed = true
		return res, nil
	}
	dir := filepath.Join(b.OutDir, source.GroupsDir, g.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return res, err
	}

	state := app.NewState(g.ID, sentences.LevelBoth)
	state = app.Reduce(state, app.NavigationReady{Index: idx})

	data, err := b.fetch(ctx, source.SentencesPath(g.ID))
	if err != nil {
		log.Error("group %s: %v", g.ID, err)
		res.failed = true
		meta.Title = g.Title
		for _, l := range sentences.Levels {
			if err := b.writePage(filepath.Join(dir, render.PageFile(l)), render.ErrorPage(meta, render.MsgLoadError)); err != nil {
				return res, err
			}
			res.pages++
		}
		return res, nil
	}

	text := string(data)
	if missing := sentences.MissingFields(table.Header(text)); len(missing) > 0 {
		w := fmt.Sprintf("group %s: sentence file lacks columns %s", g.ID, strings.Join(missing, ", "))
		log.Warn("%s", w)
		res.warnings = append(res.warnings, w)
	}
	records := table.Parse(text)
	state = app.Reduce(state, app.DataLoaded{Records: records})
	res.records = len(records)
	res.counts = sentences.Count(records)

	audio, err := b.copyAudio(ctx, g.ID, dir, log)
	if err != nil {
		return res, err
	}
	res.assets = len(audio)

	for _, l := range sentences.Levels {
		s := app.Reduce(state, app.LevelChanged{Level: l})
		page := render.GroupPage(render.PageData{Meta: meta, View: s.View(), Audio: audio})
		if err := b.writePage(filepath.Join(dir, render.PageFile(l)), page); err != nil {
			return res, err
		}
		res.pages++
	}
	log.Debug("group %s: %d records", g.ID, len(records))
	return res, nil
}

// copyAudio copies the group's recordings next to its pages and returns the
// ones that exist. Missing recordings are expected.
func (b *Builder) copyAudio(ctx context.Context, id, dir string, log *logging.Logger) (map[sentences.Level]string, error) {
	found := make(map[sentences.Level]string, len(b.Files))
	for _, l := range sentences.Levels {
		name, ok := b.Files[l]
		if !ok || name == "" || !l.HasAudio() {
			continue
		}
		data, err := b.fetch(ctx, source.AudioPath(id, name))
		if errors.Is(err, source.ErrNotFound) {
			log.Debug("group %s: no %s audio", id, l)
			continue
		}
		if err != nil {
			log.Warn("group %s: %s audio: %v", id, l, err)
			continue
		}
		if err := os.WriteFile(filepath.Join(dir, filepath.Base(name)), data, 0o644); err != nil {
			return nil, err
		}
		found[l] = filepath.Base(name)
	}
	return found, nil
}

func (b *Builder) fetch(ctx context.Context, name string) ([]byte, error) {
	if b.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.FetchTimeout)
		defer cancel()
	}
	return b.Source.Fetch(ctx, name)
}

func (b *Builder) writePage(path string, doc *html.Node) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render.Write(f, doc); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func validID(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.ContainsAny(id, `/\`)
}
