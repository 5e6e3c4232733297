// Package catalog holds the component records for the lifetime of the
// process. The first read scans and parses the components directory; later
// reads are served from memory.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"uikb/internal/component"
	"uikb/internal/slogutil"
)

// State is the lifecycle position of a Catalog.
type State int

const (
	StateEmpty State = iota
	StateLoading
	StatePopulated
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StatePopulated:
		return "populated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

const loadKey = "catalog"

// Options configures a Catalog.
type Options struct {
	// ComponentsDir is the directory that is scanned.
	ComponentsDir string
	// ProjectRoot is the base for record paths.
	ProjectRoot string
	Scan        component.ScanOptions
	// Workers bounds parse concurrency. Zero means runtime.NumCPU().
	Workers int
	Logger  *slog.Logger
}

// Stats describes the catalog contents.
type Stats struct {
	State        string        `json:"state"`
	Count        int           `json:"count"`
	UsedDefaults bool          `json:"usedDefaults"`
	LoadedAt     time.Time     `json:"loadedAt"`
	LoadDuration time.Duration `json:"loadDurationNs"`
	Root         string        `json:"root"`
}

// Snapshot is the result of a read.
type Snapshot struct {
	Records []component.Record
	Stats   Stats
	// Hit is true when the catalog was already populated before the read.
	Hit bool
}

// Catalog is a lazily populated, process-lifetime record cache.
type Catalog struct {
	mu           sync.RWMutex
	state        State
	records      []component.Record
	usedDefaults bool
	loadedAt     time.Time
	loadDuration time.Duration
	generation   uint64
	onLoad       []func(Stats)

	group   singleflight.Group
	scanner *component.Scanner
	parser  *component.Parser
	root    string
	workers int
	logger  *slog.Logger
}

// New creates an empty catalog.
func New(opts Options) *Catalog {
	logger := opts.Logger
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	scanOpts := opts.Scan
	if scanOpts.Logger == nil {
		scanOpts.Logger = logger
	}
	projectRoot := opts.ProjectRoot
	if projectRoot == "" {
		projectRoot = opts.ComponentsDir
	}

	return &Catalog{
		scanner: component.NewScanner(scanOpts),
		parser:  component.NewParser(projectRoot, logger),
		root:    opts.ComponentsDir,
		workers: workers,
		logger:  logger,
	}
}

// OnLoad registers fn to run after every completed population.
func (c *Catalog) OnLoad(fn func(Stats)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onLoad = append(c.onLoad, fn)
}

// All returns every record, populating the catalog on first use.
func (c *Catalog) All(ctx context.Context) ([]component.Record, error) {
	snap, err := c.Load(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Records, nil
}

// ByName returns the record whose name equals name ignoring case.
func (c *Catalog) ByName(ctx context.Context, name string) (component.Record, bool, error) {
	records, err := c.All(ctx)
	if err != nil {
		return component.Record{}, false, err
	}
	rec, ok := FindByName(records, name)
	return rec, ok, nil
}

// Filter returns the records matching category.
func (c *Catalog) Filter(ctx context.Context, category string) ([]component.Record, error) {
	records, err := c.All(ctx)
	if err != nil {
		return nil, err
	}
	return FilterByCategory(records, category), nil
}

// Load returns the current records together with cache statistics.
// Concurrent first callers share a single scan. A scan discarded by
// Invalidate is followed by a fresh one, so a successful Load always carries
// records. The only error is ctx expiring while waiting; the scan itself
// never fails.
func (c *Catalog) Load(ctx context.Context) (Snapshot, error) {
	waited := false
	for {
		if snap, ok := c.snapshot(); ok {
			snap.Hit = !waited
			return snap, nil
		}

		ch := c.group.DoChan(loadKey, func() (interface{}, error) {
			c.populate(context.WithoutCancel(ctx))
			return nil, nil
		})

		select {
		case <-ctx.Done():
			return Snapshot{}, ctx.Err()
		case <-ch:
		}
		waited = true
	}
}

// Stats reports the catalog state without triggering a load.
func (c *Catalog) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.statsLocked()
}

// Invalidate drops the stored records so the next read scans again.
// A load in flight when Invalidate is called does not store its result;
// readers waiting on it start a new load.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.state = StateEmpty
	c.records = nil
	c.usedDefaults = false
	c.loadedAt = time.Time{}
	c.loadDuration = 0
	c.logger.Debug("Catalog invalidated")
}

func (c *Catalog) snapshot() (Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.state != StatePopulated {
		return Snapshot{Stats: c.statsLocked()}, false
	}
	return Snapshot{
		Records: slices.Clone(c.records),
		Stats:   c.statsLocked(),
	}, true
}

func (c *Catalog) statsLocked() Stats {
	return Stats{
		State:        c.state.String(),
		Count:        len(c.records),
		UsedDefaults: c.usedDefaults,
		LoadedAt:     c.loadedAt,
		LoadDuration: c.loadDuration,
		Root:         c.root,
	}
}

func (c *Catalog) populate(ctx context.Context) {
	c.mu.Lock()
	if c.state == StatePopulated {
		c.mu.Unlock()
		return
	}
	c.state = StateLoading
	gen := c.generation
	c.mu.Unlock()

	start := time.Now()
	records, usedDefaults := c.load(ctx)
	elapsed := time.Since(start)

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		c.logger.Debug("Discarding catalog load after invalidation")
		return
	}
	c.records = records
	c.usedDefaults = usedDefaults
	c.loadedAt = time.Now()
	c.loadDuration = elapsed
	c.state = StatePopulated
	stats := c.statsLocked()
	hooks := slices.Clone(c.onLoad)
	c.mu.Unlock()

	c.logger.Info("Component catalog loaded",
		"count", stats.Count,
		"defaults", usedDefaults,
		"duration", elapsed,
	)

	for _, fn := range hooks {
		fn(stats)
	}
}

// load scans and parses the components directory. Any failure yields the
// built-in default records.
func (c *Catalog) load(ctx context.Context) (records []component.Record, usedDefaults bool) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Warn("Catalog load panicked, using default records", "panic", fmt.Sprint(r))
			records, usedDefaults = component.DefaultRecords(), true
		}
	}()

	files := c.scanner.Scan(c.root)
	if len(files) == 0 {
		c.logger.Warn("No component files found, using default records", "root", c.root)
		return component.DefaultRecords(), true
	}

	records = make([]component.Record, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for i, file := range files {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("parse %s: panic: %v", file, r)
				}
			}()
			if err := gctx.Err(); err != nil {
				return err
			}
			records[i] = c.parser.Parse(file)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		c.logger.Warn("Catalog load failed, using default records", "error", err.Error())
		return component.DefaultRecords(), true
	}

	return records, false
}
