package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"verdict-lab/internal/domain/models"
	"verdict-lab/pkg/logger"
)

// DefaultGatherDeadline bounds one gather run when no deadline is configured
const DefaultGatherDeadline = 10 * time.Second

// GatherResult is the intelligence collected before the deadline
type GatherResult struct {
	Bag              models.IntelligenceBag
	Queried          []string
	Completed        []string
	DeadlineExceeded bool
}

// gatherTask is one adapter call; run returns the slot value
type gatherTask struct {
	slot models.IntelligenceSlot
	run  func(ctx context.Context) (any, error)
}

// gatherCell is the isolated result of one task. Tasks only ever send a
// cell on their own channel slot; the bag is built by the coordinator.
type gatherCell struct {
	index int
	value any
	err   error
}

// Gatherer fans out to the intelligence sources under one shared deadline
type Gatherer struct {
	sources  IntelligenceSources
	deadline time.Duration
	logger   *logger.Logger
}

// NewGatherer creates a gatherer. A non-positive deadline falls back to
// DefaultGatherDeadline.
func NewGatherer(sources IntelligenceSources, deadline time.Duration, log *logger.Logger) *Gatherer {
	if deadline <= 0 {
		deadline = DefaultGatherDeadline
	}
	return &Gatherer{
		sources:  sources,
		deadline: deadline,
		logger:   log.WithComponent("gatherer"),
	}
}

// plan selects the adapter calls relevant to the input type
func (g *Gatherer) plan(t models.InputType, target string) []gatherTask {
	s := g.sources
	var tasks []gatherTask
	add := func(slot models.IntelligenceSlot, ok bool, run func(ctx context.Context) (any, error)) {
		if ok {
			tasks = append(tasks, gatherTask{slot: slot, run: run})
		}
	}

	switch t {
	case models.InputTypeIP:
		add(models.SlotAbuseDB, s.AbuseDB != nil, func(ctx context.Context) (any, error) {
			return s.AbuseDB.CheckIP(ctx, target)
		})
		add(models.SlotMalwareScan, s.MalwareScan != nil, func(ctx context.Context) (any, error) {
			return s.MalwareScan.Lookup(ctx, target, string(models.InputTypeIP))
		})
		add(models.SlotGeolocation, s.Geolocation != nil, func(ctx context.Context) (any, error) {
			return s.Geolocation.Locate(ctx, target)
		})
		add(models.SlotDetectionEngines, s.DetectionEngines != nil, func(ctx context.Context) (any, error) {
			return s.DetectionEngines.Run(ctx, target)
		})

	case models.InputTypeDomain, models.InputTypeURL:
		host, err := TargetHostname(t, target)
		if err != nil {
			g.logger.Debug().Err(err).Str("target", target).Msg("no hostname, skipping gather")
			return nil
		}
		scanTarget, scanKind := host, string(models.InputTypeDomain)
		if t == models.InputTypeURL {
			scanTarget, scanKind = target, string(models.InputTypeURL)
		}

		add(models.SlotWhois, s.Whois != nil, func(ctx context.Context) (any, error) {
			return s.Whois.Lookup(ctx, host)
		})
		add(models.SlotMalwareScan, s.MalwareScan != nil, func(ctx context.Context) (any, error) {
			return s.MalwareScan.Lookup(ctx, scanTarget, scanKind)
		})
		add(models.SlotURLIntelligence, s.URLIntelligence != nil, func(ctx context.Context) (any, error) {
			return s.URLIntelligence.CheckHost(ctx, host)
		})
		add(models.SlotDetectionEngines, s.DetectionEngines != nil, func(ctx context.Context) (any, error) {
			return s.DetectionEngines.Run(ctx, host)
		})
		add(models.SlotArchiveHistory, s.ArchiveHistory != nil, func(ctx context.Context) (any, error) {
			return s.ArchiveHistory.History(ctx, host)
		})
		add(models.SlotURLScan, t == models.InputTypeURL && s.URLScan != nil, func(ctx context.Context) (any, error) {
			return s.URLScan.Search(ctx, target)
		})
	}

	return tasks
}

// Gather runs the planned lookups concurrently and returns once all of them
// settled or the deadline fired, whichever comes first. Lookups still in
// flight at the deadline have their context cancelled and their results
// dropped.
func (g *Gatherer) Gather(ctx context.Context, t models.InputType, target string) GatherResult {
	tasks := g.plan(t, target)
	res := GatherResult{
		Bag:       models.NewIntelligenceBag(),
		Queried:   make([]string, 0, len(tasks)),
		Completed: make([]string, 0, len(tasks)),
	}
	for _, task := range tasks {
		res.Queried = append(res.Queried, string(task.slot))
	}
	if len(tasks) == 0 {
		return res
	}

	ctx, cancel := context.WithTimeout(ctx, g.deadline)
	defer cancel()

	// Buffered to len(tasks) so a task finishing after the deadline never
	// blocks on a send nobody will receive.
	cells := make(chan gatherCell, len(tasks))
	for i, task := range tasks {
		go runTask(ctx, i, task, cells)
	}

	settled := make([]*gatherCell, len(tasks))
	pending := len(tasks)
wait:
	for pending > 0 {
		select {
		case c := <-cells:
			pending--
			settled[c.index] = &c
		case <-ctx.Done():
			res.DeadlineExceeded = errors.Is(ctx.Err(), context.DeadlineExceeded)
			break wait
		}
	}

	// Merge in plan order so the completed list does not depend on timing.
	for i, c := range settled {
		slot := tasks[i].slot
		if c == nil {
			g.logger.WithSource(string(slot)).Debug().Msg("source did not settle before deadline")
			continue
		}
		if c.err != nil {
			g.logger.WithSource(string(slot)).WithError(c.err).Debug().Msg("source lookup failed")
			continue
		}
		if mergeSlot(&res.Bag, c.value) {
			res.Completed = append(res.Completed, string(slot))
		}
	}

	if res.DeadlineExceeded {
		g.logger.Warn().
			Int("queried", len(res.Queried)).
			Int("completed", len(res.Completed)).
			Dur("deadline", g.deadline).
			Msg("gather deadline exceeded, continuing with partial intelligence")
	}

	return res
}

// runTask executes one lookup and reports its outcome on cells. A panic in
// the adapter becomes an error cell.
func runTask(ctx context.Context, index int, task gatherTask, cells chan<- gatherCell) {
	cell := gatherCell{index: index}
	defer func() {
		if r := recover(); r != nil {
			cell.value = nil
			cell.err = fmt.Errorf("%s lookup panicked: %v", task.slot, r)
		}
		cells <- cell
	}()
	cell.value, cell.err = task.run(ctx)
}

// mergeSlot stores value in its slot and reports whether it carried data
func mergeSlot(bag *models.IntelligenceBag, value any) bool {
	switch v := value.(type) {
	case *models.AbuseReport:
		bag.AbuseDB = v
		return v != nil
	case *models.GeoLocation:
		bag.Geolocation = v
		return v != nil
	case *models.WhoisRecord:
		bag.Whois = v
		return v != nil
	case *models.MalwareScan:
		bag.MalwareScan = v
		return v != nil
	case *models.URLScanResult:
		bag.URLScan = v
		return v != nil
	case *models.ArchiveHistory:
		bag.ArchiveHistory = v
		return v != nil
	case []models.DetectionEngineResult:
		if v != nil {
			bag.DetectionEngines = v
		}
		return v != nil
	case []models.URLThreatMatch:
		if v != nil {
			bag.URLIntelligence = v
		}
		return v != nil
	}
	return false
}
