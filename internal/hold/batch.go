package hold

import (
	"context"
	"runtime"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Aggregator classifies a batch of records. Records are independent, so they are
// processed concurrently; results are assembled in sorted record id order.
type Aggregator struct {
	classifier *Classifier
	workers    int
	logger     *zap.SugaredLogger
}

// NewAggregator creates an aggregator running at most workers records at once.
// A non-positive worker count uses one worker per CPU.
func NewAggregator(classifier *Classifier, workers int, logger *zap.SugaredLogger) *Aggregator {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Aggregator{
		classifier: classifier,
		workers:    workers,
		logger:     logger,
	}
}

// Run classifies every record and returns one Result per record, ordered by record id.
// A failing record is reported on its own Result and never stops the batch. Records
// not started before ctx is done are reported as MalformedRecord.
func (a *Aggregator) Run(ctx context.Context, records map[string]RawRecord) []Result {
	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	results := make([]Result, len(ids))

	var g errgroup.Group
	g.SetLimit(a.workers)
	for i, id := range ids {
		g.Go(func() error {
			results[i] = a.classifyOne(ctx, id, records[id])
			return nil
		})
	}
	// Workers never return an error.
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Failed() {
			failed++
		}
	}
	a.logger.Infof("classified %d records (%d failed)", len(results), failed)

	return results
}

func (a *Aggregator) classifyOne(ctx context.Context, id string, raw RawRecord) Result {
	if err := ctx.Err(); err != nil {
		identity, _ := a.classifier.ids.Parse(id)
		out := Failed(id, identity, malformed("record not processed before deadline: %v", err))
		a.logger.Warnf("skipping %s: %v", id, out.Err)
		return out.Result
	}

	if _, err := a.classifier.ids.Parse(id); err != nil {
		a.logger.Debugf("record id %s: %v", id, err)
	}

	out := a.classifier.Classify(id, raw)
	if out.Err != nil {
		a.logger.Warnf("error processing %s: %v", id, out.Err)
	}
	return out.Result
}
