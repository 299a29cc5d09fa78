package aggregator

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"market-sync/src/connection"
	"market-sync/src/interfaces"
	"market-sync/src/logger"
	"market-sync/src/models"
	"market-sync/src/request"
)

// -----------------------------------------------------------------------------
// Aggregator reconciles two feeds into one canonical view per symbol: REST
// snapshots fetched at startup and on refresh, and live stream updates pushed
// over the websocket. Merging is last-write-wins by arrival, except that a
// snapshot never overwrites a record already sourced from the stream.
// -----------------------------------------------------------------------------

const listenerID = "aggregator"

type Aggregator struct {
	cfg     models.MSyncConfig
	logger  *logger.Logger
	client  *request.Client
	manager *connection.Manager
	clock   interfaces.IClock

	mu          sync.RWMutex
	records     map[string]models.MDataRecord
	predictions map[string]models.MPredictionRecord
	accuracy    map[string]models.MAccuracyMetric

	ctx    context.Context
	cancel context.CancelFunc
	stopCh chan struct{}
	closed bool
}

// -----------------------------------------------------------------------------

func NewAggregator(cfg models.MSyncConfig, client *request.Client, manager *connection.Manager, clock interfaces.IClock, log *logger.Logger) *Aggregator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Aggregator{
		cfg:         cfg,
		logger:      log,
		client:      client,
		manager:     manager,
		clock:       clock,
		records:     make(map[string]models.MDataRecord),
		predictions: make(map[string]models.MPredictionRecord),
		accuracy:    make(map[string]models.MAccuracyMetric),
		ctx:         ctx,
		cancel:      cancel,
		stopCh:      make(chan struct{}),
	}
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

// Initialize loads the initial snapshots and predictions, wires the stream
// handler, subscribes to the per-symbol channels and starts the accuracy
// loop. The subscriptions carry retry_on_error so they survive being placed
// before the connection is up.
func (a *Aggregator) Initialize() error {
	if err := a.loadSnapshots(); err != nil {
		return err
	}
	a.loadPredictions()

	a.manager.On(models.TypeMarketUpdate, listenerID, a.handleMarketUpdate)

	channels := make([]string, 0, len(a.cfg.Symbols))
	for _, sym := range a.cfg.Symbols {
		channels = append(channels, "market:"+sym)
	}
	opts := models.MSubscribeOptions{
		Priority:     models.PriorityHigh,
		RetryOnError: true,
	}
	if err := a.manager.Subscribe(channels, opts); err != nil {
		return err
	}

	if a.cfg.AccuracyIntervalMs > 0 {
		go a.accuracyLoop()
	}

	a.logger.Info("Aggregator initialized with %d symbols", len(a.cfg.Symbols))
	return nil
}

// -----------------------------------------------------------------------------

// Refresh re-fetches snapshots and predictions. Stream-sourced records are
// left untouched; only stale snapshot entries pick up the new values.
func (a *Aggregator) Refresh() error {
	if err := a.loadSnapshots(); err != nil {
		return err
	}
	a.loadPredictions()
	return nil
}

// -----------------------------------------------------------------------------

// Close shuts the aggregator down in order: timers first, then in-flight
// HTTP, then the stream transport, and finally the in-memory view. Safe to
// call more than once.
func (a *Aggregator) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	a.mu.Unlock()

	close(a.stopCh)
	a.cancel()

	a.manager.Off(models.TypeMarketUpdate, listenerID)
	a.manager.Disconnect()

	a.mu.Lock()
	a.records = make(map[string]models.MDataRecord)
	a.predictions = make(map[string]models.MPredictionRecord)
	a.accuracy = make(map[string]models.MAccuracyMetric)
	a.mu.Unlock()

	a.logger.Info("Aggregator closed")
}

// -----------------------------------------------------------------------------
// REST Side
// -----------------------------------------------------------------------------

func (a *Aggregator) loadSnapshots() error {
	var snapshots []models.MMarketSnapshot
	params := map[string]string{"symbols": strings.Join(a.cfg.Symbols, ",")}
	if err := a.client.GetJSON(a.ctx, "/market-data", params, &snapshots); err != nil {
		return fmt.Errorf("snapshot fetch failed: %w", err)
	}

	a.mu.Lock()
	for _, snap := range snapshots {
		a.applySnapshotLocked(snap)
	}
	a.mu.Unlock()

	a.logger.Debug("Loaded %d market snapshots", len(snapshots))
	return nil
}

// -----------------------------------------------------------------------------

// loadPredictions fetches every symbol concurrently. A failure for one symbol
// only skips that symbol.
func (a *Aggregator) loadPredictions() {
	if !a.cfg.PredictionsEnabled {
		return
	}

	var wg sync.WaitGroup
	for _, sym := range a.cfg.Symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()

			var pred models.MPredictionResponse
			if err := a.client.GetJSON(a.ctx, "/predictions/"+symbol, nil, &pred); err != nil {
				a.logger.Warning("Prediction fetch failed for %s: %v", symbol, err)
				return
			}

			a.mu.Lock()
			a.predictions[symbol] = models.MPredictionRecord{
				Symbol:         symbol,
				PredictedValue: pred.PredictedValue,
				Confidence:     pred.Confidence,
				ObservedAt:     a.clock.NowMs(),
			}
			a.mu.Unlock()
		}(sym)
	}
	wg.Wait()
}

// -----------------------------------------------------------------------------

// applySnapshotLocked merges one snapshot. Caller holds a.mu.
func (a *Aggregator) applySnapshotLocked(snap models.MMarketSnapshot) {
	if existing, ok := a.records[snap.Symbol]; ok && existing.Source == models.SourceStream {
		return
	}
	a.records[snap.Symbol] = models.MDataRecord{
		Symbol:        snap.Symbol,
		Price:         snap.Price,
		Volume:        snap.Volume,
		LastUpdatedAt: a.clock.NowMs(),
		Source:        models.SourceSnapshot,
	}
}

// -----------------------------------------------------------------------------
// Stream Side
// -----------------------------------------------------------------------------

func (a *Aggregator) handleMarketUpdate(msg models.MMessage) {
	var update models.MMarketUpdatePayload
	if err := json.Unmarshal(msg.Payload, &update); err != nil {
		a.logger.Warning("Unreadable market update payload: %v", err)
		return
	}
	if update.Symbol == "" {
		a.logger.Warning("Market update without symbol dropped")
		return
	}

	a.mu.Lock()
	a.records[update.Symbol] = models.MDataRecord{
		Symbol:        update.Symbol,
		Price:         update.Price,
		Volume:        update.Volume,
		LastUpdatedAt: a.clock.NowMs(),
		Source:        models.SourceStream,
	}
	a.mu.Unlock()
}

// -----------------------------------------------------------------------------
// Accessors
// -----------------------------------------------------------------------------

// Record returns the canonical record for one symbol.
func (a *Aggregator) Record(symbol string) (models.MDataRecord, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	rec, ok := a.records[symbol]
	return rec, ok
}

// Records returns every record sorted by symbol.
func (a *Aggregator) Records() []models.MDataRecord {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]models.MDataRecord, 0, len(a.records))
	for _, rec := range a.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Predictions returns every prediction sorted by symbol.
func (a *Aggregator) Predictions() []models.MPredictionRecord {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]models.MPredictionRecord, 0, len(a.predictions))
	for _, pred := range a.predictions {
		out = append(out, pred)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// AccuracyMetrics returns the latest computed metrics sorted by symbol.
func (a *Aggregator) AccuracyMetrics() []models.MAccuracyMetric {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]models.MAccuracyMetric, 0, len(a.accuracy))
	for _, m := range a.accuracy {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}
