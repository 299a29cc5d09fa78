package aggregator

import (
	"math"
	"time"

	"market-sync/src/models"
)

// -----------------------------------------------------------------------------
// Accuracy scoring. A derived view over the record and prediction maps,
// recomputed on a fixed cadence and never written back into them.
// -----------------------------------------------------------------------------

// accuracyScore maps the relative error between the live price and the
// prediction onto a 0..100 scale, clamped at zero. Callers must exclude
// actual == 0.
func accuracyScore(actual, predicted float64) float64 {
	score := 100 - math.Abs(actual-predicted)/actual*100
	if score < 0 {
		return 0
	}
	return score
}

// -----------------------------------------------------------------------------

func (a *Aggregator) accuracyLoop() {
	tick, stop := a.clock.Ticker(time.Duration(a.cfg.AccuracyIntervalMs) * time.Millisecond)
	defer stop()

	for {
		select {
		case <-a.stopCh:
			return
		case <-tick:
			a.RecomputeAccuracy()
		}
	}
}

// -----------------------------------------------------------------------------

// RecomputeAccuracy rescores every symbol that has both a live record and a
// prediction. Symbols with a zero actual price are skipped rather than
// scored.
func (a *Aggregator) RecomputeAccuracy() {
	now := a.clock.NowMs()

	a.mu.Lock()
	defer a.mu.Unlock()

	for symbol, pred := range a.predictions {
		rec, ok := a.records[symbol]
		if !ok || rec.Price == 0 {
			continue
		}
		a.accuracy[symbol] = models.MAccuracyMetric{
			Symbol:     symbol,
			Accuracy:   accuracyScore(rec.Price, pred.PredictedValue),
			Confidence: pred.Confidence,
			ComputedAt: now,
		}
	}
}
