package ml

import (
	"log"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/aa-ray-man/safehaven/internal/models"
)

// Prediction-time adjustment constants.
const (
	nightPenalty          = 0.1
	recentIncidentWindow  = 24 * time.Hour
	recentIncidentPenalty = 0.05
	scoreFloor            = 0.1

	// trainingCorpusLimit caps how much history one training run reads.
	trainingCorpusLimit = 10000
)

// ReportSource supplies the incident reports the engine scores against.
// FindNearby is total by contract: implementations degrade to an empty
// slice rather than failing.
type ReportSource interface {
	FindNearby(lat, lng, radiusKm float64) []models.SafetyReport
	All(limit int) ([]models.SafetyReport, error)
}

// Config carries the engine's tunables.
type Config struct {
	PredictionRadiusKm float64
	CacheTTL           time.Duration
}

// Status is the operational snapshot polled by tooling; not part of the
// scoring path.
type Status struct {
	IsReady       bool       `json:"isReady"`
	IsTraining    bool       `json:"isTraining"`
	LastTrainedAt *time.Time `json:"lastTrainedAt"`
	QueueLength   int        `json:"queueLength"`
	CacheSize     int        `json:"cacheSize"`
}

// Engine is the route safety scoring engine: it owns the parameter
// snapshot, the prediction cache, the heuristic fallback and the
// training scheduler. Predictions never block on training: they read
// the current snapshot, and the scheduler swaps in a new one only after
// a successful fit over its own tensor copy of the history.
type Engine struct {
	reports    ReportSource
	modelStore ModelStore
	heuristic  *HeuristicScorer
	cache      *PredictionCache
	scheduler  *Scheduler

	params atomic.Pointer[Parameters]

	radiusKm float64
	now      func() time.Time
	rng      *rand.Rand
}

// NewEngine builds the engine and loads persisted parameters. When
// nothing is persisted it initializes fresh weights and queues an
// initial training run. A broken model store is a startup warning, not
// a failure: scoring proceeds on fresh weights and the heuristic.
func NewEngine(reports ReportSource, modelStore ModelStore, cfg Config) *Engine {
	if cfg.PredictionRadiusKm <= 0 {
		cfg.PredictionRadiusKm = 0.5
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}

	e := &Engine{
		reports:    reports,
		modelStore: modelStore,
		heuristic:  NewHeuristicScorer(),
		cache:      NewPredictionCache(cfg.CacheTTL),
		radiusKm:   cfg.PredictionRadiusKm,
		now:        time.Now,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	e.scheduler = NewScheduler(e.trainCycle, e.cache)

	params, ok, err := modelStore.Load()
	switch {
	case err != nil:
		log.Printf("Warning: failed to load safety model, starting fresh: %v", err)
		e.params.Store(NewParameters())
		e.scheduler.Schedule()
	case ok:
		log.Printf("Loaded persisted safety model")
		e.params.Store(params)
	default:
		log.Printf("No persisted safety model, starting fresh")
		e.params.Store(NewParameters())
		e.scheduler.Schedule()
	}

	return e
}

// PredictSafety scores a point in [0,1]. The path is total and
// bounded-latency: cache hit, model inference over the current
// snapshot, or heuristic fallback. The error return exists for the
// predictor contract consumed by route aggregation; the engine itself
// always degrades instead of failing.
func (e *Engine) PredictSafety(lat, lng float64) (float64, error) {
	params := e.params.Load()
	if params == nil {
		return e.heuristic.Score(lat, lng, e.now()), nil
	}

	if score, ok := e.cache.Get(lat, lng); ok {
		return score, nil
	}

	now := e.now()
	nearby := e.reports.FindNearby(lat, lng, e.radiusKm)
	if len(nearby) == 0 {
		score := e.heuristic.Score(lat, lng, now)
		e.cache.Put(lat, lng, score)
		return score, nil
	}

	features := ExtractFeatures(lat, lng, now, nearby)
	score, err := params.Forward(features)
	if err != nil {
		log.Printf("Model inference failed, using heuristic: %v", err)
		return e.heuristic.Score(lat, lng, now), nil
	}

	score = applyPenalties(score, now, nearby)
	e.cache.Put(lat, lng, score)
	return score, nil
}

// applyPenalties layers the post-inference adjustments: a flat night
// deduction and 0.05 per unsafe/incident report from the last 24 hours,
// each floored at 0.1.
func applyPenalties(score float64, now time.Time, nearby []models.SafetyReport) float64 {
	hour := now.Hour()
	if hour >= 22 || hour <= 5 {
		score = clampScore(score-nightPenalty, scoreFloor, 1)
	}

	var recentDanger int
	for _, r := range nearby {
		if r.IsDanger() && now.Sub(r.Timestamp) < recentIncidentWindow {
			recentDanger++
		}
	}
	if recentDanger > 0 {
		score = clampScore(score-recentIncidentPenalty*float64(recentDanger), scoreFloor, 1)
	}

	return score
}

// ScheduleTraining requests an asynchronous retrain. Never blocks;
// duplicate requests collapse.
func (e *Engine) ScheduleTraining() {
	e.scheduler.Schedule()
}

// trainCycle is one full training run: read the corpus, build the
// training set, fit a fresh parameter clone, persist it, then swap it
// in. Returns trained=false when the corpus is below the minimum.
func (e *Engine) trainCycle() (bool, error) {
	reports, err := e.reports.All(trainingCorpusLimit)
	if err != nil {
		return false, err
	}
	if len(reports) < MinTrainingReports {
		log.Printf("Not enough reports to train (%d < %d), keeping current model", len(reports), MinTrainingReports)
		return false, nil
	}

	examples := BuildTrainingSet(reports, e.now())
	log.Printf("Starting model training with %d samples", len(examples))

	base := e.params.Load()
	if base == nil {
		base = NewParameters()
	}

	next, err := Train(base, examples, e.rng)
	if err != nil {
		return false, err
	}
	if err := e.modelStore.Save(next); err != nil {
		return false, err
	}

	e.params.Store(next)
	return true, nil
}

// Status reports the operational state of the engine.
func (e *Engine) Status() Status {
	var last *time.Time
	if t := e.scheduler.LastTrainedAt(); !t.IsZero() {
		last = &t
	}
	return Status{
		IsReady:       e.params.Load() != nil,
		IsTraining:    e.scheduler.State() == StateTraining,
		LastTrainedAt: last,
		QueueLength:   e.scheduler.QueueLength(),
		CacheSize:     e.cache.Size(),
	}
}
