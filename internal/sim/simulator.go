// Package sim implements the telemetry simulation and collision-risk engine.
//
// A Simulator owns all mutable vehicle/detection/alert/log state. While
// monitoring is running, a single goroutine drives two tickers: a fast tick
// mutating telemetry and detections, and a slower tick appending a diagnostic
// log line. State is only observable through whole-tick snapshots; no reader
// ever sees a half-updated tick.
package sim

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/metric"

	"github.com/aiotlab/adas-engine/internal/history"
	"github.com/aiotlab/adas-engine/internal/model"
)

// Source supplies the randomness for the simulation. *math/rand.Rand
// satisfies it; tests supply scripted sequences.
type Source interface {
	Float64() float64
}

// Snapshot is a whole-tick-committed view of the simulator state.
// All contained slices are copies and safe to retain.
type Snapshot struct {
	Time       time.Time
	Monitoring bool
	Vehicle    model.VehicleStatus
	Features   []model.Feature
	Alerts     []model.Alert
	Logs       []model.SystemLog
}

// Listener receives every published snapshot. Listeners are invoked on the
// tick goroutine and must not block.
type Listener func(Snapshot)

// Option configures a Simulator.
type Option func(*Simulator)

// WithSource overrides the random source.
func WithSource(src Source) Option {
	return func(s *Simulator) { s.rng = src }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Simulator) { s.now = now }
}

// Simulator produces a continuously evolving, self-consistent snapshot of
// vehicle state and derived alerts/logs while monitoring is active.
type Simulator struct {
	cfg Config
	log zerolog.Logger
	rng Source
	now func() time.Time

	mu        sync.RWMutex
	running   bool
	stopCh    chan struct{}
	doneCh    chan struct{}
	vehicle   model.VehicleStatus
	features  []model.Feature
	objects   []model.DetectedObject
	alerts    *history.History[model.Alert]
	logs      *history.History[model.SystemLog]
	snapshot  Snapshot
	listeners []Listener

	ticksProcessed metric.Int64Counter
	objectsSpawned metric.Int64Counter
	alertsRaised   metric.Int64Counter
}

// New creates a simulator in the STOPPED state with all features enabled and
// the initial diagnostic log lines seeded.
// Uses the global OTel meter for metrics (no-op if not configured).
func New(cfg Config, logger zerolog.Logger, src Source, opts ...Option) (*Simulator, error) {
	s := &Simulator{
		cfg:    cfg,
		log:    logger,
		rng:    src,
		now:    time.Now,
		alerts: history.New[model.Alert](cfg.MaxAlerts),
		logs:   history.New[model.SystemLog](cfg.MaxLogs),
	}
	for _, opt := range opts {
		opt(s)
	}

	m := meter()
	var err error
	s.ticksProcessed, err = m.Int64Counter(
		"sim.ticks.processed",
		metric.WithDescription("Total simulation ticks processed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating tick counter: %w", err)
	}
	s.objectsSpawned, err = m.Int64Counter(
		"sim.objects.spawned",
		metric.WithDescription("Total detected objects synthesized"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating object counter: %w", err)
	}
	s.alertsRaised, err = m.Int64Counter(
		"sim.alerts.raised",
		metric.WithDescription("Total driver alerts raised"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating alert counter: %w", err)
	}

	for _, kind := range model.FeatureKinds() {
		s.features = append(s.features, model.Feature{
			Kind:       kind,
			Enabled:    true,
			Confidence: s.floatBetween(0.85, 0.98),
		})
	}

	s.vehicle = model.VehicleStatus{
		SpeedKmh:        65.5,
		FPS:             30,
		Resolution:      "1920x1080",
		ModelVersion:    "YOLOv11-Nano",
		Device:          "simulator",
		CollisionStatus: model.CollisionSafe,
	}

	now := s.now()
	s.seedInitialLogsLocked(now)
	s.publishLocked(now)
	return s, nil
}

// AddListener registers a snapshot listener.
func (s *Simulator) AddListener(fn Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Start transitions STOPPED to RUNNING and begins the periodic ticks.
// Calling Start while already running is a no-op.
func (s *Simulator) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	now := s.now()
	s.appendLogLocked(now, model.LogSuccess, "Monitoring started")
	snap := s.publishLocked(now)
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	s.log.Info().
		Dur("tickInterval", s.cfg.TickInterval).
		Dur("logInterval", s.cfg.LogInterval).
		Msg("Monitoring started")
	s.notify(snap)
	go s.run(stopCh, doneCh)
}

// Stop transitions RUNNING to STOPPED, cancels the periodic ticks, clears the
// detection list and appends a WARN log. When Stop returns, no further tick
// executes. Idempotent.
func (s *Simulator) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	doneCh := s.doneCh
	s.mu.Unlock()

	// Join the tick goroutine so no tick overlaps the final mutation below.
	<-doneCh

	s.mu.Lock()
	now := s.now()
	s.objects = nil
	s.vehicle.DetectedObjects = nil
	s.appendLogLocked(now, model.LogWarn, "Monitoring stopped")
	snap := s.publishLocked(now)
	s.mu.Unlock()

	s.log.Info().Msg("Monitoring stopped")
	s.notify(snap)
}

// IsMonitoring reports whether the simulator is RUNNING.
func (s *Simulator) IsMonitoring() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Snapshot returns the last published whole-tick snapshot.
func (s *Simulator) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// ToggleFeature flips the enabled state of the matching feature and logs the
// change. It does not start or stop the simulation. Returns the new enabled
// state and whether the feature was found.
func (s *Simulator) ToggleFeature(kind model.FeatureKind) (enabled, ok bool) {
	s.mu.Lock()
	idx := -1
	for i := range s.features {
		if s.features[i].Kind == kind {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false, false
	}
	s.features[idx].Enabled = !s.features[idx].Enabled
	enabled = s.features[idx].Enabled
	state := "disabled"
	if enabled {
		state = "enabled"
	}
	now := s.now()
	s.appendLogLocked(now, model.LogInfo, fmt.Sprintf("%s %s", kind, state))
	snap := s.publishLocked(now)
	s.mu.Unlock()

	s.notify(snap)
	return enabled, true
}

// ClearAlerts empties the alert history.
func (s *Simulator) ClearAlerts() {
	s.mu.Lock()
	s.alerts.Clear()
	now := s.now()
	s.appendLogLocked(now, model.LogInfo, "Alerts cleared")
	snap := s.publishLocked(now)
	s.mu.Unlock()
	s.notify(snap)
}

// ClearLogs empties the log history and reseeds the initial informational
// lines, so consumers never render a fully empty console.
func (s *Simulator) ClearLogs() {
	s.mu.Lock()
	s.logs.Clear()
	now := s.now()
	s.seedInitialLogsLocked(now)
	snap := s.publishLocked(now)
	s.mu.Unlock()
	s.notify(snap)
}

func (s *Simulator) run(stopCh, doneCh chan struct{}) {
	defer close(doneCh)
	tick := time.NewTicker(s.cfg.TickInterval)
	defer tick.Stop()
	diag := time.NewTicker(s.cfg.LogInterval)
	defer diag.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-tick.C:
			s.tick()
		case <-diag.C:
			s.diagTick()
		}
	}
}

// tick applies one detection/collision update. All mutation happens under the
// lock; the snapshot is published last, listeners notified after unlock.
func (s *Simulator) tick() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	now := s.now()

	s.vehicle.FPS = s.intBetween(s.cfg.FPSMin, s.cfg.FPSMax)
	s.vehicle.SpeedKmh = math.Max(0,
		s.vehicle.SpeedKmh+s.floatBetween(-s.cfg.SpeedJitterKmh, s.cfg.SpeedJitterKmh))

	if s.featureEnabledLocked(model.FeatureObjectDetection) {
		s.updateObjectsLocked()
	}
	if s.featureEnabledLocked(model.FeatureCollisionWarning) {
		s.updateCollisionLocked(now)
	}
	if s.featureEnabledLocked(model.FeatureLaneDeparture) &&
		s.rng.Float64() > s.cfg.LaneWarningThreshold {
		s.triggerLaneWarningLocked(now)
	}

	snap := s.publishLocked(now)
	s.mu.Unlock()

	s.ticksProcessed.Add(context.Background(), 1)
	s.notify(snap)
}

func (s *Simulator) diagTick() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	now := s.now()
	s.appendLogLocked(now, model.LogInfo, s.randomDiagnostic())
	snap := s.publishLocked(now)
	s.mu.Unlock()
	s.notify(snap)
}

func (s *Simulator) updateObjectsLocked() {
	if s.rng.Float64() > s.cfg.AddObjectThreshold && len(s.objects) < s.cfg.MaxObjects {
		kinds := model.ObjectKinds()
		obj := model.DetectedObject{
			ID:             uuid.New(),
			Kind:           kinds[s.intBetween(0, len(kinds)-1)],
			DistanceMeters: s.floatBetween(5, 50),
			Confidence:     s.floatBetween(0.85, 0.98),
			Box: model.Rect{
				X:      s.floatBetween(50, 300),
				Y:      s.floatBetween(100, 250),
				Width:  s.floatBetween(60, 120),
				Height: s.floatBetween(80, 150),
			},
		}
		s.objects = append(s.objects, obj)
		s.objectsSpawned.Add(context.Background(), 1)
	} else if len(s.objects) > 0 && s.rng.Float64() > s.cfg.RemoveObjectThreshold {
		s.objects = s.objects[1:]
	}
	s.vehicle.DetectedObjects = s.objects
}

func (s *Simulator) updateCollisionLocked(now time.Time) {
	// Nearest car-kind object, first in list order on ties.
	var closest *model.DetectedObject
	for i := range s.objects {
		if s.objects[i].Kind != model.ObjectCar {
			continue
		}
		if closest == nil || s.objects[i].DistanceMeters < closest.DistanceMeters {
			closest = &s.objects[i]
		}
	}
	if closest == nil {
		s.vehicle.CollisionStatus = model.CollisionSafe
		s.vehicle.TTCSeconds = nil
		return
	}

	// The max() guards the division at near-zero speed.
	ttc := closest.DistanceMeters / math.Max(s.vehicle.SpeedKmh/3.6, 1.0)
	s.vehicle.TTCSeconds = &ttc

	switch {
	case ttc < s.cfg.DangerTTCSec:
		s.vehicle.CollisionStatus = model.CollisionDanger
		if s.rng.Float64() > s.cfg.CollisionAlertThreshold {
			s.appendAlertLocked(now, model.FeatureCollisionWarning,
				model.SeverityCritical, "DANGER: Collision imminent!")
		}
	case ttc < s.cfg.CautionTTCSec:
		s.vehicle.CollisionStatus = model.CollisionCaution
	default:
		s.vehicle.CollisionStatus = model.CollisionSafe
	}
}

func (s *Simulator) triggerLaneWarningLocked(now time.Time) {
	for i := range s.features {
		if s.features[i].Kind == model.FeatureLaneDeparture {
			t := now
			s.features[i].LastTriggered = &t
			break
		}
	}
	s.appendAlertLocked(now, model.FeatureLaneDeparture,
		model.SeverityMedium, "Lane Departure Detected")
	s.appendLogLocked(now, model.LogInfo, "Lane Departure Warning triggered")
}

func (s *Simulator) featureEnabledLocked(kind model.FeatureKind) bool {
	for i := range s.features {
		if s.features[i].Kind == kind {
			return s.features[i].Enabled
		}
	}
	return false
}

func (s *Simulator) appendAlertLocked(now time.Time, feature model.FeatureKind,
	severity model.AlertSeverity, message string,
) {
	s.alerts.Push(model.Alert{
		ID:        uuid.New(),
		Feature:   feature,
		Severity:  severity,
		Message:   message,
		Timestamp: now,
	})
	s.alertsRaised.Add(context.Background(), 1)
}

func (s *Simulator) appendLogLocked(now time.Time, level model.LogLevel, message string) {
	s.logs.Push(model.SystemLog{
		ID:        uuid.New(),
		Timestamp: now,
		Level:     level,
		Message:   message,
	})
}

// seedInitialLogsLocked pushes the fixed boot lines, oldest first, so the
// newest ends up at the head.
func (s *Simulator) seedInitialLogsLocked(now time.Time) {
	seed := []struct {
		level   model.LogLevel
		message string
		offset  time.Duration
	}{
		{model.LogSuccess, "System Initialized", -4 * time.Second},
		{model.LogInfo, "Starting Inference Loop...", -3 * time.Second},
		{model.LogInfo, "Using YOLOv11-Nano", -2 * time.Second},
		{model.LogInfo, "Connecting to Camera Input...", -time.Second},
		{model.LogSuccess, "Model loaded successfully in 0.4s", 0},
	}
	for _, line := range seed {
		s.logs.Push(model.SystemLog{
			ID:        uuid.New(),
			Timestamp: now.Add(line.offset),
			Level:     line.level,
			Message:   line.message,
		})
	}
}

var diagnosticMessages = []string{
	"Processing frame...",
	"Object detection complete",
	"Analyzing lane markers",
	"TTC calculation updated",
	"Driver attention: Normal",
}

func (s *Simulator) randomDiagnostic() string {
	idx := s.intBetween(0, len(diagnosticMessages))
	if idx == len(diagnosticMessages) {
		return fmt.Sprintf("Inference time: %dms", s.intBetween(15, 35))
	}
	return diagnosticMessages[idx]
}

// publishLocked commits the current state as an immutable snapshot.
func (s *Simulator) publishLocked(now time.Time) Snapshot {
	vehicle := s.vehicle
	vehicle.DetectedObjects = append([]model.DetectedObject(nil), s.objects...)
	snap := Snapshot{
		Time:       now,
		Monitoring: s.running,
		Vehicle:    vehicle,
		Features:   append([]model.Feature(nil), s.features...),
		Alerts:     s.alerts.Items(),
		Logs:       s.logs.Items(),
	}
	s.snapshot = snap
	return snap
}

func (s *Simulator) notify(snap Snapshot) {
	s.mu.RLock()
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(snap)
	}
}

func (s *Simulator) floatBetween(min, max float64) float64 {
	return min + s.rng.Float64()*(max-min)
}

// intBetween returns a uniform integer in [min,max].
func (s *Simulator) intBetween(min, max int) int {
	n := max - min + 1
	i := int(s.rng.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return min + i
}
