// Package model defines the domain types shared between the telemetry
// simulator and its consumers.
package model

import (
	"time"

	"github.com/google/uuid"
)

// FeatureKind identifies one of the four ADAS features. The values double as
// the display titles shown by presentation layers.
type FeatureKind string

const (
	FeatureLaneDeparture    FeatureKind = "Lane Departure Warning"
	FeatureCollisionWarning FeatureKind = "Forward Collision Warning"
	FeatureObjectDetection  FeatureKind = "Object Detection"
	FeatureDriverMonitoring FeatureKind = "Driver Monitoring"
)

// FeatureKinds returns all feature kinds in presentation order.
func FeatureKinds() []FeatureKind {
	return []FeatureKind{
		FeatureLaneDeparture,
		FeatureCollisionWarning,
		FeatureObjectDetection,
		FeatureDriverMonitoring,
	}
}

// Feature is the toggle state of a single ADAS feature.
type Feature struct {
	Kind          FeatureKind
	Enabled       bool
	LastTriggered *time.Time
	Confidence    float64 // 0.0 to 1.0
}

// CollisionStatus is the derived forward-collision risk level.
type CollisionStatus string

const (
	CollisionSafe    CollisionStatus = "SAFE"
	CollisionCaution CollisionStatus = "CAUTION"
	CollisionDanger  CollisionStatus = "DANGER"
)

// ObjectKind classifies a detected object.
type ObjectKind string

const (
	ObjectCar       ObjectKind = "car"
	ObjectMotorbike ObjectKind = "motorbike"
	ObjectPerson    ObjectKind = "person"
)

// ObjectKinds returns all detectable object kinds.
func ObjectKinds() []ObjectKind {
	return []ObjectKind{ObjectCar, ObjectMotorbike, ObjectPerson}
}

// Rect is a display-space bounding box in pixels.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// DetectedObject is a synthetic sensed entity produced by the simulator.
type DetectedObject struct {
	ID             uuid.UUID
	Kind           ObjectKind
	DistanceMeters float64
	Confidence     float64
	Box            Rect
}

// VehicleStatus is the current simulated vehicle telemetry.
type VehicleStatus struct {
	SpeedKmh        float64
	FPS             int
	Resolution      string
	ModelVersion    string
	Device          string
	TTCSeconds      *float64 // nil when no relevant target
	CollisionStatus CollisionStatus
	DetectedObjects []DetectedObject
}

// AlertSeverity grades a driver-facing warning.
type AlertSeverity string

const (
	SeverityLow      AlertSeverity = "low"
	SeverityMedium   AlertSeverity = "medium"
	SeverityHigh     AlertSeverity = "high"
	SeverityCritical AlertSeverity = "critical"
)

// Alert is a driver-facing warning event.
type Alert struct {
	ID        uuid.UUID
	Feature   FeatureKind
	Severity  AlertSeverity
	Message   string
	Timestamp time.Time
}

// LogLevel classifies a diagnostic line.
type LogLevel string

const (
	LogInfo    LogLevel = "INFO"
	LogWarn    LogLevel = "WARN"
	LogError   LogLevel = "ERROR"
	LogSuccess LogLevel = "SUCCESS"
)

// SystemLog is a single diagnostic line.
type SystemLog struct {
	ID        uuid.UUID
	Timestamp time.Time
	Level     LogLevel
	Message   string
}
