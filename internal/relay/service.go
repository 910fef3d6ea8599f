package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/your-org/alert-relay/pkg/storage"
)

var (
	// ErrMissingFile indicates the upload request carried no file field.
	// The storage backend is never invoked in this case.
	ErrMissingFile = errors.New("no file uploaded")

	// ErrInvalidCoordinates indicates an alert body with absent, non-finite,
	// or out-of-range latitude/longitude.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// Broadcaster fans a payload out to all connected dashboard sessions.
type Broadcaster interface {
	Broadcast(topic string, payload any)
}

// EventMirror optionally republishes broadcast events to a downstream feed.
type EventMirror interface {
	PublishEvent(ctx context.Context, topic string, payload []byte) error
	Close(ctx context.Context) error
}

// Service implements alert ingestion and the recording upload pipeline, wiring
// each successful ingestion to a broadcast.
type Service struct {
	store  storage.Backend
	hub    Broadcaster
	mirror EventMirror
	logger *zap.Logger
	now    func() time.Time
}

type Params struct {
	Store  storage.Backend
	Hub    Broadcaster
	Mirror EventMirror
	Logger *zap.Logger
}

// NewService constructs a relay Service.
func NewService(p Params) *Service {
	return &Service{
		store:  p.Store,
		hub:    p.Hub,
		mirror: p.Mirror,
		logger: p.Logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ProcessAlert validates the coordinate pair, stamps it with the current
// server time, and broadcasts the resulting event to every dashboard.
// Alerts never touch storage.
func (s *Service) ProcessAlert(ctx context.Context, latitude, longitude float64) (AlertEvent, error) {
	if !validCoordinates(latitude, longitude) {
		return AlertEvent{}, ErrInvalidCoordinates
	}

	event := AlertEvent{
		Latitude:  latitude,
		Longitude: longitude,
		Timestamp: s.now(),
	}

	s.hub.Broadcast(TopicAlert, event)
	s.mirrorEvent(ctx, TopicAlert, event)

	s.logger.Info("alert broadcast",
		zap.Float64("latitude", latitude),
		zap.Float64("longitude", longitude),
	)
	return event, nil
}

// ProcessRecording delegates the blob to the storage backend and, only once
// the backend confirms durability, broadcasts the retrieval reference. On a
// backend error nothing is broadcast and no reference is exposed.
func (s *Service) ProcessRecording(ctx context.Context, reader io.Reader, size int64, contentType string) (*RecordingAsset, error) {
	asset := &RecordingAsset{
		ID:          uuid.NewString(),
		ContentType: contentType,
		Status:      StatusPending,
	}

	ref, err := s.store.Persist(ctx, reader, size, contentType)
	if err != nil {
		asset.Status = StatusFailed
		return nil, fmt.Errorf("persist recording: %w", err)
	}

	asset.URL = ref
	asset.Status = StatusStored

	s.hub.Broadcast(TopicRecording, asset.URL)
	s.mirrorEvent(ctx, TopicRecording, asset)

	s.logger.Info("recording stored",
		zap.String("asset_id", asset.ID),
		zap.String("content_type", contentType),
		zap.Int64("size_bytes", size),
	)
	return asset, nil
}

// mirrorEvent republishes to the downstream feed when one is configured.
// Mirror failures are logged and never surfaced to the publishing request,
// matching how delivery failures to individual dashboards are treated.
func (s *Service) mirrorEvent(ctx context.Context, topic string, payload any) {
	if s.mirror == nil {
		return
	}

	value, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("marshal mirror event", zap.String("topic", topic), zap.Error(err))
		return
	}

	if err := s.mirror.PublishEvent(ctx, topic, value); err != nil {
		s.logger.Error("mirror publish failed", zap.String("topic", topic), zap.Error(err))
	}
}

// Close releases underlying resources.
func (s *Service) Close(ctx context.Context) error {
	if s.mirror != nil {
		if err := s.mirror.Close(ctx); err != nil {
			return err
		}
	}
	return s.store.Close()
}

func validCoordinates(latitude, longitude float64) bool {
	if math.IsNaN(latitude) || math.IsInf(latitude, 0) {
		return false
	}
	if math.IsNaN(longitude) || math.IsInf(longitude, 0) {
		return false
	}
	return latitude >= -90 && latitude <= 90 && longitude >= -180 && longitude <= 180
}
