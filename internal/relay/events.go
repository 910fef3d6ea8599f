package relay

import "time"

// Broadcast topics, as seen by the dashboard client.
const (
	TopicAlert     = "new-alert"
	TopicRecording = "new-recording"
)

// RecordingAsset lifecycle. An asset is broadcast if and only if it reached
// StatusStored; a failed asset is never broadcast and never retried.
const (
	StatusPending = "pending"
	StatusStored  = "stored"
	StatusFailed  = "failed"
)

// AlertEvent is an emergency location report. Alerts are transient: they are
// stamped at ingestion, broadcast once, and never persisted.
type AlertEvent struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}

// RecordingAsset describes an uploaded recording. URL is the retrieval
// reference produced by the storage backend: a static path for the local-disk
// adapter or a time-limited signed URL for the object store.
type RecordingAsset struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Status      string `json:"status"`
}
