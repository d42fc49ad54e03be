package record

import (
	"time"

	"github.com/tphakala/mediaseed/internal/astronomy"
	"github.com/tphakala/mediaseed/internal/detection"
	"github.com/tphakala/mediaseed/internal/enrichment"
	"github.com/tphakala/mediaseed/internal/rating"
	"github.com/tphakala/mediaseed/internal/tagging"
	"github.com/tphakala/mediaseed/internal/weather"
)

// MediaRecord is one synthesized capture. Field order is the serialized key
// order. A record is never modified after assembly.
type MediaRecord struct {
	Timestamp           time.Time            `json:"@timestamp"`
	TenantID            string               `json:"tenant_id"`
	Property            Property             `json:"property"`
	Media               Media                `json:"media"`
	File                File                 `json:"file"`
	Storage             Storage              `json:"storage"`
	Location            Location             `json:"location"`
	Device              Device               `json:"device"`
	Trigger             Trigger              `json:"trigger"`
	Ingestion           Ingestion            `json:"ingestion"`
	Related             []RelatedMedia       `json:"related"`
	Weather             weather.Snapshot     `json:"weather"`
	Astronomical        astronomy.Snapshot   `json:"astronomical"`
	Detection           detection.Result     `json:"detection"`
	EnrichmentProcesses []enrichment.Process `json:"enrichment_processes"`
	UserMetadata        rating.UserMetadata  `json:"user_metadata"`
	Tags                tagging.Tags         `json:"tags"`
	Access              Access               `json:"access"`
	System              System               `json:"system"`
}

// Property identifies the monitored site.
type Property struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Timezone string `json:"timezone"`
}

// Media describes the capture itself.
type Media struct {
	ID                    string    `json:"id"`
	Name                  string    `json:"name"`
	Title                 string    `json:"title"`
	Description           string    `json:"description"`
	Type                  string    `json:"type"`
	CaptureTimestamp      time.Time `json:"capture_timestamp"`
	CaptureTimestampLocal time.Time `json:"capture_timestamp_local"`
	UploadTimestamp       time.Time `json:"upload_timestamp"`
	UploadTimestampLocal  time.Time `json:"upload_timestamp_local"`
	UploadDelayMillis     int64     `json:"upload_delay_ms"`
	Status                string    `json:"status"`
}

// File holds the encoded file properties. Video-only fields are nil for images.
type File struct {
	Size       int      `json:"size"`
	Width      int      `json:"width"`
	Height     int      `json:"height"`
	Megapixels float64  `json:"megapixels"`
	Format     string   `json:"format"`
	MimeType   string   `json:"mime_type"`
	Duration   *float64 `json:"duration"`
	FPS        *int     `json:"fps"`
	Codec      *string  `json:"codec"`
	Bitrate    *int     `json:"bitrate"`
}

// Storage lists object-store paths for the capture and its renditions.
type Storage struct {
	Original  string  `json:"original"`
	Thumbnail string  `json:"thumbnail"`
	Medium    string  `json:"medium"`
	Processed string  `json:"processed"`
	URL       string  `json:"url"`
	PublicURL *string `json:"public_url"`
}

// Location is the jittered capture position in [lon, lat] order.
type Location struct {
	Coordinates [2]float64 `json:"coordinates"`
	Accuracy    string     `json:"accuracy"`
	Source      string     `json:"source"`
	BoundaryID  string     `json:"boundary_id"`
}

// DeviceStatus is the camera health at capture time.
type DeviceStatus struct {
	BatteryLevel     int    `json:"battery_level"`
	SignalStrength   string `json:"signal_strength"`
	Temperature      int    `json:"temperature"`
	StorageRemaining string `json:"storage_remaining"`
}

// DeviceSettings is the camera configuration at capture time.
type DeviceSettings struct {
	Mode        string `json:"mode"`
	Sensitivity string `json:"sensitivity"`
	Resolution  string `json:"resolution"`
}

// Device is a snapshot of the capturing camera.
type Device struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Make         string         `json:"make"`
	Model        string         `json:"model"`
	SerialNumber string         `json:"serial_number"`
	AssetID      string         `json:"asset_id"`
	Status       DeviceStatus   `json:"status"`
	Settings     DeviceSettings `json:"settings"`
}

// Trigger describes what fired the camera.
type Trigger struct {
	Type             string  `json:"type"`
	Confidence       float64 `json:"confidence"`
	Zone             string  `json:"zone"`
	DetectionClass   string  `json:"detection_class"`
	DetectionDetails *string `json:"detection_details"`
}

// EmailSource is set when the capture arrived by email.
type EmailSource struct {
	From              string    `json:"from"`
	MessageID         string    `json:"message_id"`
	SentTimestamp     time.Time `json:"sent_timestamp"`
	ReceivedTimestamp time.Time `json:"received_timestamp"`
	Subject           string    `json:"subject"`
	ReceptionDelaySec int       `json:"reception_delay_sec"`
}

// ManualSource is set when a user uploaded the capture by hand.
type ManualSource struct {
	UploadedBy string `json:"uploaded_by"`
}

// IngestionSource holds one populated channel; the others are null.
type IngestionSource struct {
	Email  *EmailSource  `json:"email"`
	FTP    *struct{}     `json:"ftp"`
	Manual *ManualSource `json:"manual"`
	API    *struct{}     `json:"api"`
}

// Ingestion describes how the capture entered the system.
type Ingestion struct {
	Method           string          `json:"method"`
	Source           IngestionSource `json:"source"`
	Timestamp        time.Time       `json:"timestamp"`
	BatchID          string          `json:"batch_id"`
	UploadedBy       string          `json:"uploaded_by"`
	ProcessingTimeMS int             `json:"processing_time_ms"`
}

// RelatedMedia references another capture.
type RelatedMedia struct {
	MediaID          string    `json:"media_id"`
	MediaType        string    `json:"media_type"`
	Relationship     string    `json:"relationship"`
	CaptureTimestamp time.Time `json:"capture_timestamp"`
}

// Access holds sharing settings.
type Access struct {
	Visibility       string     `json:"visibility"`
	SharedWith       []string   `json:"shared_with"`
	SharedLinks      []string   `json:"shared_links"`
	ExpiresTimestamp *time.Time `json:"expires_timestamp"`
}

// EnrichmentStatus summarizes the outcome of each enrichment stage.
type EnrichmentStatus struct {
	Weather      enrichment.Status `json:"weather"`
	Astronomical enrichment.Status `json:"astronomical"`
	Detection    enrichment.Status `json:"detection"`
}

// System is bookkeeping metadata.
type System struct {
	CreatedTimestamp time.Time        `json:"created_timestamp"`
	CreatedBy        string           `json:"created_by"`
	UpdatedTimestamp time.Time        `json:"updated_timestamp"`
	UpdatedBy        string           `json:"updated_by"`
	Version          int              `json:"version"`
	ProcessingStatus string           `json:"processing_status"`
	EnrichmentStatus EnrichmentStatus `json:"enrichment_status"`
}
