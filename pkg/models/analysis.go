package models

import "time"

// AnalysisRecord is the outcome of one frame analysis as kept by the service.
// Result holds the boundary text: the summary on success, "Error: ..." on
// failure.
type AnalysisRecord struct {
	ID                string    `json:"id"`
	Mode              string    `json:"mode"`
	Source            string    `json:"source,omitempty"`
	Width             int32     `json:"width"`
	Height            int32     `json:"height"`
	Stride            int32     `json:"stride"`
	Success           bool      `json:"success"`
	Result            string    `json:"result"`
	StatusCode        int       `json:"status_code"`
	Timestamp         time.Time `json:"timestamp"`
	ProcessingTimeSec float64   `json:"processing_time_sec"`

	// Still is set when the frame was decoded from an encoded image.
	Still *StillMetadata `json:"still,omitempty"`
}

// StillMetadata describes an encoded still that was decoded into a luma plane.
type StillMetadata struct {
	Format string `json:"format"`
	Bytes  int    `json:"bytes"`
}
