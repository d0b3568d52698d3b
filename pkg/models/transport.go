package models

// RemoteFrameRequest references a raw luma buffer held by the frame storage
// backend. Mode is only read inside batch requests.
type RemoteFrameRequest struct {
	URL    string `json:"url" binding:"required"`
	Width  int32  `json:"width"`
	Height int32  `json:"height"`
	Stride int32  `json:"stride"`
	Mode   string `json:"mode,omitempty"`
}

// StillRequest references an encoded still image.
type StillRequest struct {
	URL string `json:"url" binding:"required"`
}

// BatchRequest analyzes several remote frames. Mode applies to every frame
// that does not name its own.
type BatchRequest struct {
	Mode   string               `json:"mode,omitempty"`
	Frames []RemoteFrameRequest `json:"frames" binding:"required"`
}

// BatchResponse lists results in request order.
type BatchResponse struct {
	Results           []AnalysisRecord `json:"results"`
	Succeeded         int              `json:"succeeded"`
	Failed            int              `json:"failed"`
	ProcessingTimeSec float64          `json:"processing_time_sec"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
