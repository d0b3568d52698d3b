package models

// Frame is a read-only view over a grayscale luminance buffer.
//
// The sample at (row, col) lives at Data[row*Stride+col]. Stride may exceed
// Width when rows carry padding. Frames are borrowed: analyzers never modify
// Data and never keep a reference after they return.
//
// A Frame should only be obtained from validation.NewFrame, which guarantees
// Stride >= Width and len(Data) >= Height*Stride.
type Frame struct {
	Data   []byte
	Width  int
	Height int
	Stride int
}

// Len returns the length of the underlying buffer.
func (f Frame) Len() int {
	return len(f.Data)
}
