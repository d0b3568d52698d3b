package validation

import (
	"errors"
	"testing"
)

func TestValidateGeometry_InvalidDimensions(t *testing.T) {
	tests := []struct {
		name                  string
		width, height, stride int32
	}{
		{"zero width", 0, 10, 10},
		{"zero height", 10, 0, 10},
		{"zero stride", 10, 10, 0},
		{"negative width", -1, 10, 10},
		{"negative height", 10, -5, 10},
		{"negative stride", 10, 10, -10},
		{"all negative", -1, -1, -1},
		{"negative width with smaller stride", -4, 10, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateGeometry(tt.width, tt.height, tt.stride, 1<<20)
			if !errors.Is(err, ErrInvalidDimensions) {
				t.Fatalf("Expected ErrInvalidDimensions, got %v", err)
			}
			if err.Error() != "Invalid dimensions" {
				t.Errorf("Unexpected message %q", err.Error())
			}
		})
	}
}

func TestValidateGeometry_StrideTooSmall(t *testing.T) {
	tests := []struct {
		width, stride int32
	}{
		{2, 1},
		{640, 639},
		{100, 10},
	}

	for _, tt := range tests {
		_, err := ValidateGeometry(tt.width, 4, tt.stride, 1<<20)
		if !errors.Is(err, ErrStrideTooSmall) {
			t.Errorf("width=%d stride=%d: expected ErrStrideTooSmall, got %v", tt.width, tt.stride, err)
		}
	}
}

func TestValidateGeometry_BufferTooSmall(t *testing.T) {
	tests := []struct {
		name                  string
		width, height, stride int32
		bufferLength          int
		expected              int
	}{
		{"empty buffer", 16, 16, 16, 0, 256},
		{"one byte short", 16, 16, 16, 255, 256},
		{"padded rows", 10, 4, 12, 40, 48},
		{"vga", 640, 480, 640, 1000, 307200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateGeometry(tt.width, tt.height, tt.stride, tt.bufferLength)
			if !errors.Is(err, ErrBufferTooSmall) {
				t.Fatalf("Expected ErrBufferTooSmall, got %v", err)
			}

			var sizeErr *BufferTooSmallError
			if !errors.As(err, &sizeErr) {
				t.Fatalf("Expected *BufferTooSmallError, got %T", err)
			}
			if sizeErr.Actual != tt.bufferLength {
				t.Errorf("Expected Actual %d, got %d", tt.bufferLength, sizeErr.Actual)
			}
			if sizeErr.Expected != tt.expected {
				t.Errorf("Expected Expected %d, got %d", tt.expected, sizeErr.Expected)
			}
		})
	}
}

func TestBufferTooSmallError_Message(t *testing.T) {
	_, err := ValidateGeometry(16, 16, 16, 100)
	want := "Buffer too small. Len: 100, Expected: 256"
	if err == nil || err.Error() != want {
		t.Errorf("Expected %q, got %v", want, err)
	}
}

func TestValidateGeometry_Valid(t *testing.T) {
	g, err := ValidateGeometry(10, 4, 12, 48)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if g.Width != 10 || g.Height != 4 || g.Stride != 12 {
		t.Errorf("Unexpected geometry %+v", g)
	}
	if g.RequiredSize() != 48 {
		t.Errorf("Expected required size 48, got %d", g.RequiredSize())
	}

	// Extra trailing bytes are allowed
	if _, err := ValidateGeometry(10, 4, 12, 4096); err != nil {
		t.Errorf("Expected larger buffer to pass, got %v", err)
	}
}

func TestValidateGeometry_CheckOrder(t *testing.T) {
	// Invalid dimensions win over stride and size problems
	if _, err := ValidateGeometry(0, 10, 0, 0); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("Expected ErrInvalidDimensions, got %v", err)
	}
	// Stride wins over buffer size
	if _, err := ValidateGeometry(20, 10, 10, 0); !errors.Is(err, ErrStrideTooSmall) {
		t.Errorf("Expected ErrStrideTooSmall, got %v", err)
	}
}

func TestValidateGeometry_LargeDimensionsDoNotOverflow(t *testing.T) {
	_, err := ValidateGeometry(1<<16, 1<<16, 1<<16, 1024)
	var sizeErr *BufferTooSmallError
	if !errors.As(err, &sizeErr) {
		t.Fatalf("Expected *BufferTooSmallError, got %v", err)
	}
	if sizeErr.Actual != 1024 {
		t.Errorf("Expected Actual 1024, got %d", sizeErr.Actual)
	}
}

func TestNewFrame(t *testing.T) {
	data := make([]byte, 48)
	frame, err := NewFrame(data, 10, 4, 12)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if frame.Width != 10 || frame.Height != 4 || frame.Stride != 12 {
		t.Errorf("Unexpected frame %+v", frame)
	}
	if frame.Len() != 48 {
		t.Errorf("Expected Len 48, got %d", frame.Len())
	}

	if _, err := NewFrame(data, 10, 5, 12); !errors.Is(err, ErrBufferTooSmall) {
		t.Errorf("Expected ErrBufferTooSmall, got %v", err)
	}
}
