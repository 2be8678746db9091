package domain

// Frame is a packed 8-bit image, row-major, interleaved channels.
// Frames decoded from the wire are BGR; detectors consume RGB.
type Frame struct {
	Rows     int
	Cols     int
	Channels int
	Data     []byte
}

// NewFrame allocates a zeroed frame.
func NewFrame(rows, cols, channels int) *Frame {
	return &Frame{
		Rows:     rows,
		Cols:     cols,
		Channels: channels,
		Data:     make([]byte, rows*cols*channels),
	}
}

// Size returns the element count (rows*cols*channels).
func (f *Frame) Size() int {
	return f.Rows * f.Cols * f.Channels
}

// Pixel returns the channel slice at (row, col).
func (f *Frame) Pixel(row, col int) []byte {
	i := (row*f.Cols + col) * f.Channels
	return f.Data[i : i+f.Channels]
}

// SwapRB returns a copy with the first and third channel exchanged.
func (f *Frame) SwapRB() *Frame {
	out := &Frame{Rows: f.Rows, Cols: f.Cols, Channels: f.Channels, Data: make([]byte, len(f.Data))}
	copy(out.Data, f.Data)
	if f.Channels < 3 {
		return out
	}
	for i := 0; i+2 < len(out.Data); i += f.Channels {
		out.Data[i], out.Data[i+2] = out.Data[i+2], out.Data[i]
	}
	return out
}
