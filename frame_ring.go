package staging

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/core1_0"
	"golang.org/x/exp/slog"
)

// DefaultFramesInFlight is the number of frames a renderer usually has in flight at once
const DefaultFramesInFlight = 2

// FrameRing holds one persistently-staged buffer per frame in flight, for data such as
// uniforms that the host rewrites every frame. Each frame's buffer is only written while the
// device is not reading it, so no frame waits on another.
type FrameRing struct {
	device  *Device
	buffers []*Buffer
}

// NewFrameRing creates frames buffers, each holding a copy of initial. The initial contents
// are copied to every buffer before NewFrameRing returns.
func NewFrameRing(device *Device, frames int, initial []byte, usage core1_0.BufferUsageFlags, memoryClass MemoryClass) (*FrameRing, error) {
	assertf(device != nil, "attempted to create a frame ring without a device")
	assertf(frames > 0, "attempted to create a frame ring with %d frames", frames)
	device.logger.Debug("FrameRing::New", slog.Int("Frames", frames), slog.Int("Size", len(initial)))

	ring := &FrameRing{
		device:  device,
		buffers: make([]*Buffer, 0, frames),
	}

	for frame := 0; frame < frames; frame++ {
		buffer := &Buffer{}
		err := buffer.CreateStagedPersistent(device, initial, len(initial), usage, memoryClass, false)
		if err != nil {
			return nil, errors.CombineErrors(err, ring.Destroy())
		}
		ring.buffers = append(ring.buffers, buffer)
	}

	err := device.WithCommands(ring.recordAll)
	if err != nil {
		return nil, errors.CombineErrors(err, ring.Destroy())
	}

	return ring, nil
}

func (r *FrameRing) recordAll(recorder CommandRecorder) error {
	for _, buffer := range r.buffers {
		err := buffer.StageTransferDynamic(recorder)
		if err != nil {
			return err
		}
	}

	return nil
}

func (r *FrameRing) Frames() int {
	return len(r.buffers)
}

func (r *FrameRing) Buffer(frame int) *Buffer {
	assertf(frame >= 0 && frame < len(r.buffers), "attempted to access frame %d of a ring of %d frames", frame, len(r.buffers))
	return r.buffers[frame]
}

// Update writes data into the staging buffer of a frame. If data is larger than the frame's
// buffer, the buffer is recreated and the frame's descriptor view changes.
func (r *FrameRing) Update(frame int, data []byte) error {
	return r.Buffer(frame).UpdateData(data, false)
}

// RecordTransfer records the copy of a frame's staging buffer into the frame's buffer. The
// copy executes when the caller submits the recorder.
func (r *FrameRing) RecordTransfer(frame int, recorder CommandRecorder) error {
	return r.Buffer(frame).StageTransferDynamic(recorder)
}

// DescriptorViews returns the current descriptor view of every frame's buffer, in frame order
func (r *FrameRing) DescriptorViews() []DescriptorView {
	return AggregateDescriptorViews(r.buffers)
}

// Destroy destroys every frame's buffer
func (r *FrameRing) Destroy() error {
	var err error
	for _, buffer := range r.buffers {
		if buffer.IsCreated() {
			err = errors.CombineErrors(err, buffer.Destroy())
		}
	}
	r.buffers = nil

	return err
}
