package staging

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/core/v2/common"
	"golang.org/x/exp/slog"
)

// CreateFlags indicate specific Device behaviors to activate or deactivate
type CreateFlags int32

var deviceCreateFlagsMapping = common.NewFlagStringMapping[CreateFlags]()

func (f CreateFlags) Register(str string) {
	deviceCreateFlagsMapping.Register(f, str)
}
func (f CreateFlags) String() string {
	return deviceCreateFlagsMapping.FlagsToString(f)
}

const (
	// DeviceCreateExternallySynchronized ensures that this Device and all buffers created from it
	// will not be synchronized internally. The consumer must guarantee they are used from only one
	// thread at a time or are synchronized by some other mechanism.
	DeviceCreateExternallySynchronized CreateFlags = 1 << iota
)

func init() {
	DeviceCreateExternallySynchronized.Register("DeviceCreateExternallySynchronized")
}

// CreateOptions contains optional settings when creating a Device
type CreateOptions struct {
	// Flags indicates specific Device behaviors to activate or deactivate
	Flags CreateFlags
}

// Device is the context every Buffer operation runs against. It bundles the allocator and the
// command submitter the buffers use, and keeps track of which buffers are live. It does not
// own the buffers: they must each be destroyed by whoever created them.
type Device struct {
	logger    *slog.Logger
	allocator MemoryAllocator
	submitter CommandSubmitter
	useMutex  bool

	registry *bufferRegistry
}

// New creates a new Device
//
// logger - Receives debug output for every buffer operation. If nil, output is discarded.
//
// allocator - Creates, maps, and destroys buffers
//
// submitter - Records and submits the copy commands of staged transfers
//
// options - Optional parameters: it is valid to leave all the fields blank
func New(logger *slog.Logger, allocator MemoryAllocator, submitter CommandSubmitter, options CreateOptions) (*Device, error) {
	if allocator == nil {
		return nil, errors.New("attempted to create a device without an allocator")
	}
	if submitter == nil {
		return nil, errors.New("attempted to create a device without a command submitter")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard))
	}

	useMutex := options.Flags&DeviceCreateExternallySynchronized == 0

	return &Device{
		logger:    logger,
		allocator: allocator,
		submitter: submitter,
		useMutex:  useMutex,
		registry:  newBufferRegistry(useMutex),
	}, nil
}

func (d *Device) Allocator() MemoryAllocator {
	return d.allocator
}

func (d *Device) Submitter() CommandSubmitter {
	return d.submitter
}

// WithCommands begins a command recording context, passes it to record, and submits whatever
// was recorded, blocking until the device has executed it. The context is released on every
// path. If record returns an error, nothing is submitted.
func (d *Device) WithCommands(record func(recorder CommandRecorder) error) error {
	d.logger.Debug("Device::WithCommands")

	return WithScope(
		func() (CommandRecorder, error) {
			recorder, err := d.submitter.Begin()
			if err != nil {
				return nil, deviceError(err, "failed to begin command recording")
			}
			return recorder, nil
		},
		func(recorder CommandRecorder) error {
			err := d.submitter.Release(recorder)
			if err != nil {
				return deviceError(err, "failed to release command recording")
			}
			return nil
		},
		func(recorder CommandRecorder) error {
			err := record(recorder)
			if err != nil {
				return err
			}

			err = d.submitter.SubmitAndWait(recorder)
			if err != nil {
				return deviceError(err, "failed to submit recorded commands")
			}
			return nil
		},
	)
}

// LiveBufferCount is the number of buffers created from this Device that have not been
// destroyed, staging buffers included
func (d *Device) LiveBufferCount() int {
	return d.registry.Count()
}

// Statistics retrieves a snapshot of this Device's buffers and transfers
func (d *Device) Statistics() Statistics {
	return d.registry.Statistics()
}

// Validate checks the internal bookkeeping of this Device. It should never return an error:
// when it does, a Buffer was copied, leaked across Devices, or otherwise misused.
func (d *Device) Validate() error {
	return d.registry.Validate()
}

// BuildStatsString renders this Device's statistics as a JSON document. If detailedMap is true,
// every live buffer is listed as well.
func (d *Device) BuildStatsString(detailedMap bool) string {
	d.logger.Debug("Device::BuildStatsString")

	writer := jwriter.NewWriter()
	obj := writer.Object()

	stats := d.Statistics()
	totalObj := obj.Name("Total").Object()
	stats.printJson(&totalObj)
	totalObj.End()

	if detailedMap {
		buffersArray := obj.Name("Buffers").Array()
		d.registry.Each(func(id uint64, b *Buffer) {
			bufferObj := buffersArray.Object()
			b.printParameters(&bufferObj)
			bufferObj.End()
		})
		buffersArray.End()
	}

	obj.End()

	return string(writer.Bytes())
}
