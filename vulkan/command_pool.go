package vulkan

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/driver"
	"github.com/vkngwrapper/staging"
	"github.com/vkngwrapper/staging/internal/utils"
	"golang.org/x/exp/slog"
)

// BufferResolver turns the handles staging.Buffer hands out into Vulkan buffers. Allocator
// implements it.
type BufferResolver interface {
	VulkanBuffer(handle staging.Handle) (core1_0.Buffer, bool)
}

type CommandPoolOptions struct {
	// Flags carries the same flags as staging.CreateOptions
	Flags staging.CreateFlags
	// QueueFamilyIndex is the queue family that transfers are submitted to. It must support
	// transfer operations.
	QueueFamilyIndex int
	// QueueIndex is the index of the queue within QueueFamilyIndex
	QueueIndex int
	// VulkanCallbacks is an optional set of callbacks passed to the VkCommandPool
	VulkanCallbacks *driver.AllocationCallbacks
}

// CommandPool implements staging.CommandSubmitter with one-shot primary command buffers
// allocated from a transient VkCommandPool. Submission blocks on vkQueueWaitIdle.
//
// Unless DeviceCreateExternallySynchronized is set, every call that touches the pool, its
// command buffers, or the queue holds the pool mutex, including CmdCopyBuffer on recorders
// returned from Begin.
type CommandPool struct {
	logger              *slog.Logger
	device              core1_0.Device
	resolver            BufferResolver
	allocationCallbacks *driver.AllocationCallbacks

	// Command buffers share the pool, which must be externally synchronized
	poolMutex utils.OptionalMutex
	pool      core1_0.CommandPool
	queue     core1_0.Queue
}

var _ staging.CommandSubmitter = &CommandPool{}

// NewCommandPool creates a new CommandPool
//
// logger - Receives debug output for every submission. If nil, output is discarded.
//
// device - The Device the pool is created on
//
// resolver - Resolves the buffer handles passed to CmdCopyBuffer
//
// options - QueueFamilyIndex and QueueIndex select the transfer queue
func NewCommandPool(logger *slog.Logger, device core1_0.Device, resolver BufferResolver, options CommandPoolOptions) (*CommandPool, error) {
	if device == nil {
		return nil, errors.New("attempted to create a command pool without a device")
	}
	if resolver == nil {
		return nil, errors.New("attempted to create a command pool without a buffer resolver")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard))
	}

	pool, _, err := device.CreateCommandPool(options.VulkanCallbacks, core1_0.CommandPoolCreateInfo{
		Flags:            core1_0.CommandPoolCreateTransient,
		QueueFamilyIndex: options.QueueFamilyIndex,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create command pool")
	}

	return &CommandPool{
		logger:              logger,
		device:              device,
		resolver:            resolver,
		allocationCallbacks: options.VulkanCallbacks,
		poolMutex: utils.OptionalMutex{
			UseMutex: options.Flags&staging.DeviceCreateExternallySynchronized == 0,
		},
		pool:  pool,
		queue: device.GetQueue(options.QueueFamilyIndex, options.QueueIndex),
	}, nil
}

// Begin allocates a primary command buffer and begins one-time-submit recording on it
func (p *CommandPool) Begin() (staging.CommandRecorder, error) {
	p.logger.Debug("CommandPool::Begin")

	p.poolMutex.Lock()
	defer p.poolMutex.Unlock()

	commandBuffers, _, err := p.device.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        p.pool,
		Level:              core1_0.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to allocate command buffer")
	}

	commandBuffer := commandBuffers[0]
	_, err = commandBuffer.Begin(core1_0.CommandBufferBeginInfo{
		Flags: core1_0.CommandBufferUsageOneTimeSubmit,
	})
	if err != nil {
		p.device.FreeCommandBuffers(commandBuffers)
		return nil, errors.Wrap(err, "failed to begin command buffer")
	}

	return &commandRecorder{
		commandBuffer: commandBuffer,
		resolver:      p.resolver,
		poolMutex:     &p.poolMutex,
	}, nil
}

func (p *CommandPool) asRecorder(recorder staging.CommandRecorder) (*commandRecorder, error) {
	rec, ok := recorder.(*commandRecorder)
	if !ok || rec == nil {
		return nil, errors.Newf("recorder of type %T was not created by a vulkan.CommandPool", recorder)
	}
	if rec.commandBuffer == nil {
		return nil, errors.New("recorder has already been released")
	}
	return rec, nil
}

// SubmitAndWait ends recording, submits the command buffer, and blocks until the queue is idle
func (p *CommandPool) SubmitAndWait(recorder staging.CommandRecorder) error {
	p.logger.Debug("CommandPool::SubmitAndWait")

	rec, err := p.asRecorder(recorder)
	if err != nil {
		return err
	}

	// The pool's command buffers and the queue are externally synchronized objects
	p.poolMutex.Lock()
	defer p.poolMutex.Unlock()

	_, err = rec.commandBuffer.End()
	if err != nil {
		return errors.Wrap(err, "failed to end command buffer")
	}

	_, err = p.queue.Submit(nil, []core1_0.SubmitInfo{
		{
			CommandBuffers: []core1_0.CommandBuffer{rec.commandBuffer},
		},
	})
	if err != nil {
		return errors.Wrap(err, "failed to submit command buffer")
	}

	_, err = p.queue.WaitIdle()
	if err != nil {
		return errors.Wrap(err, "failed to wait for transfer queue")
	}

	return nil
}

// Release frees the command buffer behind recorder. It is safe to call after a failed
// SubmitAndWait.
func (p *CommandPool) Release(recorder staging.CommandRecorder) error {
	p.logger.Debug("CommandPool::Release")

	rec, err := p.asRecorder(recorder)
	if err != nil {
		return err
	}

	p.poolMutex.Lock()
	defer p.poolMutex.Unlock()

	p.device.FreeCommandBuffers([]core1_0.CommandBuffer{rec.commandBuffer})
	rec.commandBuffer = nil

	return nil
}

// Destroy destroys the VkCommandPool. Every recorder from Begin must have been released.
func (p *CommandPool) Destroy() {
	p.poolMutex.Lock()
	defer p.poolMutex.Unlock()

	p.pool.Destroy(p.allocationCallbacks)
	p.pool = nil
}

type commandRecorder struct {
	commandBuffer core1_0.CommandBuffer
	resolver      BufferResolver
	// poolMutex is nil for command buffers the caller owns
	poolMutex *utils.OptionalMutex
}

// WrapCommandBuffer adapts a command buffer already in the recording state into a
// staging.CommandRecorder, so staged transfers can be batched into command buffers the
// caller submits on its own schedule. The caller is responsible for synchronizing access to
// the command buffer and its pool.
func WrapCommandBuffer(commandBuffer core1_0.CommandBuffer, resolver BufferResolver) staging.CommandRecorder {
	return &commandRecorder{
		commandBuffer: commandBuffer,
		resolver:      resolver,
	}
}

func (r *commandRecorder) CmdCopyBuffer(src, dst staging.Handle, regions []staging.BufferCopy) error {
	if r.poolMutex != nil {
		r.poolMutex.Lock()
		defer r.poolMutex.Unlock()
	}

	if r.commandBuffer == nil {
		return errors.New("attempted to record into a released command buffer")
	}

	srcBuffer, ok := r.resolver.VulkanBuffer(src)
	if !ok {
		return errors.Newf("source buffer handle %d is not live", src)
	}
	dstBuffer, ok := r.resolver.VulkanBuffer(dst)
	if !ok {
		return errors.Newf("destination buffer handle %d is not live", dst)
	}

	copies := make([]core1_0.BufferCopy, 0, len(regions))
	for _, region := range regions {
		copies = append(copies, core1_0.BufferCopy{
			SrcOffset: region.SrcOffset,
			DstOffset: region.DstOffset,
			Size:      region.Size,
		})
	}

	return r.commandBuffer.CmdCopyBuffer(srcBuffer, dstBuffer, copies)
}
