// Package resourcetest provides in-memory implementations of the staging facades. Buffers are
// plain byte slices, and copy commands are executed against them on submit, so tests can
// observe what the device would see.
package resourcetest

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/staging"
)

// Allocation is the allocation token handed out by Allocator
type Allocation struct {
	handle     staging.Handle
	info       staging.BufferCreateInfo
	memory     []byte
	persistent bool
	mapCount   int
	destroyed  bool
}

func (a *Allocation) Size() int {
	return len(a.memory)
}

func (a *Allocation) MappedData() unsafe.Pointer {
	if !a.persistent {
		return nil
	}
	return unsafe.Pointer(&a.memory[0])
}

func (a *Allocation) Handle() staging.Handle {
	return a.handle
}

func (a *Allocation) Info() staging.BufferCreateInfo {
	return a.info
}

// MapCount is the number of outstanding MapMemory calls on this allocation
func (a *Allocation) MapCount() int {
	return a.mapCount
}

// Allocator is a staging.MemoryAllocator backed by byte slices
type Allocator struct {
	nextHandle staging.Handle
	live       *swiss.Map[staging.Handle, *Allocation]

	// Created holds the request of every successful CreateBuffer call, in order
	Created []staging.BufferCreateInfo

	CreateCount  int
	DestroyCount int
	MapCount     int
	UnmapCount   int

	// FailCreate is consulted before every CreateBuffer call. If it returns an error, the call
	// fails with it.
	FailCreate func(info staging.BufferCreateInfo) error
	// FailMap, if set, is returned from every MapMemory call
	FailMap error
	// FailDestroy, if set, is returned from every DestroyBuffer call after the buffer is freed
	FailDestroy error
}

func NewAllocator() *Allocator {
	return &Allocator{
		live: swiss.NewMap[staging.Handle, *Allocation](16),
	}
}

func (a *Allocator) CreateBuffer(info staging.BufferCreateInfo) (staging.Handle, staging.Allocation, error) {
	if a.FailCreate != nil {
		if err := a.FailCreate(info); err != nil {
			return 0, nil, err
		}
	}
	if info.Size <= 0 {
		return 0, nil, errors.Newf("invalid buffer size %d", info.Size)
	}

	a.nextHandle++
	allocation := &Allocation{
		handle:     a.nextHandle,
		info:       info,
		memory:     make([]byte, info.Size),
		persistent: info.Flags&staging.AllocationCreateMapped != 0,
	}
	a.live.Put(allocation.handle, allocation)

	a.CreateCount++
	a.Created = append(a.Created, info)

	return allocation.handle, allocation, nil
}

func (a *Allocator) DestroyBuffer(handle staging.Handle, allocation staging.Allocation) error {
	alloc, err := a.lookup(handle, allocation)
	if err != nil {
		return err
	}
	if alloc.mapCount > 0 {
		return errors.Newf("buffer %d destroyed while mapped %d times", handle, alloc.mapCount)
	}

	alloc.destroyed = true
	a.live.Delete(handle)
	a.DestroyCount++

	return a.FailDestroy
}

func (a *Allocator) MapMemory(allocation staging.Allocation) (unsafe.Pointer, error) {
	if a.FailMap != nil {
		return nil, a.FailMap
	}

	alloc, ok := allocation.(*Allocation)
	if !ok || alloc.destroyed {
		return nil, errors.New("attempted to map an unknown allocation")
	}

	alloc.mapCount++
	a.MapCount++

	return unsafe.Pointer(&alloc.memory[0]), nil
}

func (a *Allocator) UnmapMemory(allocation staging.Allocation) error {
	alloc, ok := allocation.(*Allocation)
	if !ok || alloc.destroyed {
		return errors.New("attempted to unmap an unknown allocation")
	}
	if alloc.mapCount == 0 {
		return errors.Newf("attempted to unmap buffer %d, which is not mapped", alloc.handle)
	}

	alloc.mapCount--
	a.UnmapCount++

	return nil
}

func (a *Allocator) lookup(handle staging.Handle, allocation staging.Allocation) (*Allocation, error) {
	alloc, ok := a.live.Get(handle)
	if !ok {
		return nil, errors.Newf("unknown buffer %d", handle)
	}
	if allocation != nil && staging.Allocation(alloc) != allocation {
		return nil, errors.Newf("allocation does not belong to buffer %d", handle)
	}

	return alloc, nil
}

// Contents returns a copy of the device-visible memory of a live buffer
func (a *Allocator) Contents(handle staging.Handle) []byte {
	alloc, ok := a.live.Get(handle)
	if !ok {
		return nil
	}

	contents := make([]byte, len(alloc.memory))
	copy(contents, alloc.memory)
	return contents
}

// Lookup returns the allocation of a live buffer
func (a *Allocator) Lookup(handle staging.Handle) (*Allocation, bool) {
	return a.live.Get(handle)
}

// Live is the number of buffers that have been created and not destroyed
func (a *Allocator) Live() int {
	return a.live.Count()
}

func (a *Allocator) copyRegion(src, dst staging.Handle, region staging.BufferCopy) error {
	srcAlloc, err := a.lookup(src, nil)
	if err != nil {
		return err
	}
	dstAlloc, err := a.lookup(dst, nil)
	if err != nil {
		return err
	}

	if region.Size <= 0 ||
		region.SrcOffset < 0 || region.SrcOffset+region.Size > len(srcAlloc.memory) ||
		region.DstOffset < 0 || region.DstOffset+region.Size > len(dstAlloc.memory) {
		return errors.Newf("copy region %+v is out of range for buffers of size %d and %d", region, len(srcAlloc.memory), len(dstAlloc.memory))
	}

	copy(dstAlloc.memory[region.DstOffset:region.DstOffset+region.Size], srcAlloc.memory[region.SrcOffset:region.SrcOffset+region.Size])
	return nil
}
