package vulkan

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/staging/internal/utils"
)

type memoryMapper interface {
	Map(offset int, size int, flags core1_0.MemoryMapFlags) (unsafe.Pointer, common.VkResult, error)
	Unmap()
}

// mappedMemory reference counts vkMapMemory on a single VkDeviceMemory, since a memory object
// can only be mapped once at a time
type mappedMemory struct {
	mapReferences int
	mapData       unsafe.Pointer

	mapMutex utils.OptionalMutex
	memory   memoryMapper
}

func newMappedMemory(useMutex bool, memory memoryMapper) *mappedMemory {
	return &mappedMemory{
		memory: memory,
		mapMutex: utils.OptionalMutex{
			UseMutex: useMutex,
		},
	}
}

func (m *mappedMemory) References() int {
	m.mapMutex.Lock()
	defer m.mapMutex.Unlock()

	return m.mapReferences
}

func (m *mappedMemory) MappedData() unsafe.Pointer {
	m.mapMutex.Lock()
	defer m.mapMutex.Unlock()

	return m.mapData
}

func (m *mappedMemory) Map(references int) (unsafe.Pointer, common.VkResult, error) {
	if references < 1 {
		return nil, core1_0.VKErrorUnknown, errors.Newf("attempted to map memory with %d references", references)
	}

	m.mapMutex.Lock()
	defer m.mapMutex.Unlock()

	if m.mapReferences > 0 {
		m.mapReferences += references
		return m.mapData, core1_0.VKSuccess, nil
	}

	mapData, res, err := m.memory.Map(0, -1, 0)
	if err != nil {
		return nil, res, err
	}

	m.mapData = mapData
	m.mapReferences = references
	return mapData, res, nil
}

func (m *mappedMemory) Unmap(references int) error {
	if references < 1 {
		return errors.Newf("attempted to unmap memory with %d references", references)
	}

	m.mapMutex.Lock()
	defer m.mapMutex.Unlock()

	if m.mapReferences < references {
		return errors.Newf("device memory has %d map references but %d were released", m.mapReferences, references)
	}

	m.mapReferences -= references
	if m.mapReferences == 0 {
		m.mapData = nil
		m.memory.Unmap()
	}

	return nil
}
