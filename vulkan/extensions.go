package vulkan

import (
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/core1_1"
	"github.com/vkngwrapper/extensions/v2/khr_dedicated_allocation"
	"github.com/vkngwrapper/extensions/v2/khr_get_memory_requirements2"
)

type extensionData struct {
	DedicatedAllocations bool
}

func newExtensionData(device core1_0.Device) *extensionData {
	data := &extensionData{}

	if core1_1.PromoteDevice(device) != nil {
		data.DedicatedAllocations = true
	} else if device.IsDeviceExtensionActive(khr_get_memory_requirements2.ExtensionName) &&
		device.IsDeviceExtensionActive(khr_dedicated_allocation.ExtensionName) {
		data.DedicatedAllocations = true
	}

	return data
}
