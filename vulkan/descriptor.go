package vulkan

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/staging"
)

// DescriptorBufferInfos converts descriptor views into the structures consumed by
// vkUpdateDescriptorSets, in the same order
func DescriptorBufferInfos(resolver BufferResolver, views []staging.DescriptorView) ([]core1_0.DescriptorBufferInfo, error) {
	infos := make([]core1_0.DescriptorBufferInfo, 0, len(views))

	for index, view := range views {
		buffer, ok := resolver.VulkanBuffer(view.Buffer)
		if !ok {
			return nil, errors.Newf("descriptor view %d refers to buffer handle %d, which is not live", index, view.Buffer)
		}

		infos = append(infos, core1_0.DescriptorBufferInfo{
			Buffer: buffer,
			Offset: view.Offset,
			Range:  view.Range,
		})
	}

	return infos, nil
}
