package vulkan

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/staging"
)

type fakeBuffer struct {
	core1_0.Buffer
	name string
}

type fakeResolver map[staging.Handle]core1_0.Buffer

func (r fakeResolver) VulkanBuffer(handle staging.Handle) (core1_0.Buffer, bool) {
	buffer, ok := r[handle]
	return buffer, ok
}

func TestDescriptorBufferInfos(t *testing.T) {
	uniforms := &fakeBuffer{name: "uniforms"}
	storage := &fakeBuffer{name: "storage"}
	resolver := fakeResolver{
		3: uniforms,
		7: storage,
	}

	infos, err := DescriptorBufferInfos(resolver, []staging.DescriptorView{
		{Buffer: 7, Offset: 0, Range: 256},
		{Buffer: 3, Offset: 0, Range: 64},
	})
	require.NoError(t, err)
	require.Equal(t, []core1_0.DescriptorBufferInfo{
		{Buffer: storage, Offset: 0, Range: 256},
		{Buffer: uniforms, Offset: 0, Range: 64},
	}, infos)

	infos, err = DescriptorBufferInfos(resolver, nil)
	require.NoError(t, err)
	require.Empty(t, infos)
}

func TestDescriptorBufferInfos_StaleHandle(t *testing.T) {
	resolver := fakeResolver{3: &fakeBuffer{name: "uniforms"}}

	_, err := DescriptorBufferInfos(resolver, []staging.DescriptorView{
		{Buffer: 3, Range: 64},
		{Buffer: 4, Range: 64},
	})
	require.ErrorContains(t, err, "descriptor view 1 refers to buffer handle 4")
}
