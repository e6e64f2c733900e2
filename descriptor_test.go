package staging_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/staging"
)

func TestAggregateDescriptorViews(t *testing.T) {
	device, _, _ := newTestDevice(t)

	buffers := make([]*staging.Buffer, 3)
	for i := range buffers {
		buffers[i] = &staging.Buffer{}
		size := 16 * (i + 1)
		require.NoError(t, buffers[i].CreateStaged(device, payload(size, 0), size, core1_0.BufferUsageUniformBuffer, staging.MemoryClassGPUOnly, true))
	}

	views := staging.AggregateDescriptorViews(buffers)
	require.Equal(t, []staging.DescriptorView{
		{Buffer: buffers[0].Handle(), Offset: 0, Range: 16},
		{Buffer: buffers[1].Handle(), Offset: 0, Range: 32},
		{Buffer: buffers[2].Handle(), Offset: 0, Range: 48},
	}, views)

	for _, buffer := range buffers {
		require.NoError(t, buffer.Destroy())
	}
}

func TestAggregateDescriptorViews_Empty(t *testing.T) {
	views := staging.AggregateDescriptorViews(nil)
	require.NotNil(t, views)
	require.Empty(t, views)
}
