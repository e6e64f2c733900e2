package staging

// DescriptorView is the range of a buffer that a descriptor binds. It always covers the whole
// buffer and is derived from the buffer's current handle and size, so it must be fetched again
// after UpdateData grows the buffer.
type DescriptorView struct {
	Buffer Handle
	Offset int
	Range  int
}

func (b *Buffer) DescriptorView() DescriptorView {
	b.assertLive()

	return DescriptorView{
		Buffer: b.handle,
		Offset: 0,
		Range:  b.size,
	}
}

// AggregateDescriptorViews collects the descriptor views of several buffers, in order, for
// binding as an array of buffer descriptors
func AggregateDescriptorViews(buffers []*Buffer) []DescriptorView {
	views := make([]DescriptorView, 0, len(buffers))
	for _, buffer := range buffers {
		views = append(views, buffer.DescriptorView())
	}

	return views
}
