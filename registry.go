package staging

import (
	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/staging/internal/utils"
	"golang.org/x/exp/slices"
)

// bufferRegistry tracks every live buffer a Device has created, staging buffers included
type bufferRegistry struct {
	mutex  utils.OptionalRWMutex
	nextID uint64
	live   *swiss.Map[uint64, *Buffer]
	counts counters
}

func newBufferRegistry(useMutex bool) *bufferRegistry {
	return &bufferRegistry{
		mutex: utils.OptionalRWMutex{UseMutex: useMutex},
		live:  swiss.NewMap[uint64, *Buffer](16),
	}
}

func (r *bufferRegistry) Register(b *Buffer) uint64 {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.nextID++
	r.live.Put(r.nextID, b)
	r.counts.created++

	return r.nextID
}

// Rebind points an existing id at a different Buffer. Growth builds its replacement in a
// scratch Buffer and moves the contents over, so the registry has to follow.
func (r *bufferRegistry) Rebind(id uint64, b *Buffer) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	assertf(r.live.Has(id), "attempted to rebind buffer id %d, which is not registered", id)
	r.live.Put(id, b)
}

func (r *bufferRegistry) Unregister(id uint64) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	assertf(r.live.Delete(id), "attempted to unregister buffer id %d, which is not registered", id)
	r.counts.destroyed++
}

func (r *bufferRegistry) RecordRecreate() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.counts.recreated++
}

func (r *bufferRegistry) RecordTransfer(size int) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.counts.transfers++
	r.counts.bytesTransferred += size
}

func (r *bufferRegistry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.live.Count()
}

type registryEntry struct {
	id     uint64
	buffer *Buffer
}

// Each visits live buffers in creation order
func (r *bufferRegistry) Each(visit func(id uint64, b *Buffer)) {
	r.mutex.RLock()
	entries := make([]registryEntry, 0, r.live.Count())
	r.live.Iter(func(id uint64, b *Buffer) bool {
		entries = append(entries, registryEntry{id: id, buffer: b})
		return false
	})
	r.mutex.RUnlock()

	slices.SortFunc(entries, func(a, b registryEntry) bool { return a.id < b.id })
	for _, entry := range entries {
		visit(entry.id, entry.buffer)
	}
}

func (r *bufferRegistry) Statistics() Statistics {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	stats := Statistics{
		Created:          r.counts.created,
		Destroyed:        r.counts.destroyed,
		Recreated:        r.counts.recreated,
		Transfers:        r.counts.transfers,
		BytesTransferred: r.counts.bytesTransferred,
	}
	r.live.Iter(func(id uint64, b *Buffer) bool {
		stats.addBuffer(b)
		return false
	})

	return stats
}

func (r *bufferRegistry) Validate() error {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	expected := r.counts.created - r.counts.destroyed
	if r.live.Count() != expected {
		return errors.Newf("registry holds %d buffers but %d were created and %d destroyed",
			r.live.Count(), r.counts.created, r.counts.destroyed)
	}

	var err error
	r.live.Iter(func(id uint64, b *Buffer) bool {
		switch {
		case b.id != id:
			err = errors.Newf("buffer registered under id %d reports id %d", id, b.id)
		case b.handle == 0:
			err = errors.Newf("buffer %d has no handle", id)
		case b.size <= 0:
			err = errors.Newf("buffer %d has invalid size %d", id, b.size)
		case b.staging != nil && !r.live.Has(b.staging.id):
			err = errors.Newf("buffer %d owns staging buffer %d, which is not live", id, b.staging.id)
		}
		return err != nil
	})

	return err
}
