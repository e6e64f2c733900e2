package staging

import "github.com/launchdarkly/go-jsonstream/v3/jwriter"

// Statistics is a snapshot of the buffers a Device has created
type Statistics struct {
	// LiveBuffers is the number of buffers that have been created and not yet destroyed,
	// not counting staging buffers
	LiveBuffers int
	// LiveStagingBuffers is the number of live staging buffers
	LiveStagingBuffers int
	// PersistentBuffers is the number of live buffers whose staging buffer is persistently mapped
	PersistentBuffers int
	// LiveBytes is the capacity of all live buffers, not counting staging buffers
	LiveBytes int
	// StagingBytes is the capacity of all live staging buffers
	StagingBytes int

	// Created is the number of buffers ever created, including staging buffers
	Created int
	// Destroyed is the number of buffers ever destroyed, including staging buffers
	Destroyed int
	// Recreated is the number of times UpdateData had to grow a buffer
	Recreated int
	// Transfers is the number of staging copies that have been recorded
	Transfers int
	// BytesTransferred is the sum of the sizes of all recorded staging copies
	BytesTransferred int
}

func (s *Statistics) Clear() {
	s.LiveBuffers = 0
	s.LiveStagingBuffers = 0
	s.PersistentBuffers = 0
	s.LiveBytes = 0
	s.StagingBytes = 0
	s.Created = 0
	s.Destroyed = 0
	s.Recreated = 0
	s.Transfers = 0
	s.BytesTransferred = 0
}

func (s *Statistics) AddStatistics(other *Statistics) {
	s.LiveBuffers += other.LiveBuffers
	s.LiveStagingBuffers += other.LiveStagingBuffers
	s.PersistentBuffers += other.PersistentBuffers
	s.LiveBytes += other.LiveBytes
	s.StagingBytes += other.StagingBytes
	s.Created += other.Created
	s.Destroyed += other.Destroyed
	s.Recreated += other.Recreated
	s.Transfers += other.Transfers
	s.BytesTransferred += other.BytesTransferred
}

func (s *Statistics) addBuffer(b *Buffer) {
	if b.isStaging {
		s.LiveStagingBuffers++
		s.StagingBytes += b.size
		return
	}

	s.LiveBuffers++
	s.LiveBytes += b.size
	if b.persistentMapped {
		s.PersistentBuffers++
	}
}

func (s *Statistics) printJson(json *jwriter.ObjectState) {
	json.Name("LiveBuffers").Int(s.LiveBuffers)
	json.Name("LiveStagingBuffers").Int(s.LiveStagingBuffers)
	json.Name("PersistentBuffers").Int(s.PersistentBuffers)
	json.Name("LiveBytes").Int(s.LiveBytes)
	json.Name("StagingBytes").Int(s.StagingBytes)
	json.Name("Created").Int(s.Created)
	json.Name("Destroyed").Int(s.Destroyed)
	json.Name("Recreated").Int(s.Recreated)
	json.Name("Transfers").Int(s.Transfers)
	json.Name("BytesTransferred").Int(s.BytesTransferred)
}

type counters struct {
	created          int
	destroyed        int
	recreated        int
	transfers        int
	bytesTransferred int
}
