package resourcetest

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/staging"
)

type copyCommand struct {
	src     staging.Handle
	dst     staging.Handle
	regions []staging.BufferCopy
}

// Recorder is the command recorder handed out by Submitter
type Recorder struct {
	commands  []copyCommand
	submitted bool
	released  bool
}

func (r *Recorder) CmdCopyBuffer(src, dst staging.Handle, regions []staging.BufferCopy) error {
	if r.released {
		return errors.New("attempted to record into a released recorder")
	}
	if r.submitted {
		return errors.New("attempted to record into a submitted recorder")
	}

	r.commands = append(r.commands, copyCommand{
		src:     src,
		dst:     dst,
		regions: append([]staging.BufferCopy(nil), regions...),
	})
	return nil
}

// Copies is the number of copy commands recorded so far
func (r *Recorder) Copies() int {
	return len(r.commands)
}

// Regions returns every copy region recorded so far, in order
func (r *Recorder) Regions() []staging.BufferCopy {
	var regions []staging.BufferCopy
	for _, command := range r.commands {
		regions = append(regions, command.regions...)
	}
	return regions
}

// Submitter is a staging.CommandSubmitter that executes copies against an Allocator's memory
type Submitter struct {
	allocator *Allocator

	BeginCount   int
	SubmitCount  int
	ReleaseCount int

	// FailBegin, if set, is returned from every Begin call
	FailBegin error
	// FailSubmit, if set, is returned from every SubmitAndWait call and nothing is executed
	FailSubmit error
}

func NewSubmitter(allocator *Allocator) *Submitter {
	return &Submitter{allocator: allocator}
}

// NewRecorder creates a recorder that is not tracked by Begin and Release, standing in for a
// per-frame command buffer owned by the caller
func (s *Submitter) NewRecorder() *Recorder {
	return &Recorder{}
}

func (s *Submitter) Begin() (staging.CommandRecorder, error) {
	if s.FailBegin != nil {
		return nil, s.FailBegin
	}

	s.BeginCount++
	return &Recorder{}, nil
}

func (s *Submitter) SubmitAndWait(recorder staging.CommandRecorder) error {
	rec, ok := recorder.(*Recorder)
	if !ok {
		return errors.Newf("unknown recorder type %T", recorder)
	}
	if rec.submitted {
		return errors.New("attempted to submit a recorder twice")
	}
	if s.FailSubmit != nil {
		return s.FailSubmit
	}

	rec.submitted = true
	s.SubmitCount++

	for _, command := range rec.commands {
		for _, region := range command.regions {
			err := s.allocator.copyRegion(command.src, command.dst, region)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *Submitter) Release(recorder staging.CommandRecorder) error {
	rec, ok := recorder.(*Recorder)
	if !ok {
		return errors.Newf("unknown recorder type %T", recorder)
	}
	if rec.released {
		return errors.New("attempted to release a recorder twice")
	}

	rec.released = true
	s.ReleaseCount++
	return nil
}

// Outstanding is the number of recorders handed out by Begin that have not been released
func (s *Submitter) Outstanding() int {
	return s.BeginCount - s.ReleaseCount
}

// Execute submits a recorder created with NewRecorder
func (s *Submitter) Execute(recorder *Recorder) error {
	return s.SubmitAndWait(recorder)
}
