package mocks

import (
	"context"

	"github.com/Schrubitteflau/compression-suite/pkg/ports"
)

// VideoAssembler is a mock implementation of ports.VideoAssembler.
type VideoAssembler struct {
	AssembleConcatFunc      func(ctx context.Context, job ports.ConcatJob) error
	AssembleSequenceFunc    func(ctx context.Context, job ports.SequenceJob) error
	AssembleFilterGraphFunc func(ctx context.Context, job ports.FilterGraphJob) error
	WriteContainerFunc      func(ctx context.Context, job ports.ContainerJob) error

	// Recorded jobs for verification
	ConcatJobs      []ports.ConcatJob
	SequenceJobs    []ports.SequenceJob
	FilterGraphJobs []ports.FilterGraphJob
	ContainerJobs   []ports.ContainerJob
}

func (m *VideoAssembler) AssembleConcat(ctx context.Context, job ports.ConcatJob) error {
	m.ConcatJobs = append(m.ConcatJobs, job)
	if m.AssembleConcatFunc != nil {
		return m.AssembleConcatFunc(ctx, job)
	}
	return nil
}

func (m *VideoAssembler) AssembleSequence(ctx context.Context, job ports.SequenceJob) error {
	m.SequenceJobs = append(m.SequenceJobs, job)
	if m.AssembleSequenceFunc != nil {
		return m.AssembleSequenceFunc(ctx, job)
	}
	return nil
}

func (m *VideoAssembler) AssembleFilterGraph(ctx context.Context, job ports.FilterGraphJob) error {
	m.FilterGraphJobs = append(m.FilterGraphJobs, job)
	if m.AssembleFilterGraphFunc != nil {
		return m.AssembleFilterGraphFunc(ctx, job)
	}
	return nil
}

func (m *VideoAssembler) WriteContainer(ctx context.Context, job ports.ContainerJob) error {
	m.ContainerJobs = append(m.ContainerJobs, job)
	if m.WriteContainerFunc != nil {
		return m.WriteContainerFunc(ctx, job)
	}
	return nil
}

var _ ports.VideoAssembler = (*VideoAssembler)(nil)

// VideoProber is a mock implementation of ports.VideoProber.
type VideoProber struct {
	ProbeFunc func(ctx context.Context, path string) (ports.VideoInfo, error)

	// Info is returned by Probe when ProbeFunc is nil.
	Info ports.VideoInfo

	ProbeCalls []string
}

func (m *VideoProber) Probe(ctx context.Context, path string) (ports.VideoInfo, error) {
	m.ProbeCalls = append(m.ProbeCalls, path)
	if m.ProbeFunc != nil {
		return m.ProbeFunc(ctx, path)
	}
	return m.Info, nil
}

var _ ports.VideoProber = (*VideoProber)(nil)
