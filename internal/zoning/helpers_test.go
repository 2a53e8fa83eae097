package zoning

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"cdc_zoning/internal/model"
)

type memRepo struct {
	mu         sync.Mutex
	st         *State
	cfg        *model.ZoneConfig
	commits    int
	failCommit error
}

func newMemRepo() *memRepo {
	return &memRepo{st: NewState()}
}

func (r *memRepo) Load(context.Context) (*State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.Clone(), nil
}

func (r *memRepo) Commit(_ context.Context, st *State, cfg *model.ZoneConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCommit != nil {
		return r.failCommit
	}
	r.st = st.Clone()
	r.cfg = cfg
	r.commits++
	return nil
}

func (r *memRepo) LoadConfig(context.Context) (*model.ZoneConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cfg, nil
}

func (r *memRepo) state() *State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.Clone()
}

var errDeviceDown = errors.New("device unreachable")

// fakeRemote records device calls; calls listed in fail return errDeviceDown
type fakeRemote struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]bool
}

func (f *fakeRemote) do(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	if f.fail[call] {
		return errDeviceDown
	}
	return nil
}

func (f *fakeRemote) CreateAlias(_ context.Context, a model.AliasRecord) error {
	return f.do("create alias " + a.Name)
}
func (f *fakeRemote) DeleteAlias(_ context.Context, name string) error {
	return f.do("delete alias " + name)
}
func (f *fakeRemote) CreateZone(_ context.Context, name string) error {
	return f.do("create zone " + name)
}
func (f *fakeRemote) DeleteZone(_ context.Context, name string) error {
	return f.do("delete zone " + name)
}
func (f *fakeRemote) CreateZoneGroup(_ context.Context, name string) error {
	return f.do("create zgrp " + name)
}
func (f *fakeRemote) DeleteZoneGroup(_ context.Context, name string) error {
	return f.do("delete zgrp " + name)
}

type memRecorder struct {
	entries []*model.OperationLog
}

func (m *memRecorder) Record(_ context.Context, e *model.OperationLog) error {
	m.entries = append(m.entries, e)
	return nil
}

type countingNotifier struct{ n int }

func (c *countingNotifier) ZoneConfigChanged(*model.ZoneConfig) { c.n++ }

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func newTestCoordinator(t *testing.T, opts ...Option) (*Coordinator, *memRepo, *fakeRemote) {
	t.Helper()
	repo := newMemRepo()
	remote := &fakeRemote{fail: map[string]bool{}}
	base := []Option{
		WithRemote(remote),
		WithLogger(quietLogger()),
		WithClock(func() time.Time { return fixedNow }),
	}
	return NewCoordinator(repo, append(base, opts...)...), repo, remote
}

func mustOK(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
