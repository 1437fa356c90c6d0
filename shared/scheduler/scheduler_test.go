package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"framecheck/shared/config"
)

type summary string

func (s summary) GetSummary() string { return string(s) }

type fakeAgent struct {
	initErr error
	runErr  error
	partial error
	runs    int
}

func (f *fakeAgent) Name() string { return "Fake Agent" }

func (f *fakeAgent) Initialize() error { return f.initErr }

func (f *fakeAgent) RunOnce(ctx context.Context, events *AgentEvents) error {
	f.runs++
	if f.runErr != nil {
		return f.runErr
	}
	if f.partial != nil {
		events.OnPartialFailure(f.partial, time.Millisecond)
	}
	events.OnSuccess(summary("did things"), time.Millisecond)
	return nil
}

func TestSchedulerRunOnce(t *testing.T) {
	tests := []struct {
		name        string
		agent       *fakeAgent
		wantErr     bool
		wantHealthy bool
		wantPartial int
	}{
		{name: "Success", agent: &fakeAgent{}, wantHealthy: true},
		{name: "Partial failure stays healthy", agent: &fakeAgent{partial: errors.New("one failed")}, wantHealthy: true, wantPartial: 1},
		{name: "Critical failure", agent: &fakeAgent{runErr: errors.New("all failed")}, wantErr: true, wantHealthy: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(&config.Config{}, tt.agent)

			err := s.RunOnce(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("RunOnce error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.agent.runs != 1 {
				t.Errorf("Agent ran %d times", tt.agent.runs)
			}
			if s.Monitor().IsHealthy() != tt.wantHealthy {
				t.Errorf("IsHealthy = %v, want %v", s.Monitor().IsHealthy(), tt.wantHealthy)
			}
			if s.Monitor().PartialFailures() != tt.wantPartial {
				t.Errorf("PartialFailures = %d, want %d", s.Monitor().PartialFailures(), tt.wantPartial)
			}
		})
	}
}

func TestSchedulerStartFailsOnInitialize(t *testing.T) {
	s := New(&config.Config{}, &fakeAgent{initErr: errors.New("no key")})

	if err := s.Start(context.Background()); err == nil {
		t.Error("Expected Start to fail when the agent cannot initialize")
	}
}

func TestSchedulerStartRejectsBadSchedule(t *testing.T) {
	cfg := &config.Config{
		Watch:      config.WatchConfig{Schedule: "not a schedule"},
		Monitoring: config.MonitoringConfig{HealthPort: 0},
	}
	s := New(cfg, &fakeAgent{})

	if err := s.Start(context.Background()); err == nil {
		t.Error("Expected Start to fail for an invalid cron expression")
	}
}
