package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"gowa-relay/config"
	"gowa-relay/internal/model"
)

func testPacer(cfg *config.Config, now time.Time) (*Pacer, *[]time.Duration) {
	var slept []time.Duration
	p := NewPacer(cfg)
	p.Now = func() time.Time { return now }
	p.Sleep = func(d time.Duration) { slept = append(slept, d) }
	return p, &slept
}

func TestAllowEnforcesCap(t *testing.T) {
	cfg := &config.Config{}
	p, _ := testPacer(cfg, time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC))

	s := model.NewSession("t", nil)
	s.CounterResetDate = "2026-08-23"
	s.MessagesSentToday = 4

	if err := p.Allow(s, 5); err != nil {
		t.Fatalf("Allow under cap: %v", err)
	}

	s.MessagesSentToday = 5
	if err := p.Allow(s, 5); !errors.Is(err, ErrRateLimitExceeded) {
		t.Fatalf("Allow at cap: got %v, want ErrRateLimitExceeded", err)
	}
}

func TestAllowZeroLimitIsUnlimited(t *testing.T) {
	cfg := &config.Config{}
	p, _ := testPacer(cfg, time.Now())

	s := model.NewSession("t", nil)
	s.CounterResetDate = p.Now().Format(dateLayout)
	s.MessagesSentToday = 100000

	if err := p.Allow(s, 0); err != nil {
		t.Fatalf("Allow with limit 0: %v", err)
	}
}

func TestAllowLazyDailyReset(t *testing.T) {
	cfg := &config.Config{}
	p, _ := testPacer(cfg, time.Date(2026, 8, 23, 0, 0, 1, 0, time.UTC))

	s := model.NewSession("t", nil)
	s.CounterResetDate = "2026-08-22"
	s.MessagesSentToday = 999

	if err := p.Allow(s, 5); err != nil {
		t.Fatalf("Allow across day boundary: %v", err)
	}
	if s.MessagesSentToday != 0 {
		t.Errorf("counter after reset = %d, want 0", s.MessagesSentToday)
	}
	if s.CounterResetDate != "2026-08-23" {
		t.Errorf("reset date = %q, want 2026-08-23", s.CounterResetDate)
	}
}

func TestRecordIncrements(t *testing.T) {
	p, _ := testPacer(&config.Config{}, time.Now())

	s := model.NewSession("t", nil)
	p.Record(s)
	p.Record(s)
	if s.MessagesSentToday != 2 {
		t.Errorf("counter = %d, want 2", s.MessagesSentToday)
	}
}

func TestJitterDisabledDoesNotSleep(t *testing.T) {
	cfg := &config.Config{JitterEnabled: false, JitterMinMs: 1500, JitterMaxMs: 5000}
	p, slept := testPacer(cfg, time.Now())

	p.JitterDelay()
	if len(*slept) != 0 {
		t.Errorf("JitterDelay slept %v with jitter disabled", *slept)
	}
}

func TestJitterStaysInsideBounds(t *testing.T) {
	cfg := &config.Config{JitterEnabled: true, JitterMinMs: 100, JitterMaxMs: 200}
	p, slept := testPacer(cfg, time.Now())

	for i := 0; i < 50; i++ {
		p.JitterDelay()
	}
	if len(*slept) != 50 {
		t.Fatalf("slept %d times, want 50", len(*slept))
	}
	for _, d := range *slept {
		if d < 100*time.Millisecond || d > 200*time.Millisecond {
			t.Errorf("jitter delay %v outside [100ms, 200ms]", d)
		}
	}
}

func TestSimulateTypingDisabledDoesNotSleep(t *testing.T) {
	cfg := &config.Config{TypingSimulation: false}
	p, slept := testPacer(cfg, time.Now())

	p.SimulateTyping(context.Background(), &fakeClient{}, "62811@s.whatsapp.net", 500)
	if len(*slept) != 0 {
		t.Errorf("SimulateTyping slept %v with simulation disabled", *slept)
	}
}

func TestSimulateTypingClampedDelay(t *testing.T) {
	cfg := &config.Config{TypingSimulation: true}
	p, slept := testPacer(cfg, time.Now())

	// Body yang sangat panjang tetap clamp sekitar 8 detik (±20%).
	p.SimulateTyping(context.Background(), &fakeClient{}, "62811@s.whatsapp.net", 10000)
	if len(*slept) != 1 {
		t.Fatalf("slept %d times, want 1", len(*slept))
	}
	d := (*slept)[0]
	if d < time.Duration(8*0.8*float64(time.Second)) || d > time.Duration(8*1.2*float64(time.Second)) {
		t.Errorf("typing delay %v outside clamp range", d)
	}
}
