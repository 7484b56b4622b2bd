package service

import (
	"context"
	"math/rand"
	"time"

	"gowa-relay/config"
	"gowa-relay/internal/model"
	"gowa-relay/internal/waclient"
)

const dateLayout = "2006-01-02"

// Pacer shapes outbound traffic so it does not look like a bot to the
// network's anti-abuse systems. None of this is a correctness mechanism;
// jitter and typing simulation are skippable via config.
type Pacer struct {
	cfg *config.Config

	// Injectable untuk test.
	Now   func() time.Time
	Sleep func(d time.Duration)
}

func NewPacer(cfg *config.Config) *Pacer {
	return &Pacer{
		cfg:   cfg,
		Now:   time.Now,
		Sleep: time.Sleep,
	}
}

// Allow applies the lazy daily reset and enforces the cap. The check runs on
// every send, not on a schedule; that is what makes the reset correct.
// Sends still serialize on SendMu; the counter mutex only keeps status reads
// from waiting behind a paced send.
func (p *Pacer) Allow(s *model.Session, limit int) error {
	today := p.Now().Format(dateLayout)

	s.CounterMu.Lock()
	defer s.CounterMu.Unlock()
	if s.CounterResetDate != today {
		s.MessagesSentToday = 0
		s.CounterResetDate = today
	}

	if limit > 0 && s.MessagesSentToday >= limit {
		return ErrRateLimitExceeded
	}
	return nil
}

// Record counts a successful send.
func (p *Pacer) Record(s *model.Session) {
	s.CounterMu.Lock()
	defer s.CounterMu.Unlock()
	s.MessagesSentToday++
}

// JitterDelay suspends the caller for a uniformly-random duration inside the
// configured bounds.
func (p *Pacer) JitterDelay() {
	if !p.cfg.JitterEnabled {
		return
	}

	min, max := p.cfg.JitterMinMs, p.cfg.JitterMaxMs
	if max <= 0 || max < min {
		return
	}

	delay := min
	if max > min {
		delay = min + rand.Intn(max-min+1)
	}
	p.Sleep(time.Duration(delay) * time.Millisecond)
}

// SimulateTyping sends a composing indicator and pauses roughly as long as a
// human would need to type the body.
func (p *Pacer) SimulateTyping(ctx context.Context, client waclient.Client, recipient string, bodyLength int) {
	if !p.cfg.TypingSimulation {
		return
	}

	_ = client.ChatPresence(ctx, recipient, true)

	// 2 detik minimum + ~0.15 detik per karakter, clamp 2-8 detik
	delay := 2.0 + float64(bodyLength)*0.15
	if delay > 8 {
		delay = 8
	}
	// variasi random ±20%
	delay = delay * (0.8 + rand.Float64()*0.4)

	p.Sleep(time.Duration(delay * float64(time.Second)))
}

// AfterSend clears the typing indicator once the message is out.
func (p *Pacer) AfterSend(ctx context.Context, client waclient.Client, recipient string) {
	if !p.cfg.TypingSimulation {
		return
	}
	_ = client.ChatPresence(ctx, recipient, false)
}
