package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"gowa-relay/config"
	"gowa-relay/internal/helper"
)

const maxImageBytes = 5 << 20 // 5 MB

// SendOutcome is what a resolved send attempt reports back.
type SendOutcome struct {
	MessageID string    `json:"messageId"`
	Timestamp time.Time `json:"timestamp"`
	To        string    `json:"to"`
}

// BulkMessage is one entry of a batch send request.
type BulkMessage struct {
	To      string                 `json:"to"`
	Message string                 `json:"message"`
	Options map[string]interface{} `json:"options,omitempty"`
}

// BulkResult is the independent outcome of one batch entry.
type BulkResult struct {
	To        string `json:"to"`
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode string `json:"errorCode,omitempty"`
}

// CheckOutcome is the result of an existence probe on the network.
type CheckOutcome struct {
	Number string `json:"number"`
	Exists bool   `json:"exists"`
	JID    string `json:"jid,omitempty"`
}

// Dispatcher validates and normalizes send requests, applies pacing and
// invokes the protocol client. Validation failures happen before any pacing
// budget is consumed.
type Dispatcher struct {
	cfg     *config.Config
	manager *Manager
	pacer   *Pacer

	httpClient *http.Client // untuk fetch image by URL
}

func NewDispatcher(cfg *config.Config, manager *Manager, pacer *Pacer) *Dispatcher {
	return &Dispatcher{
		cfg:        cfg,
		manager:    manager,
		pacer:      pacer,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Send delivers one text message. options is an opaque passthrough map,
// reserved for caller metadata; the dispatcher does not interpret it.
func (d *Dispatcher) Send(ctx context.Context, sessionID, to, body string, options map[string]interface{}) (*SendOutcome, error) {
	recipient, err := helper.FormatPhoneNumber(to, d.cfg.DefaultCountryCode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecipient, err)
	}

	body = helper.NormalizeBody(body, helper.MaxMessageLength)
	if body == "" {
		return nil, fmt.Errorf("%w: message body is empty", ErrInvalidInput)
	}

	s, ok := d.manager.Get(sessionID)
	if !ok || !s.IsConnected() {
		return nil, ErrNotConnected
	}

	// Satu titik serialisasi per session: pacing dan send.
	s.SendMu.Lock()
	defer s.SendMu.Unlock()

	if err := d.pacer.Allow(s, d.manager.DailyLimit(sessionID)); err != nil {
		return nil, err
	}

	d.pacer.JitterDelay()
	d.pacer.SimulateTyping(ctx, s.Client, recipient, len(body))

	res, err := s.Client.SendText(ctx, recipient, body)
	if err != nil {
		return nil, &SendFailedError{Cause: err}
	}

	d.pacer.AfterSend(ctx, s.Client, recipient)
	d.pacer.Record(s)

	return &SendOutcome{
		MessageID: res.ID,
		Timestamp: res.Timestamp,
		To:        helper.BareNumber(recipient),
	}, nil
}

// SendBulk processes messages strictly sequentially so the per-message
// pacing delay holds across the whole batch. One failure never aborts the
// rest; every entry gets its own result.
func (d *Dispatcher) SendBulk(ctx context.Context, sessionID string, messages []BulkMessage) ([]BulkResult, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("%w: messages is empty", ErrInvalidInput)
	}

	s, ok := d.manager.Get(sessionID)
	if !ok || !s.IsConnected() {
		return nil, ErrNotConnected
	}

	results := make([]BulkResult, 0, len(messages))
	for _, msg := range messages {
		out, err := d.Send(ctx, sessionID, msg.To, msg.Message, msg.Options)
		if err != nil {
			results = append(results, BulkResult{
				To:        msg.To,
				Success:   false,
				Error:     err.Error(),
				ErrorCode: ErrorCode(err),
			})
			continue
		}
		results = append(results, BulkResult{
			To:        out.To,
			Success:   true,
			MessageID: out.MessageID,
			Timestamp: out.Timestamp.Unix(),
		})
	}
	return results, nil
}

// SendImage delivers one image, from a URL or a base64 payload. Same
// validation, pacing and recording path as text sends.
func (d *Dispatcher) SendImage(ctx context.Context, sessionID, to, imageURL, imageBase64, caption string) (*SendOutcome, error) {
	recipient, err := helper.FormatPhoneNumber(to, d.cfg.DefaultCountryCode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecipient, err)
	}

	data, err := d.loadImage(ctx, imageURL, imageBase64)
	if err != nil {
		return nil, err
	}
	mimeType := http.DetectContentType(data)

	caption = helper.NormalizeBody(caption, helper.MaxMessageLength)

	s, ok := d.manager.Get(sessionID)
	if !ok || !s.IsConnected() {
		return nil, ErrNotConnected
	}

	s.SendMu.Lock()
	defer s.SendMu.Unlock()

	if err := d.pacer.Allow(s, d.manager.DailyLimit(sessionID)); err != nil {
		return nil, err
	}

	d.pacer.JitterDelay()

	thumbnail, err := helper.JPEGThumbnail(data)
	if err != nil {
		// Thumbnail gagal bukan alasan menolak kirim.
		log.Printf("Warning: failed to build thumbnail: %v", err)
		thumbnail = nil
	}

	res, err := s.Client.SendImage(ctx, recipient, data, thumbnail, mimeType, caption)
	if err != nil {
		return nil, &SendFailedError{Cause: err}
	}

	d.pacer.Record(s)

	return &SendOutcome{
		MessageID: res.ID,
		Timestamp: res.Timestamp,
		To:        helper.BareNumber(recipient),
	}, nil
}

func (d *Dispatcher) loadImage(ctx context.Context, imageURL, imageBase64 string) ([]byte, error) {
	switch {
	case imageBase64 != "":
		data, err := base64.StdEncoding.DecodeString(imageBase64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid base64 image: %v", ErrInvalidInput, err)
		}
		if len(data) > maxImageBytes {
			return nil, fmt.Errorf("%w: image larger than %d bytes", ErrInvalidInput, maxImageBytes)
		}
		return data, nil

	case imageURL != "":
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid image url: %v", ErrInvalidInput, err)
		}
		resp, err := d.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to fetch image: %v", ErrInvalidInput, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: image url returned status %d", ErrInvalidInput, resp.StatusCode)
		}

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read image: %v", ErrInvalidInput, err)
		}
		if len(data) > maxImageBytes {
			return nil, fmt.Errorf("%w: image larger than %d bytes", ErrInvalidInput, maxImageBytes)
		}
		return data, nil

	default:
		return nil, fmt.Errorf("%w: either imageUrl or imageBase64 is required", ErrInvalidInput)
	}
}

// CheckNumber probes whether a number exists on the network.
func (d *Dispatcher) CheckNumber(ctx context.Context, sessionID, phone string) (*CheckOutcome, error) {
	recipient, err := helper.FormatPhoneNumber(phone, d.cfg.DefaultCountryCode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecipient, err)
	}
	number := helper.BareNumber(recipient)

	s, ok := d.manager.Get(sessionID)
	if !ok || !s.IsConnected() {
		return nil, ErrNotConnected
	}

	results, err := s.Client.IsOnWhatsApp(ctx, []string{number})
	if err != nil {
		return nil, &SendFailedError{Cause: err}
	}

	outcome := &CheckOutcome{Number: number}
	if len(results) > 0 {
		outcome.Exists = results[0].Exists
		if results[0].Exists {
			outcome.JID = results[0].JID
		}
	}
	return outcome, nil
}
