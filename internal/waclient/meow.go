package waclient

import (
	"context"
	"fmt"
	"time"

	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"
)

// MeowFactory creates whatsmeow-backed clients from the shared device
// container.
type MeowFactory struct {
	Container *sqlstore.Container
	Log       waLog.Logger
}

func NewMeowFactory(container *sqlstore.Container) *MeowFactory {
	// Device name yang muncul di HP user
	store.DeviceProps.Os = proto.String("GowaRelay")

	return &MeowFactory{
		Container: container,
		Log:       waLog.Stdout("Client", "INFO", true),
	}
}

func (f *MeowFactory) NewClient(sessionID, jid string) (Client, error) {
	var device *store.Device
	var err error

	if jid != "" {
		parsed, perr := types.ParseJID(jid)
		if perr != nil {
			return nil, fmt.Errorf("invalid stored jid %q: %w", jid, perr)
		}
		device, err = f.Container.GetDevice(context.Background(), parsed)
		if err != nil {
			return nil, fmt.Errorf("get device: %w", err)
		}
	}
	if device == nil {
		device = f.Container.NewDevice()
	}

	cli := whatsmeow.NewClient(device, f.Log)
	return &meowClient{cli: cli, container: f.Container}, nil
}

// meowClient adapts *whatsmeow.Client to the Client boundary.
type meowClient struct {
	cli       *whatsmeow.Client
	container *sqlstore.Container
}

func (m *meowClient) Connect(ctx context.Context) error {
	return m.cli.Connect()
}

func (m *meowClient) Disconnect() {
	m.cli.Disconnect()
}

func (m *meowClient) Logout(ctx context.Context) error {
	return m.cli.Logout(ctx)
}

func (m *meowClient) IsConnected() bool {
	return m.cli.IsConnected()
}

func (m *meowClient) IsLoggedIn() bool {
	return m.cli.Store.ID != nil
}

func (m *meowClient) JID() string {
	if m.cli.Store.ID == nil {
		return ""
	}
	return m.cli.Store.ID.String()
}

func (m *meowClient) SendText(ctx context.Context, toJID, body string) (SendResult, error) {
	recipient, err := types.ParseJID(toJID)
	if err != nil {
		return SendResult{}, err
	}

	msg := &waE2E.Message{
		Conversation: proto.String(body),
	}

	resp, err := m.cli.SendMessage(ctx, recipient, msg)
	if err != nil {
		return SendResult{}, err
	}
	return SendResult{ID: resp.ID, Timestamp: resp.Timestamp}, nil
}

func (m *meowClient) SendImage(ctx context.Context, toJID string, data, thumbnail []byte, mimeType, caption string) (SendResult, error) {
	recipient, err := types.ParseJID(toJID)
	if err != nil {
		return SendResult{}, err
	}

	uploaded, err := m.cli.Upload(ctx, data, whatsmeow.MediaImage)
	if err != nil {
		return SendResult{}, fmt.Errorf("upload image: %w", err)
	}

	img := &waE2E.ImageMessage{
		Caption:       proto.String(caption),
		Mimetype:      proto.String(mimeType),
		URL:           proto.String(uploaded.URL),
		DirectPath:    proto.String(uploaded.DirectPath),
		MediaKey:      uploaded.MediaKey,
		FileEncSHA256: uploaded.FileEncSHA256,
		FileSHA256:    uploaded.FileSHA256,
		FileLength:    proto.Uint64(uploaded.FileLength),
		JPEGThumbnail: thumbnail,
	}

	resp, err := m.cli.SendMessage(ctx, recipient, &waE2E.Message{ImageMessage: img})
	if err != nil {
		return SendResult{}, err
	}
	return SendResult{ID: resp.ID, Timestamp: resp.Timestamp}, nil
}

func (m *meowClient) ChatPresence(ctx context.Context, toJID string, composing bool) error {
	recipient, err := types.ParseJID(toJID)
	if err != nil {
		return err
	}

	state := types.ChatPresencePaused
	if composing {
		state = types.ChatPresenceComposing
	}
	return m.cli.SendChatPresence(ctx, recipient, state, types.ChatPresenceMediaText)
}

func (m *meowClient) Presence(ctx context.Context, available bool) error {
	state := types.PresenceUnavailable
	if available {
		state = types.PresenceAvailable
	}
	return m.cli.SendPresence(ctx, state)
}

func (m *meowClient) MarkRead(ctx context.Context, chatJID string, messageIDs []string, timestamp time.Time) error {
	chat, err := types.ParseJID(chatJID)
	if err != nil {
		return err
	}

	ids := make([]types.MessageID, 0, len(messageIDs))
	for _, id := range messageIDs {
		ids = append(ids, types.MessageID(id))
	}
	return m.cli.MarkRead(ctx, ids, timestamp, chat, chat)
}

func (m *meowClient) IsOnWhatsApp(ctx context.Context, numbers []string) ([]CheckResult, error) {
	resp, err := m.cli.IsOnWhatsApp(ctx, numbers)
	if err != nil {
		return nil, err
	}

	results := make([]CheckResult, 0, len(resp))
	for _, r := range resp {
		results = append(results, CheckResult{
			Query:  r.Query,
			JID:    r.JID.String(),
			Exists: r.IsIn,
		})
	}
	return results, nil
}

func (m *meowClient) PairChannel(ctx context.Context) (<-chan PairEvent, error) {
	qrChan, err := m.cli.GetQRChannel(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan PairEvent)
	go func() {
		defer close(out)
		for item := range qrChan {
			select {
			case out <- PairEvent{Event: item.Event, Code: item.Code}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (m *meowClient) SetEventHandler(h func(evt interface{})) {
	m.cli.AddEventHandler(func(evt interface{}) {
		switch v := evt.(type) {
		case *events.Connected:
			h(ConnectedEvent{JID: m.JID()})

		case *events.PairSuccess:
			h(PairSuccessEvent{JID: v.ID.String()})

		case *events.LoggedOut:
			h(LoggedOutEvent{Reason: fmt.Sprintf("%v", v.Reason)})

		case *events.StreamReplaced:
			h(StreamReplacedEvent{})

		case *events.Disconnected:
			h(DisconnectedEvent{})

		case *events.Message:
			body := v.Message.GetConversation()
			if body == "" {
				body = v.Message.GetExtendedTextMessage().GetText()
			}
			h(MessageEvent{
				ID:        v.Info.ID,
				Chat:      v.Info.Chat.String(),
				Sender:    v.Info.Sender.String(),
				PushName:  v.Info.PushName,
				Body:      body,
				Timestamp: v.Info.Timestamp,
				FromMe:    v.Info.IsFromMe,
			})

		case *events.Receipt:
			kind := "delivered"
			switch v.Type {
			case types.ReceiptTypeRead:
				kind = "read"
			case types.ReceiptTypePlayed:
				kind = "played"
			}
			ids := make([]string, 0, len(v.MessageIDs))
			for _, id := range v.MessageIDs {
				ids = append(ids, string(id))
			}
			h(ReceiptEvent{
				MessageIDs: ids,
				Chat:       v.Chat.String(),
				Kind:       kind,
				Timestamp:  v.Timestamp,
			})
		}
	})
}

func (m *meowClient) DeleteCredentials(ctx context.Context) error {
	if m.cli.Store.ID == nil {
		return nil
	}
	return m.container.DeleteDevice(ctx, m.cli.Store)
}
