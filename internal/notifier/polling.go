package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Reply is the bot's answer to a command: an optional photo, an optional
// document, then text messages sent in order.
type Reply struct {
	Messages     []string
	Photo        []byte
	Caption      string
	Document     []byte
	DocumentName string
}

// Text builds a reply of a single message.
func Text(msg string) Reply { return Reply{Messages: []string{msg}} }

func (r Reply) Empty() bool {
	return len(r.Messages) == 0 && len(r.Photo) == 0 && len(r.Document) == 0
}

// CommandHandler is called when a user command is received.
type CommandHandler func(command string) Reply

// telegramUpdate represents a Telegram update from long polling.
type telegramUpdate struct {
	UpdateID int `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

// StartPolling begins long-polling for Telegram commands. Replies go to the
// chat the command came from. Blocks until ctx is cancelled.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	offset := 0
	client := &http.Client{Timeout: 35 * time.Second, Transport: t.Client.Transport}

	for {
		select {
		case <-ctx.Done():
			t.Logger.Info("telegram polling stopped")
			return
		default:
		}

		updates, err := t.poll(ctx, client, offset)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			t.Logger.Warn("polling request failed", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for _, update := range updates {
			offset = update.UpdateID + 1
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			text := strings.TrimSpace(update.Message.Text)
			chatID := t.ChatID
			if update.Message.Chat.ID != 0 {
				chatID = chatKey(update.Message.Chat.ID)
			}
			t.Logger.Info("received command", "command", text, "chat_id", chatID)
			t.deliver(chatID, handler(text))
		}
	}
}

func (t *TelegramNotifier) poll(ctx context.Context, client *http.Client, offset int) ([]telegramUpdate, error) {
	apiURL := fmt.Sprintf("%s?offset=%d&timeout=30", t.endpoint("getUpdates"), offset)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create polling request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("read polling response: %w", err)
	}

	var result struct {
		OK     bool             `json:"ok"`
		Result []telegramUpdate `json:"result"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode polling response: %w", err)
	}
	if !result.OK {
		return nil, fmt.Errorf("getUpdates not ok: %s", string(body))
	}
	return result.Result, nil
}

func (t *TelegramNotifier) deliver(chatID string, reply Reply) {
	if len(reply.Photo) > 0 {
		if err := t.sendPhotoTo(chatID, reply.Caption, reply.Photo); err != nil {
			t.Logger.Error("send photo reply", "error", err)
		}
	}
	if len(reply.Document) > 0 {
		if err := t.sendDocumentTo(chatID, reply.DocumentName, "", reply.Document); err != nil {
			t.Logger.Error("send document reply", "error", err)
		}
	}
	for _, msg := range reply.Messages {
		if msg == "" {
			continue
		}
		if err := t.sendTo(chatID, msg); err != nil {
			t.Logger.Error("send reply", "error", err)
			return
		}
	}
}
