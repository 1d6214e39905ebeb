package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	defaultAPIBase = "https://api.telegram.org"
	// MessageLimit is the maximum length of a Telegram text message.
	MessageLimit = 4096
	// CaptionLimit is the maximum length of a photo caption.
	CaptionLimit = 1024
)

// TelegramNotifier talks to the Telegram Bot API.
type TelegramNotifier struct {
	BotToken string
	ChatID   string
	Client   *http.Client
	APIBase  string
	// Backoff is the first retry delay; it doubles on every attempt.
	Backoff time.Duration
	Logger  *slog.Logger
}

// NewTelegramNotifier creates a notifier with optional proxy support.
func NewTelegramNotifier(botToken, chatID, proxyURL string, logger *slog.Logger) *TelegramNotifier {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TelegramNotifier{
		BotToken: botToken,
		ChatID:   chatID,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		APIBase: defaultAPIBase,
		Backoff: time.Second,
		Logger:  logger,
	}
}

func (t *TelegramNotifier) endpoint(method string) string {
	base := t.APIBase
	if base == "" {
		base = defaultAPIBase
	}
	return fmt.Sprintf("%s/bot%s/%s", base, t.BotToken, method)
}

// Send sends text to the configured chat, split into as many messages as the
// length limit requires.
func (t *TelegramNotifier) Send(text string) error {
	return t.sendTo(t.ChatID, text)
}

func (t *TelegramNotifier) sendTo(chatID, text string) error {
	for _, chunk := range SplitMessage(text, MessageLimit) {
		payload := map[string]string{
			"chat_id":    chatID,
			"text":       chunk,
			"parse_mode": "HTML",
		}
		body, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		resp, err := t.Client.Post(t.endpoint("sendMessage"), "application/json", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("send message: %w", err)
		}
		if err := checkResponse(resp); err != nil {
			return err
		}
	}
	return nil
}

// SendPhoto uploads a PNG with an optional caption to the configured chat.
func (t *TelegramNotifier) SendPhoto(caption string, png []byte) error {
	return t.sendPhotoTo(t.ChatID, caption, png)
}

func (t *TelegramNotifier) sendPhotoTo(chatID, caption string, png []byte) error {
	return t.upload(chatID, "sendPhoto", "photo", "chart.png", caption, png)
}

// SendDocument uploads a file with an optional caption to the configured
// chat.
func (t *TelegramNotifier) SendDocument(name, caption string, data []byte) error {
	return t.sendDocumentTo(t.ChatID, name, caption, data)
}

func (t *TelegramNotifier) sendDocumentTo(chatID, name, caption string, data []byte) error {
	return t.upload(chatID, "sendDocument", "document", name, caption, data)
}

func (t *TelegramNotifier) upload(chatID, method, field, name, caption string, data []byte) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("chat_id", chatID)
	if caption != "" {
		_ = w.WriteField("caption", truncateRunes(caption, CaptionLimit))
		_ = w.WriteField("parse_mode", "HTML")
	}
	part, err := w.CreateFormFile(field, name)
	if err != nil {
		return fmt.Errorf("create %s part: %w", field, err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("write %s part: %w", field, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close multipart body: %w", err)
	}

	resp, err := t.Client.Post(t.endpoint(method), w.FormDataContentType(), &buf)
	if err != nil {
		return fmt.Errorf("send %s: %w", field, err)
	}
	return checkResponse(resp)
}

func checkResponse(resp *http.Response) error {
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// SendWithRetry sends a message with exponential backoff retry. Each chunk of
// a long message is retried on its own, so chunks already delivered are not
// sent again.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, text string, maxRetries int) error {
	chunks := SplitMessage(text, MessageLimit)
	for i, chunk := range chunks {
		if err := t.retry(ctx, "message", maxRetries, func() error { return t.sendTo(t.ChatID, chunk) }); err != nil {
			if len(chunks) > 1 {
				return fmt.Errorf("chunk %d of %d: %w", i+1, len(chunks), err)
			}
			return err
		}
	}
	return nil
}

// SendPhotoWithRetry uploads a photo with exponential backoff retry.
func (t *TelegramNotifier) SendPhotoWithRetry(ctx context.Context, caption string, png []byte, maxRetries int) error {
	return t.retry(ctx, "photo", maxRetries, func() error { return t.SendPhoto(caption, png) })
}

func (t *TelegramNotifier) retry(ctx context.Context, kind string, maxRetries int, send func() error) error {
	base := t.Backoff
	if base <= 0 {
		base = time.Second
	}
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if err := send(); err != nil {
			lastErr = err
			if i == maxRetries {
				break
			}
			backoff := base << uint(i)
			t.Logger.Warn("telegram send failed",
				"kind", kind, "attempt", i+1, "max", maxRetries+1,
				"error", err, "retry_in", backoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
				continue
			}
		}
		return nil
	}
	return fmt.Errorf("all %d retries exhausted: %w", maxRetries+1, lastErr)
}

func truncateRunes(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}

func chatKey(id int64) string { return strconv.FormatInt(id, 10) }
