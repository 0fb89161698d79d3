// Package mocks provides a recording Telegram client and update builders for
// testing the expense bot handlers.
package mocks

import (
	"context"
	"io"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// TelegramAPI is the subset of the Telegram client the handlers call.
// It lives here so the bot package and its tests can share it without a cycle.
type TelegramAPI interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*models.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
	SendDocument(ctx context.Context, params *bot.SendDocumentParams) (*models.Message, error)
}

// Method names recorded in MockBot.Calls.
const (
	CallSendMessage         = "sendMessage"
	CallEditMessageText     = "editMessageText"
	CallAnswerCallbackQuery = "answerCallbackQuery"
	CallSendDocument        = "sendDocument"
)

// firstMessageID is the ID handed to the first message the mock creates.
const firstMessageID = 1000

// SentMessage is a text message the handlers sent.
type SentMessage struct {
	ChatID      any
	Text        string
	ParseMode   models.ParseMode
	ReplyMarkup models.ReplyMarkup
}

// EditedMessage is an in-place edit, such as a /list grouping toggle.
type EditedMessage struct {
	ChatID      any
	MessageID   int
	Text        string
	ParseMode   models.ParseMode
	ReplyMarkup models.ReplyMarkup
}

// AnsweredCallback is an acknowledgement of an inline button press.
type AnsweredCallback struct {
	CallbackQueryID string
	Text            string
}

// SentDocument is an uploaded file such as the report chart.
type SentDocument struct {
	ChatID    any
	Filename  string
	Data      []byte
	Caption   string
	ParseMode models.ParseMode
}

var _ TelegramAPI = (*MockBot)(nil)

// MockBot records every outbound Telegram call. Failures are injected by
// setting the matching error field; a failed call is not recorded.
type MockBot struct {
	mu sync.RWMutex

	// Calls lists method names in the order they were made, failed calls
	// included.
	Calls []string

	SentMessages      []SentMessage
	EditedMessages    []EditedMessage
	AnsweredCallbacks []AnsweredCallback
	SentDocuments     []SentDocument

	SendMessageError  error
	EditMessageError  error
	SendDocumentError error

	lastID int
}

// NewMockBot returns an empty MockBot.
func NewMockBot() *MockBot {
	return &MockBot{lastID: firstMessageID - 1}
}

// begin locks the mock and logs the call. Callers must unlock mu.
func (m *MockBot) begin(method string) {
	m.mu.Lock()
	m.Calls = append(m.Calls, method)
}

func (m *MockBot) nextID() int {
	m.lastID++
	return m.lastID
}

// SendMessage records a text message.
func (m *MockBot) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	m.begin(CallSendMessage)
	defer m.mu.Unlock()

	if m.SendMessageError != nil {
		return nil, m.SendMessageError
	}
	m.SentMessages = append(m.SentMessages, SentMessage{
		ChatID:      params.ChatID,
		Text:        params.Text,
		ParseMode:   params.ParseMode,
		ReplyMarkup: params.ReplyMarkup,
	})
	return &models.Message{
		ID:   m.nextID(),
		Chat: models.Chat{ID: chatID64(params.ChatID)},
		Text: params.Text,
	}, nil
}

// EditMessageText records an edit of an existing message.
func (m *MockBot) EditMessageText(_ context.Context, params *bot.EditMessageTextParams) (*models.Message, error) {
	m.begin(CallEditMessageText)
	defer m.mu.Unlock()

	if m.EditMessageError != nil {
		return nil, m.EditMessageError
	}
	m.EditedMessages = append(m.EditedMessages, EditedMessage{
		ChatID:      params.ChatID,
		MessageID:   params.MessageID,
		Text:        params.Text,
		ParseMode:   params.ParseMode,
		ReplyMarkup: params.ReplyMarkup,
	})
	return &models.Message{
		ID:   params.MessageID,
		Chat: models.Chat{ID: chatID64(params.ChatID)},
		Text: params.Text,
	}, nil
}

// AnswerCallbackQuery records a button acknowledgement. It never fails.
func (m *MockBot) AnswerCallbackQuery(_ context.Context, params *bot.AnswerCallbackQueryParams) (bool, error) {
	m.begin(CallAnswerCallbackQuery)
	defer m.mu.Unlock()

	m.AnsweredCallbacks = append(m.AnsweredCallbacks, AnsweredCallback{
		CallbackQueryID: params.CallbackQueryID,
		Text:            params.Text,
	})
	return true, nil
}

// SendDocument records an upload. Uploaded data is read fully so tests can
// inspect the bytes.
func (m *MockBot) SendDocument(_ context.Context, params *bot.SendDocumentParams) (*models.Message, error) {
	m.begin(CallSendDocument)
	defer m.mu.Unlock()

	if m.SendDocumentError != nil {
		return nil, m.SendDocumentError
	}

	doc := SentDocument{
		ChatID:    params.ChatID,
		Caption:   params.Caption,
		ParseMode: params.ParseMode,
	}
	if upload, ok := params.Document.(*models.InputFileUpload); ok {
		doc.Filename = upload.Filename
		if upload.Data != nil {
			doc.Data, _ = io.ReadAll(upload.Data)
		}
	}
	m.SentDocuments = append(m.SentDocuments, doc)

	return &models.Message{
		ID:       m.nextID(),
		Chat:     models.Chat{ID: chatID64(params.ChatID)},
		Caption:  params.Caption,
		Document: &models.Document{FileID: "mock-" + doc.Filename, FileName: doc.Filename},
	}, nil
}

// CallOrder returns a copy of Calls.
func (m *MockBot) CallOrder() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.Calls...)
}

// LastSentMessage returns the newest sent message, or nil.
func (m *MockBot) LastSentMessage() *SentMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return last(m.SentMessages)
}

// LastEditedMessage returns the newest edit, or nil.
func (m *MockBot) LastEditedMessage() *EditedMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return last(m.EditedMessages)
}

// LastSentDocument returns the newest upload, or nil.
func (m *MockBot) LastSentDocument() *SentDocument {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return last(m.SentDocuments)
}

// SentMessageCount returns how many messages were sent.
func (m *MockBot) SentMessageCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.SentMessages)
}

// SentDocumentCount returns how many documents were uploaded.
func (m *MockBot) SentDocumentCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.SentDocuments)
}

func last[T any](items []T) *T {
	if len(items) == 0 {
		return nil
	}
	return &items[len(items)-1]
}

// chatID64 unwraps a numeric ChatID. Channel usernames map to 0.
func chatID64(chatID any) int64 {
	switch v := chatID.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	default:
		return 0
	}
}
