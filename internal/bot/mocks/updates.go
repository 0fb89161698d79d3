package mocks

import (
	"github.com/go-telegram/bot/models"
)

// Defaults used for the sender of generated updates.
const (
	DefaultUsername   = "testuser"
	DefaultFirstName  = "Test"
	CallbackQueryID   = "callback-query-id"
	defaultMessageID  = 1
	photoPreviewWidth = 320
	photoFullWidth    = 1280
)

// UpdateOption adjusts an update produced by the constructors below.
type UpdateOption func(*models.Update)

// FromUser replaces the sender of the message or callback query.
func FromUser(userID int64, username, firstName string) UpdateOption {
	return func(u *models.Update) {
		user := models.User{ID: userID, Username: username, FirstName: firstName}
		if u.Message != nil {
			u.Message.From = &user
		}
		if u.CallbackQuery != nil {
			u.CallbackQuery.From = user
		}
	}
}

// WithMessageID sets the ID of the message carried by the update.
func WithMessageID(id int) UpdateOption {
	return func(u *models.Update) {
		if u.Message != nil {
			u.Message.ID = id
		}
	}
}

func sender(userID int64) models.User {
	return models.User{ID: userID, Username: DefaultUsername, FirstName: DefaultFirstName}
}

func privateChat(chatID int64) models.Chat {
	return models.Chat{ID: chatID, Type: "private"}
}

func apply(u *models.Update, opts []UpdateOption) *models.Update {
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// MessageUpdate builds a private text message from userID.
func MessageUpdate(chatID, userID int64, text string, opts ...UpdateOption) *models.Update {
	from := sender(userID)
	return apply(&models.Update{
		Message: &models.Message{
			ID:   defaultMessageID,
			Chat: privateChat(chatID),
			From: &from,
			Text: text,
		},
	}, opts)
}

// CommandUpdate builds a command message such as "/list time".
func CommandUpdate(chatID, userID int64, command string, opts ...UpdateOption) *models.Update {
	return MessageUpdate(chatID, userID, command, opts...)
}

// CallbackQueryUpdate builds an inline button press on messageID.
func CallbackQueryUpdate(chatID, userID int64, messageID int, data string, opts ...UpdateOption) *models.Update {
	return apply(&models.Update{
		CallbackQuery: &models.CallbackQuery{
			ID:   CallbackQueryID,
			From: sender(userID),
			Message: models.MaybeInaccessibleMessage{
				Message: &models.Message{ID: messageID, Chat: privateChat(chatID)},
			},
			Data: data,
		},
	}, opts)
}

// PhotoUpdate builds a receipt photo in a preview and a full size, with
// caption as the expense text.
func PhotoUpdate(chatID, userID int64, fileID, caption string, opts ...UpdateOption) *models.Update {
	u := MessageUpdate(chatID, userID, "")
	u.Message.Caption = caption
	u.Message.Photo = []models.PhotoSize{
		{FileID: fileID + "_preview", FileUniqueID: fileID + "_preview_u", Width: photoPreviewWidth, Height: photoPreviewWidth * 3 / 4},
		{FileID: fileID, FileUniqueID: fileID + "_u", Width: photoFullWidth, Height: photoFullWidth * 3 / 4},
	}
	return apply(u, opts)
}
