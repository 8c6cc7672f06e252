package beeper

import "time"

// User represents a person on or reachable through Beeper
type User struct {
	ID            string  `json:"id"`
	CannotMessage *bool   `json:"cannotMessage,omitempty"`
	Email         *string `json:"email,omitempty"`
	FullName      *string `json:"fullName,omitempty"`
	ImgURL        *string `json:"imgURL,omitempty"`
	IsSelf        *bool   `json:"isSelf,omitempty"`
	PhoneNumber   *string `json:"phoneNumber,omitempty"`
	Username      *string `json:"username,omitempty"`
}

// DisplayName returns the best available name for the user
func (u User) DisplayName() string {
	for _, candidate := range []*string{u.FullName, u.Username, u.PhoneNumber, u.Email} {
		if candidate != nil && *candidate != "" {
			return *candidate
		}
	}
	return u.ID
}

// Account represents a chat account added to Beeper
type Account struct {
	AccountID string `json:"accountID"`
	Network   string `json:"network"`
	User      User   `json:"user"`
}

// Chat represents a chat/conversation
type Chat struct {
	ID                     string           `json:"id"`
	AccountID              string           `json:"accountID"`
	Network                string           `json:"network"`
	Title                  string           `json:"title"`
	Type                   string           `json:"type"` // single, group
	UnreadCount            int              `json:"unreadCount"`
	Participants           ChatParticipants `json:"participants"`
	IsArchived             *bool            `json:"isArchived,omitempty"`
	IsMuted                *bool            `json:"isMuted,omitempty"`
	IsPinned               *bool            `json:"isPinned,omitempty"`
	LastActivity           *time.Time       `json:"lastActivity,omitempty"`
	LastReadMessageSortKey *SortKey         `json:"lastReadMessageSortKey,omitempty"`
	LocalChatID            *string          `json:"localChatID,omitempty"`
}

// ChatParticipants represents chat participants information
type ChatParticipants struct {
	HasMore bool   `json:"hasMore"`
	Items   []User `json:"items"`
	Total   int    `json:"total"`
}

// Message represents a chat message
type Message struct {
	ID          string       `json:"id"`
	AccountID   string       `json:"accountID"`
	ChatID      string       `json:"chatID"`
	MessageID   string       `json:"messageID"`
	SenderID    string       `json:"senderID"`
	SortKey     SortKey      `json:"sortKey,omitzero"`
	Timestamp   time.Time    `json:"timestamp"`
	Attachments []Attachment `json:"attachments,omitempty"`
	IsSender    *bool        `json:"isSender,omitempty"`
	IsUnread    *bool        `json:"isUnread,omitempty"`
	Reactions   []Reaction   `json:"reactions,omitempty"`
	SenderName  *string      `json:"senderName,omitempty"`
	Text        *string      `json:"text,omitempty"`
}

// Attachment represents a file attachment in a message
type Attachment struct {
	Type        string          `json:"type"` // unknown, img, video, audio
	Duration    *int            `json:"duration,omitempty"`
	FileName    *string         `json:"fileName,omitempty"`
	FileSize    *int64          `json:"fileSize,omitempty"`
	IsGif       *bool           `json:"isGif,omitempty"`
	IsSticker   *bool           `json:"isSticker,omitempty"`
	IsVoiceNote *bool           `json:"isVoiceNote,omitempty"`
	MimeType    *string         `json:"mimeType,omitempty"`
	PosterImg   *string         `json:"posterImg,omitempty"`
	Size        *AttachmentSize `json:"size,omitempty"`
	SrcURL      *string         `json:"srcURL,omitempty"`
}

// AttachmentSize represents pixel dimensions of an attachment
type AttachmentSize struct {
	Height *int `json:"height,omitempty"`
	Width  *int `json:"width,omitempty"`
}

// Reaction represents a message reaction
type Reaction struct {
	ID            string  `json:"id"`
	ParticipantID string  `json:"participantID"`
	ReactionKey   string  `json:"reactionKey"`
	Emoji         *bool   `json:"emoji,omitempty"`
	ImgURL        *string `json:"imgURL,omitempty"`
}

// BaseResponse is returned by mutating endpoints without a richer payload
type BaseResponse struct {
	Success bool    `json:"success"`
	Error   *string `json:"error,omitempty"`
}
