// Package models defines the core data structures for users, todos,
// attachments and direct messages.
package models

import "time"

// User represents an application user with credentials.
type User struct {
	// ID is the unique identifier for the user.
	ID string `json:"id" db:"id"`
	// Email is the unique sign-in address.
	Email string `json:"email" db:"email"`
	// DisplayName is the optional public name shown to other users.
	DisplayName string `json:"display_name" db:"display_name"`
	// AvatarURL is the optional profile photo location.
	AvatarURL string `json:"avatar_url" db:"avatar_url"`
	// PasswordHash is the bcrypt hash of the user's password. Never serialized.
	PasswordHash []byte `json:"-" db:"password_hash"`
	// CreatedAt is the server-assigned creation time.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Settings holds per-user presentation preferences, one row per user.
type Settings struct {
	UserID        string `json:"user_id" db:"user_id"`
	Theme         string `json:"theme" db:"theme"`
	FontSize      string `json:"font_size" db:"font_size"`
	HighContrast  bool   `json:"high_contrast" db:"high_contrast"`
	ReducedMotion bool   `json:"reduced_motion" db:"reduced_motion"`
}

// Theme values accepted by Settings.Theme.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// DefaultSettings returns the settings row created on a user's first sign-in.
func DefaultSettings(userID string) Settings {
	return Settings{
		UserID:   userID,
		Theme:    ThemeLight,
		FontSize: "medium",
	}
}

// Todo is a task owned by exactly one user. Public todos additionally
// appear in the shared feed readable by any authenticated user.
type Todo struct {
	// ID is the unique identifier for the todo.
	ID string `json:"id" db:"id"`
	// OwnerID references the owning user.
	OwnerID string `json:"owner_id" db:"owner_id"`
	// Title is the required short task text.
	Title string `json:"title" db:"title"`
	// Description is the optional long task text.
	Description string `json:"description" db:"description"`
	// Completed marks the task done.
	Completed bool `json:"completed" db:"completed"`
	// Public controls whether the todo appears in the public feed.
	Public bool `json:"public" db:"public"`
	// Tags is an unordered set of labels.
	Tags []string `json:"tags" db:"tags"`
	// Attachments holds the files linked to this todo, populated on reads.
	Attachments []Attachment `json:"attachments,omitempty" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TodoPatch carries the fields of a partial todo update; nil fields are
// left untouched.
type TodoPatch struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Completed   *bool     `json:"completed"`
	Public      *bool     `json:"public"`
	Tags        *[]string `json:"tags"`
}

// Attachment is a file stored in the object store and linked to a todo.
type Attachment struct {
	// ID is the unique identifier for the attachment.
	ID string `json:"id" db:"id"`
	// TodoID references the owning todo.
	TodoID string `json:"todo_id" db:"todo_id"`
	// FileName is the client-supplied name of the uploaded file.
	FileName string `json:"file_name" db:"file_name"`
	// ObjectKey is the location of the bytes in the object store.
	ObjectKey string `json:"object_key" db:"object_key"`
	// Size is the byte length of the stored object.
	Size int64 `json:"size" db:"size"`
	// ContentType is the MIME type reported at upload time.
	ContentType string `json:"content_type" db:"content_type"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Message is a directed message between two users. A message is immutable
// once created except for the read flag and its timestamp.
type Message struct {
	// ID is the unique identifier for the message.
	ID string `json:"id" db:"id"`
	// SenderID references the authoring user.
	SenderID string `json:"sender_id" db:"sender_id"`
	// RecipientID references the addressed user.
	RecipientID string `json:"recipient_id" db:"recipient_id"`
	// Content is the message body.
	Content string `json:"content" db:"content"`
	// Read reports whether the recipient has seen the message.
	Read bool `json:"read" db:"read"`
	// ReadAt is set exactly once, when the message is first marked read.
	ReadAt *time.Time `json:"read_at,omitempty" db:"read_at"`
	// CreatedAt is the server-assigned creation time. Conversations are
	// always ordered by this field, never by delivery order.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ConversationSummary is one row of a user's inbox: the latest message
// exchanged with a counterpart plus the number of unread messages from them.
// It is derived by query; no conversation entity is persisted.
type ConversationSummary struct {
	CounterpartID string  `json:"counterpart_id" db:"counterpart_id"`
	LastMessage   Message `json:"last_message"`
	UnreadCount   int     `json:"unread_count" db:"unread_count"`
}

// Session is an opaque bearer token resolving to a user until it expires
// or is revoked by logout.
type Session struct {
	Token     string    `json:"token" db:"token"`
	UserID    string    `json:"user_id" db:"user_id"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
