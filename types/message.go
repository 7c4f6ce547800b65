package types

import "time"

// Message is a direct message between two accounts.
type Message struct {
	ID         string     `json:"id" db:"id"`
	SenderID   string     `json:"sender_id" db:"sender_id"`
	ReceiverID string     `json:"receiver_id" db:"receiver_id"`
	Subject    string     `json:"subject,omitempty" db:"subject"`
	Body       string     `json:"body" db:"body"`
	ReadAt     *time.Time `json:"read_at,omitempty" db:"read_at"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// Notice is an announcement visible to a role audience, or to everyone
// when Audience is empty.
type Notice struct {
	ID          string     `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Body        string     `json:"body" db:"body"`
	Audience    string     `json:"audience,omitempty" db:"audience"`
	AuthorID    string     `json:"author_id" db:"author_id"`
	PublishedAt *time.Time `json:"published_at,omitempty" db:"published_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}
