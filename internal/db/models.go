package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LikeStatus is the lifecycle state of a Like. PENDING transitions exactly
// once, to either ACCEPTED or SKIPPED; both are terminal.
type LikeStatus string

const (
	LikeStatusPending  LikeStatus = "PENDING"
	LikeStatusAccepted LikeStatus = "ACCEPTED"
	LikeStatusSkipped  LikeStatus = "SKIPPED"
)

// User table
type User struct {
	ID           string    `gorm:"primaryKey;size:36"`
	Email        string    `gorm:"uniqueIndex;size:128;not null"`
	Name         string    `gorm:"size:64"`
	PasswordHash string    `gorm:"size:255;not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Profile holds the user's public dating profile, 1:1 with User.
type Profile struct {
	ID          string `gorm:"primaryKey;size:36"`
	UserID      string `gorm:"uniqueIndex;size:36;not null"`
	DOB         *time.Time
	Location    string `gorm:"size:128"`
	Gender      string `gorm:"size:16"`
	CompletedAt *time.Time
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`

	Photos  []Photo  `gorm:"foreignKey:ProfileID"`
	Prompts []Prompt `gorm:"foreignKey:ProfileID"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Photo is one profile photo. Position orders the gallery; the service layer
// caps a profile at 6 photos.
type Photo struct {
	ID        string    `gorm:"primaryKey;size:36"`
	ProfileID string    `gorm:"index;size:36;not null"`
	URL       string    `gorm:"size:512;not null"`
	Position  int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (p *Photo) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Prompt is a question/answer pair on a profile.
type Prompt struct {
	ID        string    `gorm:"primaryKey;size:36"`
	ProfileID string    `gorm:"index;size:36;not null"`
	Question  string    `gorm:"size:256;not null"`
	Answer    string    `gorm:"size:512;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (p *Prompt) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Like is a directed, stateful edge from one user to another.
//
// Constraints:
//   - uniqueIndex idx_likes_from_to: at most one row per ordered (from, to)
//     pair, enforced at the store layer so concurrent sends cannot duplicate.
//   - PhotoIndex and PromptID are mutually exclusive; at most one is non-NULL
//     (the service layer builds them from a closed Context union).
//
// Index idx_likes_to_status serves the "incoming pending likes, newest first"
// list.
type Like struct {
	ID         string     `gorm:"primaryKey;size:36"`
	FromUserID string     `gorm:"size:36;not null;uniqueIndex:idx_likes_from_to,priority:1;index"`
	ToUserID   string     `gorm:"size:36;not null;uniqueIndex:idx_likes_from_to,priority:2;index:idx_likes_to_status,priority:1"`
	Comment    string     `gorm:"size:500"`
	PhotoIndex *int
	PromptID   *string    `gorm:"size:36"`
	Status     LikeStatus `gorm:"size:16;not null;default:PENDING;index:idx_likes_to_status,priority:2"`
	CreatedAt  time.Time  `gorm:"autoCreateTime;index:idx_likes_to_status,priority:3,sort:desc"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime"`
}

func (l *Like) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// Match records mutual interest between two users. UserAID/UserBID order is
// fixed at creation but carries no positional meaning. SourceLikeID is unique:
// one accepted Like produces exactly one Match.
type Match struct {
	ID           string    `gorm:"primaryKey;size:36"`
	UserAID      string    `gorm:"size:36;not null;index"`
	UserBID      string    `gorm:"size:36;not null;index"`
	SourceLikeID string    `gorm:"uniqueIndex;size:36;not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

func (m *Match) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// Participants returns both user IDs of the match.
func (m *Match) Participants() (string, string) { return m.UserAID, m.UserBID }

// HasParticipant reports whether userID is one of the two matched users.
func (m *Match) HasParticipant(userID string) bool {
	return m.UserAID == userID || m.UserBID == userID
}

// Conversation is the message thread bound 1:1 to a Match. UpdatedAt is
// bumped on every appended message and orders the conversation list.
type Conversation struct {
	ID        string    `gorm:"primaryKey;size:36"`
	MatchID   string    `gorm:"uniqueIndex;size:36;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Message is one chat turn. Content is stored trimmed; the service layer
// rejects empty or over-length content before it reaches the store.
type Message struct {
	ID             string    `gorm:"primaryKey;size:36"`
	ConversationID string    `gorm:"index;size:36;not null"`
	SenderID       string    `gorm:"size:36;not null"`
	Content        string    `gorm:"size:1000;not null"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
