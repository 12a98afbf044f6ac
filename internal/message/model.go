package message

import (
	"time"

	"github.com/sudo-init-do/freelancehub/internal/user"
)

// Attachment is an opaque reference to an uploaded file.
type Attachment struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	FileType string `json:"file_type"`
	FileSize int64  `json:"file_size"`
}

// Message is one entry in a conversation between two users. Conversation
// identity is derived from the participant pair, never stored.
type Message struct {
	ID          string        `json:"id"`
	SenderID    string        `json:"sender_id"`
	ReceiverID  string        `json:"receiver_id"`
	ProjectID   *string       `json:"project_id,omitempty"`
	Content     string        `json:"content"`
	MessageType string        `json:"message_type"`
	Attachments []Attachment  `json:"attachments"`
	IsRead      bool          `json:"is_read"`
	ReadAt      *time.Time    `json:"read_at,omitempty"`
	IsDeleted   bool          `json:"-"`
	CreatedAt   time.Time     `json:"created_at"`
	Sender      *user.Summary `json:"sender,omitempty"`
}

// Conversation is one grouped thread in the caller's inbox.
type Conversation struct {
	User         user.Summary `json:"user"`
	LastMessage  Message      `json:"last_message"`
	UnreadCount  int          `json:"unread_count"`
	ProjectID    *string      `json:"project_id,omitempty"`
	ProjectTitle string       `json:"project_title,omitempty"`
}

// conversationGroup is the grouping result before user summaries and
// project titles are attached.
type conversationGroup struct {
	OtherUserID string
	LastMessage Message
	UnreadCount int
	ProjectID   *string
}

// groupConversations folds a newest-first message stream into one entry
// per distinct other participant. The first message seen per participant
// is the thread's last message; unread counts only messages the caller
// received.
func groupConversations(msgs []Message, callerID string) []conversationGroup {
	groups := []conversationGroup{}
	index := map[string]int{}

	for _, m := range msgs {
		otherID := m.SenderID
		if otherID == callerID {
			otherID = m.ReceiverID
		}

		i, seen := index[otherID]
		if !seen {
			groups = append(groups, conversationGroup{
				OtherUserID: otherID,
				LastMessage: m,
				ProjectID:   m.ProjectID,
			})
			i = len(groups) - 1
			index[otherID] = i
		}

		if m.ReceiverID == callerID && !m.IsRead {
			groups[i].UnreadCount++
		}
	}

	return groups
}
