package message

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func msg(id, sender, receiver string, read bool, at time.Time) Message {
	return Message{
		ID:         id,
		SenderID:   sender,
		ReceiverID: receiver,
		IsRead:     read,
		CreatedAt:  at,
	}
}

func TestGroupConversationsOnePerParticipant(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Newest first, as the query returns them: A<->B twice, A->C once.
	msgs := []Message{
		msg("m3", "alice", "carol", false, base.Add(2*time.Minute)),
		msg("m2", "bob", "alice", false, base.Add(1*time.Minute)),
		msg("m1", "alice", "bob", true, base),
	}

	groups := groupConversations(msgs, "alice")
	require.Len(t, groups, 2)

	assert.Equal(t, "carol", groups[0].OtherUserID)
	assert.Equal(t, "m3", groups[0].LastMessage.ID)
	assert.Equal(t, 0, groups[0].UnreadCount)

	assert.Equal(t, "bob", groups[1].OtherUserID)
	assert.Equal(t, "m2", groups[1].LastMessage.ID)
	assert.Equal(t, 1, groups[1].UnreadCount)
}

func TestGroupConversationsUnreadCountsWholeThread(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	msgs := []Message{
		msg("m4", "bob", "alice", false, base.Add(3*time.Minute)),
		msg("m3", "bob", "alice", false, base.Add(2*time.Minute)),
		msg("m2", "alice", "bob", false, base.Add(1*time.Minute)),
		msg("m1", "bob", "alice", true, base),
	}

	groups := groupConversations(msgs, "alice")
	require.Len(t, groups, 1)

	// Two unread from bob; alice's own unsent-read message and the already
	// read one do not count.
	assert.Equal(t, 2, groups[0].UnreadCount)
	assert.Equal(t, "m4", groups[0].LastMessage.ID)
}

func TestGroupConversationsKeepsProjectFromLastMessage(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	projectID := "7c9e6679-7425-40de-944b-e07fc1f90ae7"

	withProject := msg("m2", "bob", "alice", false, base.Add(time.Minute))
	withProject.ProjectID = &projectID

	groups := groupConversations([]Message{
		withProject,
		msg("m1", "alice", "bob", true, base),
	}, "alice")

	require.Len(t, groups, 1)
	require.NotNil(t, groups[0].ProjectID)
	assert.Equal(t, projectID, *groups[0].ProjectID)
}

func TestGroupConversationsEmpty(t *testing.T) {
	groups := groupConversations(nil, "alice")
	assert.Empty(t, groups)
	assert.NotNil(t, groups)
}
