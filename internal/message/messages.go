package message

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"github.com/sudo-init-do/freelancehub/internal/db"
	"github.com/sudo-init-do/freelancehub/internal/user"
	"github.com/sudo-init-do/freelancehub/internal/utils"
)

type SendRequest struct {
	ReceiverID  string       `json:"receiver_id" validate:"required,uuid4"`
	Content     string       `json:"content" validate:"required"`
	ProjectID   *string      `json:"project_id" validate:"omitempty,uuid4"`
	MessageType string       `json:"message_type" validate:"omitempty,oneof=text file image"`
	Attachments []Attachment `json:"attachments"`
}

// Send creates a message addressed to another user.
func Send(c echo.Context) error {
	senderID, ok := c.Get("user_id").(string)
	if !ok || senderID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	req := new(SendRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "message content is required"})
	}
	if req.ReceiverID == senderID {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "cannot send message to yourself"})
	}

	ctx := context.Background()

	var receiverActive bool
	err := db.Conn.QueryRow(ctx,
		`SELECT is_active FROM users WHERE id = $1`, req.ReceiverID).Scan(&receiverActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "receiver not found"})
		}
		return utils.ServerError(c, "failed to fetch receiver", err)
	}
	if !receiverActive {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "receiver not found"})
	}

	// A project reference is optional, but when present it must name a
	// live project or the insert would trip the foreign key.
	if req.ProjectID != nil {
		var projectActive bool
		err := db.Conn.QueryRow(ctx,
			`SELECT is_active FROM projects WHERE id = $1`, *req.ProjectID).Scan(&projectActive)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return c.JSON(http.StatusNotFound, echo.Map{"message": "project not found"})
			}
			return utils.ServerError(c, "failed to fetch project", err)
		}
		if !projectActive {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "project not found"})
		}
	}

	msgType := req.MessageType
	if msgType == "" {
		msgType = "text"
	}
	attachments := req.Attachments
	if attachments == nil {
		attachments = []Attachment{}
	}

	m := Message{
		ID:          uuid.New().String(),
		SenderID:    senderID,
		ReceiverID:  req.ReceiverID,
		ProjectID:   req.ProjectID,
		Content:     content,
		MessageType: msgType,
		Attachments: attachments,
	}
	err = db.Conn.QueryRow(ctx, `
		INSERT INTO messages (id, sender_id, receiver_id, project_id, content, message_type, attachments)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, m.ID, m.SenderID, m.ReceiverID, m.ProjectID, m.Content, m.MessageType, m.Attachments).
		Scan(&m.CreatedAt)
	if err != nil {
		return utils.ServerError(c, "failed to send message", err)
	}

	summaries, err := user.SummariesByID(ctx, []string{senderID})
	if err == nil {
		if s, ok := summaries[senderID]; ok {
			m.Sender = &s
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "message sent successfully",
		"data":    m,
	})
}

// ListConversations returns one entry per distinct other participant,
// newest thread first, with unread counts.
func ListConversations(c echo.Context) error {
	callerID, ok := c.Get("user_id").(string)
	if !ok || callerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	ctx := context.Background()

	rows, err := db.Conn.Query(ctx, `
		SELECT id, sender_id, receiver_id, project_id, content, message_type,
		       attachments, is_read, read_at, created_at
		FROM messages
		WHERE (sender_id = $1 OR receiver_id = $1) AND is_deleted = FALSE
		ORDER BY created_at DESC
	`, callerID)
	if err != nil {
		return utils.ServerError(c, "failed to fetch messages", err)
	}
	defer rows.Close()

	msgs := []Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return utils.ServerError(c, "failed to parse record", err)
		}
		msgs = append(msgs, m)
	}

	groups := groupConversations(msgs, callerID)

	otherIDs := lo.Map(groups, func(g conversationGroup, _ int) string { return g.OtherUserID })
	summaries, err := user.SummariesByID(ctx, otherIDs)
	if err != nil {
		return utils.ServerError(c, "failed to fetch participants", err)
	}

	projectIDs := lo.FilterMap(groups, func(g conversationGroup, _ int) (string, bool) {
		if g.ProjectID == nil {
			return "", false
		}
		return *g.ProjectID, true
	})
	titles, err := projectTitles(ctx, lo.Uniq(projectIDs))
	if err != nil {
		return utils.ServerError(c, "failed to fetch projects", err)
	}

	conversations := make([]Conversation, 0, len(groups))
	for _, g := range groups {
		conv := Conversation{
			User:        summaries[g.OtherUserID],
			LastMessage: g.LastMessage,
			UnreadCount: g.UnreadCount,
			ProjectID:   g.ProjectID,
		}
		if g.ProjectID != nil {
			conv.ProjectTitle = titles[*g.ProjectID]
		}
		conversations = append(conversations, conv)
	}

	return c.JSON(http.StatusOK, echo.Map{"conversations": conversations})
}

func projectTitles(ctx context.Context, ids []string) (map[string]string, error) {
	if len(ids) == 0 {
		return map[string]string{}, nil
	}
	rows, err := db.Conn.Query(ctx,
		`SELECT id, title FROM projects WHERE id = ANY($1::uuid[])`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string, len(ids))
	for rows.Next() {
		var id, title string
		if err := rows.Scan(&id, &title); err != nil {
			return nil, err
		}
		out[id] = title
	}
	return out, rows.Err()
}

func scanMessage(rows pgx.Rows) (Message, error) {
	var m Message
	err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.ProjectID, &m.Content,
		&m.MessageType, &m.Attachments, &m.IsRead, &m.ReadAt, &m.CreatedAt)
	return m, err
}

// ListConversation returns one page of the thread with another user,
// oldest first for display. Fetching a page marks every unread message
// from that user as read; this happens on every fetch, not only the
// first.
func ListConversation(c echo.Context) error {
	callerID, ok := c.Get("user_id").(string)
	if !ok || callerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	otherID := c.Param("userId")
	if _, err := uuid.Parse(otherID); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid user id"})
	}

	page := 1
	limit := 20
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}

	ctx := context.Background()

	rows, err := db.Conn.Query(ctx, `
		SELECT id, sender_id, receiver_id, project_id, content, message_type,
		       attachments, is_read, read_at, created_at
		FROM messages
		WHERE ((sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1))
		  AND is_deleted = FALSE
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, callerID, otherID, limit, (page-1)*limit)
	if err != nil {
		return utils.ServerError(c, "failed to fetch messages", err)
	}
	defer rows.Close()

	msgs := []Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return utils.ServerError(c, "failed to parse record", err)
		}
		msgs = append(msgs, m)
	}
	rows.Close()

	_, err = db.Conn.Exec(ctx, `
		UPDATE messages SET is_read = TRUE, read_at = NOW()
		WHERE sender_id = $1 AND receiver_id = $2 AND is_read = FALSE
	`, otherID, callerID)
	if err != nil {
		return utils.ServerError(c, "failed to mark messages read", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"messages": lo.Reverse(msgs),
		"page":     page,
		"limit":    limit,
	})
}

// MarkRead marks one message read. Receiver only, idempotent.
func MarkRead(c echo.Context) error {
	callerID, ok := c.Get("user_id").(string)
	if !ok || callerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	msgID := c.Param("id")
	if _, err := uuid.Parse(msgID); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid message id"})
	}

	var receiverID string
	err := db.Conn.QueryRow(context.Background(),
		`SELECT receiver_id FROM messages WHERE id = $1`, msgID).Scan(&receiverID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "message not found"})
		}
		return utils.ServerError(c, "failed to fetch message", err)
	}
	if receiverID != callerID {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "not authorized to mark this message as read"})
	}

	// Second calls keep the original read_at.
	if _, err := db.Conn.Exec(context.Background(), `
		UPDATE messages SET is_read = TRUE, read_at = NOW()
		WHERE id = $1 AND is_read = FALSE
	`, msgID); err != nil {
		return utils.ServerError(c, "failed to mark message read", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "message marked as read"})
}

// UnreadCount returns the caller's total unread message count.
func UnreadCount(c echo.Context) error {
	callerID, ok := c.Get("user_id").(string)
	if !ok || callerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	var count int64
	err := db.Conn.QueryRow(context.Background(), `
		SELECT COUNT(*) FROM messages
		WHERE receiver_id = $1 AND is_read = FALSE AND is_deleted = FALSE
	`, callerID).Scan(&count)
	if err != nil {
		return utils.ServerError(c, "failed to compute unread count", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"unread_count": count})
}

// Delete soft-deletes a message. Sender only; the row persists but
// disappears from every list operation.
func Delete(c echo.Context) error {
	callerID, ok := c.Get("user_id").(string)
	if !ok || callerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	msgID := c.Param("id")
	if _, err := uuid.Parse(msgID); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid message id"})
	}

	var senderID string
	err := db.Conn.QueryRow(context.Background(),
		`SELECT sender_id FROM messages WHERE id = $1`, msgID).Scan(&senderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "message not found"})
		}
		return utils.ServerError(c, "failed to fetch message", err)
	}
	if senderID != callerID {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "not authorized to delete this message"})
	}

	if _, err := db.Conn.Exec(context.Background(),
		`UPDATE messages SET is_deleted = TRUE WHERE id = $1`, msgID); err != nil {
		return utils.ServerError(c, "failed to delete message", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "message deleted successfully"})
}
