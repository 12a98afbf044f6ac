package message

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudo-init-do/freelancehub/internal/db"
	"github.com/sudo-init-do/freelancehub/internal/validate"
)

const (
	testSenderID   = "aaaa1111-2222-4333-8444-555566667777"
	testReceiverID = "bbbb1111-2222-4333-8444-555566667777"
	testProjectID  = "cccc1111-2222-4333-8444-555566667777"
	testMessageID  = "dddd1111-2222-4333-8444-555566667777"
)

func newPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	db.Conn = mock
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func messageContext(t *testing.T, method, body, callerID string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = validate.New()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", callerID)
	return c, rec
}

func TestSendAttachesProjectReference(t *testing.T) {
	mock := newPool(t)
	now := time.Now()

	mock.ExpectQuery("SELECT is_active FROM users").
		WithArgs(testReceiverID).
		WillReturnRows(pgxmock.NewRows([]string{"is_active"}).AddRow(true))
	mock.ExpectQuery("SELECT is_active FROM projects").
		WithArgs(testProjectID).
		WillReturnRows(pgxmock.NewRows([]string{"is_active"}).AddRow(true))
	mock.ExpectQuery("INSERT INTO messages").
		WithArgs(pgxmock.AnyArg(), testSenderID, testReceiverID, pgxmock.AnyArg(),
			"can we talk about the deadline?", "text", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(now))

	body := `{"receiver_id":"` + testReceiverID + `","content":"can we talk about the deadline?","project_id":"` + testProjectID + `"}`
	c, rec := messageContext(t, http.MethodPost, body, testSenderID)

	require.NoError(t, Send(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), testProjectID)
}

func TestSendRejectsUnknownProject(t *testing.T) {
	mock := newPool(t)

	mock.ExpectQuery("SELECT is_active FROM users").
		WithArgs(testReceiverID).
		WillReturnRows(pgxmock.NewRows([]string{"is_active"}).AddRow(true))
	mock.ExpectQuery("SELECT is_active FROM projects").
		WithArgs(testProjectID).
		WillReturnError(pgx.ErrNoRows)

	body := `{"receiver_id":"` + testReceiverID + `","content":"hello","project_id":"` + testProjectID + `"}`
	c, rec := messageContext(t, http.MethodPost, body, testSenderID)

	require.NoError(t, Send(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "project not found")
}

func TestSendRejectsDeletedProject(t *testing.T) {
	mock := newPool(t)

	mock.ExpectQuery("SELECT is_active FROM users").
		WithArgs(testReceiverID).
		WillReturnRows(pgxmock.NewRows([]string{"is_active"}).AddRow(true))
	mock.ExpectQuery("SELECT is_active FROM projects").
		WithArgs(testProjectID).
		WillReturnRows(pgxmock.NewRows([]string{"is_active"}).AddRow(false))

	body := `{"receiver_id":"` + testReceiverID + `","content":"hello","project_id":"` + testProjectID + `"}`
	c, rec := messageContext(t, http.MethodPost, body, testSenderID)

	require.NoError(t, Send(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func markReadOnce(t *testing.T, mock pgxmock.PgxPoolIface, rowsTouched int64) *httptest.ResponseRecorder {
	t.Helper()
	mock.ExpectQuery("SELECT receiver_id FROM messages").
		WithArgs(testMessageID).
		WillReturnRows(pgxmock.NewRows([]string{"receiver_id"}).AddRow(testReceiverID))
	mock.ExpectExec("UPDATE messages SET is_read").
		WithArgs(testMessageID).
		WillReturnResult(pgxmock.NewResult("UPDATE", rowsTouched))

	c, rec := messageContext(t, http.MethodPut, "", testReceiverID)
	c.SetParamNames("id")
	c.SetParamValues(testMessageID)
	require.NoError(t, MarkRead(c))
	return rec
}

func TestMarkReadIsIdempotent(t *testing.T) {
	mock := newPool(t)

	first := markReadOnce(t, mock, 1)
	assert.Equal(t, http.StatusOK, first.Code)

	// The repeat matches no unread row and still succeeds.
	second := markReadOnce(t, mock, 0)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
}

func TestMarkReadRefusesNonReceiver(t *testing.T) {
	mock := newPool(t)

	mock.ExpectQuery("SELECT receiver_id FROM messages").
		WithArgs(testMessageID).
		WillReturnRows(pgxmock.NewRows([]string{"receiver_id"}).AddRow(testReceiverID))

	c, rec := messageContext(t, http.MethodPut, "", testSenderID)
	c.SetParamNames("id")
	c.SetParamValues(testMessageID)

	require.NoError(t, MarkRead(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
