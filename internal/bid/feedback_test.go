package bid

import (
	"net/http"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expectFeedbackLookup(mock pgxmock.PgxPoolIface, status string, hasFeedback bool) {
	mock.ExpectQuery("SELECT p.client_id, b.status, b.feedback_at IS NOT NULL").
		WithArgs(testBidID).
		WillReturnRows(pgxmock.NewRows([]string{"client_id", "status", "has_feedback"}).
			AddRow(testClientID, status, hasFeedback))
}

func TestLeaveFeedbackOnAcceptedBid(t *testing.T) {
	mock := newPool(t)

	expectFeedbackLookup(mock, StatusAccepted, false)
	mock.ExpectExec("UPDATE bids SET client_rating").
		WithArgs(5, "delivered early", testBidID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	c, rec := bidContext(t, http.MethodPost, `{"rating":5,"comment":"delivered early"}`, testClientID)
	c.SetParamNames("id")
	c.SetParamValues(testBidID)

	require.NoError(t, LeaveFeedback(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLeaveFeedbackConflictsOnPendingBid(t *testing.T) {
	mock := newPool(t)

	expectFeedbackLookup(mock, StatusPending, false)

	c, rec := bidContext(t, http.MethodPost, `{"rating":5,"comment":"delivered early"}`, testClientID)
	c.SetParamNames("id")
	c.SetParamValues(testBidID)

	require.NoError(t, LeaveFeedback(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "only allowed on accepted bids")
}

func TestLeaveFeedbackConflictsOnSecondReview(t *testing.T) {
	mock := newPool(t)

	expectFeedbackLookup(mock, StatusAccepted, true)

	c, rec := bidContext(t, http.MethodPost, `{"rating":4,"comment":""}`, testClientID)
	c.SetParamNames("id")
	c.SetParamValues(testBidID)

	require.NoError(t, LeaveFeedback(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "feedback already submitted")
}

func TestLeaveFeedbackRefusesNonOwner(t *testing.T) {
	mock := newPool(t)

	expectFeedbackLookup(mock, StatusAccepted, false)

	c, rec := bidContext(t, http.MethodPost, `{"rating":5,"comment":""}`, testFreelancerID)
	c.SetParamNames("id")
	c.SetParamValues(testBidID)

	require.NoError(t, LeaveFeedback(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
