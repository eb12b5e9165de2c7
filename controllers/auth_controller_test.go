package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/chmgroup/mediahub-backend/config"
)

func newAcceptInviteRouter(t *testing.T, gdb *gorm.DB) *gin.Engine {
	t.Helper()
	orig := config.DB
	config.DB = gdb
	t.Cleanup(func() { config.DB = orig })

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/auth/accept-invite", AcceptInvite)
	return r
}

func postAcceptInvite(r *gin.Engine, token string) *httptest.ResponseRecorder {
	body := `{"token": "` + token + `", "name": "New User", "password": "longenough1"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/accept-invite", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func invitationRow(id uuid.UUID, expiresAt time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "email", "token", "role", "invited_by_id", "expires_at"}).
		AddRow(id, "new@example.com", "tok-1", "viewer", uuid.New(), expiresAt)
}

// The pre-check can pass while the invitation lapses before the update runs.
// The update's own expiry predicate must see zero rows then, and the token
// must not be consumed.
func TestAcceptInviteExpiringMidRequest(t *testing.T) {
	gdb, mock := newMockDB(t)
	invID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "invitations" WHERE token =`).
		WillReturnRows(invitationRow(invID, time.Now().UTC().Add(time.Hour)))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "invitations" SET "accepted_at"=.+ WHERE id = .+ AND accepted_at IS NULL AND expires_at >`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT .*accepted_at.* FROM "invitations" WHERE id =`).
		WillReturnRows(sqlmock.NewRows([]string{"accepted_at"}).AddRow(nil))
	mock.ExpectRollback()

	r := newAcceptInviteRouter(t, gdb)
	w := postAcceptInvite(r, "tok-1")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Invitation has expired", resp["error"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcceptInviteRacedSecondAccept(t *testing.T) {
	gdb, mock := newMockDB(t)
	invID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "invitations" WHERE token =`).
		WillReturnRows(invitationRow(invID, time.Now().UTC().Add(time.Hour)))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "invitations" SET "accepted_at"=.+ WHERE id = .+ AND accepted_at IS NULL AND expires_at >`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT .*accepted_at.* FROM "invitations" WHERE id =`).
		WillReturnRows(sqlmock.NewRows([]string{"accepted_at"}).AddRow(time.Now().UTC()))
	mock.ExpectRollback()

	r := newAcceptInviteRouter(t, gdb)
	w := postAcceptInvite(r, "tok-1")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcceptInviteRejectsAlreadyExpired(t *testing.T) {
	gdb, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "invitations" WHERE token =`).
		WillReturnRows(invitationRow(uuid.New(), time.Now().UTC().Add(-time.Hour)))

	r := newAcceptInviteRouter(t, gdb)
	w := postAcceptInvite(r, "tok-1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
