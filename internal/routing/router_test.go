package routing

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gavv/httpexpect/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"hoax-server/internal/managers"
	"hoax-server/internal/managers/mocks"
)

// define request payload for user registration
type User struct {
	UserId         string `json:"id,omitempty"`
	Username       string `json:"username"`
	Password       string `json:"password"`
	HashedPassword string `json:"-"`
	Email          string `json:"email"`
}

func setupMocks(t *testing.T) (*mocks.MockDatabaseManager, *managers.TokenManager, *mocks.MockMailManager, *mocks.MockImageManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	poolMock, err := pgxmock.NewPool()
	require.NoError(t, err)

	databaseMgrMock := &mocks.MockDatabaseManager{}
	databaseMgrMock.On("GetPool").Return(poolMock)

	tokenMgr := managers.NewTokenManager(databaseMgrMock)

	mailMgrMock := &mocks.MockMailManager{}
	mailMgrMock.On("SendActivationMail", mock.AnythingOfType("string"), mock.AnythingOfType("string"), mock.Anything).Return(nil)
	mailMgrMock.On("SendPasswordResetMail", mock.AnythingOfType("string"), mock.AnythingOfType("string"), mock.Anything).Return(nil)

	imageMgrMock := &mocks.MockImageManager{}

	return databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock
}

func newTestServer(t *testing.T, databaseMgrMock *mocks.MockDatabaseManager, tokenMgr *managers.TokenManager, mailMgrMock *mocks.MockMailManager, imageMgrMock *mocks.MockImageManager) (*httptest.Server, pgxmock.PgxPoolIface) {
	t.Helper()

	router := InitRouter(databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return server, databaseMgrMock.GetPool().(pgxmock.PgxPoolIface)
}

func TestUserRegistration(t *testing.T) {
	createUserRequest := func() User {
		return User{
			Username: "testUser",
			Password: "test.Password123",
			Email:    "test@example.com",
		}
	}

	t.Run("ValidRegistration", func(t *testing.T) {
		databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock := setupMocks(t)
		server, poolMock := newTestServer(t, databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock)

		user := createUserRequest()
		poolMock.ExpectBegin()
		poolMock.ExpectQuery("SELECT username, email").
			WithArgs(user.Username, user.Email).
			WillReturnRows(pgxmock.NewRows([]string{"username", "email"}))
		poolMock.ExpectExec("INSERT INTO users").
			WithArgs(pgxmock.AnyArg(), user.Username, user.Email, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		poolMock.ExpectCommit()

		expect := httpexpect.Default(t, server.URL)
		response := expect.POST("/api/users").WithJSON(user).Expect().Status(http.StatusCreated)
		response.JSON().Object().
			HasValue("username", user.Username).
			HasValue("email", user.Email)

		mailMgrMock.AssertCalled(t, "SendActivationMail", user.Email, user.Username, mock.Anything)
		require.NoError(t, poolMock.ExpectationsWereMet())
	})

	t.Run("ValidationFailure", func(t *testing.T) {
		databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock := setupMocks(t)
		server, poolMock := newTestServer(t, databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock)

		user := createUserRequest()
		user.Password = "short"

		expect := httpexpect.Default(t, server.URL)
		response := expect.POST("/api/users").WithJSON(user).Expect().Status(http.StatusBadRequest)
		body := response.JSON().Object()
		body.Value("error").Object().HasValue("code", "ERR-013")
		body.Value("validationErrors").Object().ContainsKey("Password")

		require.NoError(t, poolMock.ExpectationsWereMet())
	})

	t.Run("UnverifiableEmail", func(t *testing.T) {
		databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock := setupMocks(t)
		server, poolMock := newTestServer(t, databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock)

		user := createUserRequest()
		// Passes the syntactic email rule but cannot receive mail.
		user.Email = "anna@localhost"

		poolMock.ExpectBegin()
		poolMock.ExpectRollback()

		expect := httpexpect.Default(t, server.URL)
		response := expect.POST("/api/users").WithJSON(user).Expect().Status(http.StatusBadRequest)
		response.JSON().Object().Value("error").Object().HasValue("code", "ERR-015")

		mailMgrMock.AssertNotCalled(t, "SendActivationMail", mock.Anything, mock.Anything, mock.Anything)
		require.NoError(t, poolMock.ExpectationsWereMet())
	})

	t.Run("TakenCheckIterationFailure", func(t *testing.T) {
		databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock := setupMocks(t)
		server, poolMock := newTestServer(t, databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock)

		user := createUserRequest()
		poolMock.ExpectBegin()
		poolMock.ExpectQuery("SELECT username, email").
			WithArgs(user.Username, user.Email).
			WillReturnRows(pgxmock.NewRows([]string{"username", "email"}).
				AddRow(user.Username, user.Email).
				RowError(0, errors.New("connection reset")))
		poolMock.ExpectRollback()

		expect := httpexpect.Default(t, server.URL)
		response := expect.POST("/api/users").WithJSON(user).Expect().Status(http.StatusInternalServerError)
		response.JSON().Object().Value("error").Object().HasValue("code", "ERR-012")

		mailMgrMock.AssertNotCalled(t, "SendActivationMail", mock.Anything, mock.Anything, mock.Anything)
		require.NoError(t, poolMock.ExpectationsWereMet())
	})

	t.Run("DuplicateUsername", func(t *testing.T) {
		databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock := setupMocks(t)
		server, poolMock := newTestServer(t, databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock)

		user := createUserRequest()
		poolMock.ExpectBegin()
		poolMock.ExpectQuery("SELECT username, email").
			WithArgs(user.Username, user.Email).
			WillReturnRows(pgxmock.NewRows([]string{"username", "email"}).AddRow(user.Username, "other@example.com"))
		poolMock.ExpectRollback()

		expect := httpexpect.Default(t, server.URL)
		response := expect.POST("/api/users").WithJSON(user).Expect().Status(http.StatusConflict)
		response.JSON().Object().Value("error").Object().HasValue("code", "ERR-002")

		require.NoError(t, poolMock.ExpectationsWereMet())
	})

	t.Run("MailDispatchFailureRollsBack", func(t *testing.T) {
		databaseMgrMock, tokenMgr, _, imageMgrMock := setupMocks(t)

		mailMgrMock := &mocks.MockMailManager{}
		mailMgrMock.On("SendActivationMail", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("mailgun unavailable"))

		server, poolMock := newTestServer(t, databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock)

		user := createUserRequest()
		poolMock.ExpectBegin()
		poolMock.ExpectQuery("SELECT username, email").
			WithArgs(user.Username, user.Email).
			WillReturnRows(pgxmock.NewRows([]string{"username", "email"}))
		poolMock.ExpectExec("INSERT INTO users").
			WithArgs(pgxmock.AnyArg(), user.Username, user.Email, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		poolMock.ExpectRollback()

		expect := httpexpect.Default(t, server.URL)
		response := expect.POST("/api/users").WithJSON(user).Expect().Status(http.StatusBadGateway)
		response.JSON().Object().Value("error").Object().HasValue("code", "ERR-011")

		require.NoError(t, poolMock.ExpectationsWereMet())
	})
}

func TestUserActivation(t *testing.T) {
	t.Run("ValidToken", func(t *testing.T) {
		databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock := setupMocks(t)
		server, poolMock := newTestServer(t, databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock)

		poolMock.ExpectExec("UPDATE users SET inactive").
			WithArgs("sometoken").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		expect := httpexpect.Default(t, server.URL)
		expect.POST("/api/users/token/sometoken").Expect().Status(http.StatusOK)

		require.NoError(t, poolMock.ExpectationsWereMet())
	})

	t.Run("InvalidToken", func(t *testing.T) {
		databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock := setupMocks(t)
		server, poolMock := newTestServer(t, databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock)

		poolMock.ExpectExec("UPDATE users SET inactive").
			WithArgs("badtoken").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		expect := httpexpect.Default(t, server.URL)
		response := expect.POST("/api/users/token/badtoken").Expect().Status(http.StatusBadRequest)
		response.JSON().Object().Value("error").Object().HasValue("code", "ERR-009")

		require.NoError(t, poolMock.ExpectationsWereMet())
	})
}

func TestUserLogin(t *testing.T) {
	createLoginRequest := func() User {
		u := User{
			UserId:   uuid.New().String(),
			Username: "testUser",
			Password: "test.Password123",
			Email:    "test@example.com",
		}

		hash, _ := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		u.HashedPassword = string(hash)

		return u
	}

	t.Run("ValidLogin", func(t *testing.T) {
		databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock := setupMocks(t)
		server, poolMock := newTestServer(t, databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock)

		user := createLoginRequest()
		userId := uuid.MustParse(user.UserId)

		poolMock.ExpectQuery("SELECT user_id, username, password, inactive, image").
			WithArgs(user.Email).
			WillReturnRows(pgxmock.NewRows([]string{"user_id", "username", "password", "inactive", "image"}).
				AddRow(userId, user.Username, user.HashedPassword, false, nil))
		poolMock.ExpectExec("INSERT INTO session_tokens").
			WithArgs(pgxmock.AnyArg(), userId, pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		expect := httpexpect.Default(t, server.URL)
		response := expect.POST("/api/users/login").
			WithJSON(map[string]string{"email": user.Email, "password": user.Password}).
			Expect().Status(http.StatusOK)

		body := response.JSON().Object()
		body.HasValue("id", user.UserId)
		body.HasValue("username", user.Username)
		body.Value("token").String().Length().IsEqual(32)

		require.NoError(t, poolMock.ExpectationsWereMet())
	})

	t.Run("WrongPassword", func(t *testing.T) {
		databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock := setupMocks(t)
		server, poolMock := newTestServer(t, databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock)

		user := createLoginRequest()
		userId := uuid.MustParse(user.UserId)

		poolMock.ExpectQuery("SELECT user_id, username, password, inactive, image").
			WithArgs(user.Email).
			WillReturnRows(pgxmock.NewRows([]string{"user_id", "username", "password", "inactive", "image"}).
				AddRow(userId, user.Username, user.HashedPassword, false, nil))

		expect := httpexpect.Default(t, server.URL)
		response := expect.POST("/api/users/login").
			WithJSON(map[string]string{"email": user.Email, "password": "wrong.Password123"}).
			Expect().Status(http.StatusUnauthorized)
		response.JSON().Object().Value("error").Object().HasValue("code", "ERR-005")

		require.NoError(t, poolMock.ExpectationsWereMet())
	})

	t.Run("InactiveAccount", func(t *testing.T) {
		databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock := setupMocks(t)
		server, poolMock := newTestServer(t, databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock)

		user := createLoginRequest()
		userId := uuid.MustParse(user.UserId)

		poolMock.ExpectQuery("SELECT user_id, username, password, inactive, image").
			WithArgs(user.Email).
			WillReturnRows(pgxmock.NewRows([]string{"user_id", "username", "password", "inactive", "image"}).
				AddRow(userId, user.Username, user.HashedPassword, true, nil))

		expect := httpexpect.Default(t, server.URL)
		response := expect.POST("/api/users/login").
			WithJSON(map[string]string{"email": user.Email, "password": user.Password}).
			Expect().Status(http.StatusForbidden)
		response.JSON().Object().Value("error").Object().HasValue("code", "ERR-006")

		require.NoError(t, poolMock.ExpectationsWereMet())
	})
}

func TestHoaxCreation(t *testing.T) {
	t.Run("WithLiveToken", func(t *testing.T) {
		databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock := setupMocks(t)
		server, poolMock := newTestServer(t, databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock)

		userId := uuid.New()
		expectVerifiedToken(poolMock, "livetoken", userId, time.Now().Add(-time.Hour))
		poolMock.ExpectExec("INSERT INTO hoaxes").
			WithArgs(pgxmock.AnyArg(), &userId, "a perfectly fine hoax", pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		expect := httpexpect.Default(t, server.URL)
		response := expect.POST("/api/hoaxes").
			WithHeader("Authorization", "Bearer livetoken").
			WithJSON(map[string]string{"content": "a perfectly fine hoax"}).
			Expect().Status(http.StatusCreated)

		body := response.JSON().Object()
		body.HasValue("content", "a perfectly fine hoax")
		body.Value("author").Object().HasValue("userId", userId.String())

		require.NoError(t, poolMock.ExpectationsWereMet())
	})

	t.Run("WithoutToken", func(t *testing.T) {
		databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock := setupMocks(t)
		server, poolMock := newTestServer(t, databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock)

		expect := httpexpect.Default(t, server.URL)
		response := expect.POST("/api/hoaxes").
			WithJSON(map[string]string{"content": "a perfectly fine hoax"}).
			Expect().Status(http.StatusUnauthorized)
		response.JSON().Object().Value("error").Object().HasValue("code", "ERR-007")

		require.NoError(t, poolMock.ExpectationsWereMet())
	})

	t.Run("WithExpiredToken", func(t *testing.T) {
		databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock := setupMocks(t)
		server, poolMock := newTestServer(t, databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock)

		userId := uuid.New()
		stale := time.Now().Add(-managers.TokenExpiry - time.Millisecond)
		poolMock.ExpectQuery("SELECT t.user_id, t.last_used_at").
			WithArgs("staletoken").
			WillReturnRows(pgxmock.NewRows([]string{"user_id", "last_used_at", "username", "email", "inactive", "image"}).
				AddRow(userId, stale, "testUser", "test@example.com", false, nil))
		poolMock.ExpectExec("DELETE FROM session_tokens WHERE token").
			WithArgs("staletoken", pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		expect := httpexpect.Default(t, server.URL)
		expect.POST("/api/hoaxes").
			WithHeader("Authorization", "Bearer staletoken").
			WithJSON(map[string]string{"content": "a perfectly fine hoax"}).
			Expect().Status(http.StatusUnauthorized)

		require.NoError(t, poolMock.ExpectationsWereMet())
	})

	t.Run("ContentTooShort", func(t *testing.T) {
		databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock := setupMocks(t)
		server, poolMock := newTestServer(t, databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock)

		userId := uuid.New()
		expectVerifiedToken(poolMock, "livetoken", userId, time.Now().Add(-time.Hour))

		expect := httpexpect.Default(t, server.URL)
		response := expect.POST("/api/hoaxes").
			WithHeader("Authorization", "Bearer livetoken").
			WithJSON(map[string]string{"content": "too short"}).
			Expect().Status(http.StatusBadRequest)
		response.JSON().Object().Value("validationErrors").Object().ContainsKey("Content")

		require.NoError(t, poolMock.ExpectationsWereMet())
	})
}

func TestHoaxListing(t *testing.T) {
	t.Run("NewestFirstPagination", func(t *testing.T) {
		databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock := setupMocks(t)
		server, poolMock := newTestServer(t, databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock)

		authorId := uuid.New()
		newer := time.Now().Add(-time.Minute)
		older := time.Now().Add(-time.Hour)

		poolMock.ExpectQuery("SELECT COUNT").
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(2)))
		poolMock.ExpectQuery("SELECT h.hoax_id, h.content, h.created_at").
			WithArgs(10, 0).
			WillReturnRows(pgxmock.NewRows([]string{"hoax_id", "content", "created_at", "user_id", "username", "image"}).
				AddRow(uuid.New(), "the newer hoax", newer, authorId, "testUser", nil).
				AddRow(uuid.New(), "the older hoax", older, authorId, "testUser", nil))

		expect := httpexpect.Default(t, server.URL)
		response := expect.GET("/api/hoaxes").Expect().Status(http.StatusOK)

		body := response.JSON().Object()
		records := body.Value("records").Array()
		records.Length().IsEqual(2)
		records.Value(0).Object().HasValue("content", "the newer hoax")
		body.Value("pagination").Object().
			HasValue("page", 0).
			HasValue("size", 10).
			HasValue("totalRecords", 2).
			HasValue("totalPages", 1)

		require.NoError(t, poolMock.ExpectationsWereMet())
	})

	t.Run("LiveTokenIsRefreshedOnPublicRoute", func(t *testing.T) {
		databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock := setupMocks(t)
		server, poolMock := newTestServer(t, databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock)

		userId := uuid.New()
		// Verification and refresh run even though the listing is public.
		expectVerifiedToken(poolMock, "livetoken", userId, time.Now().Add(-4*24*time.Hour))
		poolMock.ExpectQuery("SELECT COUNT").
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(0)))
		poolMock.ExpectQuery("SELECT h.hoax_id, h.content, h.created_at").
			WithArgs(10, 0).
			WillReturnRows(pgxmock.NewRows([]string{"hoax_id", "content", "created_at", "user_id", "username", "image"}))

		expect := httpexpect.Default(t, server.URL)
		expect.GET("/api/hoaxes").
			WithHeader("Authorization", "Bearer livetoken").
			Expect().Status(http.StatusOK)

		require.NoError(t, poolMock.ExpectationsWereMet())
	})
}

func TestPasswordReset(t *testing.T) {
	t.Run("UnknownEmail", func(t *testing.T) {
		databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock := setupMocks(t)
		server, poolMock := newTestServer(t, databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock)

		poolMock.ExpectBegin()
		poolMock.ExpectQuery("SELECT user_id, username FROM users WHERE email").
			WithArgs("nobody@example.com").
			WillReturnError(pgx.ErrNoRows)
		poolMock.ExpectRollback()

		expect := httpexpect.Default(t, server.URL)
		response := expect.POST("/api/users/password-reset").
			WithJSON(map[string]string{"email": "nobody@example.com"}).
			Expect().Status(http.StatusNotFound)
		response.JSON().Object().Value("error").Object().HasValue("code", "ERR-004")

		require.NoError(t, poolMock.ExpectationsWereMet())
	})

	t.Run("KnownEmail", func(t *testing.T) {
		databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock := setupMocks(t)
		server, poolMock := newTestServer(t, databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock)

		userId := uuid.New()
		poolMock.ExpectBegin()
		poolMock.ExpectQuery("SELECT user_id, username FROM users WHERE email").
			WithArgs("test@example.com").
			WillReturnRows(pgxmock.NewRows([]string{"user_id", "username"}).AddRow(userId, "testUser"))
		poolMock.ExpectExec("UPDATE users SET password_reset_token").
			WithArgs(pgxmock.AnyArg(), userId).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		poolMock.ExpectCommit()

		expect := httpexpect.Default(t, server.URL)
		expect.POST("/api/users/password-reset").
			WithJSON(map[string]string{"email": "test@example.com"}).
			Expect().Status(http.StatusOK)

		mailMgrMock.AssertCalled(t, "SendPasswordResetMail", "test@example.com", "testUser", mock.Anything)
		require.NoError(t, poolMock.ExpectationsWereMet())
	})

	t.Run("MailDispatchFailureRollsBack", func(t *testing.T) {
		databaseMgrMock, tokenMgr, _, imageMgrMock := setupMocks(t)

		mailMgrMock := &mocks.MockMailManager{}
		mailMgrMock.On("SendPasswordResetMail", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("mailgun unavailable"))

		server, poolMock := newTestServer(t, databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock)

		userId := uuid.New()
		poolMock.ExpectBegin()
		poolMock.ExpectQuery("SELECT user_id, username FROM users WHERE email").
			WithArgs("test@example.com").
			WillReturnRows(pgxmock.NewRows([]string{"user_id", "username"}).AddRow(userId, "testUser"))
		poolMock.ExpectExec("UPDATE users SET password_reset_token").
			WithArgs(pgxmock.AnyArg(), userId).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		poolMock.ExpectRollback()

		expect := httpexpect.Default(t, server.URL)
		response := expect.POST("/api/users/password-reset").
			WithJSON(map[string]string{"email": "test@example.com"}).
			Expect().Status(http.StatusBadGateway)
		response.JSON().Object().Value("error").Object().HasValue("code", "ERR-011")

		require.NoError(t, poolMock.ExpectationsWereMet())
	})

	t.Run("ConfirmWithInvalidToken", func(t *testing.T) {
		databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock := setupMocks(t)
		server, poolMock := newTestServer(t, databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock)

		poolMock.ExpectBegin()
		poolMock.ExpectQuery("SELECT user_id FROM users WHERE password_reset_token").
			WithArgs("badtoken").
			WillReturnError(pgx.ErrNoRows)
		poolMock.ExpectRollback()

		expect := httpexpect.Default(t, server.URL)
		response := expect.POST("/api/users/password-reset/confirm").
			WithJSON(map[string]string{"passwordResetToken": "badtoken", "password": "new.Password123"}).
			Expect().Status(http.StatusForbidden)
		response.JSON().Object().Value("error").Object().HasValue("code", "ERR-010")

		require.NoError(t, poolMock.ExpectationsWereMet())
	})

	t.Run("ConfirmDropsSessions", func(t *testing.T) {
		databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock := setupMocks(t)
		server, poolMock := newTestServer(t, databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock)

		userId := uuid.New()
		poolMock.ExpectBegin()
		poolMock.ExpectQuery("SELECT user_id FROM users WHERE password_reset_token").
			WithArgs("goodtoken").
			WillReturnRows(pgxmock.NewRows([]string{"user_id"}).AddRow(userId))
		poolMock.ExpectExec("UPDATE users SET password").
			WithArgs(pgxmock.AnyArg(), userId).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		poolMock.ExpectExec("DELETE FROM session_tokens WHERE user_id").
			WithArgs(userId).
			WillReturnResult(pgxmock.NewResult("DELETE", 2))
		poolMock.ExpectCommit()

		expect := httpexpect.Default(t, server.URL)
		expect.POST("/api/users/password-reset/confirm").
			WithJSON(map[string]string{"passwordResetToken": "goodtoken", "password": "new.Password123"}).
			Expect().Status(http.StatusOK)

		require.NoError(t, poolMock.ExpectationsWereMet())
	})
}

func TestUserDeletion(t *testing.T) {
	t.Run("OwnerViaBearer", func(t *testing.T) {
		databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock := setupMocks(t)
		imageMgrMock.On("DeleteProfileImage", mock.Anything, "stored-image").Return(nil)
		server, poolMock := newTestServer(t, databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock)

		userId := uuid.New()
		expectVerifiedToken(poolMock, "livetoken", userId, time.Now().Add(-time.Hour))

		poolMock.ExpectBegin()
		poolMock.ExpectQuery("SELECT image FROM users").
			WithArgs(userId).
			WillReturnRows(pgxmock.NewRows([]string{"image"}).AddRow(strPtr("stored-image")))
		poolMock.ExpectExec("DELETE FROM session_tokens WHERE user_id").
			WithArgs(userId).
			WillReturnResult(pgxmock.NewResult("DELETE", 2))
		poolMock.ExpectExec("DELETE FROM users").
			WithArgs(userId).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		poolMock.ExpectCommit()

		expect := httpexpect.Default(t, server.URL)
		expect.DELETE("/api/users/"+userId.String()).
			WithHeader("Authorization", "Bearer livetoken").
			Expect().Status(http.StatusNoContent)

		imageMgrMock.AssertCalled(t, "DeleteProfileImage", mock.Anything, "stored-image")
		require.NoError(t, poolMock.ExpectationsWereMet())
	})

	t.Run("NotOwner", func(t *testing.T) {
		databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock := setupMocks(t)
		server, poolMock := newTestServer(t, databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock)

		callerId := uuid.New()
		targetId := uuid.New()
		expectVerifiedToken(poolMock, "livetoken", callerId, time.Now().Add(-time.Hour))

		poolMock.ExpectBegin()
		poolMock.ExpectRollback()

		expect := httpexpect.Default(t, server.URL)
		response := expect.DELETE("/api/users/"+targetId.String()).
			WithHeader("Authorization", "Bearer livetoken").
			Expect().Status(http.StatusForbidden)
		response.JSON().Object().Value("error").Object().HasValue("code", "ERR-008")

		require.NoError(t, poolMock.ExpectationsWereMet())
	})

	t.Run("AnonymousIsForbiddenNotUnauthorized", func(t *testing.T) {
		databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock := setupMocks(t)
		server, poolMock := newTestServer(t, databaseMgrMock, tokenMgr, mailMgrMock, imageMgrMock)

		poolMock.ExpectBegin()
		poolMock.ExpectRollback()

		expect := httpexpect.Default(t, server.URL)
		expect.DELETE("/api/users/" + uuid.New().String()).
			Expect().Status(http.StatusForbidden)

		require.NoError(t, poolMock.ExpectationsWereMet())
	})
}

// expectVerifiedToken queues the two store operations a live token
// verification performs: the lookup and the sliding refresh.
func expectVerifiedToken(poolMock pgxmock.PgxPoolIface, token string, userId uuid.UUID, lastUsed time.Time) {
	poolMock.ExpectQuery("SELECT t.user_id, t.last_used_at").
		WithArgs(token).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "last_used_at", "username", "email", "inactive", "image"}).
			AddRow(userId, lastUsed, "testUser", "test@example.com", false, nil))
	poolMock.ExpectExec("UPDATE session_tokens SET last_used_at").
		WithArgs(pgxmock.AnyArg(), token).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
}

func strPtr(s string) *string {
	return &s
}
