// Package handlers contains the gin route handlers for the user and hoax services.
package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"hoax-server/internal/managers"
	"hoax-server/internal/schemas"
	"hoax-server/internal/utils"
	"hoax-server/internal/validators"
)

type UserHdl interface {
	RegisterUser(c *gin.Context)
	ActivateUser(c *gin.Context)
	LoginUser(c *gin.Context)
	LogoutUser(c *gin.Context)
	GetUser(c *gin.Context)
	ListUsers(c *gin.Context)
	UpdateUser(c *gin.Context)
	DeleteUser(c *gin.Context)
	RequestPasswordReset(c *gin.Context)
	SetNewPassword(c *gin.Context)
}

type UserHandler struct {
	DatabaseManager managers.DatabaseMgr
	TokenManager    managers.TokenMgr
	MailManager     managers.MailMgr
	ImageManager    managers.ImageMgr
}

func NewUserHandler(databaseManager managers.DatabaseMgr, tokenManager managers.TokenMgr, mailManager managers.MailMgr, imageManager managers.ImageMgr) UserHdl {
	return &UserHandler{
		DatabaseManager: databaseManager,
		TokenManager:    tokenManager,
		MailManager:     mailManager,
		ImageManager:    imageManager,
	}
}

var errNotEntitled = errors.New("principal not entitled")

// RegisterUser registers a new user and mails the activation token. The user
// row and the mail dispatch share one transaction: a failed dispatch rolls
// the registration back.
func (handler *UserHandler) RegisterUser(c *gin.Context) {
	tx := utils.BeginTransaction(c, handler.DatabaseManager.GetPool())
	if tx == nil {
		return
	}
	var err error
	defer func() { utils.RollbackTransaction(c, tx, err) }()

	registrationRequest := c.MustGet(utils.SanitizedPayloadKey.String()).(*schemas.RegistrationRequest)

	if !validators.GetValidator().VerifyEmail(registrationRequest.Email) {
		err = errors.New("email not reachable")
		utils.WriteAndLogError(c, schemas.EmailUnreachable, http.StatusBadRequest, err)
		return
	}

	if err = checkUsernameEmailTaken(c, tx, registrationRequest.Username, registrationRequest.Email); err != nil {
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(registrationRequest.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteAndLogError(c, schemas.InternalServerError, http.StatusInternalServerError, err)
		return
	}

	userId := uuid.New()
	activationToken, err := generateOneTimeToken()
	if err != nil {
		utils.WriteAndLogError(c, schemas.InternalServerError, http.StatusInternalServerError, err)
		return
	}

	queryString := "INSERT INTO users (user_id, username, email, password, inactive, activation_token, created_at) VALUES ($1, $2, $3, $4, TRUE, $5, $6)"
	if _, err = tx.Exec(c, queryString, userId, registrationRequest.Username, registrationRequest.Email, hashedPassword, activationToken, time.Now()); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = handler.MailManager.SendActivationMail(registrationRequest.Email, registrationRequest.Username, activationToken); err != nil {
		utils.WriteAndLogError(c, schemas.EmailNotSent, http.StatusBadGateway, err)
		return
	}

	if err = utils.CommitTransaction(c, tx); err != nil {
		return
	}

	userDto := &schemas.UserDTO{
		ID:       userId.String(),
		Username: registrationRequest.Username,
		Email:    registrationRequest.Email,
	}
	utils.WriteAndLogResponse(c, userDto, http.StatusCreated)
}

// ActivateUser consumes the activation token from the path and flips the
// account to active. An unknown or already consumed token is a no-op failure.
func (handler *UserHandler) ActivateUser(c *gin.Context) {
	token := c.Param(utils.TokenKey)

	queryString := "UPDATE users SET inactive = FALSE, activation_token = NULL WHERE activation_token = $1 AND inactive = TRUE"
	tag, err := handler.DatabaseManager.GetPool().Exec(c, queryString, token)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if tag.RowsAffected() == 0 {
		utils.WriteAndLogError(c, schemas.InvalidActivationToken, http.StatusBadRequest, errors.New("activation token not found"))
		return
	}

	utils.WriteAndLogResponse(c, gin.H{"message": "Account activated"}, http.StatusOK)
}

// LoginUser verifies the credentials and issues a fresh session token.
func (handler *UserHandler) LoginUser(c *gin.Context) {
	loginRequest := c.MustGet(utils.SanitizedPayloadKey.String()).(*schemas.LoginRequest)

	var userId uuid.UUID
	var username, password string
	var inactive bool
	var image *string

	queryString := "SELECT user_id, username, password, inactive, image FROM users WHERE email = $1"
	row := handler.DatabaseManager.GetPool().QueryRow(c, queryString, loginRequest.Email)
	if err := row.Scan(&userId, &username, &password, &inactive, &image); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(c, schemas.InvalidCredentials, http.StatusUnauthorized, err)
			return
		}
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(password), []byte(loginRequest.Password)); err != nil {
		utils.WriteAndLogError(c, schemas.InvalidCredentials, http.StatusUnauthorized, err)
		return
	}

	if inactive {
		utils.WriteAndLogError(c, schemas.UserNotActivated, http.StatusForbidden, errors.New("account not activated"))
		return
	}

	token, err := handler.TokenManager.CreateToken(c, userId)
	if err != nil {
		utils.WriteAndLogError(c, schemas.InternalServerError, http.StatusInternalServerError, err)
		return
	}

	loginDto := &schemas.LoginDTO{
		ID:       userId.String(),
		Username: username,
		Image:    image,
		Token:    token,
	}
	utils.WriteAndLogResponse(c, loginDto, http.StatusOK)
}

// LogoutUser deletes the session token the request was authenticated with.
func (handler *UserHandler) LogoutUser(c *gin.Context) {
	principal := utils.GetPrincipal(c)
	if !principal.IsBearer() {
		utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, errors.New("no authenticated principal"))
		return
	}

	token := c.GetString(utils.BearerTokenKey.String())
	if err := handler.TokenManager.DeleteToken(c, token); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetUser returns the profile of the active user specified in the path.
func (handler *UserHandler) GetUser(c *gin.Context) {
	userId, err := uuid.Parse(c.Param(utils.UserIdKey))
	if err != nil {
		utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, err)
		return
	}

	userDto := &schemas.UserDTO{ID: userId.String()}

	queryString := "SELECT username, email, image FROM users WHERE user_id = $1 AND inactive = FALSE"
	row := handler.DatabaseManager.GetPool().QueryRow(c, queryString, userId)
	if err := row.Scan(&userDto.Username, &userDto.Email, &userDto.Image); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(c, schemas.UserNotFound, http.StatusNotFound, err)
			return
		}
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	utils.WriteAndLogResponse(c, userDto, http.StatusOK)
}

// ListUsers returns a page of active users. The authenticated caller is
// excluded from their own listing.
func (handler *UserHandler) ListUsers(c *gin.Context) {
	page, size := utils.ParsePaginationParams(c)

	// uuid.Nil never matches a stored user, so anonymous callers see everyone.
	callerId := uuid.Nil
	if principal := utils.GetPrincipal(c); principal.IsBearer() {
		callerId = *principal.User.ID
	}

	var totalRecords int64
	countString := "SELECT COUNT(*) FROM users WHERE inactive = FALSE AND user_id <> $1"
	if err := handler.DatabaseManager.GetPool().QueryRow(c, countString, callerId).Scan(&totalRecords); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	queryString := "SELECT user_id, username, email, image FROM users WHERE inactive = FALSE AND user_id <> $1 ORDER BY username LIMIT $2 OFFSET $3"
	rows, err := handler.DatabaseManager.GetPool().Query(c, queryString, callerId, size, page*size)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}
	defer rows.Close()

	users := make([]schemas.UserDTO, 0)
	for rows.Next() {
		var userId uuid.UUID
		userDto := schemas.UserDTO{}
		if err := rows.Scan(&userId, &userDto.Username, &userDto.Email, &userDto.Image); err != nil {
			utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
			return
		}
		userDto.ID = userId.String()
		users = append(users, userDto)
	}

	utils.SendPaginatedResponse(c, users, page, size, totalRecords)
}

// UpdateUser changes the username and optionally the profile image of the
// user specified in the path. Only the owner may update, authenticated either
// with a live bearer token or with basic credentials.
func (handler *UserHandler) UpdateUser(c *gin.Context) {
	targetId, err := uuid.Parse(c.Param(utils.UserIdKey))
	if err != nil {
		utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, err)
		return
	}

	updateRequest := c.MustGet(utils.SanitizedPayloadKey.String()).(*schemas.UserUpdateRequest)

	tx := utils.BeginTransaction(c, handler.DatabaseManager.GetPool())
	if tx == nil {
		return
	}
	defer func() { utils.RollbackTransaction(c, tx, err) }()

	if err = handler.requireOwner(c, tx, targetId); err != nil {
		return
	}

	var oldImage *string
	queryString := "SELECT image FROM users WHERE user_id = $1"
	if err = tx.QueryRow(c, queryString, targetId).Scan(&oldImage); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	newImage := oldImage
	if updateRequest.Image != "" {
		var filename string
		filename, err = handler.ImageManager.StoreProfileImage(c, targetId, updateRequest.Image)
		if err != nil {
			utils.WriteAndLogError(c, schemas.InternalServerError, http.StatusInternalServerError, err)
			return
		}
		newImage = &filename
	}

	queryString = "UPDATE users SET username = $1, image = $2 WHERE user_id = $3"
	if _, err = tx.Exec(c, queryString, updateRequest.Username, newImage, targetId); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(c, tx); err != nil {
		return
	}

	if oldImage != nil && newImage != oldImage {
		if deleteErr := handler.ImageManager.DeleteProfileImage(c, *oldImage); deleteErr != nil {
			utils.LogMessageWithFieldsAndError(c, "warn", "Error deleting replaced profile image", deleteErr)
		}
	}

	userDto := &schemas.UserDTO{
		ID:       targetId.String(),
		Username: updateRequest.Username,
		Image:    newImage,
	}
	utils.WriteAndLogResponse(c, userDto, http.StatusOK)
}

// DeleteUser removes the user specified in the path together with every owned
// session token, hoax and the stored profile image. Only the owner may delete.
func (handler *UserHandler) DeleteUser(c *gin.Context) {
	targetId, err := uuid.Parse(c.Param(utils.UserIdKey))
	if err != nil {
		utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, err)
		return
	}

	tx := utils.BeginTransaction(c, handler.DatabaseManager.GetPool())
	if tx == nil {
		return
	}
	defer func() { utils.RollbackTransaction(c, tx, err) }()

	if err = handler.requireOwner(c, tx, targetId); err != nil {
		return
	}

	var image *string
	queryString := "SELECT image FROM users WHERE user_id = $1"
	if err = tx.QueryRow(c, queryString, targetId).Scan(&image); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	// Owned rows cascade on the user delete, the explicit token sweep keeps
	// the token store authoritative even without foreign key support. It runs
	// on the pool, outside the transaction: a rolled back delete leaves the
	// sessions revoked, which only forces a re-login.
	if err = handler.TokenManager.DeleteTokensForUser(c, targetId); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	queryString = "DELETE FROM users WHERE user_id = $1"
	if _, err = tx.Exec(c, queryString, targetId); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(c, tx); err != nil {
		return
	}

	if image != nil {
		if deleteErr := handler.ImageManager.DeleteProfileImage(c, *image); deleteErr != nil {
			utils.LogMessageWithFieldsAndError(c, "warn", "Error deleting profile image", deleteErr)
		}
	}

	c.Status(http.StatusNoContent)
}

// RequestPasswordReset generates a reset token for the given email and mails
// it. The token write and the mail dispatch share one transaction.
func (handler *UserHandler) RequestPasswordReset(c *gin.Context) {
	resetRequest := c.MustGet(utils.SanitizedPayloadKey.String()).(*schemas.PasswordResetRequest)

	tx := utils.BeginTransaction(c, handler.DatabaseManager.GetPool())
	if tx == nil {
		return
	}
	var err error
	defer func() { utils.RollbackTransaction(c, tx, err) }()

	var userId uuid.UUID
	var username string
	queryString := "SELECT user_id, username FROM users WHERE email = $1"
	if err = tx.QueryRow(c, queryString, resetRequest.Email).Scan(&userId, &username); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(c, schemas.UserNotFound, http.StatusNotFound, err)
			return
		}
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	resetToken, err := generateOneTimeToken()
	if err != nil {
		utils.WriteAndLogError(c, schemas.InternalServerError, http.StatusInternalServerError, err)
		return
	}

	queryString = "UPDATE users SET password_reset_token = $1 WHERE user_id = $2"
	if _, err = tx.Exec(c, queryString, resetToken, userId); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = handler.MailManager.SendPasswordResetMail(resetRequest.Email, username, resetToken); err != nil {
		utils.WriteAndLogError(c, schemas.EmailNotSent, http.StatusBadGateway, err)
		return
	}

	if err = utils.CommitTransaction(c, tx); err != nil {
		return
	}

	utils.WriteAndLogResponse(c, gin.H{"message": "Password reset email sent"}, http.StatusOK)
}

// SetNewPassword consumes a reset token and stores the new password hash.
// Every session token of the user is dropped so stolen sessions die with the
// old password. Proving control of the mailbox also activates the account.
func (handler *UserHandler) SetNewPassword(c *gin.Context) {
	passwordRequest := c.MustGet(utils.SanitizedPayloadKey.String()).(*schemas.SetNewPasswordRequest)

	tx := utils.BeginTransaction(c, handler.DatabaseManager.GetPool())
	if tx == nil {
		return
	}
	var err error
	defer func() { utils.RollbackTransaction(c, tx, err) }()

	var userId uuid.UUID
	queryString := "SELECT user_id FROM users WHERE password_reset_token = $1"
	if err = tx.QueryRow(c, queryString, passwordRequest.PasswordResetToken).Scan(&userId); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(c, schemas.InvalidPasswordResetToken, http.StatusForbidden, err)
			return
		}
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(passwordRequest.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteAndLogError(c, schemas.InternalServerError, http.StatusInternalServerError, err)
		return
	}

	queryString = "UPDATE users SET password = $1, password_reset_token = NULL, inactive = FALSE, activation_token = NULL WHERE user_id = $2"
	if _, err = tx.Exec(c, queryString, hashedPassword, userId); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	// Runs on the pool, outside the transaction: a rolled back password change
	// leaves the sessions revoked, which only forces a re-login.
	if err = handler.TokenManager.DeleteTokensForUser(c, userId); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(c, tx); err != nil {
		return
	}

	utils.WriteAndLogResponse(c, gin.H{"message": "Password updated"}, http.StatusOK)
}

// requireOwner ensures the request principal is the owner of the targeted
// account. Bearer principals must carry the target id; basic candidates are
// looked up by email and verified against the stored hash and active status.
// Any mismatch answers 403 without revealing whether the target exists.
func (handler *UserHandler) requireOwner(c *gin.Context, tx pgx.Tx, targetId uuid.UUID) error {
	principal := utils.GetPrincipal(c)

	switch {
	case principal.IsBearer():
		if *principal.User.ID == targetId {
			return nil
		}

	case principal.IsBasic():
		var userId uuid.UUID
		var password string
		var inactive bool

		queryString := "SELECT user_id, password, inactive FROM users WHERE email = $1"
		err := tx.QueryRow(c, queryString, principal.Email).Scan(&userId, &password, &inactive)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
			return err
		}

		if err == nil && !inactive && userId == targetId {
			if bcrypt.CompareHashAndPassword([]byte(password), []byte(principal.Password)) == nil {
				return nil
			}
		}
	}

	utils.WriteAndLogError(c, schemas.Forbidden, http.StatusForbidden, errNotEntitled)
	return errNotEntitled
}

// checkUsernameEmailTaken checks if the username or email is taken.
func checkUsernameEmailTaken(c *gin.Context, tx pgx.Tx, username, email string) error {
	queryString := "SELECT username, email FROM users WHERE username = $1 OR email = $2"
	rows, err := tx.Query(c, queryString, username, email)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return err
	}
	defer rows.Close()

	if rows.Next() {
		var foundUsername, foundEmail string
		if err := rows.Scan(&foundUsername, &foundEmail); err != nil {
			utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
			return err
		}

		customErr := schemas.EmailTaken
		if foundUsername == username {
			customErr = schemas.UsernameTaken
		}

		err = errors.New("username or email taken")
		utils.WriteAndLogError(c, customErr, http.StatusConflict, err)
		return err
	}

	if err = rows.Err(); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return err
	}

	return nil
}

// generateOneTimeToken returns a random 32 character hex string used for
// activation and password reset tokens.
func generateOneTimeToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
