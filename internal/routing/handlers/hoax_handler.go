package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"hoax-server/internal/managers"
	"hoax-server/internal/schemas"
	"hoax-server/internal/utils"
)

type HoaxHdl interface {
	CreateHoax(c *gin.Context)
	GetHoaxes(c *gin.Context)
	GetHoaxesForUser(c *gin.Context)
	DeleteHoax(c *gin.Context)
}

type HoaxHandler struct {
	DatabaseManager managers.DatabaseMgr
}

func NewHoaxHandler(databaseManager managers.DatabaseMgr) HoaxHdl {
	return &HoaxHandler{
		DatabaseManager: databaseManager,
	}
}

// CreateHoax stores a new hoax authored by the authenticated user.
func (handler *HoaxHandler) CreateHoax(c *gin.Context) {
	principal := utils.GetPrincipal(c)
	if !principal.IsBearer() {
		utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, errors.New("no authenticated principal"))
		return
	}

	createRequest := c.MustGet(utils.SanitizedPayloadKey.String()).(*schemas.CreateHoaxRequest)

	hoaxId := uuid.New()
	createdAt := time.Now()

	queryString := "INSERT INTO hoaxes (hoax_id, user_id, content, created_at) VALUES ($1, $2, $3, $4)"
	if _, err := handler.DatabaseManager.GetPool().Exec(c, queryString, hoaxId, principal.User.ID, createRequest.Content, createdAt); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	hoaxDto := &schemas.HoaxDTO{
		HoaxId:       hoaxId.String(),
		Content:      createRequest.Content,
		CreationDate: createdAt.Format(time.RFC3339),
		Author: schemas.AuthorDTO{
			UserId:   principal.User.ID.String(),
			Username: principal.User.Username,
			Image:    principal.User.Image,
		},
	}
	utils.WriteAndLogResponse(c, hoaxDto, http.StatusCreated)
}

// GetHoaxes returns a page of hoaxes, newest first.
func (handler *HoaxHandler) GetHoaxes(c *gin.Context) {
	page, size := utils.ParsePaginationParams(c)

	var totalRecords int64
	countString := "SELECT COUNT(*) FROM hoaxes"
	if err := handler.DatabaseManager.GetPool().QueryRow(c, countString).Scan(&totalRecords); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	queryString := "SELECT h.hoax_id, h.content, h.created_at, u.user_id, u.username, u.image " +
		"FROM hoaxes h JOIN users u ON u.user_id = h.user_id " +
		"ORDER BY h.created_at DESC, h.hoax_id LIMIT $1 OFFSET $2"
	rows, err := handler.DatabaseManager.GetPool().Query(c, queryString, size, page*size)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}
	defer rows.Close()

	hoaxes, err := scanHoaxRows(rows)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	utils.SendPaginatedResponse(c, hoaxes, page, size, totalRecords)
}

// GetHoaxesForUser returns a page of the given user's hoaxes, newest first.
func (handler *HoaxHandler) GetHoaxesForUser(c *gin.Context) {
	userId, err := uuid.Parse(c.Param(utils.UserIdKey))
	if err != nil {
		utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, err)
		return
	}

	page, size := utils.ParsePaginationParams(c)

	var exists bool
	queryString := "SELECT EXISTS(SELECT 1 FROM users WHERE user_id = $1 AND inactive = FALSE)"
	if err := handler.DatabaseManager.GetPool().QueryRow(c, queryString, userId).Scan(&exists); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}
	if !exists {
		utils.WriteAndLogError(c, schemas.UserNotFound, http.StatusNotFound, errors.New("user not found"))
		return
	}

	var totalRecords int64
	countString := "SELECT COUNT(*) FROM hoaxes WHERE user_id = $1"
	if err := handler.DatabaseManager.GetPool().QueryRow(c, countString, userId).Scan(&totalRecords); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	queryString = "SELECT h.hoax_id, h.content, h.created_at, u.user_id, u.username, u.image " +
		"FROM hoaxes h JOIN users u ON u.user_id = h.user_id WHERE h.user_id = $1 " +
		"ORDER BY h.created_at DESC, h.hoax_id LIMIT $2 OFFSET $3"
	rows, err := handler.DatabaseManager.GetPool().Query(c, queryString, userId, size, page*size)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}
	defer rows.Close()

	hoaxes, err := scanHoaxRows(rows)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	utils.SendPaginatedResponse(c, hoaxes, page, size, totalRecords)
}

// DeleteHoax removes the hoax specified in the path. Only the author may delete.
func (handler *HoaxHandler) DeleteHoax(c *gin.Context) {
	principal := utils.GetPrincipal(c)
	if !principal.IsBearer() {
		utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, errors.New("no authenticated principal"))
		return
	}

	hoaxId, err := uuid.Parse(c.Param(utils.HoaxIdKey))
	if err != nil {
		utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, err)
		return
	}

	var authorId uuid.UUID
	queryString := "SELECT user_id FROM hoaxes WHERE hoax_id = $1"
	if err := handler.DatabaseManager.GetPool().QueryRow(c, queryString, hoaxId).Scan(&authorId); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(c, schemas.HoaxNotFound, http.StatusNotFound, err)
			return
		}
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if authorId != *principal.User.ID {
		utils.WriteAndLogError(c, schemas.Forbidden, http.StatusForbidden, errors.New("not the author"))
		return
	}

	queryString = "DELETE FROM hoaxes WHERE hoax_id = $1"
	if _, err := handler.DatabaseManager.GetPool().Exec(c, queryString, hoaxId); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func scanHoaxRows(rows pgx.Rows) ([]schemas.HoaxDTO, error) {
	hoaxes := make([]schemas.HoaxDTO, 0)

	for rows.Next() {
		var hoaxId, authorId uuid.UUID
		var createdAt time.Time
		hoaxDto := schemas.HoaxDTO{}

		if err := rows.Scan(&hoaxId, &hoaxDto.Content, &createdAt, &authorId, &hoaxDto.Author.Username, &hoaxDto.Author.Image); err != nil {
			return nil, err
		}

		hoaxDto.HoaxId = hoaxId.String()
		hoaxDto.CreationDate = createdAt.Format(time.RFC3339)
		hoaxDto.Author.UserId = authorId.String()
		hoaxes = append(hoaxes, hoaxDto)
	}

	return hoaxes, rows.Err()
}
