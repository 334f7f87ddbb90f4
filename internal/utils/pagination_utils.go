// Package utils provides utility functions to support various operations within the application.
package utils

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hoax-server/internal/schemas"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// ParsePaginationParams extracts the 'page' and 'size' parameters from the
// request's query parameters. It provides default values and clamps the size
// so a single request cannot drain the store.
func ParsePaginationParams(ctx *gin.Context) (int, int) {
	pageString := ctx.Query(PageParamKey)
	page, err := strconv.Atoi(pageString)
	if err != nil || page < 0 {
		page = 0
	}

	sizeString := ctx.Query(SizeParamKey)
	size, err := strconv.Atoi(sizeString)
	if err != nil || size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	return page, size
}

// SendPaginatedResponse sends the given page of records together with the
// pagination window describing it.
func SendPaginatedResponse(ctx *gin.Context, records interface{}, page, size int, totalRecords int64) {
	totalPages := totalRecords / int64(size)
	if totalRecords%int64(size) != 0 {
		totalPages++
	}

	response := schemas.PaginatedResponse{
		Records: records,
		Pagination: schemas.Pagination{
			Page:         page,
			Size:         size,
			TotalRecords: totalRecords,
			TotalPages:   totalPages,
		},
	}

	WriteAndLogResponse(ctx, response, http.StatusOK)
}
