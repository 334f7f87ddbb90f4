package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func paginationContext(t *testing.T, rawQuery string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/hoaxes?"+rawQuery, nil)

	return c
}

func TestParsePaginationParams(t *testing.T) {
	tests := []struct {
		name     string
		rawQuery string
		page     int
		size     int
	}{
		{"Defaults", "", 0, 10},
		{"Explicit", "page=3&size=25", 3, 25},
		{"NegativePage", "page=-1", 0, 10},
		{"ZeroSize", "size=0", 0, 10},
		{"SizeClamped", "size=500", 0, 100},
		{"Garbage", "page=abc&size=xyz", 0, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := paginationContext(t, tt.rawQuery)
			page, size := ParsePaginationParams(c)
			assert.Equal(t, tt.page, page)
			assert.Equal(t, tt.size, size)
		})
	}
}

func TestSendPaginatedResponseRoundsPagesUp(t *testing.T) {
	recorder := httptest.NewRecorder()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest("GET", "/api/hoaxes", nil)

	SendPaginatedResponse(c, []string{"a", "b"}, 0, 10, 21)

	assert.Equal(t, 200, recorder.Code)
	assert.JSONEq(t, `{
		"records": ["a", "b"],
		"pagination": {"page": 0, "size": 10, "totalRecords": 21, "totalPages": 3}
	}`, recorder.Body.String())
}
