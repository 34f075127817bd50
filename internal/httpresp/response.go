package httpresp

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListResponse wraps collection payloads. Limit and Offset are set only for
// paged listings.
type ListResponse[T any] struct {
	Data   []T `json:"data"`
	Total  int `json:"total"`
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// List never renders a null data field.
func List[T any](c *gin.Context, data []T) {
	Page(c, data, 0, 0)
}

// Page reports the window that produced data; Total counts the rows in
// this page, not the whole result set.
func Page[T any](c *gin.Context, data []T, limit, offset int) {
	if data == nil {
		data = []T{}
	}
	c.JSON(http.StatusOK, ListResponse[T]{
		Data:   data,
		Total:  len(data),
		Limit:  limit,
		Offset: offset,
	})
}
