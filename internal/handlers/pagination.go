package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mnaeem99/econceptions-assignment/internal/services"
)

// pageFromQuery parses page/size/sortBy/direction query parameters; the
// service normalizes whatever comes out.
func pageFromQuery(c *gin.Context) services.PageRequest {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	return services.PageRequest{
		Page:      page,
		Size:      size,
		SortBy:    c.DefaultQuery("sortBy", "created_at"),
		Direction: c.DefaultQuery("direction", "desc"),
	}
}
