// Package handler implements the back-office HTTP handlers.  Responses use
// the same success/error envelope as the member API so admin tooling can
// share client code.
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func respondSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func respondError(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": msg, "code": code})
}

func respondList(c *gin.Context, items interface{}, total, page, limit int) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    items,
		"meta":    gin.H{"total": total, "page": page, "limit": limit},
	})
}

// adminPagination reads ?page= and ?limit= with back-office bounds: admin
// views page through bigger result sets than the member API, so the default
// and ceiling are higher.
func adminPagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 50
	}
	return
}
