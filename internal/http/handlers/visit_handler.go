package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RecordVisit godoc
// @ID          recordVisit
// @Summary     Count a page load
// @Description Increments the visitor's visit counter and returns the previous visit date.
// @Description Returning visitors also get the welcome-back banner text.
// @Tags        Visits
// @Produce     json
//
// @Param       X-Client-ID  header  string  false  "Visitor id"  example(visitor-123)
//
// @Success     200  {object}  domain.Visit
// @Failure     404  {object}  handlers.ErrorResponse  "Visit counter disabled"
// @Router      /visits [get]
func (h *Handlers) RecordVisit(c *gin.Context) {
	if h.Visits == nil {
		Fail(c, http.StatusNotFound, ErrCodeNotFound, "route not found")
		return
	}
	ok(c, http.StatusOK, h.Visits.Record(c.Request.Context(), clientID(c)))
}
