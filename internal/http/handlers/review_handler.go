package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-contact-backend/internal/domain"
)

// ReviewSummary godoc
// @ID          reviewSummary
// @Summary     Render a review confirmation
// @Description Renders the submitted product review carried in the query string and increments the visitor's review counter.
// @Description A missing productName yields found=false with a hint message; the counter is still incremented.
// @Tags        Reviews
// @Produce     json
//
// @Param       X-Client-ID    header  string  false "Visitor id"               example(visitor-123)
// @Param       productName    query   string  false "Reviewed product"
// @Param       installDate    query   string  false "Install date (YYYY-MM-DD)" example(2025-03-04)
// @Param       rating         query   int     false "Rating 0-5"                minimum(0) maximum(5)
// @Param       features       query   []string false "Useful features"          collectionFormat(multi)
// @Param       writtenReview  query   string  false "Free-text review"
// @Param       userName       query   string  false "Reviewer name"
//
// @Success     200  {object}  domain.ReviewSummary
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Router      /reviews/summary [get]
func (h *Handlers) ReviewSummary(c *gin.Context) {
	var q domain.ReviewQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid query")
		return
	}
	ok(c, http.StatusOK, h.revSvc.Summarize(c.Request.Context(), clientID(c), q))
}
