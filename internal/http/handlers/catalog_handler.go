package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-contact-backend/internal/domain"
)

// ListServices godoc
// @ID          listServices
// @Summary     List selectable services
// @Description Returns the services a visitor can pick on the contact form, in display order.
// @Tags        Catalog
// @Produce     json
// @Success     200  {array}   domain.Service
// @Router      /services [get]
func (h *Handlers) ListServices(c *gin.Context) {
	items := h.subSvc.Services()
	if items == nil {
		items = []domain.Service{}
	}
	ok(c, http.StatusOK, items)
}
