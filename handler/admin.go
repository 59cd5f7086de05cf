package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AshwinGadhvi/BoloForm/service"
)

type AdminHandler struct {
	documents *service.DocumentService
}

func NewAdminHandler(documents *service.DocumentService) *AdminHandler {
	return &AdminHandler{documents: documents}
}

// AuditTrail returns a document's full audit chain in creation order,
// along with the result of verifying its hash links. The chain is
// served even for deleted documents.
func (h *AdminHandler) AuditTrail(c *gin.Context) {
	records, verified, err := h.documents.AuditTrail(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"records":  records,
		"verified": verified,
	})
}
