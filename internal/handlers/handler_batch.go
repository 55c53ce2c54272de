package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/lendcraft/loan_servicing_app/internal/core/ports/services"
)

type BatchHandler struct {
	dpdService portssvc.DPDSvcFacade
}

func NewBatchHandler(dpdService portssvc.DPDSvcFacade) *BatchHandler {
	return &BatchHandler{dpdService: dpdService}
}

// TriggerDPDRun starts the daily DPD/bucket batch. The scheduler collaborator
// calls this once a day; repeated triggers are absorbed by the run record.
func (h *BatchHandler) TriggerDPDRun(c *gin.Context) {
	summary, err := h.dpdService.RunDailyUpdate(c.Request.Context(), time.Now(), callerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
