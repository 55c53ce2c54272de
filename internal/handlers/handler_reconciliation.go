package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lendcraft/loan_servicing_app/internal/core/domain"
	portssvc "github.com/lendcraft/loan_servicing_app/internal/core/ports/services"
	"github.com/lendcraft/loan_servicing_app/internal/dto"
)

type ReconciliationHandler struct {
	reconService portssvc.ReconciliationSvcFacade
}

func NewReconciliationHandler(reconService portssvc.ReconciliationSvcFacade) *ReconciliationHandler {
	return &ReconciliationHandler{reconService: reconService}
}

// IngestBatch matches an externally supplied bank-statement batch.
func (h *ReconciliationHandler) IngestBatch(c *gin.Context) {
	var req dto.StatementBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lines := make([]domain.StatementLine, len(req.Lines))
	for i, line := range req.Lines {
		lines[i] = domain.StatementLine{
			Amount:          line.Amount,
			ExternalRef:     line.ExternalRef,
			TransactionDate: line.TransactionDate,
			Narration:       line.Narration,
		}
	}
	summary, err := h.reconService.IngestStatementBatch(c.Request.Context(), lines, callerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, summary)
}

// ConfirmRecord promotes a matched record to RECONCILED.
func (h *ReconciliationHandler) ConfirmRecord(c *gin.Context) {
	record, err := h.reconService.ConfirmRecord(c.Request.Context(), c.Param("recordID"), callerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// LockDay locks all reconciled records for one calendar day.
func (h *ReconciliationHandler) LockDay(c *gin.Context) {
	var req dto.LockDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	day, err := time.Parse("2006-01-02", req.Day)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "day must be in YYYY-MM-DD form"})
		return
	}
	locked, err := h.reconService.LockDay(c.Request.Context(), day, callerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"day": req.Day, "recordsLocked": locked})
}

// ListReviewQueue returns records awaiting human confirmation.
func (h *ReconciliationHandler) ListReviewQueue(c *gin.Context) {
	records, err := h.reconService.ListReviewQueue(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}
