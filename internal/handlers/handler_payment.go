package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/lendcraft/loan_servicing_app/internal/core/ports/services"
	"github.com/lendcraft/loan_servicing_app/internal/dto"
)

type PaymentHandler struct {
	paymentService portssvc.PaymentSvcFacade
}

func NewPaymentHandler(paymentService portssvc.PaymentSvcFacade) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// SubmitPayment allocates one incoming payment against a loan's schedule.
func (h *PaymentHandler) SubmitPayment(c *gin.Context) {
	var req dto.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.paymentService.SubmitPayment(c.Request.Context(), c.Param("loanID"), req, callerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	status := http.StatusCreated
	if result.Duplicate {
		// Idempotent resubmission returns the original allocation.
		status = http.StatusOK
	}
	c.JSON(status, result)
}

// ListPayments returns payments recorded against a loan.
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	payments, err := h.paymentService.GetPaymentsByLoanID(c.Request.Context(), c.Param("loanID"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}
