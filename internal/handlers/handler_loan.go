package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lendcraft/loan_servicing_app/internal/core/domain"
	portssvc "github.com/lendcraft/loan_servicing_app/internal/core/ports/services"
	"github.com/lendcraft/loan_servicing_app/internal/dto"
)

type LoanHandler struct {
	loanService      portssvc.LoanSvcFacade
	lifecycleService portssvc.LifecycleSvcFacade
}

func NewLoanHandler(loanService portssvc.LoanSvcFacade, lifecycleService portssvc.LifecycleSvcFacade) *LoanHandler {
	return &LoanHandler{loanService: loanService, lifecycleService: lifecycleService}
}

// CreateLoan registers a new loan application.
func (h *LoanHandler) CreateLoan(c *gin.Context) {
	var req dto.CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	loan, err := h.loanService.CreateLoan(c.Request.Context(), req, callerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToLoanResponse(loan))
}

// GetLoan returns the loan with its schedule and next-due projection.
func (h *LoanHandler) GetLoan(c *gin.Context) {
	detail, err := h.loanService.GetLoanDetail(c.Request.Context(), c.Param("loanID"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// ApplyLifecycleAction executes one lifecycle transition on the loan.
func (h *LoanHandler) ApplyLifecycleAction(c *gin.Context) {
	var req dto.LifecycleActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	loan, err := h.lifecycleService.Apply(c.Request.Context(), c.Param("loanID"), domain.LifecycleAction(req.Action), callerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToLoanResponse(loan))
}
