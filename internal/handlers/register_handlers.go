package handlers

import (
	"github.com/gin-gonic/gin"

	portssvc "github.com/lendcraft/loan_servicing_app/internal/core/ports/services"
)

// callerID identifies the operator for audit fields. Authentication lives in
// an upstream collaborator; it forwards the operator in X-User-ID.
func callerID(c *gin.Context) string {
	if id := c.GetHeader("X-User-ID"); id != "" {
		return id
	}
	return "system"
}

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces.
func RegisterRoutes(r *gin.Engine, services *portssvc.ServiceContainer) {
	registerCustomValidators()

	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	v1 := r.Group("/api/v1")

	registerLoanRoutes(v1, services)
	registerReconciliationRoutes(v1, services.Reconciliation)
	registerBatchRoutes(v1, services.DPD)
}

func registerLoanRoutes(v1 *gin.RouterGroup, services *portssvc.ServiceContainer) {
	loanHandler := NewLoanHandler(services.Loan, services.Lifecycle)
	paymentHandler := NewPaymentHandler(services.Payment)

	loans := v1.Group("/loans")
	{
		loans.POST("/", loanHandler.CreateLoan)
		loans.GET("/:loanID", loanHandler.GetLoan)
		loans.POST("/:loanID/actions", loanHandler.ApplyLifecycleAction)
		loans.POST("/:loanID/payments", paymentHandler.SubmitPayment)
		loans.GET("/:loanID/payments", paymentHandler.ListPayments)
	}
}

func registerReconciliationRoutes(v1 *gin.RouterGroup, reconService portssvc.ReconciliationSvcFacade) {
	reconHandler := NewReconciliationHandler(reconService)

	recon := v1.Group("/reconciliation")
	{
		recon.POST("/batches", reconHandler.IngestBatch)
		recon.GET("/review-queue", reconHandler.ListReviewQueue)
		recon.POST("/records/:recordID/confirm", reconHandler.ConfirmRecord)
		recon.POST("/lock-day", reconHandler.LockDay)
	}
}

func registerBatchRoutes(v1 *gin.RouterGroup, dpdService portssvc.DPDSvcFacade) {
	batch := v1.Group("/batch")
	batch.POST("/dpd", NewBatchHandler(dpdService).TriggerDPDRun)
}
