package services

import (
	"github.com/lendcraft/loan_servicing_app/internal/core/domain"
	portsrepo "github.com/lendcraft/loan_servicing_app/internal/core/ports/repositories"
	portssvc "github.com/lendcraft/loan_servicing_app/internal/core/ports/services"
	"github.com/lendcraft/loan_servicing_app/pkg/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Schedule generation is pure and feeds the lifecycle's disbursement step.
	container.Schedule = NewScheduleService()
	container.Loan = NewLoanService(repos.LoanRepo)
	container.Lifecycle = NewLifecycleService(repos.LoanRepo, container.Schedule, cfg)
	container.Payment = NewPaymentService(repos.LoanRepo, repos.PaymentRepo, cfg)
	container.DPD = NewDPDService(repos.LoanRepo, repos.JobRunRepo, domain.DefaultBucketTable(), cfg)
	container.Reconciliation = NewReconciliationService(repos.ReconciliationRepo, repos.PaymentRepo, cfg)

	return container
}

// Compile-time interface checks for the service implementations.
var (
	_ portssvc.ScheduleSvcFacade       = (*scheduleService)(nil)
	_ portssvc.LoanSvcFacade           = (*loanService)(nil)
	_ portssvc.LifecycleSvcFacade      = (*lifecycleService)(nil)
	_ portssvc.PaymentSvcFacade        = (*paymentService)(nil)
	_ portssvc.DPDSvcFacade            = (*dpdService)(nil)
	_ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)
)
