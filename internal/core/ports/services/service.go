package services

// ServiceContainer bundles the core's service facades for handler wiring.
type ServiceContainer struct {
	Schedule       ScheduleSvcFacade
	Loan           LoanSvcFacade
	Lifecycle      LifecycleSvcFacade
	Payment        PaymentSvcFacade
	DPD            DPDSvcFacade
	Reconciliation ReconciliationSvcFacade
}
