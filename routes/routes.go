package routes

import (
	"github.com/gorilla/mux"

	"studiopm/handlers"
	"studiopm/middleware"
	"studiopm/websocket"
)

// HTTP method constants for better maintainability
var (
	MethodsGetOnly    = []string{"GET", "OPTIONS"}
	MethodsPostOnly   = []string{"POST", "OPTIONS"}
	MethodsPutOnly    = []string{"PUT", "OPTIONS"}
	MethodsDeleteOnly = []string{"DELETE", "OPTIONS"}
)

const (
	PathAPI    = "/api"
	PathHealth = "/health"
)

func RegisterRoutes(r *mux.Router) {
	// ====================
	// HEALTH CHECK (Public)
	// ====================
	r.HandleFunc(PathHealth, handlers.HealthCheck).Methods(MethodsGetOnly...)

	// ====================
	// AUTHENTICATION ROUTES (Public - No auth required)
	// ====================
	r.HandleFunc("/api/auth/register", handlers.Register).Methods(MethodsPostOnly...)
	r.HandleFunc("/api/auth/login", handlers.Login).Methods(MethodsPostOnly...)
	r.HandleFunc("/api/auth/validate", handlers.ValidateToken).Methods(MethodsGetOnly...)

	// Signed file downloads carry their own HMAC, no JWT needed.
	r.HandleFunc("/files/{key:.*}", handlers.ServeFile).Methods(MethodsGetOnly...)

	// Activity feed websocket authenticates via ?token= during the upgrade.
	r.HandleFunc("/ws/activity", websocket.ServeActivityFeed)

	// ====================
	// PROTECTED API ROUTES (Require authentication)
	// ====================
	apiRouter := r.PathPrefix(PathAPI).Subrouter()
	apiRouter.Use(middleware.AuthMiddleware)

	// ====================
	// USER MANAGEMENT
	// ====================
	apiRouter.HandleFunc("/user/me", handlers.GetCurrentUser).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/users", handlers.ListUsers).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/users/invite", handlers.InviteUser).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/users/{id}", handlers.GetUser).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/users/{id}/role", handlers.UpdateUserRole).Methods(MethodsPutOnly...)
	apiRouter.HandleFunc("/users/{id}", handlers.DeleteUser).Methods(MethodsDeleteOnly...)

	// ====================
	// DASHBOARD
	// ====================
	apiRouter.HandleFunc("/dashboard/overview", handlers.GetStudioOverview).Methods(MethodsGetOnly...)

	// ====================
	// PROPOSALS
	// ====================
	apiRouter.HandleFunc("/proposals", handlers.ListProposals).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/proposals", handlers.CreateProposal).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/proposals/{id}", handlers.GetProposal).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/proposals/{id}", handlers.UpdateProposal).Methods(MethodsPutOnly...)
	apiRouter.HandleFunc("/proposals/{id}/review", handlers.ReviewProposal).Methods(MethodsPostOnly...)

	// ====================
	// PROJECTS
	// ====================
	apiRouter.HandleFunc("/projects", handlers.ListProjects).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/projects", handlers.CreateProject).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/projects/{id}", handlers.GetProject).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/projects/{id}/{action:hold|resume|complete|cancel}", handlers.TransitionProject).Methods(MethodsPostOnly...)

	// ====================
	// TASKS
	// ====================
	apiRouter.HandleFunc("/tasks", handlers.ListTasks).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/tasks", handlers.CreateTask).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/tasks/{id}/{action:start|submit|complete}", handlers.TransitionTask).Methods(MethodsPostOnly...)

	// ====================
	// TIMESHEETS
	// ====================
	apiRouter.HandleFunc("/timesheets", handlers.ListTimesheets).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/timesheets", handlers.CreateTimesheet).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/timesheets/{id}", handlers.UpdateTimesheet).Methods(MethodsPutOnly...)
	apiRouter.HandleFunc("/timesheets/{id}/{action:approve|reject}", handlers.ReviewTimesheet).Methods(MethodsPostOnly...)

	// ====================
	// TIME OFF
	// ====================
	apiRouter.HandleFunc("/timeoff", handlers.ListTimeOffRequests).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/timeoff", handlers.CreateTimeOffRequest).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/timeoff/{id}/{action:approve|reject}", handlers.ReviewTimeOffRequest).Methods(MethodsPostOnly...)

	// ====================
	// VARIATIONS
	// ====================
	apiRouter.HandleFunc("/variations", handlers.ListVariations).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/variations", handlers.CreateVariation).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/variations/{id}/{action:approve|reject}", handlers.ReviewVariation).Methods(MethodsPostOnly...)

	// ====================
	// INVOICES
	// ====================
	apiRouter.HandleFunc("/invoices", handlers.ListInvoices).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/invoices", handlers.CreateInvoice).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/invoices/overdue", handlers.ListOverdueInvoices).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/invoices/{id}/{action:send|mark_paid|cancel}", handlers.TransitionInvoice).Methods(MethodsPostOnly...)

	// ====================
	// PAYMENTS
	// ====================
	apiRouter.HandleFunc("/payments", handlers.ListPayments).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/payments", handlers.CreatePayment).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/payments/{id}", handlers.DeletePayment).Methods(MethodsDeleteOnly...)

	// ====================
	// DELIVERABLES
	// ====================
	apiRouter.HandleFunc("/deliverables", handlers.ListDeliverables).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/deliverables", handlers.CreateDeliverable).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/deliverables/{id}/download", handlers.GetDeliverableDownloadURL).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/deliverables/{id}/{action:submit|approve|reject}", handlers.TransitionDeliverable).Methods(MethodsPostOnly...)

	// ====================
	// ACTIVITY LOG
	// ====================
	apiRouter.HandleFunc("/activities", handlers.ListActivities).Methods(MethodsGetOnly...)
}
