package handlers

import (
	"estatehub/internal/middleware"
	"estatehub/internal/models"

	"github.com/labstack/echo/v4"
)

// API bundles the v1 handlers.
type API struct {
	Profiles    *ProfileHandlers
	Properties  *PropertyHandlers
	Delegation  *DelegationHandlers
	Agents      *AgentHandlers
	KYC         *KYCHandlers
	Onboarding  *OnboardingHandlers
	Leases      *LeaseHandlers
	Maintenance *MaintenanceHandlers
	Messages    *MessageHandlers
	Shortlists  *ShortlistHandlers
}

// RegisterHealth mounts the unauthenticated health probes.
func RegisterHealth(e *echo.Echo, h *HealthHandlers) {
	e.GET("/health", h.HealthCheck)
	e.GET("/health/ready", h.ReadinessCheck)
	e.GET("/health/live", h.LivenessCheck)
	e.GET("/health/detailed", h.DetailedHealthCheck)
}

// Register mounts every v1 route on protected, which must already authenticate and resolve the session.
func (api *API) Register(protected *echo.Group) {
	me := protected.Group("/me")
	me.GET("/profile", api.Profiles.GetMe)
	me.POST("/profile", api.Profiles.CreateMe)
	me.PUT("/profile", api.Profiles.UpdateMe)
	me.DELETE("/profile", api.Profiles.DeactivateMe)
	me.POST("/avatar", api.Profiles.UploadAvatar)
	me.GET("/roles", api.Profiles.MyRoles)
	me.GET("/leases", api.Leases.MyLeases)
	protected.GET("/profiles/:id", api.Profiles.GetProfile)

	admin := protected.Group("/admin", middleware.RequireRole(models.RoleAdmin, models.RoleModerator))
	admin.POST("/users/:id/roles", api.Profiles.AssignRole)
	admin.DELETE("/users/:id/roles", api.Profiles.RevokeRole)
	admin.POST("/kyc/:userId/review", api.KYC.ReviewKYC)

	properties := protected.Group("/properties")
	properties.GET("", api.Properties.ListProperties)
	properties.POST("", api.Properties.CreateProperty)
	properties.GET("/:id", api.Properties.GetProperty)
	properties.PUT("/:id", api.Properties.UpdateProperty)
	properties.DELETE("/:id", api.Properties.DeleteProperty)
	properties.PUT("/:id/status", api.Properties.UpdatePropertyStatus)
	properties.GET("/:id/tenants", api.Properties.CurrentTenants)
	properties.GET("/:id/leases", api.Properties.ListLeases)
	properties.GET("/:id/agents", api.Delegation.ListAgents)
	properties.PUT("/:id/agents", api.Delegation.AssignAgent)
	properties.DELETE("/:id/agents/:agentId", api.Delegation.RemoveAgent)
	properties.GET("/:id/manager", api.Delegation.GetManager)
	properties.PUT("/:id/manager", api.Delegation.AssignManager)
	properties.DELETE("/:id/manager", api.Delegation.RemoveManager)
	properties.GET("/:id/maintenance", api.Maintenance.ListForProperty)
	properties.POST("/:id/maintenance", api.Maintenance.Create)
	properties.POST("/:id/onboard", api.Onboarding.ScanCredential)

	protected.GET("/kyc", api.KYC.GetKYC)
	protected.POST("/kyc", api.KYC.SubmitKYC)

	protected.GET("/onboarding/state", api.Onboarding.State)
	protected.POST("/onboarding/credential", api.Onboarding.IssueCredential, middleware.RequireRole(models.RoleTenant))

	leases := protected.Group("/leases")
	leases.GET("/:id", api.Leases.GetLease)
	leases.PUT("/:id", api.Leases.UpdateLease)
	leases.POST("/:id/end", api.Leases.EndLease)
	leases.GET("/:id/agreement", api.Leases.Agreement)
	leases.GET("/:id/payments", api.Leases.ListPayments)
	protected.POST("/payments/:id/record", api.Leases.RecordPayment)
	protected.POST("/payments/:id/cancel", api.Leases.CancelPayment)

	protected.PUT("/maintenance/:id/status", api.Maintenance.UpdateStatus)
	protected.PUT("/maintenance/:id/vendor", api.Maintenance.AssignVendor)

	agents := protected.Group("/agents/me", middleware.RequireRole(models.RoleAgent))
	agents.GET("/properties", api.Delegation.MyAgentProperties)
	agents.GET("/territories", api.Agents.ListTerritories)
	agents.POST("/territories", api.Agents.AddTerritory)
	agents.PUT("/territories/:id/primary", api.Agents.SetPrimaryTerritory)
	agents.DELETE("/territories/:id", api.Agents.DeleteTerritory)
	agents.GET("/specializations", api.Agents.ListSpecializations)
	agents.PUT("/specializations", api.Agents.UpsertSpecialization)
	agents.DELETE("/specializations/:type", api.Agents.DeleteSpecialization)
	protected.GET("/managers/me/properties", api.Delegation.MyManagedProperties, middleware.RequireRole(models.RoleManager))

	messages := protected.Group("/messages")
	messages.POST("", api.Messages.Send)
	messages.GET("/inbox", api.Messages.Inbox)
	messages.GET("/with/:userId", api.Messages.Conversation)
	messages.POST("/:id/read", api.Messages.MarkRead)

	for _, kind := range []models.ShortlistKind{models.ShortlistComparison, models.ShortlistFavorites} {
		g := protected.Group("/shortlists/" + string(kind))
		g.GET("", api.Shortlists.List(kind))
		g.POST("", api.Shortlists.Add(kind))
		g.DELETE("", api.Shortlists.Clear(kind))
		g.GET("/:propertyId", api.Shortlists.Contains(kind))
		g.DELETE("/:propertyId", api.Shortlists.Remove(kind))
	}
}
