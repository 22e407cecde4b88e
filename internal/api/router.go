package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/schoolworks/gradebook/internal/api/handler"
	"github.com/schoolworks/gradebook/internal/api/middleware"
	"github.com/schoolworks/gradebook/internal/core/domain"
	"github.com/schoolworks/gradebook/internal/core/ports"
	"github.com/schoolworks/gradebook/internal/core/service"
)

// Stores bundles the storage backends the router wires into the services.
type Stores struct {
	Accounts ports.AccountStore
	Sessions ports.SessionStore
	Grades   ports.GradeStore
	Audit    ports.AuditStore
	Refs     ports.ReferenceStore
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(stores Stores, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("gradebook"))

	// --- Dependencies ---
	authService := service.NewAuthService(stores.Accounts, stores.Sessions, stores.Refs, stores.Audit, log)
	gradeService := service.NewGradeService(stores.Grades, stores.Refs, stores.Audit, log)
	statsService := service.NewStatsService(stores.Grades, stores.Refs, stores.Audit, log)
	auditService := service.NewAuditService(stores.Audit)

	authHandler := handler.NewAuthHandler(authService)
	gradeHandler := handler.NewGradeHandler(gradeService)
	principalHandler := handler.NewPrincipalHandler(statsService)
	auditHandler := handler.NewAuditHandler(auditService)
	healthHandler := handler.NewHealthHandler()

	authRequired := middleware.Auth(authService)

	// --- Public routes ---
	e.POST("/auth/login", authHandler.Login)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Authenticated, any role ---
	session := e.Group("", authRequired)
	session.POST("/auth/logout", authHandler.Logout)
	session.PUT("/auth/password", authHandler.ChangePassword)

	// --- Student routes ---
	student := e.Group("", authRequired, middleware.RBAC(domain.RoleStudent))
	student.GET("/grades/me", gradeHandler.ListOwn)

	// --- Teacher routes ---
	teacher := e.Group("/teacher", authRequired, middleware.RBAC(domain.RoleTeacher))
	teacher.GET("/grades", gradeHandler.List)
	teacher.PUT("/grades", gradeHandler.Upsert)
	teacher.POST("/grades/import", gradeHandler.Import)
	teacher.POST("/grades/publish", gradeHandler.Publish)
	teacher.GET("/grades/export", gradeHandler.Export)

	// --- Principal routes ---
	principal := e.Group("/principal", authRequired, middleware.RBAC(domain.RolePrincipal))
	principal.GET("/overview", principalHandler.Overview)
	principal.GET("/grades", principalHandler.Details)
	principal.GET("/grades/export", principalHandler.Export)
	e.POST("/auth/password/reset", authHandler.ResetPassword, authRequired, middleware.RBAC(domain.RolePrincipal))

	// --- Audit log (teachers see a filtered view, principals everything) ---
	e.GET("/audit-logs", auditHandler.List, authRequired, middleware.RBAC(domain.RoleTeacher, domain.RolePrincipal))

	return e
}
