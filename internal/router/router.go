package router

import (
	"github.com/oetzilabs/ciftlikpdf/internal/config"
	"github.com/oetzilabs/ciftlikpdf/internal/handler"
	"github.com/oetzilabs/ciftlikpdf/internal/middleware"
	"github.com/oetzilabs/ciftlikpdf/internal/models"
	"github.com/oetzilabs/ciftlikpdf/internal/pdfconv"
	"github.com/oetzilabs/ciftlikpdf/internal/storage"
	"github.com/oetzilabs/ciftlikpdf/internal/store"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Setup wires stores, handlers and middleware into the Gin engine. The
// object store and converter client are passed in so tests can swap fakes.
func Setup(cfg *config.Config, db *gorm.DB, objects storage.ObjectStore, converter pdfconv.Converter) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	sponsors := store.NewSponsorStore(db)
	donations := store.NewDonationStore(db)
	templates := store.NewTemplateStore(db, objects)
	users := store.NewUserStore(db)
	sessions := store.NewSessionStore(db)
	adminRequests := store.NewAdminRequestStore(db)
	pdfs := store.NewPDFService(sponsors, donations, templates, objects, converter)

	authHandler := handler.NewAuthHandler(users, sessions, cfg.JWT.Secret, cfg.JWT.ExpireHours,
		cfg.Session.CookieName, cfg.Session.TTLHours)
	sponsorHandler := handler.NewSponsorHandler(sponsors, donations)
	pdfHandler := handler.NewPDFHandler(pdfs, donations)
	templateHandler := handler.NewTemplateHandler(templates)
	superadminHandler := handler.NewSuperadminHandler(users, adminRequests)
	exportHandler := handler.NewExportHandler(sponsors)

	// public
	r.POST("/auth", authHandler.Login)
	r.POST("/register", authHandler.Register)
	r.POST("/v2/auth", authHandler.LoginV2)

	// v2: cookie-session strategy, never mixed with JWT routes
	v2 := r.Group("/v2")
	v2.Use(middleware.SessionMiddleware(cfg.Session.CookieName, sessions))
	v2.GET("/session", authHandler.Session)
	v2.POST("/logout", authHandler.LogoutV2)

	// JWT-protected API
	protected := r.Group("")
	protected.Use(
		middleware.AuthMiddleware(cfg.JWT.Secret, db),
		middleware.AuditMiddleware(db),
	)

	protected.GET("/session", authHandler.Session)

	// reads: any signed-in role
	protected.GET("/sponsors", sponsorHandler.List)
	protected.GET("/sponsors/without-deleted", sponsorHandler.ListWithoutDeleted)
	protected.GET("/sponsors/count", sponsorHandler.Count)
	protected.GET("/sponsors/:id", sponsorHandler.Get)
	protected.GET("/sponsors/by-name", sponsorHandler.GetByName)
	protected.GET("/sponsor/:id/donations", sponsorHandler.Donations)
	protected.GET("/search", sponsorHandler.Search)
	protected.GET("/pdfs/all", pdfHandler.All)
	protected.POST("/pdfs/download-url/:id", pdfHandler.DownloadURL)
	protected.GET("/templates", templateHandler.List)
	protected.GET("/templates/default", templateHandler.Default)
	protected.GET("/export/xlsx", exportHandler.ExportXLSX)
	protected.POST("/admin-requests", superadminHandler.CreateAdminRequest)

	// mutations: admin and up
	admin := protected.Group("")
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	admin.POST("/sponsors", sponsorHandler.Create)
	admin.POST("/sponsors/with-donation", sponsorHandler.CreateWithDonation)
	admin.PUT("/sponsors/:id", sponsorHandler.Update)
	admin.DELETE("/sponsors/:id", sponsorHandler.Remove)
	admin.POST("/sponsor/:id/donate", sponsorHandler.Donate)
	admin.PUT("/sponsor/:id/donate/:did", sponsorHandler.UpdateDonation)
	admin.PATCH("/sponsor/:id/donate/:did/amount", sponsorHandler.UpdateDonationAmount)
	admin.DELETE("/sponsor/:id/donate/:did", sponsorHandler.RemoveDonation)
	admin.DELETE("/pdfs/by-key", pdfHandler.DeleteByKey)
	admin.DELETE("/pdfs/:id", pdfHandler.Delete)
	admin.POST("/templates", templateHandler.Create)
	admin.POST("/templates/upload-url", templateHandler.UploadURL)
	admin.POST("/templates/:id/set-default", templateHandler.SetDefault)
	admin.DELETE("/templates/:id", templateHandler.Remove)
	admin.POST("/templates/sync", templateHandler.Sync)

	// user management: superadmin only
	superadmin := protected.Group("/superadmin")
	superadmin.Use(middleware.RequireRole(models.RoleSuperadmin))
	superadmin.GET("/users", superadminHandler.ListUsers)
	superadmin.PUT("/users/:id/role", superadminHandler.SetRole)
	superadmin.PUT("/admin-requests/:id", superadminHandler.ResolveAdminRequest)

	protected.GET("/admin-requests",
		middleware.RequireRole(models.RoleSuperadmin),
		superadminHandler.ListAdminRequests)

	return r
}
