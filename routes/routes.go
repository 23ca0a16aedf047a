package routes

import (
	"dmc-inventory/controllers"
	"dmc-inventory/middlewares"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, h *controllers.Handler) {
	r.Use(middlewares.RequestID())

	api := r.Group("/api")
	{
		api.POST("/login", h.Login)

		// everything below needs a token once AUTH_SECRET is set
		secured := api.Group("/")
		if h.Auth.Enabled() {
			secured.Use(middlewares.AuthMiddleware([]byte(h.Auth.Secret)))
		}

		// ================= MASTER DATA =================
		items := secured.Group("/items")
		{
			items.GET("", h.Items.List)
			items.GET("/:id", h.Items.Get)
			items.POST("", h.Items.Create)
			items.POST("/bulk", h.Items.Bulk)
			items.PUT("/:id", h.Items.Update)
			items.DELETE("/:id", h.Items.Delete)
		}

		centers := secured.Group("/centers")
		{
			centers.GET("", h.Centers.List)
			centers.GET("/:id", h.Centers.Get)
			centers.POST("", h.Centers.Create)
			centers.POST("/bulk", h.Centers.Bulk)
			centers.PUT("/:id", h.Centers.Update)
			centers.DELETE("/:id", h.Centers.Delete)
		}

		divisions := secured.Group("/divisions")
		{
			divisions.GET("", h.Divisions.List)
			divisions.GET("/:id", h.Divisions.Get)
			divisions.POST("", h.Divisions.Create)
			divisions.POST("/bulk", h.Divisions.Bulk)
			divisions.PUT("/:id", h.Divisions.Update)
			divisions.DELETE("/:id", h.Divisions.Delete)
		}

		// ================= LEDGERS =================
		incoming := secured.Group("/incoming")
		{
			incoming.GET("/suppliers", h.Incoming.Counterparties)
			incoming.GET("/bills", h.Incoming.List)
			incoming.GET("/bills/:id", h.Incoming.Get)
			incoming.POST("/bills", h.Incoming.Create)
			incoming.PUT("/bills/:id", h.Incoming.Update)
			incoming.DELETE("/bills/:id", h.Incoming.Delete)
		}

		donations := secured.Group("/donations")
		{
			donations.GET("/donors", h.Donations.Counterparties)
			donations.GET("/bills", h.Donations.List)
			donations.GET("/bills/:id", h.Donations.Get)
			donations.POST("/bills", h.Donations.Create)
			donations.PUT("/bills/:id", h.Donations.Update)
			donations.DELETE("/bills/:id", h.Donations.Delete)
		}

		outgoing := secured.Group("/outgoing")
		{
			outgoing.GET("/bills", h.Outgoing.List)
			outgoing.GET("/bills/:id", h.Outgoing.Get)
			outgoing.POST("/bills", h.Outgoing.Create)
			outgoing.PUT("/bills/:id", h.Outgoing.Update)
			outgoing.DELETE("/bills/:id", h.Outgoing.Delete)
		}

		// ================= CARE PACKAGES =================
		packages := secured.Group("/care-packages")
		{
			packages.GET("/templates", h.Templates.List)
			packages.GET("/templates/:id", h.GetTemplate)
			packages.POST("/templates", h.Templates.Create)
			packages.PUT("/templates/:id", h.Templates.Update)
			packages.DELETE("/templates/:id", h.Templates.Delete)
			packages.GET("/templates/:id/items", h.ListTemplateItems)
			packages.POST("/templates/:id/items", h.AddTemplateItem)
			packages.POST("/templates/:id/copy-from/:sourceId", h.CopyTemplateItems)

			packages.PUT("/template-items/:id", h.UpdateTemplateItem)
			packages.DELETE("/template-items/:id", h.RemoveTemplateItem)

			packages.GET("/issues", h.ListIssues)
			packages.GET("/issues/:id", h.GetIssue)
			packages.POST("/issues", h.CreateIssue)
			packages.PUT("/issues/:id", h.UpdateIssue)
			packages.DELETE("/issues/:id", h.DeleteIssue)
		}

		// ================= STOCK & REPORTS =================
		stock := secured.Group("/stock")
		{
			stock.GET("", h.GetStock)
			stock.GET("/low", h.GetLowStock)
			stock.GET("/items/:id/history", h.GetItemHistory)
		}

		reports := secured.Group("/reports")
		{
			reports.GET("/stock", h.StockReport)
			reports.GET("/incoming", h.IncomingReport)
			reports.GET("/donations", h.DonationsReport)
			reports.GET("/outgoing", h.OutgoingReport)
			reports.GET("/care-packages", h.CarePackageReport)
		}

		// ================= DATABASE =================
		db := secured.Group("/database")
		{
			db.POST("/export", h.ExportDatabase)
			db.POST("/import", h.ImportDatabase)
			db.GET("/migration", h.MigrationStatus)
			db.POST("/migration", h.RunMigration)
		}
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "DMC inventory API is running"})
	})
}
