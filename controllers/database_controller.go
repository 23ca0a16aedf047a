package controllers

import (
	"errors"
	"strings"

	"dmc-inventory/migration"
	"dmc-inventory/utils"

	"github.com/gin-gonic/gin"
)

type pathInput struct {
	Path string `json:"path" binding:"required"`
}

func bindPath(c *gin.Context) (string, bool) {
	var in pathInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.BadRequest(c, "a file path is required", err)
		return "", false
	}
	return strings.TrimSpace(in.Path), true
}

// ExportDatabase copies the database file to the given path.
func (h *Handler) ExportDatabase(c *gin.Context) {
	dst, ok := bindPath(c)
	if !ok {
		return
	}
	if err := h.Store.Export(c.Request.Context(), dst); err != nil {
		utils.Fail(c, "export failed", err)
		return
	}
	h.Log.Printf("database: exported to %s", dst)
	utils.Success(c, "database exported", gin.H{"path": dst})
}

// ImportDatabase replaces the database with the given file after backing up
// the current one.
func (h *Handler) ImportDatabase(c *gin.Context) {
	if !confirmed(c) {
		return
	}
	src, ok := bindPath(c)
	if !ok {
		return
	}
	backup, err := h.Store.Import(c.Request.Context(), src)
	if err != nil {
		utils.Fail(c, "import failed", err)
		return
	}
	h.invalidateCaches()
	h.Log.Printf("database: imported %s, previous file kept at %s", src, backup)
	utils.Success(c, "database imported", gin.H{"path": src, "backup_path": backup})
}

func (h *Handler) MigrationStatus(c *gin.Context) {
	needed, err := migration.Needed(c.Request.Context(), h.Store)
	if err != nil {
		utils.Fail(c, "could not inspect database", err)
		return
	}
	utils.Success(c, "ok", gin.H{"needed": needed})
}

// RunMigration regroups legacy ledger rows into bills.
func (h *Handler) RunMigration(c *gin.Context) {
	if !confirmed(c) {
		return
	}
	res, err := migration.Run(c.Request.Context(), h.Store, h.Log)
	if errors.Is(err, migration.ErrNotNeeded) {
		utils.Success(c, "nothing to migrate", gin.H{"needed": false})
		return
	}
	if err != nil {
		utils.Fail(c, "migration failed", err)
		return
	}
	h.invalidateCaches()
	utils.Success(c, "migration finished", res)
}
