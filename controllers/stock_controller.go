package controllers

import (
	"dmc-inventory/utils"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetStock(c *gin.Context) {
	rows, err := h.Stock.GetCurrent(c.Request.Context())
	if err != nil {
		utils.Fail(c, "could not compute stock", err)
		return
	}
	utils.Success(c, "ok", rows)
}

func (h *Handler) GetLowStock(c *gin.Context) {
	rows, err := h.Stock.GetLowStock(c.Request.Context())
	if err != nil {
		utils.Fail(c, "could not compute stock", err)
		return
	}
	utils.Success(c, "ok", rows)
}

func (h *Handler) GetItemHistory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	rows, err := h.Stock.GetItemHistory(c.Request.Context(), id)
	if err != nil {
		utils.Fail(c, "could not load item history", err)
		return
	}
	utils.Success(c, "ok", rows)
}
