package controllers

import (
	"dmc-inventory/service"
	"dmc-inventory/utils"

	"github.com/gin-gonic/gin"
)

func reportFilter(c *gin.Context) (service.ReportFilter, error) {
	var f service.ReportFilter
	var err error
	if f.From, err = parseOptionalDate(c.Query("from")); err != nil {
		return f, err
	}
	if f.To, err = parseOptionalDate(c.Query("to")); err != nil {
		return f, err
	}
	f.ItemIDs, err = parseItemIDs(c)
	return f, err
}

func (h *Handler) StockReport(c *gin.Context) {
	ids, err := parseItemIDs(c)
	if err != nil {
		utils.Fail(c, "invalid report filter", err)
		return
	}
	rows, err := h.Reports.CurrentStockReport(c.Request.Context(), ids)
	if err != nil {
		utils.Fail(c, "could not build stock report", err)
		return
	}
	utils.Success(c, "ok", rows)
}

func (h *Handler) IncomingReport(c *gin.Context) {
	f, err := reportFilter(c)
	if err != nil {
		utils.Fail(c, "invalid report filter", err)
		return
	}
	rows, err := h.Reports.IncomingReport(c.Request.Context(), f)
	if err != nil {
		utils.Fail(c, "could not build incoming report", err)
		return
	}
	utils.Success(c, "ok", rows)
}

func (h *Handler) DonationsReport(c *gin.Context) {
	f, err := reportFilter(c)
	if err != nil {
		utils.Fail(c, "invalid report filter", err)
		return
	}
	rows, err := h.Reports.DonationsReport(c.Request.Context(), f)
	if err != nil {
		utils.Fail(c, "could not build donations report", err)
		return
	}
	utils.Success(c, "ok", rows)
}

func (h *Handler) OutgoingReport(c *gin.Context) {
	f, err := reportFilter(c)
	if err != nil {
		utils.Fail(c, "invalid report filter", err)
		return
	}
	rows, err := h.Reports.OutgoingReport(c.Request.Context(), f)
	if err != nil {
		utils.Fail(c, "could not build outgoing report", err)
		return
	}
	utils.Success(c, "ok", rows)
}

func (h *Handler) CarePackageReport(c *gin.Context) {
	f, err := reportFilter(c)
	if err != nil {
		utils.Fail(c, "invalid report filter", err)
		return
	}
	rows, err := h.Reports.CarePackageIssuesReport(c.Request.Context(), f.From, f.To)
	if err != nil {
		utils.Fail(c, "could not build care package report", err)
		return
	}
	utils.Success(c, "ok", rows)
}
