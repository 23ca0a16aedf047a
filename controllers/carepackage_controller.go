package controllers

import (
	"dmc-inventory/models"
	"dmc-inventory/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ===== Templates =====

// GetTemplate returns the template with its recipe lines.
func (h *Handler) GetTemplate(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	t, err := h.Packages.GetTemplate(c.Request.Context(), id)
	if err != nil {
		utils.Fail(c, "template not found", err)
		return
	}
	utils.Success(c, "ok", t)
}

type templateItemInput struct {
	ItemID             uint            `json:"item_id"`
	QuantityPerPackage decimal.Decimal `json:"quantity_per_package"`
	Remarks            string          `json:"remarks"`
}

func (h *Handler) ListTemplateItems(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	rows, err := h.Packages.ListItems(c.Request.Context(), id)
	if err != nil {
		utils.Fail(c, "could not list template items", err)
		return
	}
	utils.Success(c, "ok", rows)
}

func (h *Handler) AddTemplateItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var in templateItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.BadRequest(c, "invalid template item payload", err)
		return
	}
	ti := models.CarePackageTemplateItem{
		TemplateID:         id,
		ItemID:             in.ItemID,
		QuantityPerPackage: in.QuantityPerPackage,
		Remarks:            in.Remarks,
	}
	if err := h.Packages.AddItem(c.Request.Context(), &ti); err != nil {
		utils.Fail(c, "could not add template item", err)
		return
	}
	utils.Created(c, "template item added", ti)
}

func (h *Handler) UpdateTemplateItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var in templateItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.BadRequest(c, "invalid template item payload", err)
		return
	}
	ti, err := h.Packages.UpdateItem(c.Request.Context(), id, in.QuantityPerPackage, in.Remarks)
	if err != nil {
		utils.Fail(c, "could not update template item", err)
		return
	}
	utils.Success(c, "template item updated", ti)
}

func (h *Handler) RemoveTemplateItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok || !confirmed(c) {
		return
	}
	if err := h.Packages.RemoveItem(c.Request.Context(), id); err != nil {
		utils.Fail(c, "could not remove template item", err)
		return
	}
	utils.Success(c, "template item removed", gin.H{"id": id})
}

// CopyTemplateItems appends the recipe of :sourceId to :id.
func (h *Handler) CopyTemplateItems(c *gin.Context) {
	target, ok := parseID(c, "id")
	if !ok {
		return
	}
	source, ok := parseID(c, "sourceId")
	if !ok {
		return
	}
	n, err := h.Packages.CopyAllItems(c.Request.Context(), source, target)
	if err != nil {
		utils.Fail(c, "could not copy template items", err)
		return
	}
	utils.Success(c, "template items copied", gin.H{"copied": n})
}

// ===== Issues =====

type issueInput struct {
	TemplateID     uint                 `json:"template_id"`
	IssueDate      string               `json:"issue_date"`
	PackagesIssued decimal.Decimal      `json:"packages_issued"`
	RecipientType  models.RecipientType `json:"recipient_type"`
	CenterID       *uint                `json:"center_id"`
	DivisionID     *uint                `json:"division_id"`
	OfficerName    string               `json:"officer_name"`
	OfficerNIC     string               `json:"officer_nic"`
	Remarks        string               `json:"remarks"`
}

func bindIssue(c *gin.Context) (*models.CarePackageIssue, bool) {
	var in issueInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.BadRequest(c, "invalid issue payload", err)
		return nil, false
	}
	d, err := parseOptionalDate(in.IssueDate)
	if err != nil {
		utils.Fail(c, "invalid issue payload", err)
		return nil, false
	}
	return &models.CarePackageIssue{
		TemplateID:     in.TemplateID,
		IssueDate:      d,
		PackagesIssued: in.PackagesIssued,
		RecipientType:  in.RecipientType,
		CenterID:       in.CenterID,
		DivisionID:     in.DivisionID,
		OfficerName:    in.OfficerName,
		OfficerNIC:     in.OfficerNIC,
		Remarks:        in.Remarks,
	}, true
}

func (h *Handler) ListIssues(c *gin.Context) {
	rows, err := h.Packages.ListIssues(c.Request.Context())
	if err != nil {
		utils.Fail(c, "could not list issues", err)
		return
	}
	utils.Success(c, "ok", rows)
}

func (h *Handler) GetIssue(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	is, err := h.Packages.GetIssue(c.Request.Context(), id)
	if err != nil {
		utils.Fail(c, "issue not found", err)
		return
	}
	utils.Success(c, "ok", is)
}

func (h *Handler) CreateIssue(c *gin.Context) {
	is, ok := bindIssue(c)
	if !ok {
		return
	}
	if err := h.Packages.CreateIssue(c.Request.Context(), is); err != nil {
		utils.Fail(c, "could not record issue", err)
		return
	}
	utils.Created(c, "care packages issued", is)
}

func (h *Handler) UpdateIssue(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	is, ok := bindIssue(c)
	if !ok {
		return
	}
	if err := h.Packages.UpdateIssue(c.Request.Context(), id, is); err != nil {
		utils.Fail(c, "could not update issue", err)
		return
	}
	utils.Success(c, "issue updated", is)
}

func (h *Handler) DeleteIssue(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok || !confirmed(c) {
		return
	}
	if err := h.Packages.DeleteIssue(c.Request.Context(), id); err != nil {
		utils.Fail(c, "could not delete issue", err)
		return
	}
	utils.Success(c, "issue deleted", gin.H{"id": id})
}
