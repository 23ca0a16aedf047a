package controllers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"dmc-inventory/apperr"
	"dmc-inventory/service"
	"dmc-inventory/utils"

	"github.com/gin-gonic/gin"
)

type bulkFunc func(ctx context.Context, rows []map[string]string) (service.BulkResult, error)

// MasterHandlers serves list/create/update/deactivate for one master table.
type MasterHandlers[T any, PT interface {
	*T
	service.MasterRecord
}] struct {
	svc   *service.Master[T, PT]
	bulk  bulkFunc
	label string
}

func (m *MasterHandlers[T, PT]) List(c *gin.Context) {
	rows, err := m.svc.List(c.Request.Context(), queryBool(c, "include_inactive"))
	if err != nil {
		utils.Fail(c, "could not list "+m.label+"s", err)
		return
	}
	utils.Success(c, "ok", rows)
}

func (m *MasterHandlers[T, PT]) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	rec, err := m.svc.Get(c.Request.Context(), id)
	if err != nil {
		utils.Fail(c, m.label+" not found", err)
		return
	}
	utils.Success(c, "ok", rec)
}

func (m *MasterHandlers[T, PT]) Create(c *gin.Context) {
	rec := new(T)
	if err := c.ShouldBindJSON(rec); err != nil {
		utils.BadRequest(c, "invalid "+m.label+" payload", err)
		return
	}
	if PT(rec).GetID() != 0 {
		utils.Fail(c, "invalid "+m.label+" payload", apperr.Validation("id is assigned by the server"))
		return
	}
	if err := m.svc.Create(c.Request.Context(), rec); err != nil {
		utils.Fail(c, "could not create "+m.label, err)
		return
	}
	utils.Created(c, m.label+" created", rec)
}

func (m *MasterHandlers[T, PT]) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	rec := new(T)
	if err := c.ShouldBindJSON(rec); err != nil {
		utils.BadRequest(c, "invalid "+m.label+" payload", err)
		return
	}
	out, err := m.svc.Update(c.Request.Context(), id, rec)
	if err != nil {
		utils.Fail(c, "could not update "+m.label, err)
		return
	}
	utils.Success(c, m.label+" updated", out)
}

// Delete deactivates; history keeps pointing at the row.
func (m *MasterHandlers[T, PT]) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok || !confirmed(c) {
		return
	}
	if err := m.svc.SoftDelete(c.Request.Context(), id); err != nil {
		utils.Fail(c, "could not deactivate "+m.label, err)
		return
	}
	utils.Success(c, m.label+" deactivated", gin.H{"id": id})
}

// Bulk accepts a JSON array of objects or a text/csv body with a header row.
func (m *MasterHandlers[T, PT]) Bulk(c *gin.Context) {
	if m.bulk == nil {
		utils.Fail(c, "bulk upload unavailable", apperr.Unsupported("bulk upload is not available for %ss", m.label))
		return
	}
	rows, err := readBulkRows(c)
	if err != nil {
		utils.BadRequest(c, "could not read upload", err)
		return
	}
	res, err := m.bulk(c.Request.Context(), rows)
	if err != nil {
		utils.Fail(c, "bulk upload failed", err)
		return
	}
	utils.Success(c, "bulk upload finished", res)
}

func readBulkRows(c *gin.Context) ([]map[string]string, error) {
	if strings.HasPrefix(c.ContentType(), "text/csv") {
		return utils.ReadCSVRows(c.Request.Body)
	}
	var raw []map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		return nil, err
	}
	rows := make([]map[string]string, len(raw))
	for i, r := range raw {
		rows[i] = make(map[string]string, len(r))
		for k, v := range r {
			rows[i][k] = stringify(v)
		}
	}
	return rows, nil
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	}
	return fmt.Sprint(v)
}
