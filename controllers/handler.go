package controllers

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"dmc-inventory/apperr"
	"dmc-inventory/config"
	"dmc-inventory/models"
	"dmc-inventory/service"
	"dmc-inventory/store"
	"dmc-inventory/utils"

	"github.com/gin-gonic/gin"
)

// Handler holds every service the HTTP API calls into.
type Handler struct {
	Store *store.Store
	Auth  config.Auth
	Log   *log.Logger
	Now   func() time.Time

	Items     *MasterHandlers[models.Item, *models.Item]
	Centers   *MasterHandlers[models.Center, *models.Center]
	Divisions *MasterHandlers[models.Division, *models.Division]
	Templates *MasterHandlers[models.CarePackageTemplate, *models.CarePackageTemplate]

	Incoming  *IncomingHandlers
	Donations *DonationHandlers
	Outgoing  *OutgoingHandlers

	Packages *service.CarePackages
	Stock    *service.Stock
	Reports  service.Service
}

// NewHandler builds the services on top of st. A positive cacheTTL turns on
// the master list caches.
func NewHandler(st *store.Store, auth config.Auth, cacheTTL time.Duration, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.New(os.Stdout, "[dmc] ", log.LstdFlags)
	}

	items := service.NewItemStore(st)
	centers := service.NewCenterStore(st)
	divisions := service.NewDivisionStore(st)
	packages := service.NewCarePackages(st)

	items.Cache = service.NewListCache[models.Item](cacheTTL)
	centers.Cache = service.NewListCache[models.Center](cacheTTL)
	divisions.Cache = service.NewListCache[models.Division](cacheTTL)
	packages.Templates.Cache = service.NewListCache[models.CarePackageTemplate](cacheTTL)

	importer := &service.Importer{Items: items, Centers: centers, Divisions: divisions}

	return &Handler{
		Store: st,
		Auth:  auth,
		Log:   logger,
		Now:   time.Now,

		Items:     &MasterHandlers[models.Item, *models.Item]{svc: items, bulk: importer.ImportItems, label: "item"},
		Centers:   &MasterHandlers[models.Center, *models.Center]{svc: centers, bulk: importer.ImportCenters, label: "center"},
		Divisions: &MasterHandlers[models.Division, *models.Division]{svc: divisions, bulk: importer.ImportDivisions, label: "GN division"},
		Templates: &MasterHandlers[models.CarePackageTemplate, *models.CarePackageTemplate]{svc: packages.Templates, label: "care package template"},

		Incoming:  &IncomingHandlers{ledger: service.NewIncomingLedger(st), decode: billInput.incoming},
		Donations: &DonationHandlers{ledger: service.NewDonationLedger(st), decode: billInput.donation},
		Outgoing:  &OutgoingHandlers{ledger: service.NewOutgoingLedger(st), decode: billInput.outgoing},

		Packages: packages,
		Stock:    service.NewStock(st),
		Reports:  service.NewService(st),
	}
}

// ===== helpers =====

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.BadRequest(c, "invalid "+name, err)
		return 0, false
	}
	return uint(id), true
}

// confirmed guards destructive routes; the caller must pass confirm=true.
func confirmed(c *gin.Context) bool {
	if ok, _ := strconv.ParseBool(c.Query("confirm")); ok {
		return true
	}
	utils.Fail(c, "confirmation required", apperr.Validation("add ?confirm=true to perform this operation"))
	return false
}

func queryBool(c *gin.Context, key string) bool {
	ok, _ := strconv.ParseBool(c.Query(key))
	return ok
}

// parseItemIDs reads item_ids=1,2,3 (or repeated item_ids params).
func parseItemIDs(c *gin.Context) ([]uint, error) {
	var ids []uint
	for _, raw := range c.QueryArray("item_ids") {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseUint(part, 10, 64)
			if err != nil {
				return nil, apperr.Validation("invalid item id %q", part)
			}
			ids = append(ids, uint(id))
		}
	}
	return ids, nil
}

func parseOptionalDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := utils.ParseDate(s)
	if err != nil {
		return time.Time{}, apperr.Validation("%v", err)
	}
	return t, nil
}

// invalidateCaches drops every master list cache; used after the whole
// database changed underneath the services.
func (h *Handler) invalidateCaches() {
	h.Items.svc.Cache.Invalidate()
	h.Centers.svc.Cache.Invalidate()
	h.Divisions.svc.Cache.Invalidate()
	h.Templates.svc.Cache.Invalidate()
}
