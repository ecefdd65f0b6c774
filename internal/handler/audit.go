package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vaultshare/internal/repository"
)

type AuditHandler struct {
	Store repository.Store
}

func (h *AuditHandler) Register(r *gin.Engine) {
	r.GET("/api/v1/audit-events", h.list)
}

func (h *AuditHandler) list(c *gin.Context) {
	if h.Store == nil {
		Error(c, http.StatusInternalServerError, "store unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 100)
	offset := intQuery(c, "offset", 0)
	asc := strings.EqualFold(strings.TrimSpace(c.Query("order")), "asc")

	params := repository.ListAuditEventsParams{
		Limit:        limit,
		Offset:       offset,
		InvestmentID: stringQueryPtr(c, "investment_id"),
		Version:      stringQueryPtr(c, "version"),
		Action:       stringQueryPtr(c, "action"),
		OrderBy:      "created_at",
		Asc:          boolPtr(asc),
	}
	items, err := h.Store.ListAuditEvents(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	total, err := h.Store.CountAuditEvents(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}
