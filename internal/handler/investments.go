package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vaultshare/internal/engine"
	"vaultshare/internal/repository"
)

type InvestmentHandler struct {
	Engine *engine.Engine
	Store  repository.Store
}

func (h *InvestmentHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/investments")
	group.POST("", h.initialize)
	group.GET("", h.list)
	group.GET("/:id/:version", h.get)
	group.PATCH("/:id/:version", h.update)
	group.POST("/:id/:version/complete", h.complete)
	group.POST("/:id/:version/deactivate", h.deactivate)
	group.POST("/:id/:version/whitelists/execute", h.patchExecuteList)
	group.POST("/:id/:version/whitelists/update", h.patchUpdateList)
	group.PUT("/:id/:version/whitelists/withdraw", h.replaceWithdrawList)
}

type initializeRequest struct {
	InvestmentID      string               `json:"investment_id" binding:"required"`
	Version           string               `json:"version" binding:"required"`
	Type              string               `json:"type" binding:"required"`
	StageSchedule     engine.StageSchedule `json:"stage_schedule"`
	StartAt           int64                `json:"start_at"`
	EndAt             int64                `json:"end_at"`
	UpperLimit        uint64               `json:"upper_limit"`
	ExecuteWhitelist  []string             `json:"execute_whitelist" binding:"required"`
	UpdateWhitelist   []string             `json:"update_whitelist" binding:"required"`
	WithdrawWhitelist []string             `json:"withdraw_whitelist" binding:"required"`
	Payer             string               `json:"payer" binding:"required"`
}

func (h *InvestmentHandler) initialize(c *gin.Context) {
	var req initializeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	executeList, err := parseKeys(req.ExecuteWhitelist)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid execute whitelist: "+err.Error(), nil)
		return
	}
	updateList, err := parseKeys(req.UpdateWhitelist)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid update whitelist: "+err.Error(), nil)
		return
	}
	withdrawList, err := parseKeys(req.WithdrawWhitelist)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid withdraw whitelist: "+err.Error(), nil)
		return
	}
	payer, err := parseKey(req.Payer)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid payer: "+err.Error(), nil)
		return
	}

	inv, err := h.Engine.InitializeInvestment(c.Request.Context(), engine.InitializeParams{
		InvestmentID:      strings.TrimSpace(req.InvestmentID),
		Version:           strings.TrimSpace(req.Version),
		Type:              strings.TrimSpace(req.Type),
		Schedule:          req.StageSchedule,
		StartAt:           req.StartAt,
		EndAt:             req.EndAt,
		UpperLimit:        req.UpperLimit,
		ExecuteWhitelist:  executeList,
		UpdateWhitelist:   updateList,
		WithdrawWhitelist: withdrawList,
		Payer:             payer,
	})
	if err != nil {
		engineError(c, err)
		return
	}
	Ok(c, inv, nil)
}

func (h *InvestmentHandler) list(c *gin.Context) {
	if h.Store == nil {
		Error(c, http.StatusInternalServerError, "store unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)
	orderBy := parseOrder(c.Query("sort_by"), map[string]string{
		"created_at": "created_at",
		"updated_at": "updated_at",
		"state":      "state",
	})
	asc := strings.EqualFold(strings.TrimSpace(c.Query("order")), "asc")

	params := repository.ListInvestmentsParams{
		Limit:   limit,
		Offset:  offset,
		State:   stringQueryPtr(c, "state"),
		Type:    stringQueryPtr(c, "type"),
		Active:  boolQueryPtr(c, "active"),
		OrderBy: orderBy,
		Asc:     boolPtr(asc),
	}
	items, err := h.Store.ListInvestments(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	total, err := h.Store.CountInvestments(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}

func (h *InvestmentHandler) get(c *gin.Context) {
	if h.Store == nil {
		Error(c, http.StatusInternalServerError, "store unavailable", nil)
		return
	}
	id, version := identityParams(c)
	inv, err := h.Store.GetInvestment(c.Request.Context(), id, version)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if inv == nil {
		Error(c, http.StatusNotFound, "investment not found", nil)
		return
	}
	Ok(c, inv, nil)
}

type updateRequest struct {
	UpperLimit    *uint64               `json:"upper_limit"`
	StageSchedule *engine.StageSchedule `json:"stage_schedule"`
	Signers       []string              `json:"signers" binding:"required"`
}

func (h *InvestmentHandler) update(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	signers, err := parseKeys(req.Signers)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid signers: "+err.Error(), nil)
		return
	}
	id, version := identityParams(c)
	inv, err := h.Engine.UpdateInvestment(c.Request.Context(), engine.UpdateParams{
		InvestmentID: id,
		Version:      version,
		UpperLimit:   req.UpperLimit,
		Schedule:     req.StageSchedule,
		Signers:      signers,
	})
	if err != nil {
		engineError(c, err)
		return
	}
	Ok(c, inv, nil)
}

type signersRequest struct {
	Signers []string `json:"signers" binding:"required"`
}

func (h *InvestmentHandler) complete(c *gin.Context) {
	var req signersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	signers, err := parseKeys(req.Signers)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid signers: "+err.Error(), nil)
		return
	}
	id, version := identityParams(c)
	inv, err := h.Engine.CompleteInvestment(c.Request.Context(), id, version, signers)
	if err != nil {
		engineError(c, err)
		return
	}
	Ok(c, inv, nil)
}

func (h *InvestmentHandler) deactivate(c *gin.Context) {
	var req signersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	signers, err := parseKeys(req.Signers)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid signers: "+err.Error(), nil)
		return
	}
	id, version := identityParams(c)
	inv, err := h.Engine.DeactivateInvestment(c.Request.Context(), id, version, signers)
	if err != nil {
		engineError(c, err)
		return
	}
	Ok(c, inv, nil)
}

type patchListRequest struct {
	From    string   `json:"from" binding:"required"`
	To      string   `json:"to" binding:"required"`
	Signers []string `json:"signers" binding:"required"`
}

func (h *InvestmentHandler) patchExecuteList(c *gin.Context) {
	h.patchList(c, engine.ExecuteList)
}

func (h *InvestmentHandler) patchUpdateList(c *gin.Context) {
	h.patchList(c, engine.UpdateList)
}

func (h *InvestmentHandler) patchList(c *gin.Context, kind engine.WhitelistKind) {
	var req patchListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	from, err := parseKey(req.From)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid from address: "+err.Error(), nil)
		return
	}
	to, err := parseKey(req.To)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid to address: "+err.Error(), nil)
		return
	}
	signers, err := parseKeys(req.Signers)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid signers: "+err.Error(), nil)
		return
	}

	id, version := identityParams(c)
	var inv any
	if kind == engine.ExecuteList {
		inv, err = h.Engine.PatchExecuteList(c.Request.Context(), id, version, from, to, signers)
	} else {
		inv, err = h.Engine.PatchUpdateList(c.Request.Context(), id, version, from, to, signers)
	}
	if err != nil {
		engineError(c, err)
		return
	}
	Ok(c, inv, nil)
}

type replaceWithdrawRequest struct {
	Members []string `json:"members" binding:"required"`
	Signers []string `json:"signers" binding:"required"`
}

func (h *InvestmentHandler) replaceWithdrawList(c *gin.Context) {
	var req replaceWithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	members, err := parseKeys(req.Members)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid members: "+err.Error(), nil)
		return
	}
	signers, err := parseKeys(req.Signers)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid signers: "+err.Error(), nil)
		return
	}
	id, version := identityParams(c)
	inv, err := h.Engine.ReplaceWithdrawList(c.Request.Context(), id, version, members, signers)
	if err != nil {
		engineError(c, err)
		return
	}
	Ok(c, inv, nil)
}
