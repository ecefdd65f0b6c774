package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vaultshare/internal/engine"
	"vaultshare/internal/repository"
)

type RecordHandler struct {
	Engine *engine.Engine
	Store  repository.Store
}

func (h *RecordHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/investments/:id/:version/records")
	group.POST("", h.add)
	group.GET("", h.list)
	group.POST("/rebind", h.rebindWallet)
	group.POST("/revoke", h.revoke)
}

type addRecordRequest struct {
	BatchID     uint16   `json:"batch_id"`
	RecordID    uint64   `json:"record_id" binding:"required"`
	AccountID   string   `json:"account_id" binding:"required"`
	Wallet      string   `json:"wallet" binding:"required"`
	AmountUsdt  uint64   `json:"amount_usdt"`
	AmountHcoin uint64   `json:"amount_hcoin"`
	Stage       uint8    `json:"stage" binding:"required"`
	Signers     []string `json:"signers" binding:"required"`
}

func (h *RecordHandler) add(c *gin.Context) {
	var req addRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	wallet, err := parseKey(req.Wallet)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid wallet: "+err.Error(), nil)
		return
	}
	signers, err := parseKeys(req.Signers)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid signers: "+err.Error(), nil)
		return
	}

	id, version := identityParams(c)
	rec, err := h.Engine.AddRecord(c.Request.Context(), engine.AddRecordParams{
		InvestmentID: id,
		Version:      version,
		BatchID:      req.BatchID,
		RecordID:     req.RecordID,
		AccountID:    strings.TrimSpace(req.AccountID),
		Wallet:       wallet,
		AmountUsdt:   req.AmountUsdt,
		AmountHcoin:  req.AmountHcoin,
		Stage:        req.Stage,
		Signers:      signers,
	})
	if err != nil {
		engineError(c, err)
		return
	}
	Ok(c, rec, nil)
}

func (h *RecordHandler) list(c *gin.Context) {
	if h.Store == nil {
		Error(c, http.StatusInternalServerError, "store unavailable", nil)
		return
	}
	id, version := identityParams(c)
	limit := intQuery(c, "limit", 100)
	offset := intQuery(c, "offset", 0)

	var batchID *uint16
	if raw := intQuery(c, "batch_id", -1); raw >= 0 {
		v := uint16(raw)
		batchID = &v
	}
	includeRevoked := false
	if ptr := boolQueryPtr(c, "include_revoked"); ptr != nil {
		includeRevoked = *ptr
	}

	params := repository.ListRecordsParams{
		Limit:          limit,
		Offset:         offset,
		InvestmentID:   id,
		Version:        version,
		BatchID:        batchID,
		AccountID:      stringQueryPtr(c, "account_id"),
		IncludeRevoked: includeRevoked,
		OrderBy:        "record_id",
		Asc:            boolPtr(true),
	}
	items, err := h.Store.ListRecords(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	total, err := h.Store.CountRecords(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}

type rebindWalletRequest struct {
	AccountID string   `json:"account_id" binding:"required"`
	NewWallet string   `json:"new_wallet" binding:"required"`
	RecordIDs []uint64 `json:"record_ids" binding:"required"`
	Signers   []string `json:"signers" binding:"required"`
}

func (h *RecordHandler) rebindWallet(c *gin.Context) {
	var req rebindWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	wallet, err := parseKey(req.NewWallet)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid wallet: "+err.Error(), nil)
		return
	}
	signers, err := parseKeys(req.Signers)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid signers: "+err.Error(), nil)
		return
	}

	id, version := identityParams(c)
	updated, err := h.Engine.RebindWallet(c.Request.Context(), id, version, strings.TrimSpace(req.AccountID), wallet, req.RecordIDs, signers)
	if err != nil {
		engineError(c, err)
		return
	}
	Ok(c, map[string]any{"updated": updated}, nil)
}

type revokeRecordRequest struct {
	BatchID   uint16   `json:"batch_id"`
	RecordID  uint64   `json:"record_id" binding:"required"`
	AccountID string   `json:"account_id" binding:"required"`
	Signers   []string `json:"signers" binding:"required"`
}

func (h *RecordHandler) revoke(c *gin.Context) {
	var req revokeRecordRequest
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
	if err := h.Engine.RevokeRecord(c.Request.Context(), id, version, req.BatchID, req.RecordID, strings.TrimSpace(req.AccountID), signers); err != nil {
		engineError(c, err)
		return
	}
	Ok(c, map[string]any{"record_id": req.RecordID, "revoked": true}, nil)
}
