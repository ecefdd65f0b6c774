package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vaultshare/internal/engine"
	"vaultshare/internal/models"
	"vaultshare/internal/repository"
)

type DistributionHandler struct {
	Engine *engine.Engine
	Store  repository.Store
}

func (h *DistributionHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/investments/:id/:version/distributions")
	group.POST("/profit/estimate", h.estimateProfit)
	group.POST("/profit/execute", h.executeProfit)
	group.GET("/profit", h.listProfitCaches)
	group.POST("/refund/estimate", h.estimateRefund)
	group.POST("/refund/execute", h.executeRefund)
	group.GET("/refund", h.listRefundCaches)
}

type estimateProfitRequest struct {
	BatchID       uint16   `json:"batch_id"`
	TotalProfit   uint64   `json:"total_profit" binding:"required"`
	TotalInvested uint64   `json:"total_invested" binding:"required"`
	RecordIDs     []uint64 `json:"record_ids" binding:"required"`
	Signer        string   `json:"signer" binding:"required"`
}

func (h *DistributionHandler) estimateProfit(c *gin.Context) {
	var req estimateProfitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	signer, err := parseKey(req.Signer)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid signer: "+err.Error(), nil)
		return
	}

	id, version := identityParams(c)
	cache, err := h.Engine.EstimateProfit(c.Request.Context(), id, version, req.BatchID, req.TotalProfit, req.TotalInvested, req.RecordIDs, signer)
	if err != nil {
		engineError(c, err)
		return
	}
	Ok(c, cache, profitCacheMeta(cache))
}

type executeProfitRequest struct {
	BatchID uint16   `json:"batch_id"`
	Signers []string `json:"signers" binding:"required"`
}

func (h *DistributionHandler) executeProfit(c *gin.Context) {
	var req executeProfitRequest
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
	cache, err := h.Engine.ExecuteProfit(c.Request.Context(), id, version, req.BatchID, signers)
	if err != nil {
		engineError(c, err)
		return
	}
	Ok(c, cache, profitCacheMeta(cache))
}

func (h *DistributionHandler) listProfitCaches(c *gin.Context) {
	if h.Store == nil {
		Error(c, http.StatusInternalServerError, "store unavailable", nil)
		return
	}
	id, version := identityParams(c)
	items, err := h.Store.ListProfitCaches(c.Request.Context(), id, version)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, nil)
}

type estimateRefundRequest struct {
	BatchID   uint16   `json:"batch_id"`
	YearIndex uint8    `json:"year_index" binding:"required"`
	RecordIDs []uint64 `json:"record_ids" binding:"required"`
	Signer    string   `json:"signer" binding:"required"`
}

func (h *DistributionHandler) estimateRefund(c *gin.Context) {
	var req estimateRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	signer, err := parseKey(req.Signer)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid signer: "+err.Error(), nil)
		return
	}

	id, version := identityParams(c)
	cache, err := h.Engine.EstimateRefund(c.Request.Context(), id, version, req.BatchID, req.YearIndex, req.RecordIDs, signer)
	if err != nil {
		engineError(c, err)
		return
	}
	Ok(c, cache, refundCacheMeta(cache))
}

type executeRefundRequest struct {
	BatchID   uint16   `json:"batch_id"`
	YearIndex uint8    `json:"year_index" binding:"required"`
	Signers   []string `json:"signers" binding:"required"`
}

func (h *DistributionHandler) executeRefund(c *gin.Context) {
	var req executeRefundRequest
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
	cache, err := h.Engine.ExecuteRefund(c.Request.Context(), id, version, req.BatchID, req.YearIndex, signers)
	if err != nil {
		engineError(c, err)
		return
	}
	Ok(c, cache, refundCacheMeta(cache))
}

func (h *DistributionHandler) listRefundCaches(c *gin.Context) {
	if h.Store == nil {
		Error(c, http.StatusInternalServerError, "store unavailable", nil)
		return
	}
	id, version := identityParams(c)
	items, err := h.Store.ListRefundCaches(c.Request.Context(), id, version)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, nil)
}

func profitCacheMeta(cache *models.ProfitShareCache) map[string]any {
	return map[string]any{
		"subtotal_usdt_display": displayAmount(cache.SubtotalUsdt),
	}
}

func refundCacheMeta(cache *models.RefundShareCache) map[string]any {
	return map[string]any{
		"subtotal_hcoin_display": displayAmount(cache.SubtotalHcoin),
	}
}
