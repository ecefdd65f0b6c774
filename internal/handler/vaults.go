package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vaultshare/internal/engine"
	"vaultshare/internal/repository"
)

type VaultHandler struct {
	Engine *engine.Engine
	Store  repository.Store
}

func (h *VaultHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/investments/:id/:version/vault")
	group.GET("", h.get)
	group.POST("/deposit/native", h.depositNative)
	group.POST("/deposit/token", h.depositToken)
	group.POST("/withdraw", h.withdraw)

	accounts := r.Group("/api/v1/settlement-accounts")
	accounts.POST("", h.registerSettlementAccount)
	accounts.GET("", h.listSettlementAccounts)
}

func (h *VaultHandler) get(c *gin.Context) {
	if h.Store == nil {
		Error(c, http.StatusInternalServerError, "store unavailable", nil)
		return
	}
	id, version := identityParams(c)
	vault, err := h.Store.GetVault(c.Request.Context(), id, version)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if vault == nil {
		Error(c, http.StatusNotFound, "vault not found", nil)
		return
	}
	Ok(c, vault, map[string]any{
		"usdt_display":  displayAmount(vault.UsdtBalance),
		"hcoin_display": displayAmount(vault.HcoinBalance),
	})
}

type depositNativeRequest struct {
	Amount uint64 `json:"amount" binding:"required"`
	Payer  string `json:"payer" binding:"required"`
}

func (h *VaultHandler) depositNative(c *gin.Context) {
	var req depositNativeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	payer, err := parseKey(req.Payer)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid payer: "+err.Error(), nil)
		return
	}

	id, version := identityParams(c)
	vault, err := h.Engine.DepositNative(c.Request.Context(), id, version, req.Amount, payer)
	if err != nil {
		engineError(c, err)
		return
	}
	Ok(c, vault, nil)
}

type depositTokenRequest struct {
	Mint   string `json:"mint" binding:"required"`
	Amount uint64 `json:"amount" binding:"required"`
	Payer  string `json:"payer" binding:"required"`
}

func (h *VaultHandler) depositToken(c *gin.Context) {
	var req depositTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	mint, err := parseKey(req.Mint)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid mint: "+err.Error(), nil)
		return
	}
	payer, err := parseKey(req.Payer)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid payer: "+err.Error(), nil)
		return
	}

	id, version := identityParams(c)
	vault, err := h.Engine.DepositToken(c.Request.Context(), id, version, mint, req.Amount, payer)
	if err != nil {
		engineError(c, err)
		return
	}
	Ok(c, vault, nil)
}

type withdrawRequest struct {
	Recipient string   `json:"recipient" binding:"required"`
	Signers   []string `json:"signers" binding:"required"`
}

func (h *VaultHandler) withdraw(c *gin.Context) {
	var req withdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	recipient, err := parseKey(req.Recipient)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid recipient: "+err.Error(), nil)
		return
	}
	signers, err := parseKeys(req.Signers)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid signers: "+err.Error(), nil)
		return
	}

	id, version := identityParams(c)
	result, err := h.Engine.Withdraw(c.Request.Context(), id, version, recipient, signers)
	if err != nil {
		engineError(c, err)
		return
	}
	Ok(c, result, map[string]any{
		"usdt_display":  displayAmount(result.Usdt),
		"hcoin_display": displayAmount(result.Hcoin),
	})
}

type registerSettlementAccountRequest struct {
	Owner string `json:"owner" binding:"required"`
	Mint  string `json:"mint" binding:"required"`
}

func (h *VaultHandler) registerSettlementAccount(c *gin.Context) {
	var req registerSettlementAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	owner, err := parseKey(req.Owner)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid owner: "+err.Error(), nil)
		return
	}
	mint, err := parseKey(req.Mint)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid mint: "+err.Error(), nil)
		return
	}

	acct, err := h.Engine.RegisterSettlementAccount(c.Request.Context(), owner, mint)
	if err != nil {
		engineError(c, err)
		return
	}
	Ok(c, acct, nil)
}

func (h *VaultHandler) listSettlementAccounts(c *gin.Context) {
	if h.Store == nil {
		Error(c, http.StatusInternalServerError, "store unavailable", nil)
		return
	}
	owner := strings.TrimSpace(c.Query("owner"))
	if owner == "" {
		Error(c, http.StatusBadRequest, "owner query parameter is required", nil)
		return
	}
	items, err := h.Store.ListSettlementAccountsByOwner(c.Request.Context(), owner)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, nil)
}
