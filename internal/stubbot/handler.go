package stubbot

import (
	"net/http"
	"strconv"

	"nof1/dashboard/internal/model"

	"github.com/gin-gonic/gin"
)

// Handler exposes the stub REST surface over the simulated bot
type Handler struct {
	bot *Bot
	hub *Hub
}

// NewHandler creates the stub API handler
func NewHandler(bot *Bot, hub *Hub) *Handler {
	return &Handler{bot: bot, hub: hub}
}

// startRequest mirrors the dashboard's start payload; both fields are
// optional and fall back to the current settings
type startRequest struct {
	Assets   []string `json:"assets"`
	Interval string   `json:"interval"`
}

// rejectRequest carries an optional rejection reason
type rejectRequest struct {
	Reason string `json:"reason"`
}

// Routes registers the REST surface and the push endpoint
func (h *Handler) Routes(r *gin.Engine) {
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "stub trading bot API is running"})
	})

	v1 := r.Group("/api/v1")
	{
		v1.GET("/bot/status", h.getStatus)
		v1.POST("/bot/start", h.startBot)
		v1.POST("/bot/stop", h.stopBot)

		v1.GET("/positions/", h.getPositions)
		v1.POST("/positions/:asset/close", h.closePosition)

		v1.GET("/trades/", h.getTrades)

		v1.GET("/settings/", h.getSettings)
		v1.PUT("/settings/", h.updateSettings)

		v1.POST("/market/refresh", h.refreshMarket)

		v1.GET("/proposals/", h.getProposals)
		v1.POST("/proposals/:id/approve", h.approveProposal)
		v1.POST("/proposals/:id/reject", h.rejectProposal)
	}

	r.GET("/ws", h.hub.ServeWS)
}

func (h *Handler) getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.bot.Status())
}

func (h *Handler) startBot(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	h.bot.Start(req.Assets, req.Interval)
	c.JSON(http.StatusOK, gin.H{"status": "started", "message": "Bot started successfully"})
}

func (h *Handler) stopBot(c *gin.Context) {
	h.bot.Stop()
	c.JSON(http.StatusOK, gin.H{"status": "stopped", "message": "Bot stopped successfully"})
}

func (h *Handler) getPositions(c *gin.Context) {
	c.JSON(http.StatusOK, h.bot.Positions())
}

func (h *Handler) closePosition(c *gin.Context) {
	asset := c.Param("asset")
	ok := h.bot.ClosePosition(asset)
	c.JSON(http.StatusOK, gin.H{"success": ok, "asset": asset})
}

func (h *Handler) getTrades(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	trades := h.bot.Trades(limit, offset, c.Query("asset"), c.Query("action"))
	c.JSON(http.StatusOK, trades)
}

func (h *Handler) getSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.bot.Settings())
}

func (h *Handler) updateSettings(c *gin.Context) {
	var patch model.SettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	h.bot.UpdateSettings(patch)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) refreshMarket(c *gin.Context) {
	h.bot.RefreshMarket()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) getProposals(c *gin.Context) {
	c.JSON(http.StatusOK, h.bot.Proposals())
}

func (h *Handler) approveProposal(c *gin.Context) {
	id := c.Param("id")
	if !h.bot.Approve(id) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Failed to approve proposal or bot not running"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "approved", "id": id})
}

func (h *Handler) rejectProposal(c *gin.Context) {
	id := c.Param("id")
	var req rejectRequest
	_ = c.ShouldBindJSON(&req)
	if req.Reason == "" {
		req.Reason = "User rejected via API"
	}
	if !h.bot.Reject(id, req.Reason) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Failed to reject proposal or bot not running"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "rejected", "id": id})
}
