package controllers

import (
	"errors"
	"strings"

	mongo_client "stockanalyzer/clients/mongo"
	"stockanalyzer/services"
	"stockanalyzer/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type WatchlistControllerI interface {
	List(ctx *gin.Context)
	Add(ctx *gin.Context)
	Remove(ctx *gin.Context)
}

type watchlistController struct {
	watchlist services.WatchlistServiceI
}

func NewWatchlistController(watchlist services.WatchlistServiceI) WatchlistControllerI {
	return &watchlistController{watchlist: watchlist}
}

func (w *watchlistController) List(ctx *gin.Context) {
	items, err := w.watchlist.List(ctx)
	if err != nil {
		zap.L().Error("Error while fetching watchlist", zap.Error(err))
		ctx.JSON(500, gin.H{"error": "Failed to load watchlist"})
		return
	}
	ctx.JSON(200, gin.H{"watchlist": items})
}

type addWatchlistRequest struct {
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name"`
	Sector   string  `json:"sector"`
	Industry string  `json:"industry"`
	Score    int     `json:"score"`
	Price    float64 `json:"price"`
}

func (w *watchlistController) Add(ctx *gin.Context) {
	var req addWatchlistRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(400, gin.H{"error": "Invalid request body"})
		return
	}
	if strings.TrimSpace(req.Symbol) == "" {
		ctx.JSON(400, gin.H{"error": "Symbol required"})
		return
	}

	item := types.WatchlistItem{
		Symbol:      req.Symbol,
		Name:        req.Name,
		Sector:      req.Sector,
		Industry:    req.Industry,
		Score:       req.Score,
		PriceAtSave: req.Price,
	}
	if err := w.watchlist.Add(ctx, item); err != nil {
		if errors.Is(err, mongo_client.ErrDuplicate) {
			ctx.JSON(409, gin.H{"error": "Already in watchlist"})
			return
		}
		zap.L().Error("Error while saving watchlist item", zap.Error(err))
		ctx.JSON(500, gin.H{"error": "Failed to save"})
		return
	}
	ctx.JSON(200, gin.H{"success": true, "symbol": strings.ToUpper(req.Symbol)})
}

func (w *watchlistController) Remove(ctx *gin.Context) {
	symbol := strings.TrimSpace(ctx.Query("symbol"))
	if symbol == "" {
		ctx.JSON(400, gin.H{"error": "Symbol required"})
		return
	}

	removed, err := w.watchlist.Remove(ctx, symbol)
	if err != nil {
		zap.L().Error("Error while removing watchlist item", zap.Error(err))
		ctx.JSON(500, gin.H{"error": "Failed to remove"})
		return
	}
	if removed == 0 {
		ctx.JSON(404, gin.H{"error": "Not in watchlist"})
		return
	}
	ctx.JSON(200, gin.H{"success": true})
}
