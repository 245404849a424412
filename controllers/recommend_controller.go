package controllers

import (
	"math"
	"time"

	"stockanalyzer/services"
	"stockanalyzer/types"

	"github.com/gin-gonic/gin"
)

type RecommendControllerI interface {
	Recommend(ctx *gin.Context)
}

type recommendController struct {
	recommender services.RecommendServiceI
}

func NewRecommendController(recommender services.RecommendServiceI) RecommendControllerI {
	return &recommendController{recommender: recommender}
}

type recommendRequest struct {
	Watchlist []types.WatchlistItem `json:"watchlist"`
}

// Recommend generates personalized picks from the posted watchlist. An
// empty watchlist is not an error, just nothing to work with yet.
func (r *recommendController) Recommend(ctx *gin.Context) {
	var req recommendRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(400, gin.H{"error": "Invalid request body"})
		return
	}

	if len(req.Watchlist) == 0 {
		ctx.JSON(200, gin.H{
			"recommendations": []types.RecommendationPick{},
			"message":         "Save some stocks first — we'll find Rule #1 quality picks based on your watchlist.",
			"profile":         nil,
		})
		return
	}

	picks, profile, analyzed := r.recommender.Recommend(ctx, req.Watchlist)
	ctx.JSON(200, gin.H{
		"recommendations": picks,
		"profile": gin.H{
			"top_sectors":     profile.TopSectors,
			"avg_score":       math.Round(profile.AvgScore),
			"watchlist_count": profile.Count,
		},
		"analyzed":  analyzed,
		"timestamp": time.Now().UTC(),
	})
}
