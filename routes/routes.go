package routes

import (
	"stockanalyzer/controllers"

	"github.com/gin-gonic/gin"
)

// Controllers bundles every handler group the router mounts.
type Controllers struct {
	Health    controllers.HealthControllerI
	Stocks    controllers.StockControllerI
	Watchlist controllers.WatchlistControllerI
	Recommend controllers.RecommendControllerI
	Files     controllers.FileControllerI
}

func Routes(r *gin.Engine, c Controllers) {

	v1 := r.Group("/api")

	{
		v1.GET("/health", c.Health.IsRunning)
		v1.GET("/keepServerRunning", c.Health.IsRunning)

		v1.GET("/analyze/:symbol", c.Stocks.Analyze)
		v1.GET("/quote/:symbol", c.Stocks.Quote)
		v1.GET("/scan", c.Stocks.Scan)
		v1.GET("/discover", c.Stocks.Discover)
		v1.GET("/performance/:symbol", c.Stocks.Performance)
		v1.GET("/search/:query", c.Stocks.Search)
		v1.GET("/tickers", c.Stocks.Tickers)

		v1.GET("/watchlist", c.Watchlist.List)
		v1.POST("/watchlist", c.Watchlist.Add)
		v1.DELETE("/watchlist", c.Watchlist.Remove)

		v1.POST("/recommend", c.Recommend.Recommend)
		v1.POST("/uploadXlsx", c.Files.ParseXLSXFile)
	}
}
