package handlers

import "github.com/gin-gonic/gin"

// Handlers groups the API v1 handlers.
type Handlers struct {
	Lands     *LandHandler
	LandCodes *LandCodeHandler
	Purchases *PurchaseHandler
	Ledger    *LedgerHandler
}

// Register mounts the API v1 routes on v1.
func (h Handlers) Register(v1 *gin.RouterGroup) {
	lands := v1.Group("/lands")
	{
		lands.POST("", h.Lands.Create)
		lands.GET("", h.Lands.List)
		lands.GET("/:id", h.Lands.Get)
		lands.PATCH("/:id", h.Lands.Update)
		lands.PATCH("/:id/verification", h.Lands.UpdateAsVerifier)
		lands.POST("/:id/verification", h.Lands.Transition)
		lands.DELETE("/:id", h.Lands.Delete)
		lands.GET("/:id/ledger", h.Ledger.ByLand)
	}

	codes := v1.Group("/land-codes")
	{
		codes.POST("/generate", h.LandCodes.Generate)
		codes.GET("", h.LandCodes.List)
		codes.GET("/stats", h.LandCodes.Stats)
		codes.GET("/:id", h.LandCodes.Get)
		codes.PATCH("/:id", h.LandCodes.Assign)
		codes.PATCH("", h.LandCodes.BulkAssign)
		codes.DELETE("/:id", h.LandCodes.Delete)
	}

	purchases := v1.Group("/purchase-requests")
	{
		purchases.POST("", h.Purchases.Create)
		purchases.GET("/mine", h.Purchases.Mine)
		purchases.GET("/:id", h.Purchases.Get)
		purchases.PATCH("/:id", h.Purchases.Decide)
	}

	ledger := v1.Group("/ledger")
	{
		ledger.GET("/mine", h.Ledger.Mine)
		ledger.POST("/travel", h.Ledger.Travel)
		ledger.PATCH("/:id", h.Ledger.Settle)
	}
}
