package controller

import (
	"net/http"

	"go.uber.org/zap"
)

type qubicPriceResponse struct {
	Price     float64 `json:"price"`
	Change24h float64 `json:"change_24h"`
	MarketCap float64 `json:"market_cap"`
	Volume24h float64 `json:"volume_24h"`
}

// HandleQubicPrice returns the QUBIC ticker used by the page header.
func (c *Controller) HandleQubicPrice(w http.ResponseWriter, r *http.Request) {
	details, err := c.App.Prices.Details(r.Context())
	if err != nil || details == nil {
		c.App.Logger.Warn("Failed to fetch QUBIC price", zap.Error(err))
		c.writeError(w, http.StatusInternalServerError, "Failed to fetch QUBIC price")
		return
	}

	c.writeJSON(w, http.StatusOK, qubicPriceResponse{
		Price:     details.CurrentPrice,
		Change24h: details.PriceChangePercentage24h,
		MarketCap: details.MarketCap,
		Volume24h: details.Volume24h,
	})
}
