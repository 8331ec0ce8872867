package handlers

import (
	"net/http"

	"github.com/cyphera/cyphera-xdk/pkg/ethtx"
	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	chain ethtx.Chain
}

func NewHealthHandler(chain ethtx.Chain) *HealthHandler {
	return &HealthHandler{chain: chain}
}

type HealthResponse struct {
	Status  string `json:"status"`
	Chain   string `json:"chain"`
	ChainID uint64 `json:"chain_id"`
}

// Health godoc
// @Summary      Health check
// @Description  Checks if the server is running
// @Tags         health
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "ok",
		Chain:   h.chain.String(),
		ChainID: uint64(h.chain),
	})
}
