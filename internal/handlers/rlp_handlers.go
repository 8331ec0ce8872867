package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/cyphera/cyphera-xdk/internal/helpers"
	"github.com/cyphera/cyphera-xdk/pkg/rlp"
	"github.com/gin-gonic/gin"
)

// RLPHandler exposes the RLP codec
type RLPHandler struct{}

func NewRLPHandler() *RLPHandler {
	return &RLPHandler{}
}

// EncodeRLPRequest holds an item as nested JSON: strings are 0x hex, lists are arrays.
type EncodeRLPRequest struct {
	Item json.RawMessage `json:"item" binding:"required"`
}

type EncodeRLPResponse struct {
	Encoded string `json:"encoded"`
	Length  int    `json:"length"`
}

type DecodeRLPRequest struct {
	Data string `json:"data" binding:"required"`
}

type DecodeRLPResponse struct {
	Item rlp.Item `json:"item"`
}

// Encode godoc
// @Summary      RLP encode
// @Tags         rlp
// @Accept       json
// @Produce      json
// @Param        request  body      EncodeRLPRequest  true  "Item to encode"
// @Success      200      {object}  EncodeRLPResponse
// @Failure      400      {object}  ErrorResponse
// @Router       /rlp/encode [post]
func (h *RLPHandler) Encode(c *gin.Context) {
	var req EncodeRLPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	item, err := rlp.ParseJSON(req.Item)
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid item: "+err.Error(), err)
		return
	}

	encoded := rlp.Encode(item)
	sendSuccess(c, http.StatusOK, EncodeRLPResponse{
		Encoded: helpers.EncodeHex(encoded, helpers.HexOptions{Prefix: true}),
		Length:  len(encoded),
	})
}

// Decode godoc
// @Summary      RLP decode
// @Tags         rlp
// @Accept       json
// @Produce      json
// @Param        request  body      DecodeRLPRequest  true  "Hex encoded RLP"
// @Success      200      {object}  DecodeRLPResponse
// @Failure      400      {object}  ErrorResponse
// @Router       /rlp/decode [post]
func (h *RLPHandler) Decode(c *gin.Context) {
	var req DecodeRLPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	data, err := helpers.DecodeHex(req.Data)
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid hex data", err)
		return
	}

	item, err := rlp.Decode(data)
	if err != nil {
		sendDomainError(c, "Malformed RLP", err)
		return
	}
	sendSuccess(c, http.StatusOK, DecodeRLPResponse{Item: item})
}
