package handlers

import (
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/cyphera/cyphera-xdk/internal/helpers"
	"github.com/cyphera/cyphera-xdk/internal/services"
	"github.com/cyphera/cyphera-xdk/pkg/ethtx"
	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
)

const (
	defaultQRSize = 256
	minQRSize     = 64
	maxQRSize     = 1024
)

// TransactionHandler builds, hashes and signs EIP-1559 transactions
type TransactionHandler struct {
	transactions *services.TransactionService
	defaultChain ethtx.Chain
}

func NewTransactionHandler(transactions *services.TransactionService, defaultChain ethtx.Chain) *TransactionHandler {
	return &TransactionHandler{
		transactions: transactions,
		defaultChain: defaultChain,
	}
}

// TransactionRequest carries integers as decimal or 0x hex strings so that
// 256-bit values survive JSON. An empty To creates a contract.
type TransactionRequest struct {
	To                   string `json:"to"`
	Nonce                string `json:"nonce"`
	GasLimit             string `json:"gas_limit" binding:"required"`
	GasPrice             string `json:"gas_price"`
	MaxFeePerGas         string `json:"max_fee_per_gas"`
	MaxPriorityFeePerGas string `json:"max_priority_fee_per_gas"`
	Data                 string `json:"data"`
	Chain                string `json:"chain"`
	Value                string `json:"value"`
}

// SignTransactionRequest adds delivery options to a TransactionRequest
type SignTransactionRequest struct {
	TransactionRequest
	Publish   bool `json:"publish"`
	Broadcast bool `json:"broadcast"`
}

type UnsignedTransactionResponse struct {
	Payload string `json:"payload"`
}

type TransactionHashResponse struct {
	Hash string `json:"hash"`
}

type SignedTransactionResponse struct {
	ID             string    `json:"id"`
	Chain          string    `json:"chain"`
	ChainID        uint64    `json:"chain_id"`
	Hash           string    `json:"hash"`
	SigningHash    string    `json:"signing_hash"`
	RawTransaction string    `json:"raw_transaction"`
	Signed         string    `json:"signed"`
	Published      bool      `json:"published"`
	Broadcast      bool      `json:"broadcast"`
	SignedAt       time.Time `json:"signed_at"`
}

// toTransaction validates the request fields and builds the codec input.
func (r *TransactionRequest) toTransaction(defaultChain ethtx.Chain) (*ethtx.Transaction, error) {
	tx := &ethtx.Transaction{Chain: defaultChain}

	if r.Chain != "" {
		chain, err := ethtx.ParseChain(r.Chain)
		if err != nil {
			return nil, err
		}
		tx.Chain = chain
	}

	if r.To != "" {
		b, err := helpers.DecodeHex(r.To)
		if err != nil {
			return nil, fmt.Errorf("to: %w", err)
		}
		addr, err := ethtx.AddressFromBytes(b)
		if err != nil {
			return nil, err
		}
		tx.To = &addr
	}

	ints := []struct {
		name string
		raw  string
		dst  **big.Int
	}{
		{"nonce", r.Nonce, &tx.Nonce},
		{"gas_limit", r.GasLimit, &tx.GasLimit},
		{"gas_price", r.GasPrice, &tx.GasPrice},
		{"max_fee_per_gas", r.MaxFeePerGas, &tx.MaxFeePerGas},
		{"max_priority_fee_per_gas", r.MaxPriorityFeePerGas, &tx.MaxPriorityFeePerGas},
		{"value", r.Value, &tx.Value},
	}
	for _, f := range ints {
		x, err := helpers.ParseBigInt(f.raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = x
	}

	data, err := helpers.DecodeHex(r.Data)
	if err != nil {
		return nil, fmt.Errorf("data: %w", err)
	}
	tx.Data = data

	return tx, nil
}

func hexPrefixed(b []byte) string {
	return helpers.EncodeHex(b, helpers.HexOptions{Prefix: true})
}

// Unsigned godoc
// @Summary      Build unsigned transaction
// @Description  Returns 0x02 || rlp(fields) for an EIP-1559 transaction
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        request  body      TransactionRequest  true  "Transaction fields"
// @Success      200      {object}  UnsignedTransactionResponse
// @Failure      400      {object}  ErrorResponse
// @Router       /transactions/unsigned [post]
func (h *TransactionHandler) Unsigned(c *gin.Context) {
	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	tx, err := req.toTransaction(h.defaultChain)
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid transaction: "+err.Error(), err)
		return
	}

	payload, err := h.transactions.Unsigned(tx)
	if err != nil {
		sendDomainError(c, "Failed to build transaction", err)
		return
	}
	sendSuccess(c, http.StatusOK, UnsignedTransactionResponse{Payload: hexPrefixed(payload)})
}

// Hash godoc
// @Summary      Signing hash
// @Description  Returns keccak256 of the unsigned payload
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        request  body      TransactionRequest  true  "Transaction fields"
// @Success      200      {object}  TransactionHashResponse
// @Failure      400      {object}  ErrorResponse
// @Router       /transactions/hash [post]
func (h *TransactionHandler) Hash(c *gin.Context) {
	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	tx, err := req.toTransaction(h.defaultChain)
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid transaction: "+err.Error(), err)
		return
	}

	hash, err := h.transactions.Hash(tx)
	if err != nil {
		sendDomainError(c, "Failed to hash transaction", err)
		return
	}
	sendSuccess(c, http.StatusOK, TransactionHashResponse{Hash: hash.Hex()})
}

// Sign godoc
// @Summary      Sign transaction
// @Description  Signs with the service key and optionally publishes to SQS or broadcasts
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        request  body      SignTransactionRequest  true  "Transaction fields and delivery options"
// @Success      200      {object}  SignedTransactionResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      502      {object}  ErrorResponse
// @Failure      503      {object}  ErrorResponse
// @Router       /transactions/sign [post]
func (h *TransactionHandler) Sign(c *gin.Context) {
	signed, ok := h.sign(c)
	if !ok {
		return
	}

	sendSuccess(c, http.StatusOK, SignedTransactionResponse{
		ID:             signed.ID.String(),
		Chain:          signed.Chain.String(),
		ChainID:        uint64(signed.Chain),
		Hash:           signed.Hash.Hex(),
		SigningHash:    signed.SigningHash.Hex(),
		RawTransaction: hexPrefixed(signed.Envelope),
		Signed:         hexPrefixed(signed.Signed),
		Published:      signed.Published,
		Broadcast:      signed.Broadcast,
		SignedAt:       signed.SignedAt,
	})
}

// SignQR godoc
// @Summary      Sign transaction as QR code
// @Description  Signs like /transactions/sign and renders the raw transaction as a PNG QR code
// @Tags         transactions
// @Accept       json
// @Produce      png
// @Param        size     query     int                     false  "Image size in pixels (64-1024)"  default(256)
// @Param        request  body      SignTransactionRequest  true   "Transaction fields"
// @Success      200      {file}    binary
// @Failure      400      {object}  ErrorResponse
// @Router       /transactions/sign/qr [post]
func (h *TransactionHandler) SignQR(c *gin.Context) {
	size := defaultQRSize
	if raw := c.Query("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < minQRSize || n > maxQRSize {
			sendError(c, http.StatusBadRequest, fmt.Sprintf("size must be between %d and %d", minQRSize, maxQRSize), err)
			return
		}
		size = n
	}

	signed, ok := h.sign(c)
	if !ok {
		return
	}

	png, err := qrcode.Encode(hexPrefixed(signed.Envelope), qrcode.Medium, size)
	if err != nil {
		sendError(c, http.StatusInternalServerError, "Failed to render QR code", err)
		return
	}

	c.Header("X-Transaction-ID", signed.ID.String())
	c.Header("X-Transaction-Hash", signed.Hash.Hex())
	c.Data(http.StatusOK, "image/png", png)
}

func (h *TransactionHandler) sign(c *gin.Context) (*services.SignedTransaction, bool) {
	var req SignTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return nil, false
	}
	tx, err := req.toTransaction(h.defaultChain)
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid transaction: "+err.Error(), err)
		return nil, false
	}

	signed, err := h.transactions.Sign(c.Request.Context(), tx, services.SignOptions{
		Publish:   req.Publish,
		Broadcast: req.Broadcast,
	})
	if err != nil {
		sendDomainError(c, "Failed to sign transaction", err)
		return nil, false
	}
	return signed, true
}
