package handlers

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cyphera/cyphera-xdk/internal/logger"
	"github.com/cyphera/cyphera-xdk/internal/middleware"
	"github.com/cyphera/cyphera-xdk/internal/mocks"
	"github.com/cyphera/cyphera-xdk/internal/services"
	"github.com/cyphera/cyphera-xdk/pkg/ethtx"
	"github.com/cyphera/cyphera-xdk/pkg/rlp"
	"github.com/cyphera/cyphera-xdk/pkg/xid"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	testKeyHex     = "00bb19aec0b23e3b0a221fe5c67cd7fe5ec05f882d7d79235b1a0640d3021a4f"
	goerliUnsigned = "0x02e9055821424d9400aaaaaaaaaaaaaaaaaaaabbbbbbbbbbbbbbbbbb88016345785d8a00018461626364c0"
	goerliHash     = "0xdafb7375730ad2406391a6992511b713bfbd1b2ab9854ba5ed45bff0289efe33"
	goerliEnvelope = "0x02f86c055821424d9400aaaaaaaaaaaaaaaaaaaabbbbbbbbbbbbbbbbbb88016345785d8a00018461626364c080" +
		"a03b25864dc856704db0c837d30ef36c6c649a81b79e6d5543c8ccbc77c7665a96" +
		"a0592791387cb503f9548fdc4629fc31ac9f778fc131435f73ff8729519d571772"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func init() {
	gin.SetMode(gin.TestMode)
	logger.InitLogger("test")
}

func goerliRequest() TransactionRequest {
	return TransactionRequest{
		To:                   "0xaaaaaaaaaaaaaaaaaaaabbbbbbbbbbbbbbbbbb",
		Nonce:                "88",
		GasLimit:             "77",
		MaxFeePerGas:         "0x42",
		MaxPriorityFeePerGas: "33",
		Data:                 "0x61626364",
		Chain:                "goerli",
		Value:                "100000000000000001",
	}
}

func fixedIDs() *services.IDService {
	host := xid.HostIdentity{MachineID: [3]byte{0x60, 0xf4, 0x86}, Pid: 0xe428}
	g := xid.NewGenerator(host,
		xid.WithClock(func() time.Time { return time.Unix(0x4d88e15b, 0) }),
		xid.WithCounterStart(0x412dc8),
	)
	return services.NewIDServiceWithGenerator(g)
}

type testDeps struct {
	keys        *mocks.MockKeyProvider
	publisher   *mocks.MockTransactionPublisher
	broadcaster *mocks.MockBroadcaster
}

func setupRouter(t *testing.T, withDelivery bool) (*gin.Engine, testDeps) {
	t.Helper()
	ctrl := gomock.NewController(t)
	deps := testDeps{
		keys:        mocks.NewMockKeyProvider(ctrl),
		publisher:   mocks.NewMockTransactionPublisher(ctrl),
		broadcaster: mocks.NewMockBroadcaster(ctrl),
	}

	opts := []services.TransactionServiceOption{
		services.WithClock(func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }),
	}
	if withDelivery {
		opts = append(opts, services.WithPublisher(deps.publisher), services.WithBroadcaster(deps.broadcaster))
	}
	ids := fixedIDs()
	txs := services.NewTransactionService(deps.keys, ids, opts...)

	idHandler := NewIDHandler(ids)
	rlpHandler := NewRLPHandler()
	txHandler := NewTransactionHandler(txs, ethtx.Goerli)

	r := gin.New()
	r.Use(middleware.CorrelationIDMiddleware(func() string { return "corr-test" }))
	r.GET("/health", NewHealthHandler(ethtx.Goerli).Health)
	r.POST("/ids", idHandler.CreateIDs)
	r.GET("/ids/:id", idHandler.GetID)
	r.POST("/rlp/encode", rlpHandler.Encode)
	r.POST("/rlp/decode", rlpHandler.Decode)
	r.POST("/transactions/unsigned", txHandler.Unsigned)
	r.POST("/transactions/hash", txHandler.Hash)
	r.POST("/transactions/sign", txHandler.Sign)
	r.POST("/transactions/sign/qr", txHandler.SignQR)
	return r, deps
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestHealth(t *testing.T) {
	r, _ := setupRouter(t, false)
	w := doJSON(t, r, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp HealthResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, HealthResponse{Status: "ok", Chain: "goerli", ChainID: 5}, resp)
}

func TestCreateIDs(t *testing.T) {
	r, _ := setupRouter(t, false)

	w := doJSON(t, r, http.MethodPost, "/ids", nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	var resp CreateIDsResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, []string{"9m4e2mr0ui3e8a215n4g"}, resp.IDs)

	w = doJSON(t, r, http.MethodPost, "/ids?count=3", nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	decodeBody(t, w, &resp)
	assert.Len(t, resp.IDs, 3)

	for _, q := range []string{"abc", "0", "1001"} {
		w = doJSON(t, r, http.MethodPost, "/ids?count="+q, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}

func TestGetID(t *testing.T) {
	r, _ := setupRouter(t, false)

	w := doJSON(t, r, http.MethodGet, "/ids/9m4e2mr0ui3e8a215n4g", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var info services.IDInfo
	decodeBody(t, w, &info)
	assert.Equal(t, "60f486", info.MachineID)
	assert.Equal(t, uint16(0xe428), info.Pid)
	assert.Equal(t, int32(4271561), info.Counter)

	w = doJSON(t, r, http.MethodGet, "/ids/not-an-id", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var errResp ErrorResponse
	decodeBody(t, w, &errResp)
	assert.Equal(t, "corr-test", errResp.CorrelationID)
	assert.Contains(t, errResp.Error, "Invalid id")
}

func TestRLPEncodeDecode(t *testing.T) {
	r, _ := setupRouter(t, false)

	w := doJSON(t, r, http.MethodPost, "/rlp/encode", `{"item":["0x636174","0x646f67"]}`)
	assert.Equal(t, http.StatusOK, w.Code)
	var enc EncodeRLPResponse
	decodeBody(t, w, &enc)
	assert.Equal(t, "0xc88363617483646f67", enc.Encoded)
	assert.Equal(t, 9, enc.Length)

	w = doJSON(t, r, http.MethodPost, "/rlp/decode", DecodeRLPRequest{Data: enc.Encoded})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"item":["0x636174","0x646f67"]}`, w.Body.String())

	tests := []struct {
		name string
		path string
		body string
	}{
		{name: "missing item", path: "/rlp/encode", body: `{}`},
		{name: "number item", path: "/rlp/encode", body: `{"item":[1]}`},
		{name: "bad hex", path: "/rlp/decode", body: `{"data":"0xzz"}`},
		{name: "truncated", path: "/rlp/decode", body: `{"data":"0x836361"}`},
		{name: "non canonical", path: "/rlp/decode", body: `{"data":"0x8100"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestUnsignedAndHash(t *testing.T) {
	r, _ := setupRouter(t, false)

	w := doJSON(t, r, http.MethodPost, "/transactions/unsigned", goerliRequest())
	assert.Equal(t, http.StatusOK, w.Code)
	var unsigned UnsignedTransactionResponse
	decodeBody(t, w, &unsigned)
	assert.Equal(t, goerliUnsigned, unsigned.Payload)

	w = doJSON(t, r, http.MethodPost, "/transactions/hash", goerliRequest())
	assert.Equal(t, http.StatusOK, w.Code)
	var hash TransactionHashResponse
	decodeBody(t, w, &hash)
	assert.Equal(t, goerliHash, hash.Hash)

	req := goerliRequest()
	req.Chain = ""
	w = doJSON(t, r, http.MethodPost, "/transactions/hash", req)
	decodeBody(t, w, &hash)
	assert.Equal(t, goerliHash, hash.Hash)
}

func TestTransactionValidation(t *testing.T) {
	r, _ := setupRouter(t, false)

	tests := []struct {
		name   string
		mutate func(req *TransactionRequest)
	}{
		{name: "unknown chain", mutate: func(req *TransactionRequest) { req.Chain = "ropsten" }},
		{name: "bad address hex", mutate: func(req *TransactionRequest) { req.To = "0xnothex" }},
		{name: "address too long", mutate: func(req *TransactionRequest) { req.To = "0x" + hex.EncodeToString(make([]byte, 21)) }},
		{name: "negative value", mutate: func(req *TransactionRequest) { req.Value = "-1" }},
		{name: "bad nonce", mutate: func(req *TransactionRequest) { req.Nonce = "eighty" }},
		{name: "legacy fees", mutate: func(req *TransactionRequest) {
			req.GasPrice = "20"
			req.MaxFeePerGas = ""
			req.MaxPriorityFeePerGas = ""
		}},
		{name: "missing priority fee", mutate: func(req *TransactionRequest) { req.MaxPriorityFeePerGas = "" }},
		{name: "value over 256 bits", mutate: func(req *TransactionRequest) { req.Value = "0x1" + fmt.Sprintf("%064d", 0) }},
		{name: "missing gas limit", mutate: func(req *TransactionRequest) { req.GasLimit = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := goerliRequest()
			tt.mutate(&req)
			w := doJSON(t, r, http.MethodPost, "/transactions/unsigned", req)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestSign(t *testing.T) {
	r, deps := setupRouter(t, true)
	key, err := hex.DecodeString(testKeyHex)
	require.NoError(t, err)

	deps.keys.EXPECT().PrivateKey(gomock.Any()).Return(key, nil)
	deps.broadcaster.EXPECT().Broadcast(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, env []byte) (common.Hash, error) {
			assert.Equal(t, goerliEnvelope, "0x"+hex.EncodeToString(env))
			return common.Hash{}, nil
		})

	req := SignTransactionRequest{TransactionRequest: goerliRequest(), Broadcast: true}
	w := doJSON(t, r, http.MethodPost, "/transactions/sign", req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp SignedTransactionResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, "9m4e2mr0ui3e8a215n4g", resp.ID)
	assert.Equal(t, "goerli", resp.Chain)
	assert.Equal(t, uint64(5), resp.ChainID)
	assert.Equal(t, goerliHash, resp.SigningHash)
	assert.Equal(t, goerliEnvelope, resp.RawTransaction)
	assert.Equal(t, "0xb86f"+goerliEnvelope[2:], resp.Signed)
	assert.True(t, resp.Broadcast)
	assert.False(t, resp.Published)

	rawEnv, err := hex.DecodeString(goerliEnvelope[2:])
	require.NoError(t, err)
	signed, err := hex.DecodeString(resp.Signed[2:])
	require.NoError(t, err)
	env, err := ethtx.UnwrapSigned(signed)
	require.NoError(t, err)
	assert.Equal(t, rawEnv, env)
}

func TestSignErrors(t *testing.T) {
	t.Run("delivery not configured", func(t *testing.T) {
		r, _ := setupRouter(t, false)
		req := SignTransactionRequest{TransactionRequest: goerliRequest(), Publish: true}
		w := doJSON(t, r, http.MethodPost, "/transactions/sign", req)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("key unavailable", func(t *testing.T) {
		r, deps := setupRouter(t, false)
		deps.keys.EXPECT().PrivateKey(gomock.Any()).Return(nil, errors.New("secret not found"))

		w := doJSON(t, r, http.MethodPost, "/transactions/sign", SignTransactionRequest{TransactionRequest: goerliRequest()})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		var resp ErrorResponse
		decodeBody(t, w, &resp)
		assert.NotContains(t, resp.Error, "secret not found")
	})

	t.Run("publish failure", func(t *testing.T) {
		r, deps := setupRouter(t, true)
		key, err := hex.DecodeString(testKeyHex)
		require.NoError(t, err)
		deps.keys.EXPECT().PrivateKey(gomock.Any()).Return(key, nil)
		deps.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("queue down"))

		req := SignTransactionRequest{TransactionRequest: goerliRequest(), Publish: true}
		w := doJSON(t, r, http.MethodPost, "/transactions/sign", req)
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})

	t.Run("invalid transaction skips key lookup", func(t *testing.T) {
		r, _ := setupRouter(t, false)
		req := SignTransactionRequest{TransactionRequest: goerliRequest()}
		req.MaxFeePerGas = ""
		w := doJSON(t, r, http.MethodPost, "/transactions/sign", req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSignQR(t *testing.T) {
	r, deps := setupRouter(t, false)
	key, err := hex.DecodeString(testKeyHex)
	require.NoError(t, err)
	deps.keys.EXPECT().PrivateKey(gomock.Any()).Return(key, nil)

	w := doJSON(t, r, http.MethodPost, "/transactions/sign/qr?size=128", SignTransactionRequest{TransactionRequest: goerliRequest()})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "9m4e2mr0ui3e8a215n4g", w.Header().Get("X-Transaction-ID"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), pngMagic))

	for _, size := range []string{"32", "4096", "big"} {
		w = doJSON(t, r, http.MethodPost, "/transactions/sign/qr?size="+size, SignTransactionRequest{TransactionRequest: goerliRequest()})
		assert.Equal(t, http.StatusBadRequest, w.Code, size)
	}
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: xid.ErrInvalidLength, want: http.StatusBadRequest},
		{err: fmt.Errorf("wrapped: %w", rlp.ErrMalformed), want: http.StatusBadRequest},
		{err: ethtx.ErrUnknownChain, want: http.StatusBadRequest},
		{err: services.ErrInvalidBatchSize, want: http.StatusBadRequest},
		{err: services.ErrBroadcastDisabled, want: http.StatusServiceUnavailable},
		{err: fmt.Errorf("%w: publish: %w", services.ErrDeliveryFailed, errors.New("x")), want: http.StatusBadGateway},
		{err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusForError(tt.err))
		})
	}
}
