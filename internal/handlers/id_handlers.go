package handlers

import (
	"net/http"
	"strconv"

	"github.com/cyphera/cyphera-xdk/internal/services"
	"github.com/gin-gonic/gin"
)

// IDHandler serves XID generation and inspection
type IDHandler struct {
	ids *services.IDService
}

func NewIDHandler(ids *services.IDService) *IDHandler {
	return &IDHandler{ids: ids}
}

type CreateIDsResponse struct {
	IDs []string `json:"ids"`
}

// CreateIDs godoc
// @Summary      Generate ids
// @Description  Generates one or more XIDs in order
// @Tags         ids
// @Produce      json
// @Param        count  query     int  false  "Number of ids (1-1000)"  default(1)
// @Success      201    {object}  CreateIDsResponse
// @Failure      400    {object}  ErrorResponse
// @Router       /ids [post]
func (h *IDHandler) CreateIDs(c *gin.Context) {
	count := 1
	if raw := c.Query("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			sendError(c, http.StatusBadRequest, "Invalid count parameter", err)
			return
		}
		count = n
	}

	ids, err := h.ids.NewBatch(count)
	if err != nil {
		sendDomainError(c, "Invalid count parameter", err)
		return
	}

	resp := CreateIDsResponse{IDs: make([]string, len(ids))}
	for i, id := range ids {
		resp.IDs[i] = id.String()
	}
	sendSuccess(c, http.StatusCreated, resp)
}

// GetID godoc
// @Summary      Inspect an id
// @Description  Decodes an XID into timestamp, machine id, pid and counter
// @Tags         ids
// @Produce      json
// @Param        id   path      string  true  "20-character id"
// @Success      200  {object}  services.IDInfo
// @Failure      400  {object}  ErrorResponse
// @Router       /ids/{id} [get]
func (h *IDHandler) GetID(c *gin.Context) {
	info, err := h.ids.Parse(c.Param("id"))
	if err != nil {
		sendDomainError(c, "Invalid id", err)
		return
	}
	sendSuccess(c, http.StatusOK, info)
}
