package protocol

import (
	"errors"
	"net/http"

	"credential-ledger/src/oracle"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{Service: service}
}

// RequestProofGeneration godoc
// @Summary      Request composite proof generation
// @Description  Submits the holder's credentials to the decryption oracle; the proof is computed asynchronously
// @Tags         Protocol
// @Produce      json
// @Param        holder_id  path      string  true  "Holder ID"
// @Success      202  {object}  map[string]string
// @Failure      412  {object}  map[string]string
// @Router       /v1/holders/{holder_id}/proof-requests [post]
func (h *Handler) RequestProofGeneration(c *gin.Context) {
	holderId := c.Param("holder_id")

	requestId, err := h.Service.RequestProofGeneration(holderId)
	if err != nil {
		respondProtocolError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"request_id": requestId, "status": "pending"})
}

// RequestReveal godoc
// @Summary      Request reveal of the composite proof
// @Description  Submits the composite score to the oracle for authenticated disclosure to the holder
// @Tags         Protocol
// @Produce      json
// @Param        holder_id  path      string  true  "Holder ID"
// @Success      202  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      412  {object}  map[string]string
// @Router       /v1/holders/{holder_id}/reveal-requests [post]
func (h *Handler) RequestReveal(c *gin.Context) {
	holderId := c.Param("holder_id")

	requestId, err := h.Service.RequestReveal(holderId)
	if err != nil {
		respondProtocolError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"request_id": requestId, "status": "pending"})
}

// GetHolderStatus godoc
// @Summary      Get the holder's protocol state
// @Description  Returns the derived state, credential count and proof flags
// @Tags         Protocol
// @Produce      json
// @Param        holder_id  path      string  true  "Holder ID"
// @Success      200  {object}  HolderStatusDto
// @Router       /v1/holders/{holder_id}/status [get]
func (h *Handler) GetHolderStatus(c *gin.Context) {
	status, err := h.Service.GetHolderStatus(c.Param("holder_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, status)
}

// HandleOracleCallback godoc
// @Summary      Oracle decryption callback
// @Description  Internal entry point mirroring the queue consumer, for oracles deployed without AMQP access
// @Tags         Internal
// @Accept       json
// @Produce      json
// @Param        body  body      oracle.DecryptionResultDto  true  "Decryption result"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/internal/oracle/callback [post]
func (h *Handler) HandleOracleCallback(c *gin.Context) {
	var result oracle.DecryptionResultDto
	if err := c.ShouldBindJSON(&result); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	if err := h.Service.HandleDecryptionResult(result); err != nil {
		respondProtocolError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "fulfilled"})
}

func respondProtocolError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNoCredentials):
		c.JSON(http.StatusPreconditionFailed, gin.H{"error": err.Error()})
	case errors.Is(err, ErrNoProof):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrAlreadyRevealed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidRequest):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrProofVerificationFailed):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
