package credential

import (
	"errors"
	"net/http"

	"credential-ledger/src/encops"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{Service: service}
}

// AddCredential godoc
// @Summary      Append an encrypted credential
// @Description  Stores the three encrypted fields for a holder; the issuer is taken from the X-Issuer-Id header
// @Tags         Credentials
// @Accept       json
// @Produce      json
// @Param        holder_id  path  string  true  "Holder ID"
// @Param        X-Issuer-Id  header  string  true  "Issuer identity"
// @Param        body  body  object{enc_type=string,enc_attributes=string,enc_expiry=string}  true  "Base64 encrypted operands"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /v1/holders/{holder_id}/credentials [post]
func (h *Handler) AddCredential(c *gin.Context) {
	holderId := c.Param("holder_id")

	issuer := c.GetHeader("X-Issuer-Id")
	if issuer == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing X-Issuer-Id header"})
		return
	}

	var req struct {
		EncType       string `json:"enc_type" binding:"required"`
		EncAttributes string `json:"enc_attributes" binding:"required"`
		EncExpiry     string `json:"enc_expiry" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	stored, err := h.Service.AddCredential(holderId, issuer, req.EncType, req.EncAttributes, req.EncExpiry)
	if errors.Is(err, encops.ErrMalformedOperand) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not store credential: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"holder_id": stored.HolderId,
		"seq":       stored.Seq,
		"issuer":    stored.Issuer,
	})
}

// GetCredentialCount godoc
// @Summary      Count a holder's credentials
// @Tags         Credentials
// @Produce      json
// @Param        holder_id  path  string  true  "Holder ID"
// @Success      200  {object}  map[string]interface{}
// @Router       /v1/holders/{holder_id}/credentials/count [get]
func (h *Handler) GetCredentialCount(c *gin.Context) {
	holderId := c.Param("holder_id")

	count, err := h.Service.Count(holderId)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"holder_id": holderId, "count": count})
}
