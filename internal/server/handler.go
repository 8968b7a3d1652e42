package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leofalp/jsonmend/core/repair"
	"github.com/leofalp/jsonmend/core/structural"
)

type loadRequest struct {
	Raw    string `json:"raw"`
	Source string `json:"source"`
}

type loadResponse struct {
	Value   structural.Value `json:"value"`
	Session *repair.Session  `json:"session"`
}

type failureResponse struct {
	Error   string          `json:"error"`
	Outcome repair.Outcome  `json:"outcome"`
	Session *repair.Session `json:"session,omitempty"`
}

type handler struct {
	loader  *repair.Loader
	maxBody int64
}

// Load runs one session over the posted payload.
func (h *handler) Load(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBody)

	var req loadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	value, session, err := h.loader.LoadPayload(c.Request.Context(), repair.NewPayload(req.Raw, req.Source))
	if err != nil {
		resp := failureResponse{Error: err.Error(), Session: session}
		var failure *repair.RepairFailure
		if errors.As(err, &failure) {
			resp.Outcome = failure.Outcome
		}
		c.JSON(http.StatusUnprocessableEntity, resp)
		return
	}

	c.JSON(http.StatusOK, loadResponse{Value: value, Session: session})
}
