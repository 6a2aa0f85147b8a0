package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/patrickprogramme/clipscribe/pkg/captions"
	"github.com/patrickprogramme/clipscribe/pkg/chapters"
)

// Types d'erreur exposés dans error_kind.
const (
	KindInvalidInput     = "invalid_input"
	KindDegenerateWindow = "degenerate_window"
	KindInvalidConfig    = "invalid_config"
	KindBadRequest       = "bad_request"
	KindInternal         = "internal"
)

// APIResponse est l'enveloppe commune des réponses JSON.
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	ErrorKind string      `json:"error_kind,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"`
}

// ResponseHelper écrit les réponses dans l'enveloppe APIResponse.
type ResponseHelper struct{}

func NewResponseHelper() *ResponseHelper {
	return &ResponseHelper{}
}

func (rh *ResponseHelper) Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, &APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
		RequestID: c.GetString(requestIDKey),
	})
}

func (rh *ResponseHelper) Error(c *gin.Context, status int, kind, message string) {
	c.JSON(status, &APIResponse{
		Success:   false,
		Error:     message,
		ErrorKind: kind,
		Timestamp: time.Now(),
		RequestID: c.GetString(requestIDKey),
	})
}

func (rh *ResponseHelper) BadRequest(c *gin.Context, message string) {
	rh.Error(c, http.StatusBadRequest, KindBadRequest, message)
}

// FromError traduit les erreurs du cœur en 400, le reste en 500.
func (rh *ResponseHelper) FromError(c *gin.Context, err error) {
	kind := errorKind(err)
	if kind == KindInternal {
		rh.Error(c, http.StatusInternalServerError, kind, "internal error")
		return
	}
	rh.Error(c, http.StatusBadRequest, kind, err.Error())
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, chapters.ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, captions.ErrDegenerateWindow):
		return KindDegenerateWindow
	case errors.Is(err, captions.ErrInvalidConfig):
		return KindInvalidConfig
	default:
		return KindInternal
	}
}
