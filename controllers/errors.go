package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"resort-backend/services"
	"resort-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusConflictCodes are state errors reported as 409 rather than 400.
var statusConflictCodes = map[string]bool{
	"bookingNotActive": true,
}

// respondError maps a service error onto the JSON error body. Internal
// errors are logged and reported without their cause.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	if errors.Is(err, services.ErrInvalidCredentials) {
		utils.JSONError(c, http.StatusUnauthorized, "invalidCredentials", "Invalid email or password.", nil)
		return
	}

	ae := services.AsAppError(err)
	var details any
	if len(ae.Details) > 0 {
		details = ae.Details
	}

	switch {
	case errors.Is(ae.Kind, services.ErrValidation):
		utils.JSONError(c, http.StatusBadRequest, ae.Code, ae.Message, details)
	case errors.Is(ae.Kind, services.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, ae.Code, ae.Message, details)
	case errors.Is(ae.Kind, services.ErrConflict):
		utils.JSONError(c, http.StatusConflict, ae.Code, ae.Message, details)
	case errors.Is(ae.Kind, services.ErrState):
		status := http.StatusBadRequest
		if statusConflictCodes[ae.Code] {
			status = http.StatusConflict
		}
		utils.JSONError(c, status, ae.Code, ae.Message, details)
	default:
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		utils.JSONError(c, http.StatusInternalServerError, "internal",
			ae.Message+". Please try again or contact support.", nil)
	}
}

func respondBadPayload(c *gin.Context, err error) {
	utils.JSONError(c, http.StatusBadRequest, "invalidPayload", "Invalid request payload", gin.H{"reason": err.Error()})
}

func uintParam(c *gin.Context, name string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		utils.JSONError(c, http.StatusBadRequest, "invalidId", "Invalid "+name+": "+c.Param(name), nil)
		return 0, false
	}
	return uint(n), true
}

func pageQuery(c *gin.Context) (int, int) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	return skip, limit
}
