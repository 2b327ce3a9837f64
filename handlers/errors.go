package handlers

import (
	"errors"
	"net/http"

	"parkinglot/services/domain"
	"parkinglot/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps domain errors to 400/404 and everything else to a generic 500.
// Only the 500 case is logged with its details.
func respondError(c *gin.Context, err error, action string) {
	var (
		invalid  domain.ValidationError
		notFound domain.NotFoundError
		conflict domain.StateConflictError
	)
	switch {
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, utils.ErrorResponse{Error: invalid.Error()})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, utils.ErrorResponse{Error: notFound.Error()})
	case errors.As(err, &conflict):
		c.JSON(http.StatusBadRequest, utils.ErrorResponse{Error: conflict.Msg, CurrentState: conflict.CurrentState})
	default:
		getLogger(c).Error(action, zap.Error(err))
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse{Error: "Internal server error"})
	}
}

func badRequest(c *gin.Context, err error) {
	utils.JSONError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
}
