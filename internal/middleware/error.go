package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/logger"
)

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

// ErrorHandler renders the last error recorded with c.Error once the handler
// chain has finished. Handlers record the error and abort; nothing is
// rendered if a response body was already written.
//
// AppErrors keep their status, code and message. Any other error is logged
// and reported as INTERNAL_ERROR.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		log := logger.Named("http").With(
			"request_id", c.GetString(requestIDKey),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)

		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) {
			log.Errorw("unexpected error", "error", err.Error())
			appErr = apperrors.ErrInternalServer
		} else if appErr.Internal != nil {
			log.Errorw("app error", "code", appErr.Code, "internal", appErr.Internal.Error())
		}

		c.JSON(appErr.StatusCode, errorBody{Error: errorDetail{Code: appErr.Code, Message: appErr.Message}})
	}
}
