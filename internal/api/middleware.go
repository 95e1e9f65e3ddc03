package api

import (
	stderrors "errors"
	"net/http"
	"strings"
	"time"

	"github.com/SIMPLYBOYS/tachi/internal/errors"
	"github.com/SIMPLYBOYS/tachi/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// chainStatus maps a chain failure kind to an HTTP status.
func chainStatus(kind errors.Kind) int {
	switch kind {
	case errors.KindValidation, errors.KindAlreadyBet, errors.KindMarketClosed, errors.KindNotYetClosed,
		errors.KindInsufficientFunds, errors.KindUserRejected, errors.KindReverted:
		return http.StatusBadRequest
	case errors.KindUnauthorized:
		return http.StatusForbidden
	case errors.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		var (
			chainErr *errors.ChainError
			apiErr   *errors.APIError
			notFound *errors.NotFoundError
			dbErr    *errors.DatabaseError
		)
		switch {
		case stderrors.As(err, &chainErr):
			logger.LogError(chainErr)
			status := chainStatus(chainErr.Kind)
			body := gin.H{"error": chainErr.Kind.String(), "message": chainErr.UserMessage()}
			if status == http.StatusInternalServerError {
				body["message"] = chainErr.Kind.DefaultMessage()
			}
			c.JSON(status, body)
		case stderrors.As(err, &apiErr):
			if apiErr.StatusCode >= http.StatusInternalServerError {
				logger.LogError(apiErr)
			}
			c.JSON(apiErr.StatusCode, gin.H{"error": apiErr.Message})
		case stderrors.As(err, &notFound):
			c.JSON(http.StatusNotFound, gin.H{"error": notFoundMessage(notFound.Resource)})
		case stderrors.As(err, &dbErr):
			logger.LogError(dbErr)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		default:
			logger.LogError(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		c.Abort()
	}
}

func notFoundMessage(resource string) string {
	if resource == "" {
		return "Not found"
	}
	return strings.ToUpper(resource[:1]) + resource[1:] + " not found"
}

// RequestID tags every request with an id, reusing the caller's if present.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestID", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// RequestLogger logs method, path, status and latency of each request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("%s %s %d %s request_id=%s",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start), c.GetString("requestID"))
	}
}

// CORS allows browser clients from allowedOrigins, or from anywhere when empty.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			allowed := len(allowedOrigins) == 0
			for _, o := range allowedOrigins {
				if o == "*" || strings.EqualFold(o, origin) {
					allowed = true
					break
				}
			}
			if allowed {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
				c.Header("Access-Control-Allow-Headers", "Content-Type, "+requestIDHeader)
				c.Header("Access-Control-Max-Age", "86400")
			}
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
