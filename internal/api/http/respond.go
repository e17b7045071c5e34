package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zeer-gl/thiqa-gateway/internal/upstream"
)

// userMessages maps the stable upstream error codes to user-facing strings.
// Handlers never inspect upstream message text themselves.
var userMessages = map[upstream.Code]string{
	upstream.CodeUnauthorized:     "You are not authorized to perform this action.",
	upstream.CodeForbidden:        "This action is not permitted for your account.",
	upstream.CodeNotFound:         "The requested record was not found.",
	upstream.CodeAlreadySubmitted: "You have already submitted for this project.",
	upstream.CodeValidation:       "The submitted data was rejected. Please review and try again.",
	upstream.CodeServer:           "The service is having trouble right now. Please try again later.",
	upstream.CodeUnavailable:      "Could not reach the service. Check your connection and try again.",
	upstream.CodeUnknown:          "Something went wrong. Please try again.",
}

var codeStatus = map[upstream.Code]int{
	upstream.CodeUnauthorized:     http.StatusUnauthorized,
	upstream.CodeForbidden:        http.StatusForbidden,
	upstream.CodeNotFound:         http.StatusNotFound,
	upstream.CodeAlreadySubmitted: http.StatusConflict,
	upstream.CodeValidation:       http.StatusBadRequest,
	upstream.CodeServer:           http.StatusBadGateway,
	upstream.CodeUnavailable:      http.StatusBadGateway,
	upstream.CodeUnknown:          http.StatusBadGateway,
}

// UserMessage picks the user-facing string for an upstream failure.
func UserMessage(err error) string {
	if ue, ok := upstream.AsError(err); ok {
		if msg, ok := userMessages[ue.Code]; ok {
			return msg
		}
	}
	return userMessages[upstream.CodeUnknown]
}

// RespondUpstreamError writes the gateway response for a failed upstream call.
// Transport failures and server-returned errors land on different codes so
// frontends can distinguish "no connection" from "the backend said no".
func RespondUpstreamError(c *gin.Context, err error) {
	ue, ok := upstream.AsError(err)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": userMessages[upstream.CodeUnknown]})
		return
	}

	status := codeStatus[ue.Code]
	if status == 0 {
		status = http.StatusBadGateway
	}

	c.JSON(status, gin.H{
		"error":     UserMessage(err),
		"code":      ue.Code,
		"transport": ue.Kind == upstream.KindTransport,
	})
}
