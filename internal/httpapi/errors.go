package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ThinkGrid-Labs/altis-engine/internal/altiserr"
)

// ErrorResponse is the JSON shape every failed request returns.
type ErrorResponse struct {
	Error      string `json:"error"`
	Code       string `json:"code,omitempty"`
	RetryAfter string `json:"retry_after,omitempty"`
}

// writeError maps err to its HTTP status and a caller-safe message. An
// *altiserr.Error carries its own status and never leaks Cause detail to
// the response; anything else is treated as an unclassified internal error.
func writeError(c *gin.Context, op string, err error) {
	if aerr, ok := altiserr.As(err); ok {
		resp := ErrorResponse{Error: aerr.Message, Code: string(aerr.Kind)}
		if aerr.RetryAfter != nil {
			resp.RetryAfter = aerr.RetryAfter.String()
		}
		c.JSON(aerr.HTTPStatus(), resp)
		return
	}
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: string(altiserr.Internal)})
}

func bindJSONError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error(), Code: string(altiserr.Validation)})
}
