package chathandler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"chatrelaygo/internal/auth"
)

const authUserKey = "authUser"

// AuthRequired verifies the bearer credential (Authorization header or the
// login cookie) and stores the username it yields on the gin context.
func AuthRequired(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(ginCtx *gin.Context) {
		token := strings.TrimPrefix(ginCtx.GetHeader("Authorization"), "Bearer ")
		if token == "" {
			token, _ = ginCtx.Cookie("token")
		}

		username, err := tokens.Verify(token)
		if err != nil {
			ginCtx.AbortWithStatusJSON(http.StatusUnauthorized,
				&ErrorResponse{Error: err.Error()})
			return
		}
		ginCtx.Set(authUserKey, username)
		ginCtx.Next()
	}
}

// AuthUser returns the username AuthRequired bound to this request.
func AuthUser(ginCtx *gin.Context) string {
	return ginCtx.GetString(authUserKey)
}
