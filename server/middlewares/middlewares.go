package middlewares

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/plaza-social/plaza/utils"
	appflag "github.com/plaza-social/plaza/utils/flag"
)

// SessionTTL is how long a session token stays valid without use.
// Every authenticated request refreshes it.
const SessionTTL = 72 * time.Hour

var (
	// sessionStore resolves opaque session tokens. Before using any
	// middleware, make sure it's initialized correctly via Setup.
	sessionStore *utils.RedisStore
)

// Setup initializes all package scoped variables that are needed to perform
// middleware functionalities. This function must be called before any
// middleware is used.
func Setup(store *utils.RedisStore) {
	if store == nil {
		// Abort directly if the session store isn't set up, which is
		// crucial for server side authorization.
		log.Fatal("session store is required for auth middleware")
	}
	sessionStore = store
}

// tokenFromRequest pulls the session token from the Authorization
// bearer header, falling back to the "token" query parameter which the
// websocket endpoint uses since browsers cannot set headers there.
func tokenFromRequest(c *gin.Context) string {
	authorization := c.GetHeader("Authorization")
	if strings.HasPrefix(authorization, "Bearer ") {
		return strings.TrimPrefix(authorization, "Bearer ")
	}
	return c.Query("token")
}

// Session middleware fetches the opaque session token, resolves it to
// a user id and adds a new field "sub" that stores the user's id. It
// returns error on token not provided or token unknown/expired.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		if appflag.ByPassAuth {
			// Local debugging only, trust whatever "sub" the caller sent.
			c.Next()
			return
		}

		token := tokenFromRequest(c)

		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code": utils.ErrorTokenAuthFail,
				"msg":  "empty session token",
			})
			c.Abort()
			return
		}

		userId, err := sessionStore.GetSession(token, SessionTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"code": utils.ErrorInternal,
				"msg":  err.Error(),
			})
			c.Abort()
			return
		}
		if userId == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code": utils.ErrorTokenAuthFail,
				"msg":  "unknown or expired session token",
			})
			c.Abort()
			return
		}

		// Successfully validated the session, expose the user id as the
		// "sub" header for downstream handlers.
		c.Request.Header.Del("token")
		c.Request.Header.Set("sub", userId)

		// before request
		c.Next()
	}
}
