package middleware

import (
	"net/http"
	"strconv"

	"recept/internal/core/auth"
	"recept/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EditorKey gin context 中編輯者帳號的鍵
const EditorKey = "editor"

// EditorPolicy 編輯權限來源
type EditorPolicy interface {
	Enabled() bool
	IsEditAllowed(id auth.Identity) bool
}

// RequireEditor 以 HTTP Basic 帳號與代碼驗證編輯者。
// 名單為空時編輯功能停用，回傳 503。
func RequireEditor(policy EditorPolicy, realm string) gin.HandlerFunc {
	challenge := "Basic realm=" + strconv.Quote(realm)
	return func(c *gin.Context) {
		if policy == nil || !policy.Enabled() {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, common.MessageResponse{
				Error: common.ErrEditDisabled.Message,
				Code:  common.ErrEditDisabled.Code,
			})
			return
		}

		login, code, ok := c.Request.BasicAuth()
		if !ok || !policy.IsEditAllowed(auth.Identity{Login: login, Code: code}) {
			if ok {
				common.LogWarn("編輯驗證失敗",
					zap.String("login", login),
					zap.String("ip", c.ClientIP()),
				)
			}
			c.Header("WWW-Authenticate", challenge)
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.MessageResponse{
				Error: common.ErrUnauthorized.Message,
				Code:  common.ErrCodeUnauthorized,
			})
			return
		}

		c.Set(EditorKey, login)
		c.Next()
	}
}
