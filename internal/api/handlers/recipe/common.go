package recipe

import (
	"errors"
	"io"
	"strings"

	"recept/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// bindContent 讀取 {content, message} 請求；content 不可為空白
func bindContent(c *gin.Context) (common.ContentRequest, bool) {
	var req common.ContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty body")
		}
		common.LogWarn("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestid.Get(c)),
		)
		c.JSON(common.ErrorPayload(common.ErrInvalidRequest.Wrap(err)))
		return req, false
	}
	if strings.TrimSpace(req.Content) == "" {
		c.JSON(common.ErrorPayload(common.NewValidationError("content: Required")))
		return req, false
	}
	return req, true
}

// respondError 記錄並回傳錯誤
func respondError(c *gin.Context, msg string, err error) {
	status, body := common.ErrorPayload(err)
	fields := []zap.Field{
		zap.Error(err),
		zap.Int("status", status),
		zap.String("request_id", requestid.Get(c)),
	}
	if status >= 500 {
		common.LogError(msg, fields...)
	} else {
		common.LogDebug(msg, fields...)
	}
	_ = c.Error(err)
	c.JSON(status, body)
}

// splitTags 解析 "a,b" 或重複的 ?tags= 參數
func splitTags(values []string) []string {
	var out []string
	for _, v := range values {
		out = append(out, common.SplitList(v)...)
	}
	return out
}
