package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"recept/internal/infrastructure/config"
	"recept/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Check 單一依賴的就緒檢查
type Check func(ctx context.Context) error

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Storage   string                 `json:"storage"`
	Cache     string                 `json:"cache"`
	Runtime   map[string]interface{} `json:"runtime"`
}

// ReadinessResponse 就緒檢查響應
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HealthCheck 健康檢查處理器，設定由路由注入 context
func HealthCheck(c *gin.Context) {
	cfg, ok := c.MustGet("config").(*config.Config)
	if !ok {
		common.LogError("Invalid configuration type in context")
		c.JSON(http.StatusInternalServerError, common.MessageResponse{Error: "Invalid configuration type"})
		return
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	cacheBackend := "disabled"
	if cfg.Cache.Enabled {
		cacheBackend = cfg.Cache.Backend
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   cfg.App.Version,
		Storage:   cfg.Storage.Backend,
		Cache:     cacheBackend,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	})
}

// ReadinessCheck 就緒檢查處理器：任一依賴失敗時回傳 503
func ReadinessCheck(checks map[string]Check) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		resp := ReadinessResponse{Status: "ready", Checks: make(map[string]string, len(checks))}
		status := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				common.LogWarn("就緒檢查失敗", zap.String("check", name), zap.Error(err))
				resp.Checks[name] = err.Error()
				resp.Status = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		c.JSON(status, resp)
	}
}

// LivenessCheck 存活檢查處理器
func LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
