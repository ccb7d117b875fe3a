package common

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// ErrorPayload 將錯誤轉成 HTTP 狀態碼與回應內容。
// 驗證錯誤回傳訊息列表，其餘只回傳對外訊息，不洩漏底層錯誤。
func ErrorPayload(err error) (int, interface{}) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, ErrorsResponse{Error: ve.Messages}
	}
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Status, MessageResponse{Error: ce.Message, Code: ce.Code}
	}
	return http.StatusInternalServerError, MessageResponse{
		Error: ErrInternalError.Message,
		Code:  ErrCodeInternalError,
	}
}
