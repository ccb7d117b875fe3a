package common

// ErrorsResponse 驗證失敗時回傳的錯誤列表
type ErrorsResponse struct {
	Error []string `json:"error"`
}

// MessageResponse 單一錯誤訊息
type MessageResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// SavedResponse 儲存成功的回應
type SavedResponse struct {
	OK   bool   `json:"ok"`
	Slug string `json:"slug"`
	Path string `json:"path,omitempty"`
}

// ContentRequest 以 JSON 文字提交的食譜內容
type ContentRequest struct {
	Content string `json:"content"`
	Message string `json:"message,omitempty"`
}
