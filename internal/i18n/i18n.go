// Package i18n negotiates the response language and localizes user-facing
// messages. English and Traditional Chinese are supported.
package i18n

import (
	"context"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Supported languages.
var (
	English            = language.English
	TraditionalChinese = language.MustParse("zh-Hant")
)

var (
	supported = []language.Tag{English, TraditionalChinese}
	matcher   = language.NewMatcher(supported)
)

// Message keys.
const (
	MsgRecommendAI      = "recommend.ai"
	MsgRecommendMock    = "recommend.mock"
	MsgUploadDone       = "upload.done"
	MsgUploadMock       = "upload.mock"
	MsgCleanupDone      = "cleanup.done"
	MsgInvalidRequest   = "error.invalid_request"
	MsgValidation       = "error.validation"
	MsgImageRequired    = "error.image_required"
	MsgFileRequired     = "error.file_required"
	MsgFileTooLarge     = "error.file_too_large"
	MsgNotImage         = "error.not_image"
	MsgBusy             = "error.busy"
	MsgUnauthorized     = "error.unauthorized"
	MsgNotFound         = "error.not_found"
	MsgInternal         = "error.internal"
	MsgTaskIDRequired   = "error.task_id_required"
	MsgMethodNotAllowed = "error.method_not_allowed"
)

var messages = map[string][2]string{
	MsgRecommendAI:      {"AI recommendations ready", "AI 推薦完成"},
	MsgRecommendMock:    {"Mock recommendations (set GEMINI_API_KEY or MINIMAX_API_KEY)", "Mock 推薦（請設定 GEMINI_API_KEY 或 MINIMAX_API_KEY）"},
	MsgUploadDone:       {"Upload complete", "上傳完成"},
	MsgUploadMock:       {"Mock upload (configure storage to keep files)", "Mock 上傳（請設定 Firebase Storage）"},
	MsgCleanupDone:      {"Deleted %d finished tasks", "已刪除 %d 個已結束的任務"},
	MsgInvalidRequest:   {"Invalid request format", "請求格式錯誤"},
	MsgValidation:       {"Validation failed", "資料驗證失敗"},
	MsgImageRequired:    {"Image URL is required", "請提供圖片網址"},
	MsgFileRequired:     {"An image file is required", "請上傳圖片檔案"},
	MsgFileTooLarge:     {"Image exceeds the size limit", "圖片超過大小限制"},
	MsgNotImage:         {"Only image files are accepted", "僅接受圖片檔案"},
	MsgBusy:             {"Server is busy, please try again later", "伺服器忙碌中，請稍後再試"},
	MsgUnauthorized:     {"Unauthorized", "未授權"},
	MsgNotFound:         {"Resource not found", "找不到資源"},
	MsgInternal:         {"An unexpected error occurred", "發生未預期的錯誤"},
	MsgTaskIDRequired:   {"Task ID is required", "請提供任務 ID"},
	MsgMethodNotAllowed: {"Method not allowed", "不支援的請求方法"},
}

var builder = newCatalog()

func newCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(English))
	for key, texts := range messages {
		_ = b.SetString(English, key, texts[0])
		_ = b.SetString(TraditionalChinese, key, texts[1])
	}
	return b
}

// Supported returns the languages messages exist for.
func Supported() []language.Tag {
	return append([]language.Tag(nil), supported...)
}

// Match maps any tag to the closest supported language, or fallback when
// nothing is close.
func Match(fallback language.Tag, tags ...language.Tag) language.Tag {
	if len(tags) == 0 {
		return fallback
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return fallback
	}
	return supported[index]
}

// Parse returns the supported language closest to s, or fallback.
func Parse(s string, fallback language.Tag) language.Tag {
	tag, err := language.Parse(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return Match(fallback, tag)
}

// Negotiate picks the response language from an explicit locale header,
// then the Accept-Language header, then the fallback.
func Negotiate(explicit, acceptLanguage string, fallback language.Tag) language.Tag {
	if strings.TrimSpace(explicit) != "" {
		if tag, err := language.Parse(strings.TrimSpace(explicit)); err == nil {
			return Match(fallback, tag)
		}
	}
	if strings.TrimSpace(acceptLanguage) != "" {
		if tags, _, err := language.ParseAcceptLanguage(acceptLanguage); err == nil {
			return Match(fallback, tags...)
		}
	}
	return fallback
}

// T returns the message for key in the given language, formatted with args.
// Unknown keys are returned as is.
func T(tag language.Tag, key string, args ...any) string {
	return message.NewPrinter(tag, message.Catalog(builder)).Sprintf(key, args...)
}

type contextKey struct{}

// WithLanguage stores the negotiated language in the context.
func WithLanguage(ctx context.Context, tag language.Tag) context.Context {
	return context.WithValue(ctx, contextKey{}, tag)
}

// FromContext returns the negotiated language, English when none was set.
func FromContext(ctx context.Context) language.Tag {
	if tag, ok := ctx.Value(contextKey{}).(language.Tag); ok {
		return tag
	}
	return English
}

// TC is T with the language taken from the context.
func TC(ctx context.Context, key string, args ...any) string {
	return T(FromContext(ctx), key, args...)
}
