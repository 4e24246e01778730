package i18n

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestNegotiate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		explicit string
		accept   string
		want     language.Tag
	}{
		{name: "explicit wins", explicit: "zh-Hant", accept: "en-US", want: TraditionalChinese},
		{name: "taiwan region maps to traditional", explicit: "zh-TW", want: TraditionalChinese},
		{name: "accept-language used", accept: "zh-TW,zh;q=0.9,en;q=0.8", want: TraditionalChinese},
		{name: "accept-language english", accept: "en-GB,en;q=0.9", want: English},
		{name: "invalid explicit falls through", explicit: "!!", accept: "zh-Hant", want: TraditionalChinese},
		{name: "unsupported language falls back", accept: "de-DE", want: English},
		{name: "nothing given", want: English},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Negotiate(tc.explicit, tc.accept, English))
		})
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	assert.Equal(t, TraditionalChinese, Parse("zh-Hant", English))
	assert.Equal(t, English, Parse("en", TraditionalChinese))
	assert.Equal(t, TraditionalChinese, Parse("not a tag!", TraditionalChinese))
}

func TestT(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Upload complete", T(English, MsgUploadDone))
	assert.Equal(t, "上傳完成", T(TraditionalChinese, MsgUploadDone))
	assert.Equal(t, "Deleted 3 finished tasks", T(English, MsgCleanupDone, 3))
	assert.Equal(t, "已刪除 3 個已結束的任務", T(TraditionalChinese, MsgCleanupDone, 3))
	assert.Equal(t, "unknown.key", T(English, "unknown.key"))
}

func TestCatalogComplete(t *testing.T) {
	t.Parallel()

	for key, texts := range messages {
		assert.NotEmpty(t, texts[0], "english text for %s", key)
		assert.NotEmpty(t, texts[1], "chinese text for %s", key)
	}
	assert.Len(t, Supported(), 2)
}

func TestContext(t *testing.T) {
	t.Parallel()

	assert.Equal(t, English, FromContext(context.Background()))

	ctx := WithLanguage(context.Background(), TraditionalChinese)
	assert.Equal(t, TraditionalChinese, FromContext(ctx))
	assert.Equal(t, "未授權", TC(ctx, MsgUnauthorized))
}
