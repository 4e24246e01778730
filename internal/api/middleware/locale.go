package middleware

import (
	"net/http"

	"github.com/phrazzld/styleai-api/internal/i18n"
	"golang.org/x/text/language"
)

// LocaleHeader lets clients pick the response language explicitly.
const LocaleHeader = "X-Locale"

// Locale returns middleware that negotiates the response language from
// X-Locale, then Accept-Language, then fallback.
func Locale(fallback language.Tag) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tag := i18n.Negotiate(r.Header.Get(LocaleHeader), r.Header.Get("Accept-Language"), fallback)
			w.Header().Set("Content-Language", tag.String())
			next.ServeHTTP(w, r.WithContext(i18n.WithLanguage(r.Context(), tag)))
		})
	}
}
