package webserver

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

//go:embed translations/*.json
var translationFiles embed.FS

// Translation holds translations for a specific language
type Translation map[string]string

// Translations holds all loaded translations
type Translations map[string]Translation

var translations Translations

// LoadTranslations loads every translations/<lang>.json file
func LoadTranslations() error {
	loaded := make(Translations)

	entries, err := fs.ReadDir(translationFiles, "translations")
	if err != nil {
		return err
	}

	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".json" {
			continue
		}

		data, err := translationFiles.ReadFile("translations/" + e.Name())
		if err != nil {
			return err
		}

		var trans Translation

		err = json.Unmarshal(data, &trans)
		if err != nil {
			return fmt.Errorf("failed to parse translation %s: %w", e.Name(), err)
		}

		loaded[strings.TrimSuffix(e.Name(), ".json")] = trans
	}

	translations = loaded

	return nil
}

// GetLanguageFromRequest determines the language from URL param, lang cookie or Accept-Language header
func GetLanguageFromRequest(r *http.Request) string {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		if isValidLanguage(lang) {
			return lang
		}
	}

	if cookie, err := r.Cookie("lang"); err == nil && isValidLanguage(cookie.Value) {
		return cookie.Value
	}

	acceptLang := r.Header.Get("Accept-Language")
	if acceptLang != "" {
		// Format: "en-US,en;q=0.9,uk;q=0.8"
		for lang := range strings.SplitSeq(acceptLang, ",") {
			lang = strings.TrimSpace(strings.Split(lang, ";")[0])
			lang = strings.ToLower(strings.Split(lang, "-")[0])

			if isValidLanguage(lang) {
				return lang
			}
		}
	}

	return "en"
}

func isValidLanguage(lang string) bool {
	_, exists := translations[lang]
	return exists
}

// GetTranslation returns the translation for key, falling back to English and then to the key itself
func GetTranslation(lang, key string) string {
	if trans, exists := translations[lang]; exists {
		if text, exists := trans[key]; exists {
			return text
		}
	}

	if trans, exists := translations["en"]; exists {
		if text, exists := trans[key]; exists {
			return text
		}
	}

	return key
}
