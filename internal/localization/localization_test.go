package localization_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"preloved/backend/internal/localization"
)

func staticLocalizer() *localization.Localizer {
	return localization.NewStatic("ko", map[string]map[string]string{
		"en": {
			"deal.reserved": "%s reserved the item.",
			"only.english":  "english only",
		},
		"ko": {
			"deal.reserved": "%s님이 예약했습니다.",
		},
	})
}

func TestGetReturnsTranslation(t *testing.T) {
	loc := staticLocalizer()
	assert.Equal(t, "%s reserved the item.", loc.Get("en", "deal.reserved"))
	assert.Equal(t, "%s님이 예약했습니다.", loc.Get("ko", "deal.reserved"))
}

func TestGetFallsBackToEnglish(t *testing.T) {
	loc := staticLocalizer()
	assert.Equal(t, "english only", loc.Get("ko", "only.english"))
	assert.Equal(t, "english only", loc.Get("fr", "only.english"))
}

func TestGetFallsBackToKey(t *testing.T) {
	loc := staticLocalizer()
	assert.Equal(t, "deal.unknown", loc.Get("en", "deal.unknown"))
}

func TestGetEmptyLangUsesDefault(t *testing.T) {
	loc := staticLocalizer()
	assert.Equal(t, "%s님이 예약했습니다.", loc.Get("", "deal.reserved"))
}

func TestMessageFormatsArguments(t *testing.T) {
	loc := staticLocalizer()
	assert.Equal(t, "mina reserved the item.", loc.Message("en", "deal.reserved", "mina"))
	assert.Equal(t, "english only", loc.Message("en", "only.english"))
}

func TestNewLoadsLanguageFiles(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "en.json"), []byte(`{"greet":"hello %s"}`), 0o644)
	assert.NoError(t, err)
	err = os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644)
	assert.NoError(t, err)

	loc, err := localization.New(dir, "en")
	assert.NoError(t, err)
	assert.Equal(t, "hello mina", loc.Message("en", "greet", "mina"))
}

func TestNewRejectsMissingDirectory(t *testing.T) {
	_, err := localization.New("/does/not/exist", "en")
	assert.Error(t, err)
}

func TestNewRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "en.json"), []byte(`{broken`), 0o644)
	assert.NoError(t, err)

	_, err = localization.New(dir, "en")
	assert.Error(t, err)
}
