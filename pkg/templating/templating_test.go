package templating_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinywideclouds/go-notihub/pkg/dispatch"
	"github.com/tinywideclouds/go-notihub/pkg/templating"
)

func newSet(t *testing.T) *templating.Set {
	t.Helper()
	set, err := templating.NewSet(map[string]templating.Template{
		"welcome": {
			Subject: "Welcome {{.name}}",
			Text:    "Hi {{.name}}, thanks for joining.",
			HTML:    "<p>Hi {{.name}}</p>",
		},
		"plain": {Subject: "Static", Text: "No data needed"},
	})
	require.NoError(t, err)
	return set
}

func TestRender(t *testing.T) {
	set := newSet(t)

	t.Run("Happy Path - All parts rendered", func(t *testing.T) {
		out, err := set.Render("welcome", map[string]any{"name": "Ada"}, "")
		require.NoError(t, err)
		assert.Equal(t, "Welcome Ada", out.Subject)
		assert.Equal(t, "Hi Ada, thanks for joining.", out.Text)
		assert.Equal(t, "<p>Hi Ada</p>", out.HTML)
	})

	t.Run("HTML values are escaped", func(t *testing.T) {
		out, err := set.Render("welcome", map[string]any{"name": "<script>"}, "")
		require.NoError(t, err)
		assert.Equal(t, "<p>Hi &lt;script&gt;</p>", out.HTML)
		assert.Equal(t, "Hi <script>, thanks for joining.", out.Text)
	})

	t.Run("Subject override", func(t *testing.T) {
		out, err := set.Render("welcome", map[string]any{"name": "Ada"}, "Custom")
		require.NoError(t, err)
		assert.Equal(t, "Custom", out.Subject)
	})

	t.Run("Nil data with a data-free template", func(t *testing.T) {
		out, err := set.Render("plain", nil, "")
		require.NoError(t, err)
		assert.Equal(t, "No data needed", out.Text)
		assert.Empty(t, out.HTML)
	})

	t.Run("Missing key is an error", func(t *testing.T) {
		_, err := set.Render("welcome", map[string]any{}, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name")
	})

	t.Run("Unknown template", func(t *testing.T) {
		_, err := set.Render("nope", nil, "")
		assert.ErrorIs(t, err, dispatch.ErrNotFound)
	})
}

func TestNewSet(t *testing.T) {
	t.Run("Parse error", func(t *testing.T) {
		_, err := templating.NewSet(map[string]templating.Template{"bad": {Text: "{{.name"}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "template bad text")
	})

	t.Run("Empty body rejected", func(t *testing.T) {
		_, err := templating.NewSet(map[string]templating.Template{"empty": {Subject: "x"}})
		assert.ErrorIs(t, err, dispatch.ErrValidation)
	})

	t.Run("Names", func(t *testing.T) {
		assert.ElementsMatch(t, []string{"welcome", "plain"}, newSet(t).Names())
	})
}
