package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractVariables(t *testing.T) {
	vars := ExtractVariables("Hello {{name}}, your {{name}} is due {{date}}")
	assert.Equal(t, []string{"name", "date"}, vars, "variables must be deduplicated in first-appearance order")
}

func TestExtractVariables_NoPlaceholders(t *testing.T) {
	assert.Empty(t, ExtractVariables("こんにちは"))
}

func TestExtractVariables_IgnoresMalformed(t *testing.T) {
	vars := ExtractVariables("{{ok}} {not_one} {{bad name}} {{also-bad}}")
	assert.Equal(t, []string{"ok"}, vars)
}

func TestRenderTemplate_ReplacesAllOccurrences(t *testing.T) {
	out := RenderTemplate("{{name}}と{{name}}", map[string]string{"name": "田中"})
	assert.Equal(t, "田中と田中", out)
}

func TestRenderTemplate_KeepsUnresolvedPlaceholders(t *testing.T) {
	out := RenderTemplate("👤 {{staff_name}} 📅 {{absence_date}}", map[string]string{"staff_name": "田中美咲"})
	assert.Equal(t, "👤 田中美咲 📅 {{absence_date}}", out, "missing context keys must stay verbatim")
}

func TestRenderTemplate_Deterministic(t *testing.T) {
	body := "【{{salon_name}}】{{staff_name}}さん {{missing}}"
	vars := map[string]string{"salon_name": "カルサクサロン", "staff_name": "佐藤"}

	first := RenderTemplate(body, vars)
	second := RenderTemplate(body, vars)
	assert.Equal(t, first, second)
}

func TestRenderTemplate_NoRecursiveExpansion(t *testing.T) {
	out := RenderTemplate("{{a}}", map[string]string{"a": "{{b}}", "b": "x"})
	// a substituted value containing a placeholder is not re-expanded
	assert.Contains(t, out, "{{b}}")
	assert.NotContains(t, out, "x")
}

// Placeholder closure: whatever remains after rendering is exactly the
// extracted variable set minus the context keys.
func TestRenderTemplate_PlaceholderClosure(t *testing.T) {
	body := "{{a}} {{b}} {{c}} {{a}}"
	vars := map[string]string{"a": "1", "c": "3"}

	out := RenderTemplate(body, vars)
	assert.Equal(t, []string{"b"}, ExtractVariables(out))
}
