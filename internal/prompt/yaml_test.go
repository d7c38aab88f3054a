package prompt

import (
	"strings"
	"testing"
	"testing/fstest"
)

func neuraplayPrompts() fstest.MapFS {
	return fstest.MapFS{
		"prompts/persona.yml": {Data: []byte("system: |\n  You are Neura, a friendly learning companion.\n")},
		"prompts/catalog.yaml": {Data: []byte(
			"game: \"{name} helps you practise {skills}.\"\n" +
				"recommendation_intro: \"Here are some games:\"\n" +
				"max_items: 3\n",
		)},
	}
}

func TestLoadYAMLEntry(t *testing.T) {
	entry, err := LoadYAMLEntry(neuraplayPrompts(), "prompts/catalog.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry["recommendation_intro"] != "Here are some games:" {
		t.Fatalf("unexpected intro: %s", entry["recommendation_intro"])
	}
	if entry["max_items"] != "3" {
		t.Fatalf("unexpected max_items: %s", entry["max_items"])
	}
}

func TestLoadYAMLEntryRejectsTemplatedSystem(t *testing.T) {
	fsys := fstest.MapFS{
		"persona.yml": {Data: []byte("system: \"Hello {child_name}\"\n")},
	}
	if _, err := LoadYAMLEntry(fsys, "persona.yml"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoadYAMLEntryRejectsNestedValues(t *testing.T) {
	fsys := fstest.MapFS{
		"catalog.yml": {Data: []byte("games:\n  - focus-forest\n")},
	}
	if _, err := LoadYAMLEntry(fsys, "catalog.yml"); err == nil {
		t.Fatalf("expected scalar error")
	}
}

func TestLoadYAMLDir(t *testing.T) {
	entries, err := LoadYAMLDir(neuraplayPrompts(), "prompts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 prompts, got %d", len(entries))
	}
	if !strings.HasPrefix(entries["persona"]["system"], "You are Neura") {
		t.Fatalf("unexpected persona: %q", entries["persona"]["system"])
	}
}

func TestLoadYAMLDirRejectsDuplicateNames(t *testing.T) {
	fsys := fstest.MapFS{
		"prompts/safety.yml":  {Data: []byte("user: a\n")},
		"prompts/safety.yaml": {Data: []byte("user: b\n")},
	}
	if _, err := LoadYAMLDir(fsys, "prompts"); err == nil {
		t.Fatalf("expected duplicate name error")
	}
}

func TestBundleFieldAndRender(t *testing.T) {
	bundle, err := LoadBundle(neuraplayPrompts(), "prompts", "assistant")
	if err != nil {
		t.Fatalf("load bundle: %v", err)
	}
	if names := bundle.Names(); len(names) != 2 || names[0] != "catalog" || names[1] != "persona" {
		t.Fatalf("unexpected names: %v", names)
	}

	got, err := bundle.Render("catalog", "game", map[string]string{"name": "Memory Galaxy", "skills": "visual recall"})
	if err != nil {
		t.Fatalf("unexpected render error: %v", err)
	}
	if got != "Memory Galaxy helps you practise visual recall." {
		t.Fatalf("unexpected render: %s", got)
	}

	if _, err := bundle.Field("catalog", "recommendation_outro"); err == nil || !strings.Contains(err.Error(), "catalog.recommendation_outro") {
		t.Fatalf("expected missing field error, got %v", err)
	}
	if _, err := bundle.Entry("safety"); err == nil {
		t.Fatalf("expected missing prompt error")
	}
}

func TestNilBundle(t *testing.T) {
	var bundle *Bundle
	if _, err := bundle.Field("persona", "system"); err == nil {
		t.Fatalf("expected not initialized error")
	}
	if bundle.Names() != nil {
		t.Fatalf("expected nil names")
	}
}
