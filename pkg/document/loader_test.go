package document_test

import (
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-formflow/pkg/document"
)

func TestLoadFSJSONAndYAML(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"forms/onboarding.json": &fstest.MapFile{Data: []byte(`{
			"rootNode": {"id": "root", "type": "section", "items": [
				{"id": "page-1", "type": "page", "label": "Welcome"}
			]}
		}`)},
		"forms/feedback.yaml": &fstest.MapFile{Data: []byte(`
rootNode:
  id: root
  type: section
  items:
    - id: page-1
      type: page
      label: Feedback
      items:
        - id: block-score
          type: block
          fieldName: score
`)},
		"forms/readme.txt": &fstest.MapFile{Data: []byte("not a document")},
	}

	store, err := document.LoadFS(fsys)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if store.Empty() {
		t.Fatalf("expected documents to be loaded")
	}
	if len(store.Paths()) != 2 {
		t.Fatalf("expected 2 documents, got %d: %v", len(store.Paths()), store.Paths())
	}

	doc, ok := store.Document("forms/feedback.yaml")
	if !ok {
		t.Fatalf("yaml document missing")
	}
	block, ok := doc.Tree.Node("block-score")
	if !ok || block.FieldName != "score" {
		t.Fatalf("yaml tree incomplete: %#v", block)
	}
}

func TestLoadFSSanitizesLabels(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"form.json": &fstest.MapFile{Data: []byte(`{
			"rootNode": {"id": "root", "type": "section", "items": [
				{"id": "page-1", "type": "page",
					"label": "<script>alert(1)</script>Welcome",
					"items": [
						{"id": "block-email", "type": "block", "fieldName": "email",
							"validationRules": [
								{"operator": "isEmail", "message": "<img src=x onerror=alert(1)>enter a valid email"}
							]}
					]}
			]}
		}`)},
	}

	store, err := document.LoadFS(fsys)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	doc, _ := store.Document("form.json")

	page, _ := doc.Tree.Node("page-1")
	if page.Label != "Welcome" {
		t.Fatalf("label not sanitised: %q", page.Label)
	}
	block, _ := doc.Tree.Node("block-email")
	if got := block.ValidationRules[0].Message; got != "enter a valid email" {
		t.Fatalf("message not sanitised: %q", got)
	}
}

func TestLoadFSRejectsEmptyFile(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"empty.json": &fstest.MapFile{Data: []byte("  ")},
	}
	if _, err := document.LoadFS(fsys); err == nil {
		t.Fatalf("expected an error for an empty document file")
	}
}
