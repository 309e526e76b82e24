package docs

import (
	"encoding/json"
	"testing"

	"github.com/swaggo/swag"
)

func TestDocRegistered(t *testing.T) {
	doc, err := swag.ReadDoc()
	if err != nil {
		t.Fatalf("ReadDoc: %v", err)
	}
	var parsed struct {
		Info  struct{ Title string } `json:"info"`
		Paths map[string]any         `json:"paths"`
	}
	if err := json.Unmarshal([]byte(doc), &parsed); err != nil {
		t.Fatalf("doc is not JSON: %v", err)
	}
	if parsed.Info.Title != "polyglot API" {
		t.Errorf("title = %q", parsed.Info.Title)
	}
	for _, p := range []string{"/v1/sessions", "/v1/sessions/{id}/translate", "/v1/sessions/{id}/speak/{source}"} {
		if _, ok := parsed.Paths[p]; !ok {
			t.Errorf("path %s missing", p)
		}
	}
}
