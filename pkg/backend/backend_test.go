package backend

import (
	"strings"
	"testing"

	"github.com/matzehuels/depot/pkg/backend/cache"
	"github.com/matzehuels/depot/pkg/backend/url"
	"github.com/matzehuels/depot/pkg/workflow"
)

func TestRegister(t *testing.T) {
	kinds := NewRegistry().Kinds()
	if len(kinds) != 2 || kinds[0] != "cache" || kinds[1] != "url" {
		t.Errorf("Kinds = %v", kinds)
	}
}

func TestBuildWorkflow(t *testing.T) {
	dir := t.TempDir()
	wf, err := NewRegistry().BuildWorkflow(workflow.Spec{
		Fetch: []workflow.Entry{
			{Kind: "cache", Decode: func(v any) error {
				v.(*cache.Config).Dir = dir
				return nil
			}},
			{Kind: "url", Decode: func(v any) error {
				v.(*url.Config).URL = "https://repo.example.com/savant"
				return nil
			}},
		},
		Publish: []workflow.Entry{
			{Kind: "cache", Decode: func(v any) error {
				v.(*cache.Config).Dir = dir
				return nil
			}},
		},
	}, workflow.Env{})
	if err != nil {
		t.Fatal(err)
	}

	fetch := wf.Fetch.Backends()
	if len(fetch) != 2 {
		t.Fatalf("fetch chain has %d backends", len(fetch))
	}
	if fetch[0].Name() != "cache:"+dir {
		t.Errorf("first backend = %s", fetch[0].Name())
	}
	if !strings.HasPrefix(fetch[1].Name(), "url:https://repo.example.com") {
		t.Errorf("second backend = %s", fetch[1].Name())
	}
}

func TestBuildWorkflowInvalidURL(t *testing.T) {
	_, err := NewRegistry().BuildWorkflow(workflow.Spec{
		Fetch: []workflow.Entry{{Kind: "url", Decode: func(v any) error { return nil }}},
	}, workflow.Env{})
	if err == nil || !strings.Contains(err.Error(), "url attribute is required") {
		t.Errorf("err = %v", err)
	}
}
