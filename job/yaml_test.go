package job

import "testing"

func TestLoadTaskListFromYAML(t *testing.T) {
	doc := []byte(`
name: ingest-report
tasks: [fetch, transform, publish]
input:
  source: s3://bucket/key
`)
	j, err := LoadTaskListFromYAML(doc)
	if err != nil {
		t.Fatalf("LoadTaskListFromYAML: %v", err)
	}
	if j.Name() != "ingest-report" {
		t.Fatalf("expected name ingest-report, got %q", j.Name())
	}
	tasks := j.Tasks()
	if len(tasks) != 3 || tasks[0] != "fetch" || tasks[2] != "publish" {
		t.Fatalf("unexpected tasks: %v", tasks)
	}
	m, ok := j.Input().(map[string]any)
	if !ok || m["source"] != "s3://bucket/key" {
		t.Fatalf("unexpected input: %#v", j.Input())
	}
}

func TestLoadTaskListFromYAMLInvalid(t *testing.T) {
	if _, err := LoadTaskListFromYAML([]byte("not: [valid")); err == nil {
		t.Fatalf("expected error for malformed yaml")
	}
}
