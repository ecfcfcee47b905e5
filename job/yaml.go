package job

import "gopkg.in/yaml.v3"

// spec is the on-disk shape accepted by LoadTaskListFromYAML: a name, an
// ordered task list, and an optional input payload.
type spec struct {
	Name  string   `yaml:"name"`
	Tasks []string `yaml:"tasks"`
	Input any      `yaml:"input"`
}

// LoadTaskListFromYAML builds a Job from a small YAML document:
//
//	name: ingest-report
//	tasks: [fetch, transform, publish]
//	input:
//	  source: s3://bucket/key
//
// It is a convenience constructor for callers that keep their pipeline
// definitions as static configuration rather than Go literals; it performs
// no validation beyond what New itself performs.
func LoadTaskListFromYAML(doc []byte) (*Job, error) {
	var s spec
	if err := yaml.Unmarshal(doc, &s); err != nil {
		return nil, &BadConfig{Reason: "invalid yaml: " + err.Error()}
	}
	return New(s.Tasks, s.Input, s.Name)
}
