package main

import (
	"fmt"
	"io"

	"github.com/yukikurage/pmo-timeline-api/internal/services"
	"gopkg.in/yaml.v3"
)

type templateFile struct {
	Templates []templateSpec `yaml:"templates"`
}

type templateSpec struct {
	Name        string                       `yaml:"name"`
	ThreadType  string                       `yaml:"thread_type"`
	Description string                       `yaml:"description"`
	Tasks       []services.TemplateTaskInput `yaml:"tasks"`
}

// loadTemplates decodes a seed file. Unknown keys are rejected so typos do
// not silently drop fields.
func loadTemplates(r io.Reader) ([]services.TemplateInput, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file templateFile
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	inputs := make([]services.TemplateInput, 0, len(file.Templates))
	for i, spec := range file.Templates {
		if spec.Name == "" {
			return nil, fmt.Errorf("template #%d: name is required", i+1)
		}
		tasks := spec.Tasks
		if tasks == nil {
			tasks = []services.TemplateTaskInput{}
		}
		inputs = append(inputs, services.TemplateInput{
			Name:        &spec.Name,
			ThreadType:  &spec.ThreadType,
			Description: &spec.Description,
			Tasks:       tasks,
		})
	}
	return inputs, nil
}
