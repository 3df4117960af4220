// Package pipeline loads the embedded model project and materializes it
// as a DAG of DuckDB tables with post-materialization data tests.
package pipeline

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"nbalake/internal/domain"
)

//go:embed models/*.sql models/*.yaml
var modelFS embed.FS

const manifestPath = "models/nbalake.yaml"

// Project is the loaded and validated model project.
type Project struct {
	Name         string
	TargetSchema string
	Sources      []domain.Source
	Models       []domain.Model
}

// manifest mirrors the YAML project file.
type manifest struct {
	Project      string       `yaml:"project"`
	TargetSchema string       `yaml:"target_schema"`
	Sources      []sourceSpec `yaml:"sources"`
	Models       []modelSpec  `yaml:"models"`
}

type sourceSpec struct {
	Schema string `yaml:"schema"`
	Name   string `yaml:"name"`
}

type modelSpec struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	DependsOn   []string   `yaml:"depends_on"`
	Tests       []testSpec `yaml:"tests"`
}

type testSpec struct {
	Type     string `yaml:"type"`
	Name     string `yaml:"name"`
	Column   string `yaml:"column"`
	ToModel  string `yaml:"to_model"`
	ToColumn string `yaml:"to_column"`
	SQL      string `yaml:"sql"`
}

// LoadProject parses the embedded manifest and model SQL files.
func LoadProject() (*Project, error) {
	data, err := modelFS.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m manifest
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	if m.Project == "" {
		return nil, domain.ErrValidation("manifest: project name is required")
	}
	if m.TargetSchema == "" {
		return nil, domain.ErrValidation("manifest: target_schema is required")
	}

	p := &Project{Name: m.Project, TargetSchema: m.TargetSchema}

	for _, src := range m.Sources {
		if src.Schema == "" || src.Name == "" {
			return nil, domain.ErrValidation("manifest: source requires schema and name")
		}
		p.Sources = append(p.Sources, domain.Source{Schema: src.Schema, Name: src.Name})
	}

	for _, spec := range m.Models {
		model, err := buildModel(spec, m.TargetSchema)
		if err != nil {
			return nil, err
		}
		p.Models = append(p.Models, *model)
	}

	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func buildModel(spec modelSpec, targetSchema string) (*domain.Model, error) {
	if spec.Name == "" {
		return nil, domain.ErrValidation("manifest: model name is required")
	}

	sqlBytes, err := modelFS.ReadFile("models/" + spec.Name + ".sql")
	if err != nil {
		return nil, fmt.Errorf("read model SQL for %s: %w", spec.Name, err)
	}
	sqlText := strings.TrimSpace(string(sqlBytes))
	if sqlText == "" {
		return nil, domain.ErrValidation("model %s: SQL file is empty", spec.Name)
	}

	model := &domain.Model{
		Name:        spec.Name,
		Schema:      targetSchema,
		Description: spec.Description,
		SQL:         sqlText,
		DependsOn:   spec.DependsOn,
	}

	for _, t := range spec.Tests {
		test, err := buildTest(t, spec.Name)
		if err != nil {
			return nil, err
		}
		model.Tests = append(model.Tests, *test)
	}
	return model, nil
}

func buildTest(spec testSpec, modelName string) (*domain.ModelTest, error) {
	test := &domain.ModelTest{
		Name:     spec.Name,
		TestType: spec.Type,
		Column:   spec.Column,
		ToModel:  spec.ToModel,
		ToColumn: spec.ToColumn,
		SQL:      spec.SQL,
	}

	switch spec.Type {
	case domain.TestTypeNotNull, domain.TestTypeUnique, domain.TestTypePositive:
		if spec.Column == "" {
			return nil, domain.ErrValidation("model %s: %s test requires a column", modelName, spec.Type)
		}
	case domain.TestTypeRelationships:
		if spec.Column == "" || spec.ToModel == "" || spec.ToColumn == "" {
			return nil, domain.ErrValidation("model %s: relationships test requires column, to_model, and to_column", modelName)
		}
	case domain.TestTypeCustomSQL:
		if spec.SQL == "" {
			return nil, domain.ErrValidation("model %s: custom_sql test requires sql", modelName)
		}
		if spec.Name == "" {
			return nil, domain.ErrValidation("model %s: custom_sql test requires a name", modelName)
		}
	default:
		return nil, domain.ErrValidation("model %s: unknown test type %q", modelName, spec.Type)
	}

	if test.Name == "" {
		test.Name = spec.Type + "_" + spec.Column
	}
	return test, nil
}

// validate checks that model names are unique and every dependency
// resolves to a declared source or another model.
func (p *Project) validate() error {
	relations := make(map[string]bool, len(p.Sources)+len(p.Models))
	for _, src := range p.Sources {
		relations[src.Relation()] = true
	}

	modelNames := make(map[string]bool, len(p.Models))
	for i := range p.Models {
		m := &p.Models[i]
		if modelNames[m.Name] {
			return domain.ErrValidation("duplicate model name: %s", m.Name)
		}
		modelNames[m.Name] = true
		relations[m.Relation()] = true
	}

	for i := range p.Models {
		m := &p.Models[i]
		for _, dep := range m.DependsOn {
			if !relations[dep] {
				return domain.ErrValidation("model %s depends on unknown relation %s", m.Name, dep)
			}
		}
		for _, t := range m.Tests {
			if t.TestType == domain.TestTypeRelationships && !modelNames[t.ToModel] {
				return domain.ErrValidation("model %s: relationships test references unknown model %s", m.Name, t.ToModel)
			}
		}
	}
	return nil
}
