package domain

// Test types supported by the pipeline test runner.
const (
	TestTypeNotNull       = "not_null"
	TestTypeUnique        = "unique"
	TestTypePositive      = "positive"
	TestTypeRelationships = "relationships"
	TestTypeCustomSQL     = "custom_sql"
)

// Source is an upstream table the pipeline reads but does not own.
// Sources must exist before any model runs; a missing source aborts
// the whole build.
type Source struct {
	Schema string
	Name   string
}

// Relation returns the schema-qualified name of the source table.
func (s Source) Relation() string {
	return s.Schema + "." + s.Name
}

// Model is a single SQL transformation materialized as a table.
type Model struct {
	Name        string
	Schema      string
	Description string
	SQL         string
	DependsOn   []string // relations: either sources or other models
	Tests       []ModelTest
}

// Relation returns the schema-qualified name of the model's table.
func (m *Model) Relation() string {
	return m.Schema + "." + m.Name
}

// ModelTest is a data quality check run after a model is materialized.
// A test passes when its generated query returns zero rows.
type ModelTest struct {
	Name     string
	TestType string
	Column   string
	ToModel  string // relationships: referenced model name
	ToColumn string // relationships: referenced column
	SQL      string // custom_sql: full query returning violating rows
}
