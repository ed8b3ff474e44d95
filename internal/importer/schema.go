package importer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// CourseSchema is the top-level structure of a course import file. Refs are
// kept as the stored ids so later commands can name units by them.
type CourseSchema struct {
	Defaults *DefaultsImport `json:"defaults,omitempty" yaml:"defaults,omitempty"`
	Modules  []ModuleImport  `json:"modules" yaml:"modules"`
	Users    []UserImport    `json:"users,omitempty" yaml:"users,omitempty"`
}

// DefaultsImport holds rewards applied to units that do not set their own.
type DefaultsImport struct {
	Points           *int              `json:"points,omitempty" yaml:"points,omitempty"`
	AssignmentPoints *TierPointsImport `json:"assignment_points,omitempty" yaml:"assignment_points,omitempty"`
}

type ModuleImport struct {
	Ref                string             `json:"ref" yaml:"ref"`
	Title              string             `json:"title" yaml:"title"`
	Description        string             `json:"description,omitempty" yaml:"description,omitempty"`
	Order              int                `json:"order" yaml:"order"`
	Materials          []MaterialImport   `json:"materials,omitempty" yaml:"materials,omitempty"`
	Enrichments        []EnrichmentImport `json:"enrichments,omitempty" yaml:"enrichments,omitempty"`
	Cpmks              []CpmkImport       `json:"cpmks,omitempty" yaml:"cpmks,omitempty"`
	LearningObjectives []ObjectiveImport  `json:"learning_objectives,omitempty" yaml:"learning_objectives,omitempty"`
	Quizzes            []QuizImport       `json:"quizzes,omitempty" yaml:"quizzes,omitempty"`
	Assignments        []AssignmentImport `json:"assignments,omitempty" yaml:"assignments,omitempty"`
}

type MaterialImport struct {
	Ref     string `json:"ref" yaml:"ref"`
	Title   string `json:"title" yaml:"title"`
	Content string `json:"content,omitempty" yaml:"content,omitempty"`
	Points  *int   `json:"points,omitempty" yaml:"points,omitempty"`
}

type EnrichmentImport struct {
	Ref    string        `json:"ref" yaml:"ref"`
	Title  string        `json:"title" yaml:"title"`
	URL    string        `json:"url,omitempty" yaml:"url,omitempty"`
	Points *int          `json:"points,omitempty" yaml:"points,omitempty"`
	Videos []VideoImport `json:"videos,omitempty" yaml:"videos,omitempty"`
}

type VideoImport struct {
	Ref   string `json:"ref" yaml:"ref"`
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
	URL   string `json:"url" yaml:"url"`
}

type CpmkImport struct {
	Ref      string   `json:"ref" yaml:"ref"`
	Code     string   `json:"code" yaml:"code"`
	Outcomes []string `json:"outcomes,omitempty" yaml:"outcomes,omitempty"`
	Points   *int     `json:"points,omitempty" yaml:"points,omitempty"`
}

type ObjectiveImport struct {
	Ref         string `json:"ref" yaml:"ref"`
	Description string `json:"description" yaml:"description"`
	Points      *int   `json:"points,omitempty" yaml:"points,omitempty"`
}

type QuizImport struct {
	Ref    string `json:"ref" yaml:"ref"`
	Title  string `json:"title" yaml:"title"`
	Points *int   `json:"points,omitempty" yaml:"points,omitempty"`
}

type AssignmentImport struct {
	Ref         string            `json:"ref" yaml:"ref"`
	Title       string            `json:"title" yaml:"title"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Deadline    string            `json:"deadline" yaml:"deadline"`
	Points      *TierPointsImport `json:"points,omitempty" yaml:"points,omitempty"`
}

// TierPointsImport is the reward for each submission tier.
type TierPointsImport struct {
	Early  int `json:"early" yaml:"early"`
	Ontime int `json:"ontime" yaml:"ontime"`
	Late   int `json:"late" yaml:"late"`
}

type UserImport struct {
	Ref   string `json:"ref" yaml:"ref"`
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
	Role  string `json:"role,omitempty" yaml:"role,omitempty"`
}

// LoadCourseSchema reads a course file. Files ending in .yaml or .yml are
// decoded as YAML, everything else as JSON.
func LoadCourseSchema(path string) (*CourseSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseCourseSchema(data, filepath.Ext(path))
}

// ParseCourseSchema decodes data according to ext (".json", ".yaml", ".yml").
func ParseCourseSchema(data []byte, ext string) (*CourseSchema, error) {
	var schema CourseSchema
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &schema); err != nil {
			return nil, fmt.Errorf("parsing course file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &schema); err != nil {
			return nil, fmt.Errorf("parsing course file: %w", err)
		}
	}
	return &schema, nil
}
