package importer

import (
	"fmt"
	"strings"

	"github.com/sinaulab/sinau/internal/domain"
)

// ValidateCourseSchema checks the schema before conversion and returns every
// problem found, not just the first.
func ValidateCourseSchema(schema *CourseSchema) []error {
	var errs []error

	errs = append(errs, validateDefaults(schema.Defaults)...)
	if len(schema.Modules) == 0 && len(schema.Users) == 0 {
		errs = append(errs, fmt.Errorf("course file defines no modules and no users"))
	}

	refs := newRefSet()
	for i := range schema.Modules {
		errs = append(errs, validateModule(fmt.Sprintf("modules[%d]", i), &schema.Modules[i], refs)...)
	}
	for i, u := range schema.Users {
		errs = append(errs, validateUser(fmt.Sprintf("users[%d]", i), u, refs)...)
	}
	return errs
}

// refSet tracks refs per collection; a ref only has to be unique among
// entities stored in the same table.
type refSet map[string]map[string]bool

func newRefSet() refSet {
	return refSet{}
}

func (s refSet) claim(collection, field, ref string) error {
	if ref == "" {
		return fmt.Errorf("%s.ref is required", field)
	}
	if strings.TrimSpace(ref) != ref {
		return fmt.Errorf("%s.ref %q must not have surrounding spaces", field, ref)
	}
	if s[collection] == nil {
		s[collection] = map[string]bool{}
	}
	if s[collection][ref] {
		return fmt.Errorf("%s.ref: duplicate %s ref %q", field, collection, ref)
	}
	s[collection][ref] = true
	return nil
}

func validateDefaults(d *DefaultsImport) []error {
	if d == nil {
		return nil
	}
	var errs []error
	errs = append(errs, validatePoints("defaults.points", d.Points)...)
	errs = append(errs, validateTierPoints("defaults.assignment_points", d.AssignmentPoints)...)
	return errs
}

func validateModule(prefix string, m *ModuleImport, refs refSet) []error {
	var errs []error
	if err := refs.claim("module", prefix, m.Ref); err != nil {
		errs = append(errs, err)
	}
	if m.Title == "" {
		errs = append(errs, fmt.Errorf("%s.title is required", prefix))
	}

	for i, u := range m.Materials {
		p := fmt.Sprintf("%s.materials[%d]", prefix, i)
		errs = appendErr(errs, refs.claim(string(domain.KindMaterial), p, u.Ref))
		errs = append(errs, requireField(p+".title", u.Title)...)
		errs = append(errs, validatePoints(p+".points", u.Points)...)
	}
	for i, u := range m.Enrichments {
		p := fmt.Sprintf("%s.enrichments[%d]", prefix, i)
		errs = appendErr(errs, refs.claim(string(domain.KindEnrichment), p, u.Ref))
		errs = append(errs, requireField(p+".title", u.Title)...)
		errs = append(errs, validatePoints(p+".points", u.Points)...)
		for j, v := range u.Videos {
			vp := fmt.Sprintf("%s.videos[%d]", p, j)
			errs = appendErr(errs, refs.claim("video", vp, v.Ref))
			errs = append(errs, requireField(vp+".url", v.URL)...)
		}
	}
	for i, u := range m.Cpmks {
		p := fmt.Sprintf("%s.cpmks[%d]", prefix, i)
		errs = appendErr(errs, refs.claim(string(domain.KindCpmk), p, u.Ref))
		errs = append(errs, requireField(p+".code", u.Code)...)
		errs = append(errs, validatePoints(p+".points", u.Points)...)
	}
	for i, u := range m.LearningObjectives {
		p := fmt.Sprintf("%s.learning_objectives[%d]", prefix, i)
		errs = appendErr(errs, refs.claim(string(domain.KindLearningObjective), p, u.Ref))
		errs = append(errs, requireField(p+".description", u.Description)...)
		errs = append(errs, validatePoints(p+".points", u.Points)...)
	}
	for i, u := range m.Quizzes {
		p := fmt.Sprintf("%s.quizzes[%d]", prefix, i)
		errs = appendErr(errs, refs.claim(string(domain.KindQuiz), p, u.Ref))
		errs = append(errs, requireField(p+".title", u.Title)...)
		errs = append(errs, validatePoints(p+".points", u.Points)...)
	}
	for i, u := range m.Assignments {
		p := fmt.Sprintf("%s.assignments[%d]", prefix, i)
		errs = appendErr(errs, refs.claim(string(domain.KindAssignment), p, u.Ref))
		errs = append(errs, requireField(p+".title", u.Title)...)
		if u.Deadline == "" {
			errs = append(errs, fmt.Errorf("%s.deadline is required", p))
		} else if _, err := parseDeadline(u.Deadline); err != nil {
			errs = append(errs, fmt.Errorf("%s.deadline: %w", p, err))
		}
		errs = append(errs, validateTierPoints(p+".points", u.Points)...)
	}
	return errs
}

func validateUser(prefix string, u UserImport, refs refSet) []error {
	var errs []error
	errs = appendErr(errs, refs.claim("user", prefix, u.Ref))
	errs = append(errs, requireField(prefix+".name", u.Name)...)
	if u.Role != "" && !domain.ValidRoles[u.Role] {
		errs = append(errs, fmt.Errorf("%s.role: invalid value %q", prefix, u.Role))
	}
	return errs
}

func validatePoints(field string, p *int) []error {
	if p != nil && *p < 0 {
		return []error{fmt.Errorf("%s must not be negative", field)}
	}
	return nil
}

func validateTierPoints(field string, tp *TierPointsImport) []error {
	if tp == nil {
		return nil
	}
	if tp.Early < 0 || tp.Ontime < 0 || tp.Late < 0 {
		return []error{fmt.Errorf("%s must not be negative", field)}
	}
	return nil
}

func requireField(field, value string) []error {
	if strings.TrimSpace(value) == "" {
		return []error{fmt.Errorf("%s is required", field)}
	}
	return nil
}

func appendErr(errs []error, err error) []error {
	if err != nil {
		return append(errs, err)
	}
	return errs
}
