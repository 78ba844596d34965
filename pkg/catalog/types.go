package catalog

import (
	"fmt"
	"sync/atomic"
)

// SubQuestion is one sub-item of a composite question.
type SubQuestion struct {
	// ID is the sub-question identifier, unique across the catalog.
	ID string `yaml:"id"`

	// ParentQuestionID is filled during indexing from the enclosing
	// question; it does not appear in catalog files.
	ParentQuestionID string `yaml:"-"`

	// SubCode is the display code within the parent (e.g. "a", "b").
	SubCode string `yaml:"sub_code"`

	// Text is the sub-question wording.
	Text string `yaml:"text"`
}

// Question is one weighted checklist item.
type Question struct {
	// ID is the question identifier, unique across the catalog.
	ID string `yaml:"id"`

	// SectionID is filled during indexing from the enclosing section.
	SectionID string `yaml:"-"`

	// QCode is the checklist display code (e.g. "4.2").
	QCode string `yaml:"q_code"`

	// Weight is the point value of the question. Always positive.
	Weight int `yaml:"weight"`

	// RequiresAllSubsForYes marks a composite question: a Y answer is only
	// valid when every sub-question is answered Y or NA.
	RequiresAllSubsForYes bool `yaml:"requires_all_subs_for_yes"`

	// ISOReference cites the ISO 15189 clause the question assesses.
	ISOReference string `yaml:"iso_reference"`

	// Text is the question wording.
	Text string `yaml:"text"`

	// SubQuestions lists the question's sub-items, if any.
	SubQuestions []SubQuestion `yaml:"subquestions,omitempty"`
}

// Section groups related questions.
type Section struct {
	// ID is the section identifier, unique across the catalog.
	ID string `yaml:"id"`

	// Title is the section heading.
	Title string `yaml:"title"`

	// Questions lists the section's questions in checklist order.
	Questions []Question `yaml:"questions"`
}

// Catalog is an immutable, indexed question catalog.
type Catalog struct {
	// Version identifies the checklist edition (e.g. "slipta-v3").
	Version string `yaml:"version"`

	// Sections lists the catalog sections in checklist order.
	Sections []Section `yaml:"sections"`

	byQuestion    map[string]*Question
	bySubQuestion map[string]*SubQuestion
	totalWeight   int
}

// New builds an indexed catalog from sections, validating structural
// consistency. The returned catalog is immutable.
func New(version string, sections []Section) (*Catalog, error) {
	c := &Catalog{Version: version, Sections: sections}
	if err := c.index(); err != nil {
		return nil, err
	}
	return c, nil
}

// index builds the lookup maps and total weight, validating as it goes.
func (c *Catalog) index() error {
	c.byQuestion = make(map[string]*Question)
	c.bySubQuestion = make(map[string]*SubQuestion)
	c.totalWeight = 0

	seenCodes := make(map[string]string)
	for si := range c.Sections {
		section := &c.Sections[si]
		if section.ID == "" {
			return fmt.Errorf("section %d: missing id", si)
		}
		for qi := range section.Questions {
			q := &section.Questions[qi]
			if q.ID == "" {
				return fmt.Errorf("section %s: question %d: missing id", section.ID, qi)
			}
			if _, dup := c.byQuestion[q.ID]; dup {
				return fmt.Errorf("duplicate question id %q", q.ID)
			}
			if q.QCode != "" {
				if prev, dup := seenCodes[q.QCode]; dup {
					return fmt.Errorf("duplicate question code %q (questions %s and %s)", q.QCode, prev, q.ID)
				}
				seenCodes[q.QCode] = q.ID
			}
			if q.Weight <= 0 {
				return fmt.Errorf("question %s: weight must be positive, got %d", q.ID, q.Weight)
			}
			if q.RequiresAllSubsForYes && len(q.SubQuestions) == 0 {
				return fmt.Errorf("question %s: requires_all_subs_for_yes set but no subquestions", q.ID)
			}
			q.SectionID = section.ID
			c.byQuestion[q.ID] = q
			c.totalWeight += q.Weight

			for ssi := range q.SubQuestions {
				sub := &q.SubQuestions[ssi]
				if sub.ID == "" {
					return fmt.Errorf("question %s: subquestion %d: missing id", q.ID, ssi)
				}
				if _, dup := c.bySubQuestion[sub.ID]; dup {
					return fmt.Errorf("duplicate subquestion id %q", sub.ID)
				}
				sub.ParentQuestionID = q.ID
				c.bySubQuestion[sub.ID] = sub
			}
		}
	}

	if len(c.byQuestion) == 0 {
		return fmt.Errorf("catalog has no questions")
	}
	return nil
}

// Question returns the question with the given ID.
func (c *Catalog) Question(id string) (*Question, bool) {
	q, ok := c.byQuestion[id]
	return q, ok
}

// SubQuestion returns the sub-question with the given ID.
func (c *Catalog) SubQuestion(id string) (*SubQuestion, bool) {
	sub, ok := c.bySubQuestion[id]
	return sub, ok
}

// Parent returns the parent question of the given sub-question ID.
func (c *Catalog) Parent(subQuestionID string) (*Question, bool) {
	sub, ok := c.bySubQuestion[subQuestionID]
	if !ok {
		return nil, false
	}
	q, ok := c.byQuestion[sub.ParentQuestionID]
	return q, ok
}

// Questions returns every question in checklist order.
func (c *Catalog) Questions() []*Question {
	out := make([]*Question, 0, len(c.byQuestion))
	for si := range c.Sections {
		for qi := range c.Sections[si].Questions {
			out = append(out, &c.Sections[si].Questions[qi])
		}
	}
	return out
}

// TotalWeight returns the sum of all question weights.
func (c *Catalog) TotalWeight() int {
	return c.totalWeight
}

// QuestionCount returns the number of questions in the catalog.
func (c *Catalog) QuestionCount() int {
	return len(c.byQuestion)
}

// Provider supplies the currently active catalog. Implementations must be
// safe for concurrent use.
type Provider interface {
	// Current returns the active catalog. Never nil.
	Current() *Catalog
}

// static is a Provider that always returns the same catalog.
type static struct {
	catalog *Catalog
}

// Static returns a Provider fixed to the given catalog.
func Static(c *Catalog) Provider {
	return static{catalog: c}
}

// Current implements Provider.
func (s static) Current() *Catalog {
	return s.catalog
}

// Swappable is a Provider whose catalog can be replaced atomically, used
// with Watcher for hot reloading.
type Swappable struct {
	current atomic.Pointer[Catalog]
}

// NewSwappable returns a Swappable provider seeded with the given catalog.
func NewSwappable(c *Catalog) *Swappable {
	s := &Swappable{}
	s.current.Store(c)
	return s
}

// Current implements Provider.
func (s *Swappable) Current() *Catalog {
	return s.current.Load()
}

// Swap replaces the active catalog.
func (s *Swappable) Swap(c *Catalog) {
	s.current.Store(c)
}
