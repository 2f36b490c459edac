package catalog

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/mind-engage/mindengage-selfcheck/internal/assessment"
)

//go:embed definitions/*.yaml
var builtin embed.FS

var ErrNotFound = errors.New("assessment not found")

// Catalog is a read-only set of validated assessment definitions.
type Catalog struct {
	byID map[string]assessment.Definition
	ids  []string
}

// Summary is the listing view of a definition.
type Summary struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	QuestionCount int      `json:"question_count"`
	Categories    []string `json:"categories"`
}

func Summarize(d assessment.Definition) Summary {
	return Summary{
		ID:            d.ID,
		Title:         d.Title,
		QuestionCount: len(d.Questions),
		Categories:    d.Categories(),
	}
}

// Builtin loads the definitions shipped with the binary.
func Builtin() (*Catalog, error) {
	sub, err := fs.Sub(builtin, "definitions")
	if err != nil {
		return nil, err
	}
	return Load(sub)
}

// Load parses every *.yaml file at the root of fsys. Any invalid definition
// fails the whole load.
func Load(fsys fs.FS) (*Catalog, error) {
	names, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, err
	}
	c := &Catalog{byID: map[string]assessment.Definition{}}
	for _, name := range names {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, err
		}
		d, err := Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path.Base(name), err)
		}
		if _, dup := c.byID[d.ID]; dup {
			return nil, fmt.Errorf("%s: duplicate assessment id %q", path.Base(name), d.ID)
		}
		c.byID[d.ID] = d
		c.ids = append(c.ids, d.ID)
	}
	sort.Strings(c.ids)
	return c, nil
}

// Parse decodes one YAML definition. Questions without options get the full scale.
func Parse(raw []byte) (assessment.Definition, error) {
	var d assessment.Definition
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return assessment.Definition{}, err
	}
	for i := range d.Questions {
		if len(d.Questions[i].Options) == 0 {
			d.Questions[i].Options = assessment.Scale()
		}
	}
	if err := d.Validate(); err != nil {
		return assessment.Definition{}, err
	}
	return d, nil
}

func (c *Catalog) Get(id string) (assessment.Definition, error) {
	d, ok := c.byID[id]
	if !ok {
		return assessment.Definition{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return d, nil
}

// List returns definitions ordered by id.
func (c *Catalog) List() []assessment.Definition {
	out := make([]assessment.Definition, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, c.byID[id])
	}
	return out
}
