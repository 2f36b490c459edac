package assessment

type Question struct {
	ID       string        `json:"id" yaml:"id"`
	Category string        `json:"category" yaml:"category"`
	Prompt   string        `json:"prompt" yaml:"prompt"`
	Options  []ScoreOption `json:"options" yaml:"options"`
}

// ScoreBand is a closed range [Min, Max] over the total score with the narrative
// shown when the total lands in it.
type ScoreBand struct {
	ID          string   `json:"id" yaml:"id"`
	Min         int      `json:"min" yaml:"min"`
	Max         int      `json:"max" yaml:"max"`
	Title       string   `json:"title" yaml:"title"`
	Quote       string   `json:"quote" yaml:"quote"`
	Description string   `json:"description" yaml:"description"`
	Tips        []string `json:"tips" yaml:"tips"`
	Image       string   `json:"image,omitempty" yaml:"image,omitempty"`
}

func (b ScoreBand) Contains(total int) bool { return b.Min <= total && total <= b.Max }

// Definition is one quiz type: its question catalog and band table.
// Treat it as immutable once built; Compute only reads it.
type Definition struct {
	ID           string      `json:"id" yaml:"id"`
	Title        string      `json:"title,omitempty" yaml:"title,omitempty"`
	DefaultImage string      `json:"default_image" yaml:"default_image"`
	Questions    []Question  `json:"questions" yaml:"questions"`
	Bands        []ScoreBand `json:"bands,omitempty" yaml:"bands"`
}

// MaxTotal is the highest total reachable when every question is answered VeryOften.
func (d Definition) MaxTotal() int { return len(d.Questions) * MaxWeight }

// Categories returns distinct question categories in first-occurrence order.
func (d Definition) Categories() []string {
	seen := map[string]bool{}
	out := make([]string, 0, 4)
	for _, q := range d.Questions {
		if seen[q.Category] {
			continue
		}
		seen[q.Category] = true
		out = append(out, q.Category)
	}
	return out
}

// Responses maps question id to the chosen option. Keys that are not in the
// catalog are ignored by the engine.
type Responses map[string]ScoreOption

type CategoryScore struct {
	Label string `json:"label"`
	Score int    `json:"score"` // percent of the grand total, 0..100
}

type DisplayScore struct {
	Label string `json:"label"`
	Value string `json:"value"` // e.g. "75%"
}

// ResultData is what a renderer shows after scoring. It is built fresh per call.
type ResultData struct {
	Title       string          `json:"title"`
	Quote       string          `json:"quote"`
	Image       string          `json:"image"`
	Description string          `json:"description"`
	Tips        []string        `json:"tips"`
	Result      []DisplayScore  `json:"result"`
	Results     []CategoryScore `json:"results"`
}
