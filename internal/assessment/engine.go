// Package assessment scores Likert self-report quizzes into per-category percentages
// and a narrative band.
package assessment

import (
	"errors"
	"fmt"
)

var ErrInvalidOption = errors.New("response option outside the scale")

// CategorySum is the raw weight sum of one category.
type CategorySum struct {
	Category string
	Score    int
}

// Totals is the aggregation step of scoring, before band selection.
type Totals struct {
	Total int
	// MaxTotal is not used in ResultData; percentages are relative to Total.
	MaxTotal   int
	Categories []CategorySum // first-occurrence order in the catalog
}

// Tally sums the weights of answered questions overall and per category.
//
// Iteration is driven by the question catalog, never by the response map: ids in
// responses that the catalog does not know about are ignored on purpose, and
// unanswered questions contribute nothing to either sum.
func Tally(def Definition, responses Responses) (Totals, error) {
	t := Totals{MaxTotal: def.MaxTotal()}
	index := map[string]int{}
	for _, q := range def.Questions {
		opt, answered := responses[q.ID]
		if !answered {
			continue
		}
		w, ok := opt.Weight()
		if !ok {
			return Totals{}, fmt.Errorf("%w: question %s: %d", ErrInvalidOption, q.ID, uint8(opt))
		}
		t.Total += w
		i, seen := index[q.Category]
		if !seen {
			i = len(t.Categories)
			index[q.Category] = i
			t.Categories = append(t.Categories, CategorySum{Category: q.Category})
		}
		t.Categories[i].Score += w
	}
	return t, nil
}

// Percent returns round(100*part/total) with halves rounded up, or 0 when total is 0.
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*part + total) / (2 * total)
}

// Outcome keeps the intermediate values of a scoring run next to its result.
type Outcome struct {
	Totals Totals
	Band   ScoreBand
	Result ResultData
}

// Compute scores one attempt. It is pure: the same definition and responses
// always give an equal result, and neither argument is modified.
// It fails only when the band table is empty or a response carries an option
// that is not on the scale.
func Compute(def Definition, responses Responses) (ResultData, error) {
	o, err := Evaluate(def, responses)
	if err != nil {
		return ResultData{}, err
	}
	return o.Result, nil
}

// Evaluate is Compute but also returns the totals and the selected band.
func Evaluate(def Definition, responses Responses) (Outcome, error) {
	t, err := Tally(def, responses)
	if err != nil {
		return Outcome{}, err
	}
	band, err := SelectBand(def.Bands, t.Total)
	if err != nil {
		return Outcome{}, fmt.Errorf("assessment %s: %w", def.ID, err)
	}

	rows := make([]CategoryScore, 0, len(t.Categories))
	for _, c := range t.Categories {
		rows = append(rows, CategoryScore{
			Label: capitalize(c.Category),
			Score: Percent(c.Score, t.Total),
		})
	}

	image := band.Image
	if image == "" {
		image = def.DefaultImage
	}
	tips := make([]string, len(band.Tips))
	copy(tips, band.Tips)
	results, display := formatResults(rows)
	return Outcome{
		Totals: t,
		Band:   band,
		Result: ResultData{
			Title:       band.Title,
			Quote:       band.Quote,
			Image:       image,
			Description: band.Description,
			Tips:        tips,
			Result:      display,
			Results:     results,
		},
	}, nil
}
