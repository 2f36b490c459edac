package assessment

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the invariants a definition source must guarantee. Compute does
// not call it; sources and tests do.
func (d Definition) Validate() error {
	var errs []error
	if strings.TrimSpace(d.ID) == "" {
		errs = append(errs, errors.New("id is required"))
	}
	if len(d.Questions) == 0 {
		errs = append(errs, errors.New("at least one question is required"))
	}
	seen := map[string]bool{}
	for i, q := range d.Questions {
		switch {
		case strings.TrimSpace(q.ID) == "":
			errs = append(errs, fmt.Errorf("question %d: id is required", i))
		case seen[q.ID]:
			errs = append(errs, fmt.Errorf("question %s: duplicate id", q.ID))
		}
		seen[q.ID] = true
		if strings.TrimSpace(q.Category) == "" {
			errs = append(errs, fmt.Errorf("question %s: category is required", q.ID))
		}
		if len(q.Options) == 0 {
			errs = append(errs, fmt.Errorf("question %s: options are required", q.ID))
		}
		opts := map[ScoreOption]bool{}
		for _, o := range q.Options {
			if !o.Valid() {
				errs = append(errs, fmt.Errorf("question %s: %w: %d", q.ID, ErrUnknownOption, uint8(o)))
			}
			if opts[o] {
				errs = append(errs, fmt.Errorf("question %s: duplicate option %s", q.ID, o))
			}
			opts[o] = true
		}
	}
	if err := validateBands(d.Bands, d.MaxTotal()); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// validateBands requires ascending, pairwise disjoint ranges whose union covers [0, maxTotal].
func validateBands(bands []ScoreBand, maxTotal int) error {
	if len(bands) == 0 {
		return ErrNoBands
	}
	var errs []error
	for _, b := range bands {
		if b.Min > b.Max {
			errs = append(errs, fmt.Errorf("band %s: min %d > max %d", b.ID, b.Min, b.Max))
		}
	}
	for i := 1; i < len(bands); i++ {
		prev, cur := bands[i-1], bands[i]
		if cur.Min <= prev.Max {
			errs = append(errs, fmt.Errorf("band %s overlaps or precedes band %s", cur.ID, prev.ID))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	next := 0
	for _, b := range bands {
		if next > maxTotal {
			break
		}
		if b.Max < next {
			continue
		}
		if b.Min > next {
			return fmt.Errorf("no band covers totals %d..%d", next, min(b.Min-1, maxTotal))
		}
		next = b.Max + 1
	}
	if next <= maxTotal {
		return fmt.Errorf("no band covers totals %d..%d", next, maxTotal)
	}
	return nil
}
