package assessment

import "errors"

var ErrNoBands = errors.New("band table is empty")

// SelectBand returns the first band in table order whose range contains total.
// When none does, the last band of the table wins regardless of its range; it acts
// as the ceiling band. Selection is therefore order-dependent.
func SelectBand(bands []ScoreBand, total int) (ScoreBand, error) {
	if len(bands) == 0 {
		return ScoreBand{}, ErrNoBands
	}
	for _, b := range bands {
		if b.Contains(total) {
			return b, nil
		}
	}
	return orElseLast(bands), nil
}

func orElseLast(bands []ScoreBand) ScoreBand { return bands[len(bands)-1] }
