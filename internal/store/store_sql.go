package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/mindengage-selfcheck/internal/assessment"
	"github.com/mind-engage/mindengage-selfcheck/internal/db"
	syncx "github.com/mind-engage/mindengage-selfcheck/internal/sync"
)

type SQLStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLStore(h *sql.DB) *SQLStore {
	return &SQLStore{db: h, now: time.Now}
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLStore) PutDefinition(ctx context.Context, d assessment.Definition) error {
	buf, err := json.Marshal(d)
	if err != nil {
		return err
	}
	now := s.now().Unix()
	_, err = s.db.ExecContext(ctx, `INSERT INTO definitions (id,title,definition_json,created_at,updated_at)
		VALUES ($1,$2,$3,$4,$4)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, definition_json=EXCLUDED.definition_json, updated_at=EXCLUDED.updated_at`,
		d.ID, d.Title, string(buf), now)
	return err
}

func (s *SQLStore) GetDefinition(ctx context.Context, id string) (assessment.Definition, error) {
	return getDefinition(ctx, s.db, id)
}

func getDefinition(ctx context.Context, q queryer, id string) (assessment.Definition, error) {
	var raw string
	err := q.QueryRowContext(ctx, `SELECT definition_json FROM definitions WHERE id=$1`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return assessment.Definition{}, fmt.Errorf("assessment %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return assessment.Definition{}, err
	}
	var d assessment.Definition
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return assessment.Definition{}, fmt.Errorf("decode assessment %s: %w", id, err)
	}
	return d, nil
}

func (s *SQLStore) ListDefinitions(ctx context.Context) ([]assessment.Definition, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, definition_json FROM definitions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []assessment.Definition{}
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		var d assessment.Definition
		if err := json.Unmarshal([]byte(raw), &d); err != nil {
			return nil, fmt.Errorf("decode assessment %s: %w", id, err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *SQLStore) NewAttempt(ctx context.Context, assessmentID, userID string) (Attempt, error) {
	var exist int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM definitions WHERE id=$1`, assessmentID).Scan(&exist)
	if errors.Is(err, sql.ErrNoRows) {
		return Attempt{}, fmt.Errorf("assessment %s: %w", assessmentID, ErrNotFound)
	}
	if err != nil {
		return Attempt{}, err
	}
	a := Attempt{
		ID:           uuid.NewString(),
		AssessmentID: assessmentID,
		UserID:       userID,
		Status:       StatusInProgress,
		Responses:    assessment.Responses{},
		StartedAt:    s.now().Unix(),
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO attempts (id,assessment_id,user_id,status,responses_json,started_at)
		VALUES ($1,$2,$3,$4,'{}',$5)`,
		a.ID, a.AssessmentID, a.UserID, a.Status, a.StartedAt)
	if err != nil {
		return Attempt{}, err
	}
	return a, nil
}

// SaveResponses merges resp into the stored answers; later answers to the same
// question replace earlier ones.
func (s *SQLStore) SaveResponses(ctx context.Context, attemptID string, resp assessment.Responses) (Attempt, error) {
	err := db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		a, err := getAttempt(ctx, tx, attemptID)
		if err != nil {
			return err
		}
		if a.Status == StatusSubmitted {
			return ErrAlreadySubmitted
		}
		if a.Responses == nil {
			a.Responses = assessment.Responses{}
		}
		for k, v := range resp {
			a.Responses[k] = v
		}
		buf, err := json.Marshal(a.Responses)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `UPDATE attempts SET responses_json=$1 WHERE id=$2`, string(buf), attemptID)
		return err
	})
	if err != nil {
		return Attempt{}, err
	}
	return s.GetAttempt(ctx, attemptID)
}

// Submit scores and freezes the attempt. submitted is true only for the call that
// performed the transition; concurrent or repeated calls get the stored result.
func (s *SQLStore) Submit(ctx context.Context, attemptID string) (a Attempt, submitted bool, err error) {
	err = db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		cur, err := getAttempt(ctx, tx, attemptID)
		if err != nil {
			return err
		}
		if cur.Status == StatusSubmitted {
			return nil
		}
		def, err := getDefinition(ctx, tx, cur.AssessmentID)
		if err != nil {
			return err
		}
		out, err := assessment.Evaluate(def, cur.Responses)
		if err != nil {
			return err
		}
		buf, err := json.Marshal(out.Result)
		if err != nil {
			return err
		}
		// the status guard makes a racing submit update nothing
		res, err := tx.ExecContext(ctx, `UPDATE attempts SET status=$1, result_json=$2, total_score=$3, max_total=$4, band_id=$5, submitted_at=$6
			WHERE id=$7 AND status<>$1`,
			StatusSubmitted, string(buf), out.Totals.Total, out.Totals.MaxTotal, out.Band.ID, s.now().Unix(), attemptID)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil || n == 0 {
			return err
		}
		ev, err := syncx.NewEvent(syncx.TypeAttemptSubmitted, attemptID, submittedEvent{
			AttemptID:    attemptID,
			AssessmentID: cur.AssessmentID,
			UserID:       cur.UserID,
			TotalScore:   out.Totals.Total,
			MaxTotal:     out.Totals.MaxTotal,
			BandID:       out.Band.ID,
		})
		if err != nil {
			return err
		}
		if err := syncx.AppendTx(ctx, tx, ev); err != nil {
			return err
		}
		submitted = true
		return nil
	})
	if err != nil {
		return Attempt{}, false, err
	}
	a, err = s.GetAttempt(ctx, attemptID)
	if err != nil {
		return Attempt{}, false, err
	}
	return a, submitted, nil
}

func (s *SQLStore) GetAttempt(ctx context.Context, id string) (Attempt, error) {
	return getAttempt(ctx, s.db, id)
}

const attemptColumns = `id,assessment_id,user_id,status,responses_json,result_json,total_score,max_total,band_id,started_at,submitted_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanAttempt(row scanner) (Attempt, error) {
	var a Attempt
	var rjson, resjson string
	var submitted sql.NullInt64
	if err := row.Scan(&a.ID, &a.AssessmentID, &a.UserID, &a.Status, &rjson, &resjson,
		&a.TotalScore, &a.MaxTotal, &a.BandID, &a.StartedAt, &submitted); err != nil {
		return Attempt{}, err
	}
	a.SubmittedAt = submitted.Int64
	if err := json.Unmarshal([]byte(rjson), &a.Responses); err != nil {
		return Attempt{}, fmt.Errorf("decode responses of attempt %s: %w", a.ID, err)
	}
	if resjson != "" {
		var res assessment.ResultData
		if err := json.Unmarshal([]byte(resjson), &res); err != nil {
			return Attempt{}, fmt.Errorf("decode result of attempt %s: %w", a.ID, err)
		}
		a.Result = &res
	}
	return a, nil
}

func getAttempt(ctx context.Context, q queryer, id string) (Attempt, error) {
	row := q.QueryRowContext(ctx, `SELECT `+attemptColumns+` FROM attempts WHERE id=$1`, id)
	a, err := scanAttempt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Attempt{}, fmt.Errorf("attempt %s: %w", id, ErrNotFound)
	}
	return a, err
}

func (s *SQLStore) ListAttempts(ctx context.Context, opts AttemptListOpts) ([]Attempt, error) {
	where := []string{}
	args := []any{}
	add := func(col, v string) {
		if v == "" {
			return
		}
		args = append(args, v)
		where = append(where, fmt.Sprintf("%s=$%d", col, len(args)))
	}
	add("assessment_id", opts.AssessmentID)
	add("user_id", opts.UserID)
	add("status", opts.Status)

	limit := opts.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	q := `SELECT ` + attemptColumns + ` FROM attempts`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, limit, offset)
	q += fmt.Sprintf(` ORDER BY started_at DESC, id LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Attempt{}
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
