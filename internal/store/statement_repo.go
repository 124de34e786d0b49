package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/speakset/internal/xapi"
)

// statementRepo implements StatementRepo with ent's SQL builders.
type statementRepo struct {
	drv     *entsql.Driver
	counter *sequenceCounter
}

func (r *statementRepo) Append(ctx context.Context, contentID string, batchSeq int64, data xapi.Data) (int64, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return 0, fmt.Errorf("marshal statement: %w", err)
	}

	seq, err := r.counter.Next(ctx)
	if err != nil {
		return 0, err
	}

	st := data.Statement
	var interaction string
	if st.Object.Definition != nil {
		interaction = st.Object.Definition.InteractionType
	}
	var registration string
	if st.Context != nil {
		registration = st.Context.Registration
	}
	var scoreRaw, scoreMax any
	if st.Result != nil && st.Result.Score != nil {
		scoreRaw, scoreMax = st.Result.Score.Raw, st.Result.Score.Max
	}
	emitted := st.Timestamp
	if emitted.IsZero() {
		emitted = time.Now()
	}

	query, args := builder().Insert(tableStatements).
		Columns("sequence", "batch_seq", "content_id", "statement_id", "object_id",
			"interaction_type", "registration", "score_raw", "score_max", "emitted_at", "data").
		Values(seq, batchSeq, contentID, st.ID, st.Object.ID,
			interaction, registration, scoreRaw, scoreMax, emitted.UnixNano(), string(raw)).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return 0, fmt.Errorf("append statement: %w", err)
	}
	return seq, nil
}

func (r *statementRepo) List(ctx context.Context, opts QueryOpts) ([]StoredStatement, error) {
	sel := builder().
		Select("sequence", "content_id", "statement_id", "object_id", "interaction_type",
			"registration", "score_raw", "score_max", "emitted_at", "data").
		From(entsql.Table(tableStatements))
	if opts.ContentID != "" {
		sel.Where(entsql.EQ("content_id", opts.ContentID))
	}
	// Newest first so Limit keeps the most recent; reversed below.
	sel.OrderBy(entsql.Desc("emitted_at"), entsql.Desc("batch_seq"), entsql.Desc("sequence"))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	query, args := sel.Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("list statements: %w", err)
	}
	defer rows.Close()

	var out []StoredStatement
	for rows.Next() {
		var (
			s         StoredStatement
			scoreRaw  sql.NullFloat64
			scoreMax  sql.NullFloat64
			emittedAt int64
			raw       string
		)
		if err := rows.Scan(&s.Sequence, &s.ContentID, &s.StatementID, &s.ObjectID,
			&s.InteractionType, &s.Registration, &scoreRaw, &scoreMax, &emittedAt, &raw); err != nil {
			return nil, fmt.Errorf("scan statement: %w", err)
		}
		if scoreRaw.Valid {
			s.ScoreRaw = &scoreRaw.Float64
		}
		if scoreMax.Valid {
			s.ScoreMax = &scoreMax.Float64
		}
		s.EmittedAt = time.Unix(0, emittedAt).UTC()
		if err := json.Unmarshal([]byte(raw), &s.Data); err != nil {
			return nil, fmt.Errorf("decode statement %d: %w", s.Sequence, err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list statements: %w", err)
	}
	slices.Reverse(out)
	return out, nil
}
