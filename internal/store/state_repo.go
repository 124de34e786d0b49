package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/speakset/internal/state"
)

// stateRepo implements StateRepo with ent's SQL builders.
type stateRepo struct {
	drv *entsql.Driver
}

func (r *stateRepo) Save(ctx context.Context, contentID string, ps state.PersistedState) error {
	data, err := state.Encode(ps)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	query, args := builder().Insert(tableContentState).
		Columns("content_id", "state", "view_state", "updated_at").
		Values(contentID, string(data), int(ps.SetViewState), time.Now().UnixMilli()).
		OnConflict(
			entsql.ConflictColumns("content_id"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

func (r *stateRepo) Load(ctx context.Context, contentID string) (*SavedState, error) {
	query, args := builder().
		Select("state", "updated_at").
		From(entsql.Table(tableContentState)).
		Where(entsql.EQ("content_id", contentID)).
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query state: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query state: %w", err)
		}
		return nil, nil
	}

	var (
		raw       string
		updatedAt int64
	)
	if err := rows.Scan(&raw, &updatedAt); err != nil {
		return nil, fmt.Errorf("scan state: %w", err)
	}

	ps, err := state.Decode([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("decode state for %s: %w", contentID, err)
	}
	return &SavedState{
		ContentID: contentID,
		State:     ps,
		UpdatedAt: time.UnixMilli(updatedAt).UTC(),
	}, nil
}

func (r *stateRepo) Delete(ctx context.Context, contentID string) (bool, error) {
	query, args := builder().Delete(tableContentState).
		Where(entsql.EQ("content_id", contentID)).
		Query()

	var res sql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		return false, fmt.Errorf("delete state: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete state: %w", err)
	}
	return n > 0, nil
}

func (r *stateRepo) List(ctx context.Context) ([]SavedStateInfo, error) {
	query, args := builder().
		Select("content_id", "view_state", "updated_at").
		From(entsql.Table(tableContentState)).
		OrderBy(entsql.Desc("updated_at"), "content_id").
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("list states: %w", err)
	}
	defer rows.Close()

	var out []SavedStateInfo
	for rows.Next() {
		var (
			info      SavedStateInfo
			view      int
			updatedAt int64
		)
		if err := rows.Scan(&info.ContentID, &view, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan state: %w", err)
		}
		info.ViewState = state.ViewState(view)
		info.UpdatedAt = time.UnixMilli(updatedAt).UTC()
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list states: %w", err)
	}
	return out, nil
}
