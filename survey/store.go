package survey

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jtammen/carbon-tracker/model"
)

const questionnaireColumns = `
	id, canonical_id, version, title, definition_json, status,
	supersedes_id, replaced_by_id, created_at, updated_at`

// Store owns the lifecycle of versioned questionnaire definitions and
// the responses submitted against them. The storage handle and clock
// are explicit so tests can substitute both.
type Store struct {
	DB  *sql.DB
	Now func() time.Time
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db, Now: time.Now}
}

// CreateRequest carries the payload for a new questionnaire version.
// SupersedesID bumps the version within the same family; CanonicalID
// joins an existing family; with neither set a fresh family starts.
type CreateRequest struct {
	Title        string          `json:"title"`
	CanonicalID  *uuid.UUID      `json:"canonicalId"`
	SupersedesID *uuid.UUID      `json:"supersedesId"`
	Status       string          `json:"status"`
	Definition   json.RawMessage `json:"definition"`
}

// Create resolves the version number, inserts the new row, and links
// the supersession chain, all in one transaction.
func (s *Store) Create(ctx context.Context, req CreateRequest) (model.Questionnaire, error) {
	var q model.Questionnaire

	if strings.TrimSpace(req.Title) == "" {
		return q, fmt.Errorf("%w: title is required", ErrInvalid)
	}
	status, err := model.ParseStatus(req.Status)
	if err != nil {
		return q, fmt.Errorf("%w: %s", ErrInvalid, err)
	}
	definition, err := normalizeDefinition(req.Definition)
	if err != nil {
		return q, fmt.Errorf("%w: malformed definition: %s", ErrInvalid, err)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return q, err
	}
	defer tx.Rollback()

	var canonicalID uuid.UUID
	var version int
	if req.SupersedesID != nil {
		err = tx.QueryRowContext(ctx, `
			SELECT canonical_id, version FROM questionnaire WHERE id = ?`,
			*req.SupersedesID,
		).Scan(&canonicalID, &version)
		if errors.Is(err, sql.ErrNoRows) {
			return q, fmt.Errorf("%w: supersedes id %s", ErrNotFound, *req.SupersedesID)
		}
		if err != nil {
			return q, err
		}
		version++
	} else {
		if req.CanonicalID != nil {
			canonicalID = *req.CanonicalID
		} else if canonicalID, err = uuid.NewV4(); err != nil {
			return q, err
		}
		err = tx.QueryRowContext(ctx, `
			SELECT COALESCE(MAX(version), 0) FROM questionnaire WHERE canonical_id = ?`,
			canonicalID,
		).Scan(&version)
		if err != nil {
			return q, err
		}
		version++
	}

	id, err := uuid.NewV4()
	if err != nil {
		return q, err
	}
	now := s.Now()

	// An active newcomer takes the family's single active slot, so
	// the current holder steps down before the insert meets the
	// partial unique index.
	var priorActive uuid.NullUUID
	if status == model.StatusActive {
		err = tx.QueryRowContext(ctx, `
			SELECT id FROM questionnaire WHERE canonical_id = ? AND status = 'active'`,
			canonicalID,
		).Scan(&priorActive.UUID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return q, err
		}
		priorActive.Valid = err == nil
		if priorActive.Valid {
			_, err = tx.ExecContext(ctx, `
				UPDATE questionnaire
				SET status = 'inactive', updated_at = ?
				WHERE id = ?`,
				now, priorActive.UUID,
			)
			if err != nil {
				return q, err
			}
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO questionnaire
			(id, canonical_id, version, title, definition_json, status,
			 supersedes_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, canonicalID, version, req.Title, definition, status,
		req.SupersedesID, now, now,
	)
	if err != nil {
		return q, err
	}

	if priorActive.Valid {
		_, err = tx.ExecContext(ctx, `
			UPDATE questionnaire SET replaced_by_id = ? WHERE id = ?`,
			id, priorActive.UUID,
		)
		if err != nil {
			return q, err
		}
	}

	if req.SupersedesID != nil {
		_, err = tx.ExecContext(ctx, `
			UPDATE questionnaire
			SET replaced_by_id = ?,
				status = CASE WHEN status = 'active' THEN 'inactive' ELSE status END,
				updated_at = ?
			WHERE id = ?`,
			id, now, *req.SupersedesID,
		)
		if err != nil {
			return q, err
		}
	}

	if err = tx.Commit(); err != nil {
		return q, err
	}

	return model.Questionnaire{
		ID:           id,
		CanonicalID:  canonicalID,
		Version:      version,
		Title:        req.Title,
		Definition:   definition,
		Status:       status,
		SupersedesID: req.SupersedesID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Publish activates a specific version, deriving the family from the
// row itself.
func (s *Store) Publish(ctx context.Context, id uuid.UUID) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var canonicalID uuid.UUID
	err = tx.QueryRowContext(ctx, `
		SELECT canonical_id FROM questionnaire WHERE id = ?`,
		id,
	).Scan(&canonicalID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: questionnaire %s", ErrNotFound, id)
	}
	if err != nil {
		return err
	}

	if err = s.activate(ctx, tx, canonicalID, id); err != nil {
		return err
	}
	return tx.Commit()
}

// PublishSelector picks the target of a family publish. Precedence is
// TargetID, then TargetVersion, then Latest.
type PublishSelector struct {
	TargetID      *uuid.UUID `json:"targetId"`
	TargetVersion *int       `json:"targetVersion"`
	Latest        bool       `json:"latest"`
}

// PublishFamily activates one version within a family, chosen by the
// selector. The previously active version, if any and different from
// the target, ends up inactive with its replaced-by link set.
func (s *Store) PublishFamily(ctx context.Context, canonicalID uuid.UUID, sel PublishSelector) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var targetID uuid.UUID
	switch {
	case sel.TargetID != nil:
		targetID = *sel.TargetID
		var family uuid.UUID
		err = tx.QueryRowContext(ctx, `
			SELECT canonical_id FROM questionnaire WHERE id = ?`,
			targetID,
		).Scan(&family)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: questionnaire %s", ErrNotFound, targetID)
		}
		if err != nil {
			return err
		}
		if family != canonicalID {
			return fmt.Errorf("%w: target %s does not belong to family %s", ErrInvalid, targetID, canonicalID)
		}
	case sel.TargetVersion != nil:
		err = tx.QueryRowContext(ctx, `
			SELECT id FROM questionnaire WHERE canonical_id = ? AND version = ?`,
			canonicalID, *sel.TargetVersion,
		).Scan(&targetID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: version %d in family %s", ErrNotFound, *sel.TargetVersion, canonicalID)
		}
		if err != nil {
			return err
		}
	case sel.Latest:
		err = tx.QueryRowContext(ctx, `
			SELECT id FROM questionnaire
			WHERE canonical_id = ?
			ORDER BY version DESC
			LIMIT 1`,
			canonicalID,
		).Scan(&targetID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: family %s has no versions", ErrNotFound, canonicalID)
		}
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: one of targetId, targetVersion or latest is required", ErrInvalid)
	}

	if err = s.activate(ctx, tx, canonicalID, targetID); err != nil {
		return err
	}
	return tx.Commit()
}

// activate flips every other active row in the family to inactive,
// pointing it at the target, then activates the target. Re-publishing
// the already-active row only refreshes its timestamp.
func (s *Store) activate(ctx context.Context, tx *sql.Tx, canonicalID, targetID uuid.UUID) error {
	now := s.Now()

	_, err := tx.ExecContext(ctx, `
		UPDATE questionnaire
		SET status = 'inactive', replaced_by_id = ?, updated_at = ?
		WHERE canonical_id = ? AND status = 'active' AND id <> ?`,
		targetID, now, canonicalID, targetID,
	)
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE questionnaire
		SET status = 'active', updated_at = ?
		WHERE id = ?`,
		now, targetID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: questionnaire %s", ErrNotFound, targetID)
	}
	return nil
}

// List returns every version, newest creation first, then highest
// version number.
func (s *Store) List(ctx context.Context) ([]model.Questionnaire, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+questionnaireColumns+`
		FROM questionnaire
		ORDER BY created_at DESC, version DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []model.Questionnaire{}
	for rows.Next() {
		q, err := scanQuestionnaire(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, q)
	}
	return list, rows.Err()
}

// Get returns a single version by id.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (model.Questionnaire, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT `+questionnaireColumns+`
		FROM questionnaire
		WHERE id = ?`,
		id)

	q, err := scanQuestionnaire(row)
	if errors.Is(err, sql.ErrNoRows) {
		return q, fmt.Errorf("%w: questionnaire %s", ErrNotFound, id)
	}
	return q, err
}

// LatestActive returns the single active version of a family.
func (s *Store) LatestActive(ctx context.Context, canonicalID uuid.UUID) (model.Questionnaire, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT `+questionnaireColumns+`
		FROM questionnaire
		WHERE canonical_id = ? AND status = 'active'
		ORDER BY version DESC
		LIMIT 1`,
		canonicalID)

	q, err := scanQuestionnaire(row)
	if errors.Is(err, sql.ErrNoRows) {
		return q, fmt.Errorf("%w: no active questionnaire in family %s", ErrNotFound, canonicalID)
	}
	return q, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanQuestionnaire(row scanner) (q model.Questionnaire, err error) {
	var supersedes, replacedBy uuid.NullUUID
	err = row.Scan(
		&q.ID, &q.CanonicalID, &q.Version, &q.Title, &q.Definition, &q.Status,
		&supersedes, &replacedBy, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		return
	}
	if supersedes.Valid {
		q.SupersedesID = &supersedes.UUID
	}
	if replacedBy.Valid {
		q.ReplacedByID = &replacedBy.UUID
	}
	return
}

// normalizeDefinition renders the posted definition document in its
// canonical text form: "{}" when absent or null, the unwrapped value
// when posted as a JSON string, compact JSON otherwise.
func normalizeDefinition(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "{}", nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", err
		}
		return s, nil
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return "", err
	}
	return buf.String(), nil
}
