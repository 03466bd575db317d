// ABOUTME: User registration, language preference and rotation position.
// ABOUTME: Upserts keep language and rotation_index intact.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/harperreed/gymbot/internal/models"
	"github.com/harperreed/gymbot/internal/training"
)

type userRow struct {
	ID            int64          `db:"user_id"`
	ChatID        sql.NullInt64  `db:"chat_id"`
	Username      sql.NullString `db:"username"`
	FirstName     sql.NullString `db:"first_name"`
	RegisteredAt  string         `db:"registered_at"`
	UpdatedAt     string         `db:"updated_at"`
	Language      sql.NullString `db:"language"`
	RotationIndex int            `db:"rotation_index"`
}

func (r userRow) toModel() (*models.User, error) {
	registered, err := parseTime(r.RegisteredAt)
	if err != nil {
		return nil, err
	}
	updated, err := parseTime(r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		ID:            r.ID,
		Username:      stringPtr(r.Username),
		FirstName:     stringPtr(r.FirstName),
		RegisteredAt:  registered,
		UpdatedAt:     updated,
		RotationIndex: r.RotationIndex,
	}
	if r.ChatID.Valid {
		chat := r.ChatID.Int64
		u.ChatID = &chat
	}
	if r.Language.Valid && r.Language.String != "" {
		lang := models.Language(r.Language.String)
		u.Language = &lang
	}
	return u, nil
}

const userColumns = `user_id, chat_id, username, first_name, registered_at, updated_at, language, rotation_index`

// UpsertUser registers a user or refreshes their chat and display fields.
func (d *DB) UpsertUser(ctx context.Context, u *models.User) error {
	now := formatTime(d.now())
	var chat sql.NullInt64
	if u.ChatID != nil {
		chat = sql.NullInt64{Int64: *u.ChatID, Valid: true}
	}
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO users (user_id, chat_id, username, first_name, registered_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			chat_id = excluded.chat_id,
			username = excluded.username,
			first_name = excluded.first_name,
			updated_at = excluded.updated_at`,
		u.ID, chat, nullString(u.Username), nullString(u.FirstName), now, now,
	)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by id.
func (d *DB) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	var row userRow
	err := d.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE user_id = ?`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return row.toModel()
}

// ListUsers returns every registered user ordered by id.
func (d *DB) ListUsers(ctx context.Context) ([]*models.User, error) {
	var rows []userRow
	if err := d.db.SelectContext(ctx, &rows, `SELECT `+userColumns+` FROM users ORDER BY user_id`); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]*models.User, 0, len(rows))
	for _, r := range rows {
		u, err := r.toModel()
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

// ListReminderTargets returns users that have a chat to be reminded in.
func (d *DB) ListReminderTargets(ctx context.Context) ([]*models.User, error) {
	users, err := d.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := users[:0]
	for _, u := range users {
		if u.ChatID != nil {
			out = append(out, u)
		}
	}
	return out, nil
}

// SetLanguage stores the user's interface language.
func (d *DB) SetLanguage(ctx context.Context, userID int64, lang models.Language) error {
	if !models.IsSupportedLanguage(string(lang)) {
		return fmt.Errorf("language %q: %w", lang, ErrUnsupportedLanguage)
	}
	res, err := d.db.ExecContext(ctx,
		`UPDATE users SET language = ?, updated_at = ? WHERE user_id = ?`,
		string(lang), formatTime(d.now()), userID)
	if err != nil {
		return fmt.Errorf("set language: %w", err)
	}
	return requireAffected(res, fmt.Sprintf("user %d", userID))
}

// Language returns the user's language, falling back to the default.
func (d *DB) Language(ctx context.Context, userID int64) (models.Language, error) {
	var lang sql.NullString
	err := d.db.GetContext(ctx, &lang, `SELECT language FROM users WHERE user_id = ?`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DefaultLanguage, nil
	}
	if err != nil {
		return "", fmt.Errorf("get language: %w", err)
	}
	return models.NormalizeLanguage(lang.String), nil
}

// NextMuscleGroup returns the group the user's rotation points at.
func (d *DB) NextMuscleGroup(ctx context.Context, userID int64) (string, error) {
	var idx int
	err := d.db.GetContext(ctx, &idx, `SELECT rotation_index FROM users WHERE user_id = ?`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return training.GroupAt(0), nil
	}
	if err != nil {
		return "", fmt.Errorf("get rotation index: %w", err)
	}
	return training.GroupAt(idx), nil
}

// AdvanceRotation moves the user's rotation past group. Groups outside the
// cycle leave it untouched and report false.
func (d *DB) AdvanceRotation(ctx context.Context, userID int64, group string) (bool, error) {
	return advanceRotation(ctx, d.db, userID, group, formatTime(d.now()))
}

func advanceRotation(ctx context.Context, ex sqlExecer, userID int64, group, now string) (bool, error) {
	next, ok := training.NextRotationIndex(group)
	if !ok {
		return false, nil
	}
	res, err := ex.ExecContext(ctx,
		`UPDATE users SET rotation_index = ?, updated_at = ? WHERE user_id = ?`,
		next, now, userID)
	if err != nil {
		return false, fmt.Errorf("advance rotation: %w", err)
	}
	if err := requireAffected(res, fmt.Sprintf("user %d", userID)); err != nil {
		return false, err
	}
	return true, nil
}
