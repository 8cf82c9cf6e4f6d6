// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrConversationNotFound is returned when no conversation matches an ID.
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrAmbiguousID is returned when an ID prefix matches several conversations.
	ErrAmbiguousID = errors.New("conversation id prefix is ambiguous")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("archive closed")
)

// =============================================================================
// ARCHIVE
// =============================================================================

// Archive persists finished and in-progress transcripts in SQLite.
// It is a write-behind record only: live sessions never read from it.
type Archive struct {
	// mu guards db. Operations hold it shared; Close takes it exclusively
	// and so waits for them to finish.
	mu     sync.RWMutex
	db     *sql.DB
	path   string
	logger *zap.Logger

	// MaxConversations limits stored conversations (0 = unlimited)
	MaxConversations int
}

// Open opens (creating if needed) the archive database at path.
func Open(path string, maxConversations int, logger *zap.Logger) (*Archive, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if _, err := db.Exec(InitMetadata); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize metadata: %w", err)
	}

	return &Archive{
		db:               db,
		path:             path,
		logger:           logger.Named("archive"),
		MaxConversations: maxConversations,
	}, nil
}

// Path returns the database path.
func (a *Archive) Path() string {
	return a.path
}

// Close closes the database.
func (a *Archive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

// =============================================================================
// SAVE OPERATIONS
// =============================================================================

// Save upserts conv and replaces its messages. It returns the conversation ID.
func (a *Archive) Save(ctx context.Context, conv *StoredConversation) (string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.db == nil {
		return "", ErrClosed
	}
	if conv == nil {
		return "", errors.New("conversation is nil")
	}
	if conv.ID == "" {
		conv.ID = uuid.NewString()
	}
	if conv.Summary == "" {
		conv.Summary = conv.generateSummary()
	}
	now := time.Now()
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = now
	}
	conv.UpdatedAt = now

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO conversations (id, summary, model, backend_session, preview, message_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			summary = excluded.summary,
			model = excluded.model,
			backend_session = excluded.backend_session,
			preview = excluded.preview,
			message_count = excluded.message_count,
			updated_at = excluded.updated_at
	`, conv.ID, conv.Summary, conv.Model, conv.BackendSession, conv.GetPreview(),
		len(conv.Messages), conv.CreatedAt.UnixMilli(), conv.UpdatedAt.UnixMilli())
	if err != nil {
		return "", fmt.Errorf("save conversation: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE conversation_id = ?", conv.ID); err != nil {
		return "", fmt.Errorf("clear messages: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO messages (conversation_id, seq, id, role, content, model, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for i, msg := range conv.Messages {
		if _, err := stmt.ExecContext(ctx, conv.ID, i, msg.ID, msg.Role, msg.Content, msg.Model, msg.Timestamp.UnixMilli()); err != nil {
			return "", fmt.Errorf("save message %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}

	if a.MaxConversations > 0 {
		if n, err := a.prune(ctx, a.MaxConversations); err != nil {
			a.logger.Warn("prune failed", zap.Error(err))
		} else if n > 0 {
			a.logger.Debug("pruned conversations", zap.Int("removed", n))
		}
	}

	return conv.ID, nil
}

// =============================================================================
// LOAD OPERATIONS
// =============================================================================

// Load retrieves a conversation by ID or by a unique ID prefix.
func (a *Archive) Load(ctx context.Context, id string) (*StoredConversation, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.db == nil {
		return nil, ErrClosed
	}
	return a.load(ctx, id)
}

func (a *Archive) load(ctx context.Context, id string) (*StoredConversation, error) {
	fullID, err := a.resolveID(ctx, id)
	if err != nil {
		return nil, err
	}

	conv := &StoredConversation{ID: fullID}
	var created, updated int64
	err = a.db.QueryRowContext(ctx, `
		SELECT summary, model, backend_session, created_at, updated_at
		FROM conversations WHERE id = ?
	`, fullID).Scan(&conv.Summary, &conv.Model, &conv.BackendSession, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, err
	}
	conv.CreatedAt = time.UnixMilli(created)
	conv.UpdatedAt = time.UnixMilli(updated)

	rows, err := a.db.QueryContext(ctx, `
		SELECT id, role, content, model, timestamp
		FROM messages WHERE conversation_id = ? ORDER BY seq
	`, fullID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var msg StoredMessage
		var ts int64
		if err := rows.Scan(&msg.ID, &msg.Role, &msg.Content, &msg.Model, &ts); err != nil {
			return nil, err
		}
		msg.Timestamp = time.UnixMilli(ts)
		conv.Messages = append(conv.Messages, msg)
	}
	return conv, rows.Err()
}

// LoadByIndex loads a conversation by its position in List (0 = most recent).
func (a *Archive) LoadByIndex(ctx context.Context, index int) (*StoredConversation, error) {
	if index < 0 {
		return nil, ErrConversationNotFound
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.db == nil {
		return nil, ErrClosed
	}
	metas, err := a.list(ctx, index+1)
	if err != nil {
		return nil, err
	}
	if index >= len(metas) {
		return nil, ErrConversationNotFound
	}
	return a.load(ctx, metas[index].ID)
}

// resolveID expands a unique ID prefix to the full ID.
func (a *Archive) resolveID(ctx context.Context, prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", ErrConversationNotFound
	}
	rows, err := a.db.QueryContext(ctx,
		"SELECT id FROM conversations WHERE substr(id, 1, ?) = ? LIMIT 2", len(prefix), prefix)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", err
		}
		if id == prefix {
			return id, nil
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	switch len(ids) {
	case 0:
		return "", ErrConversationNotFound
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("%w: %s", ErrAmbiguousID, prefix)
	}
}

// =============================================================================
// LIST OPERATIONS
// =============================================================================

// List returns saved conversations, most recently updated first.
// A limit of 0 returns all of them.
func (a *Archive) List(ctx context.Context, limit int) ([]ConversationMeta, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.db == nil {
		return nil, ErrClosed
	}
	return a.list(ctx, limit)
}

func (a *Archive) list(ctx context.Context, limit int) ([]ConversationMeta, error) {
	query := `
		SELECT id, summary, model, preview, message_count, created_at, updated_at
		FROM conversations ORDER BY updated_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return a.queryMetas(ctx, query, args...)
}

// Search returns conversations with any message containing query,
// case-insensitively, most recent first.
func (a *Archive) Search(ctx context.Context, query string) ([]ConversationMeta, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.db == nil {
		return nil, ErrClosed
	}
	if strings.TrimSpace(query) == "" {
		return a.list(ctx, 0)
	}
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	return a.queryMetas(ctx, `
		SELECT c.id, c.summary, c.model, c.preview, c.message_count, c.created_at, c.updated_at
		FROM conversations c
		WHERE EXISTS (
			SELECT 1 FROM messages m
			WHERE m.conversation_id = c.id AND lower(m.content) LIKE ? ESCAPE '\'
		)
		ORDER BY c.updated_at DESC, c.id`, pattern)
}

func (a *Archive) queryMetas(ctx context.Context, query string, args ...any) ([]ConversationMeta, error) {
	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	metas := []ConversationMeta{}
	for rows.Next() {
		var m ConversationMeta
		var created, updated int64
		if err := rows.Scan(&m.ID, &m.Summary, &m.Model, &m.Preview, &m.MessageCount, &created, &updated); err != nil {
			return nil, err
		}
		m.CreatedAt = time.UnixMilli(created)
		m.UpdatedAt = time.UnixMilli(updated)
		metas = append(metas, m)
	}
	return metas, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// =============================================================================
// DELETE OPERATIONS
// =============================================================================

// Delete removes a conversation by ID or unique prefix.
func (a *Archive) Delete(ctx context.Context, id string) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.db == nil {
		return ErrClosed
	}
	fullID, err := a.resolveID(ctx, id)
	if err != nil {
		return err
	}
	_, err = a.db.ExecContext(ctx, "DELETE FROM conversations WHERE id = ?", fullID)
	return err
}

// Prune keeps the keep most recently updated conversations and deletes the
// rest. It returns how many were removed.
func (a *Archive) Prune(ctx context.Context, keep int) (int, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.db == nil {
		return 0, ErrClosed
	}
	return a.prune(ctx, keep)
}

func (a *Archive) prune(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := a.db.ExecContext(ctx, `
		DELETE FROM conversations WHERE id NOT IN (
			SELECT id FROM conversations ORDER BY updated_at DESC, id LIMIT ?
		)`, keep)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// Clear removes every conversation.
func (a *Archive) Clear(ctx context.Context) error {
	_, err := a.Prune(ctx, 0)
	return err
}
