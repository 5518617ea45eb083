package database

import (
	"context"
	"fmt"
	"log/slog"

	"warbler/internal/observability"

	"gorm.io/gorm"
)

type opKind int

const (
	opCreate opKind = iota
	opSave
	opDelete
)

func (k opKind) String() string {
	switch k {
	case opCreate:
		return "create"
	case opSave:
		return "save"
	case opDelete:
		return "delete"
	default:
		return "unknown"
	}
}

type stagedOp struct {
	kind  opKind
	value interface{}
}

// Session is a unit of work. Values are staged with Add, Save, or Delete and
// written in staging order by Commit inside a single transaction.
//
// A Session is not safe for concurrent use.
type Session struct {
	db      *gorm.DB
	pending []stagedOp
}

// NewSession creates an empty session bound to db.
func NewSession(db *gorm.DB) *Session {
	return &Session{db: db}
}

// DB returns the connection the session commits through.
func (s *Session) DB() *gorm.DB {
	return s.db
}

// Add stages new rows for insertion. Each value must be a pointer to a model.
func (s *Session) Add(values ...interface{}) {
	s.stage(opCreate, values)
}

// Save stages updates of already persisted rows.
func (s *Session) Save(values ...interface{}) {
	s.stage(opSave, values)
}

// Delete stages removal of persisted rows.
func (s *Session) Delete(values ...interface{}) {
	s.stage(opDelete, values)
}

func (s *Session) stage(kind opKind, values []interface{}) {
	for _, v := range values {
		if v == nil {
			continue
		}
		s.pending = append(s.pending, stagedOp{kind: kind, value: v})
	}
}

// Pending returns the number of staged operations.
func (s *Session) Pending() int {
	return len(s.pending)
}

// Commit writes every staged operation in one transaction. On failure the
// transaction is rolled back, nothing is persisted, the staged operations are
// kept, and the error is returned as a models.AppError.
func (s *Session) Commit(ctx context.Context) error {
	if len(s.pending) == 0 {
		return nil
	}
	defer observability.TrackQuery("commit", "session")()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, op := range s.pending {
			var res *gorm.DB
			switch op.kind {
			case opCreate:
				res = tx.Create(op.value)
			case opSave:
				res = tx.Save(op.value)
			case opDelete:
				res = tx.Delete(op.value)
			}
			if res.Error != nil {
				return fmt.Errorf("%s #%d (%T): %w", op.kind, i, op.value, res.Error)
			}
		}
		return nil
	})
	if err != nil {
		observability.Logger.WarnContext(ctx, "session commit failed",
			slog.Int("pending", len(s.pending)),
			slog.String("error", err.Error()),
		)
		return TranslateError(err)
	}

	s.pending = nil
	return nil
}

// Rollback discards every staged operation.
func (s *Session) Rollback() {
	s.pending = nil
}
