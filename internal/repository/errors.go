package repository

import (
	"errors"
	"fmt"
	"strings"

	"bodega-pos/internal/ledger"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrDuplicate = errors.New("record already exists")
	ErrInUse     = errors.New("record is still referenced")
)

// Postgres error codes
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// translate maps driver errors onto repository and ledger sentinels. A
// foreign key failure becomes fkAs: a missing parent on writes, a live
// reference on deletes.
func translate(err error, fkAs error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %v", ledger.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.Detail)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", fkAs, pgErr.Detail)
		}
		return err
	}

	// sqlite reports constraints by message only
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return fmt.Errorf("%w: %v", fkAs, err)
	}
	return err
}

func notFound(what string, id interface{}) error {
	return fmt.Errorf("%s %v: %w", what, id, ledger.ErrNotFound)
}

// IsNotFound reports whether err means the record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ledger.ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

func likePattern(term string) string {
	return "%" + strings.ToLower(strings.TrimSpace(term)) + "%"
}
