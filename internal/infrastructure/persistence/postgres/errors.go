package postgres

import (
	stderrors "errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dagbjork/verimod/internal/domain/errors"
)

// SQLSTATE classes we translate at this boundary.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// wrapError translates driver errors into taxonomy errors. Constraint
// violations become AlreadyExists/InvalidArgument with a field-specific
// message derived from the constraint name; anything else is Internal.
func wrapError(err error, entity string) error {
	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return errors.E(errors.KindAlreadyExists, uniqueMessage(pgErr.ConstraintName, entity))
		case codeForeignKeyViolation:
			return errors.E(errors.KindInvalidArgument, foreignKeyMessage(pgErr.ConstraintName, entity))
		}
	}
	return errors.Wrap(errors.KindInternal, "a database error occurred", err)
}

func uniqueMessage(constraint, entity string) string {
	c := strings.ToLower(constraint)
	switch {
	case strings.Contains(c, "username"):
		return "a user with that username already exists"
	case strings.Contains(c, "email"):
		return "a user with that email already exists"
	case strings.Contains(c, "name"):
		return "a project with that name already exists"
	case strings.Contains(c, "user_id"):
		return "user already has access to that project"
	default:
		return entity + " already exists"
	}
}

func foreignKeyMessage(constraint, entity string) string {
	c := strings.ToLower(constraint)
	switch {
	case strings.Contains(c, "owner"), strings.Contains(c, "user"):
		return "no user with that id exists"
	case strings.Contains(c, "project"):
		return "no project with that id exists"
	default:
		return "could not create " + entity
	}
}

func notFound(entity string) error {
	return errors.E(errors.KindNotFound, "no "+entity+" found with given id")
}
