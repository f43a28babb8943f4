package errors

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// reKeyField extracts the column from a unique violation detail: "Key (field)=(value) already exists.".
var reKeyField = regexp.MustCompile(`Key \(([^)]+)\)=`)

// tableNames maps tables to the names operators know them by.
var tableNames = map[string]string{
	"store_channel_settings": "Store channel",
	"schema_migrations":      "Schema migration",
}

// MapDBError maps database errors to AppError instances:
//   - context deadline and cancellation → Timeout / Canceled
//   - pgx.ErrNoRows → NotFound
//   - unique violations → Conflict
//   - check, NOT NULL and length violations → Validation
//   - connection failures → Unavailable
//
// Anything else is returned unchanged.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &AppError{Code: ErrCodeTimeout, Message: "Request timed out. Please try again.", Cause: err}
	case errors.Is(err, context.Canceled):
		return &AppError{Code: ErrCodeCanceled, Message: "Request was canceled.", Cause: err}
	case errors.Is(err, pgx.ErrNoRows):
		return &AppError{Code: ErrCodeNotFound, Message: "Resource not found", Cause: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return mapPgError(pgErr)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return &AppError{Code: ErrCodeUnavailable, Message: "Database is unavailable.", Cause: err}
	}

	return err
}

func mapPgError(pgErr *pgconn.PgError) error {
	entity := tableDisplayName(pgErr.TableName)

	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return &AppError{
			Code:    ErrCodeConflict,
			Message: entity + " already exists.",
			Field:   uniqueViolationField(pgErr),
			Cause:   pgErr,
		}
	case pgerrcode.NotNullViolation:
		return &AppError{
			Code:    ErrCodeValidation,
			Message: "This field is required.",
			Field:   pgErr.ColumnName,
			Cause:   pgErr,
		}
	case pgerrcode.CheckViolation:
		return &AppError{
			Code:    ErrCodeValidation,
			Message: "This field has an invalid value.",
			Field:   pgErr.ColumnName,
			Cause:   pgErr,
		}
	case pgerrcode.StringDataRightTruncationDataException:
		return &AppError{
			Code:    ErrCodeValidation,
			Message: "Value is too long.",
			Field:   pgErr.ColumnName,
			Cause:   pgErr,
		}
	case pgerrcode.AdminShutdown, pgerrcode.CannotConnectNow, pgerrcode.TooManyConnections:
		return &AppError{Code: ErrCodeUnavailable, Message: "Database is unavailable.", Cause: pgErr}
	default:
		return &AppError{
			Code:    ErrCodeInternal,
			Message: "A database error occurred. Please try again.",
			Cause:   pgErr,
		}
	}
}

// uniqueViolationField prefers column metadata, then the Detail text, then the constraint name.
func uniqueViolationField(pgErr *pgconn.PgError) string {
	if pgErr.ColumnName != "" {
		return pgErr.ColumnName
	}
	if m := reKeyField.FindStringSubmatch(pgErr.Detail); len(m) == 2 && !strings.Contains(m[1], ",") {
		return m[1]
	}
	return fieldFromConstraint(pgErr.ConstraintName, pgErr.TableName)
}

// fieldFromConstraint strips the table prefix and the _key/_pkey suffix from a constraint name.
// "store_channel_settings_pkey" yields "" since primary keys carry no column in their name.
func fieldFromConstraint(constraint, table string) string {
	name := strings.TrimPrefix(constraint, table+"_")
	if name == constraint && table != "" {
		return ""
	}
	for _, suffix := range []string{"_key", "_unique"} {
		if strings.HasSuffix(name, suffix) {
			return strings.TrimSuffix(name, suffix)
		}
	}
	return ""
}

func tableDisplayName(table string) string {
	table = strings.ToLower(strings.TrimSpace(table))
	if name, ok := tableNames[table]; ok {
		return name
	}
	if table == "" {
		return "Record"
	}
	name := strings.TrimSpace(strings.ReplaceAll(table, "_", " "))
	if name == "" {
		return "Record"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
