package services

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type ServiceError struct {
	Status  int
	Code    string
	Message string
	Cause   error
}

func (e *ServiceError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *ServiceError) Unwrap() error { return e.Cause }

func newServiceError(status int, code, message string, cause error) *ServiceError {
	return &ServiceError{Status: status, Code: code, Message: message, Cause: cause}
}

func mapPgErrorToServiceError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return newServiceError(http.StatusNotFound, "ACCOUNTS_NOT_FOUND", "not found", err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case "23505": // unique_violation
		switch pgErr.ConstraintName {
		case "records_stage_account_id_key":
			return newServiceError(http.StatusBadRequest, "ACCOUNTS_DUPLICATE", "email already exists in this stage", err)
		default:
			return newServiceError(http.StatusBadRequest, "ACCOUNTS_CONFLICT", "unique constraint violated", err)
		}
	case "23503": // foreign_key_violation
		return newServiceError(http.StatusUnprocessableEntity, "ACCOUNTS_REFERENCE_NOT_FOUND", "foreign key violation", err)
	default:
		return newServiceError(http.StatusInternalServerError, "ACCOUNTS_INTERNAL", fmt.Sprintf("database error (%s)", pgErr.Code), err)
	}
}
