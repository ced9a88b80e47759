// Package service exposes the farm operations offered to the CLI and the
// HTTP API, composed from the domain packages. Mutations are audited.
package service

import (
	"fmt"
	"log"
	"time"

	"github.com/zulandar/shamba/internal/apperr"
	"github.com/zulandar/shamba/internal/audit"
	"github.com/zulandar/shamba/internal/models"
	"github.com/zulandar/shamba/internal/users"
	"gorm.io/gorm"
)

// Service runs operations against one database on behalf of one user.
type Service struct {
	DB       *gorm.DB
	Operator *models.User
	Now      func() time.Time
}

// New returns a Service acting as the operator with the given email,
// creating that account on first use.
func New(db *gorm.DB, operatorEmail string) (*Service, error) {
	op, err := users.EnsureOperator(db, operatorEmail)
	if err != nil {
		return nil, fmt.Errorf("service: operator: %w", err)
	}
	return &Service{DB: db, Operator: op, Now: time.Now}, nil
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// record writes an audit entry attributed to the operator.
func (s *Service) record(tx *gorm.DB, action, table string, id uint, before, after any) error {
	_, err := audit.Record(tx, audit.Entry{
		UserID:   &s.Operator.ID,
		Action:   action,
		Table:    table,
		RecordID: &id,
		Old:      before,
		New:      after,
	})
	return err
}

// logged logs storage failures, which callers cannot act on, and passes
// every error through unchanged.
func logged(op string, err error) error {
	if err != nil && apperr.IsPersistence(err) {
		log.Printf("service: %s: %v", op, err)
	}
	return err
}
