// Package seeder fills an OrgSpace directory with fake departments and
// employees through the record API, with the same access checks and
// validation as any other client.
package seeder

import (
	"context"
	"errors"
	"fmt"

	"github.com/orgspace-systems/orgspace-stack/common/access"
	"github.com/orgspace-systems/orgspace-stack/common/actions"
	"github.com/orgspace-systems/orgspace-stack/common/logging"
	"github.com/orgspace-systems/orgspace-stack/common/session"
)

// Config controls one seeding run.
type Config struct {
	Departments int
	Employees   int
	// Password is given to every seeded employee.
	Password string
	// Seed makes the generated records reproducible; zero is random.
	Seed int64
}

// DefaultConfig seeds a small organization.
func DefaultConfig() Config {
	return Config{
		Departments: 4,
		Employees:   25,
		Password:    "orgspace123",
	}
}

// Result counts what a run created.
type Result struct {
	Departments int `json:"departments"`
	Employees   int `json:"employees"`
	Failed      int `json:"failed"`
}

// Runner handles the seeding execution
type Runner struct {
	svc    *actions.Service
	sess   *session.Session
	logger *logging.Logger
}

// NewRunner creates a runner acting as sess.
func NewRunner(svc *actions.Service, sess *session.Session, logger *logging.Logger) *Runner {
	return &Runner{svc: svc, sess: sess, logger: logger}
}

// fatal reports whether err means no further request can succeed.
func fatal(err error) bool {
	switch actions.Classify(err).Kind {
	case actions.KindSession, actions.KindAuthorization, actions.KindTransport:
		return true
	}
	return false
}

// Run creates cfg.Departments departments, then cfg.Employees employees
// spread across them. Rejected records are logged and counted; session,
// permission and connectivity failures stop the run.
func (r *Runner) Run(ctx context.Context, cfg Config) (Result, error) {
	var res Result
	actor := r.sess.Actor
	if !access.CanCreateEmployee(actor) {
		return res, fmt.Errorf("%w: %s cannot create employees", access.ErrForbidden, actor.Role)
	}
	roles := access.AssignableRoles(actor)
	if len(roles) == 0 {
		return res, fmt.Errorf("%w: no assignable roles", access.ErrForbidden)
	}

	gen := NewGenerator(cfg.Seed)
	logger := r.logger.With(logging.UserID(actor.UserID))

	var names []string
	if cfg.Departments > 0 && access.CanAccess(actor, access.PageDepartments) {
		for i := 0; i < cfg.Departments; i++ {
			in := gen.Department()
			if err := r.svc.SaveDepartment(ctx, r.sess, "", in); err != nil {
				if fatal(err) {
					return res, err
				}
				res.Failed++
				logger.WarnContext(ctx, "Department rejected", "name", in.Name, logging.Error(err))
				continue
			}
			res.Departments++
			names = append(names, in.Name)
		}
		logger.InfoContext(ctx, "Departments seeded", "count", res.Departments)
	}

	if len(names) == 0 {
		existing, err := r.svc.Gateway().ListDepartments(ctx, r.sess)
		if err != nil {
			return res, err
		}
		for _, d := range existing {
			names = append(names, d.Name)
		}
	}
	if len(names) == 0 {
		if cfg.Employees > 0 {
			return res, errors.New("no departments to place employees in")
		}
		return res, nil
	}

	for i := 0; i < cfg.Employees; i++ {
		in := gen.Employee(names, roles, cfg.Password)
		if err := r.svc.CreateEmployee(ctx, r.sess, in); err != nil {
			if fatal(err) {
				return res, err
			}
			res.Failed++
			logger.WarnContext(ctx, "Employee rejected", "user_id", in.UserID, logging.Error(err))
			continue
		}
		res.Employees++
		if res.Employees%10 == 0 {
			logger.InfoContext(ctx, "Seeding progress", "employees", res.Employees, "of", cfg.Employees)
		}
	}
	logger.InfoContext(ctx, "Seeding complete",
		"departments", res.Departments, "employees", res.Employees, "failed", res.Failed)
	return res, nil
}
