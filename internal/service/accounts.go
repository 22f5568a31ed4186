package service

import (
	"attendance-service/api"
	"attendance-service/internal/access"
	"attendance-service/internal/models"
	"attendance-service/internal/session"
	"attendance-service/pkg/response"
	"context"
	"fmt"
	"strings"
)

func toAccount(a models.Account) api.Account {
	return api.Account{
		ID:        a.ID,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Login:     a.Login,
		Role:      a.Role,
		Grade:     a.Grade,
		Section:   a.Section,
		Active:    a.Active,
		Protected: access.IsProtected(a),
	}
}

func findAccount(accounts []models.Account, id string) (models.Account, bool) {
	for _, a := range accounts {
		if a.ID == id {
			return a, true
		}
	}

	return models.Account{}, false
}

// Account loads the current state of an account for session checks.
func (s *Service) Account(ctx context.Context, id string) (models.Account, error) {
	const op = "service.Account"

	accounts, err := s.store.Accounts(ctx)
	if err != nil {
		return models.Account{}, fmt.Errorf("%s: %w", op, err)
	}

	a, ok := findAccount(accounts, id)
	if !ok {
		return models.Account{}, fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return a, nil
}

// Login checks the login and secret in plain text and issues a session token.
func (s *Service) Login(ctx context.Context, req *api.LoginRequest) (*api.LoginResponse, error) {
	const op = "service.Login"

	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	accounts, err := s.store.Accounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var found *models.Account
	for i := range accounts {
		if accounts[i].Login == strings.TrimSpace(req.Login) && accounts[i].Secret == req.Secret {
			found = &accounts[i]
			break
		}
	}

	if found == nil {
		return nil, fmt.Errorf("%s: %w", op, response.ErrUnauthorized)
	}
	if !found.Active {
		return nil, fmt.Errorf("%s: %w", op, response.ErrInactive)
	}

	token, expires, err := s.sessions.Issue(*found)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &api.LoginResponse{
		Token:     token,
		ExpiresAt: expires,
		Account:   toAccount(*found),
	}, nil
}

func (s *Service) ListAccounts(ctx context.Context) ([]api.Account, error) {
	const op = "service.ListAccounts"

	accounts, err := s.store.Accounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]api.Account, 0, len(accounts))
	for _, a := range accounts {
		result = append(result, toAccount(a))
	}

	return result, nil
}

// SaveAccount creates an account when req.ID is empty or unknown, and edits
// it otherwise. Role changes are filtered through access.EffectiveRole.
func (s *Service) SaveAccount(ctx context.Context, sess session.Session, req *api.AccountRequest) (*api.Account, error) {
	const op = "service.SaveAccount"

	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	accounts, err := s.store.Accounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	existing, exists := findAccount(accounts, req.ID)

	target := models.Account{
		ID:        req.ID,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Login:     strings.TrimSpace(req.Login),
		Secret:    req.Secret,
		Grade:     strings.TrimSpace(req.Grade),
		Section:   strings.TrimSpace(req.Section),
		Active:    true,
	}

	if exists {
		if !access.CanModify(sess.Account, existing) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrForbidden)
		}
		target.Active = existing.Active
		target.Role = existing.Role
	} else {
		if !sess.IsAdmin() {
			return nil, fmt.Errorf("%s: %w", op, response.ErrForbidden)
		}
		if target.ID == "" {
			target.ID = s.opts.NewID()
		}
		if target.Secret == "" {
			return nil, fmt.Errorf("%s: secret is required: %w", op, response.ErrValidation)
		}
	}

	for _, a := range accounts {
		if a.ID != target.ID && strings.EqualFold(a.Login, target.Login) {
			return nil, fmt.Errorf("%s: login %q: %w", op, target.Login, response.ErrConflict)
		}
	}

	target.Role = access.EffectiveRole(sess.Account, target, req.Role)

	if req.Active != nil && *req.Active != target.Active {
		if access.IsProtected(target) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrProtected)
		}
		if !access.CanToggleActive(sess.Account, target) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrForbidden)
		}
		target.Active = *req.Active
	}

	switch target.Role {
	case models.RoleAdmin:
		target.Grade, target.Section = "", ""
	case models.RoleTeacher:
		if target.Grade == "" || target.Section == "" {
			return nil, fmt.Errorf("%s: teacher needs grade and section: %w", op, response.ErrValidation)
		}
	}

	if err := s.store.SaveAccount(ctx, target); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("account saved",
		"op", op,
		"account_id", target.ID,
		"role", string(target.Role),
		"created", !exists,
	)

	result := toAccount(target)
	return &result, nil
}

func (s *Service) DeleteAccount(ctx context.Context, sess session.Session, id string) error {
	const op = "service.DeleteAccount"

	accounts, err := s.store.Accounts(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	target, ok := findAccount(accounts, id)
	if !ok {
		// deleting a missing account is a no-op
		return nil
	}

	if access.IsProtected(target) {
		return fmt.Errorf("%s: %w", op, response.ErrProtected)
	}
	if !access.CanDelete(sess.Account, target) {
		return fmt.Errorf("%s: %w", op, response.ErrForbidden)
	}

	if err := s.store.DeleteAccount(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ToggleAccountActive flips the active flag of an account.
func (s *Service) ToggleAccountActive(ctx context.Context, sess session.Session, id string) (*api.Account, error) {
	const op = "service.ToggleAccountActive"

	accounts, err := s.store.Accounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	target, ok := findAccount(accounts, id)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	if access.IsProtected(target) {
		return nil, fmt.Errorf("%s: %w", op, response.ErrProtected)
	}
	if !access.CanToggleActive(sess.Account, target) {
		return nil, fmt.Errorf("%s: %w", op, response.ErrForbidden)
	}

	target.Active = !target.Active
	if err := s.store.SaveAccount(ctx, target); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := toAccount(target)
	return &result, nil
}
