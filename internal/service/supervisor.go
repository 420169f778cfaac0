package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"go.uber.org/zap"

	"FlockCheck/internal/audit"
	"FlockCheck/internal/model"
	"FlockCheck/internal/model/dto"
	pkgerrors "FlockCheck/pkg/errors"
	"FlockCheck/pkg/logger"
)

// SessionValidator is the narrow view of the session manager that other
// services need: token in, acting supervisor out. Authorize additionally
// writes the audit entry for the privileged action being taken.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (*model.Supervisor, error)
	Authorize(ctx context.Context, token, action, targetEntity string, targetID int64) (*model.Supervisor, error)
}

// SupervisorService manages PIN-authenticated override sessions.
// Session lifecycle: PIN login creates an Active session; logout revokes it;
// expiry is checked on every validation. Expired and revoked tokens fail
// closed.
type SupervisorService struct {
	store      SupervisorStore
	auditSink  audit.Sink
	sessionTTL time.Duration
	hashPIN    func(string) string
	newToken   func() (string, error)
	clock      func() time.Time
}

func NewSupervisorService(
	store SupervisorStore,
	auditSink audit.Sink,
	sessionTTL time.Duration,
	hashPIN func(string) string,
) *SupervisorService {
	return &SupervisorService{
		store:      store,
		auditSink:  auditSink,
		sessionTTL: sessionTTL,
		hashPIN:    hashPIN,
		newToken:   randomToken,
		clock:      time.Now,
	}
}

// Login verifies a PIN and opens a session. The PIN itself is never stored
// or logged; lookup is by salted hash.
func (s *SupervisorService) Login(ctx context.Context, pin, clientAddr string) (*dto.SupervisorLoginResponse, error) {
	if pin == "" {
		return nil, pkgerrors.ValidationError
	}

	sup, err := s.store.GetByPINHash(ctx, s.hashPIN(pin))
	if err != nil {
		if err == ErrNotFound {
			return nil, pkgerrors.SupervisorPINInvalid
		}
		return nil, fmt.Errorf("failed to look up supervisor: %w", err)
	}
	if !sup.IsActive {
		return nil, pkgerrors.SupervisorPINInvalid
	}

	token, err := s.newToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	now := s.clock()
	session := &model.SupervisorSession{
		Token:        token,
		SupervisorID: sup.ID,
		ClientAddr:   clientAddr,
		IssuedAt:     now,
		ExpiresAt:    now.Add(s.sessionTTL),
	}

	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create supervisor session: %w", err)
	}

	logger.Logger.Info("Supervisor session opened",
		zap.Int64("supervisor_id", sup.ID),
		zap.String("client_addr", clientAddr),
		zap.Time("expires_at", session.ExpiresAt),
	)

	return &dto.SupervisorLoginResponse{
		Token:          token,
		ExpiresAt:      session.ExpiresAt,
		SupervisorName: sup.Name,
	}, nil
}

// Validate resolves a token to its acting supervisor. Missing, revoked, and
// expired sessions all come back Unauthorized; an expired session is never
// silently honored.
func (s *SupervisorService) Validate(ctx context.Context, token string) (*model.Supervisor, error) {
	if token == "" {
		return nil, pkgerrors.Unauthorized
	}

	session, err := s.store.GetSession(ctx, token)
	if err != nil {
		if err == ErrNotFound {
			return nil, pkgerrors.Unauthorized
		}
		return nil, fmt.Errorf("failed to load supervisor session: %w", err)
	}

	if session.Revoked {
		return nil, pkgerrors.Unauthorized
	}
	if !s.clock().Before(session.ExpiresAt) {
		return nil, pkgerrors.SupervisorSessionExpired
	}

	sup, err := s.store.GetSupervisor(ctx, session.SupervisorID)
	if err != nil {
		if err == ErrNotFound {
			return nil, pkgerrors.Unauthorized
		}
		return nil, fmt.Errorf("failed to load supervisor %d: %w", session.SupervisorID, err)
	}
	if !sup.IsActive {
		return nil, pkgerrors.Unauthorized
	}

	return sup, nil
}

// Authorize validates a token and writes the mandatory audit entry for a
// privileged action in one step.
func (s *SupervisorService) Authorize(
	ctx context.Context,
	token, action, targetEntity string,
	targetID int64,
) (*model.Supervisor, error) {
	sup, err := s.Validate(ctx, token)
	if err != nil {
		return nil, err
	}

	s.auditSink.Record(ctx, audit.Entry{
		Action:       action,
		ActorID:      sup.PersonID,
		ActorName:    sup.Name,
		TargetEntity: targetEntity,
		TargetID:     targetID,
	})

	return sup, nil
}

// Logout revokes the session. Reports false when the token was unknown.
func (s *SupervisorService) Logout(ctx context.Context, token string) (bool, error) {
	session, err := s.store.GetSession(ctx, token)
	if err != nil {
		if err == ErrNotFound {
			return false, nil
		}
		return false, fmt.Errorf("failed to load supervisor session: %w", err)
	}

	if err := s.store.RevokeSession(ctx, token); err != nil {
		return false, fmt.Errorf("failed to revoke supervisor session: %w", err)
	}

	s.auditSink.Record(ctx, audit.Entry{
		Action:       "supervisor.logout",
		ActorID:      session.SupervisorID,
		TargetEntity: "supervisor_session",
		TargetID:     session.ID,
	})

	return true, nil
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
