package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"slotbook/internal/reservations/report"
	"slotbook/internal/reservations/validator"
	"slotbook/pkg/config"
	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/locale"
	"slotbook/pkg/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const adminSubject = "admin"

// AdminService guards the full dump, passphrases included, behind one shared
// secret. The secret is a convenience gate, not an access-control boundary.
type AdminService interface {
	Login(ctx context.Context, req *model.AdminLoginRequest) (*model.AdminToken, error)
	Authorize(token string) error
	Dump(ctx context.Context) ([]model.Entry, error)
}

type adminService struct {
	source    SnapshotSource
	validator *validator.ReservationValidator
	cfg       *config.Config
	now       func() time.Time
}

func NewAdminService(source SnapshotSource, validator *validator.ReservationValidator, cfg *config.Config) AdminService {
	return &adminService{
		source:    source,
		validator: validator,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *adminService) Login(ctx context.Context, req *model.AdminLoginRequest) (*model.AdminToken, error) {
	if s.cfg.AdminSecret == "" {
		return nil, apperrors.Forbidden(locale.MsgAdminDisabled)
	}
	if err := s.validator.ValidateLogin(req); err != nil {
		return nil, apperrors.Unauthorized(locale.MsgWrongSecret)
	}
	if subtle.ConstantTimeCompare([]byte(req.Secret), []byte(s.cfg.AdminSecret)) != 1 {
		s.cfg.Log.Warn("Admin login rejected")
		return nil, apperrors.Unauthorized(locale.MsgWrongSecret)
	}

	now := s.now()
	expires := now.Add(s.cfg.AdminTokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   adminSubject,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	})
	signed, err := token.SignedString([]byte(s.cfg.AdminTokenSecret))
	if err != nil {
		return nil, apperrors.Internal("Failed to sign admin token", err)
	}

	s.cfg.Log.Info("Admin login succeeded", "expires_at", expires)
	return &model.AdminToken{Token: signed, ExpiresAt: expires.Unix()}, nil
}

func (s *adminService) Authorize(token string) error {
	if s.cfg.AdminSecret == "" {
		return apperrors.Forbidden(locale.MsgAdminDisabled)
	}
	if token == "" {
		return apperrors.Unauthorized(locale.MsgWrongSecret)
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.AdminTokenSecret), nil
	},
		jwt.WithSubject(adminSubject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		s.cfg.Log.Debug("Admin token rejected", "error", err)
		return apperrors.Unauthorized(locale.MsgWrongSecret)
	}
	return nil
}

func (s *adminService) Dump(ctx context.Context) ([]model.Entry, error) {
	entries := report.AdminDump(s.source.State().Snapshot)
	if entries == nil {
		entries = []model.Entry{}
	}
	return entries, nil
}
