package service

import (
	"context"
	"testing"
	"time"

	"slotbook/internal/reservations/validator"
	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdmin_LoginAndDump(t *testing.T) {
	cfg := testConfig()
	snap := model.Snapshot{
		"2025-01-17": {"09:00": {Name: "Bob", Passphrase: "b"}},
		"2025-01-16": {
			"12:00": {Name: "Carol", Passphrase: "c"},
			"09:00": {Name: "Alice", Passphrase: "a"},
		},
	}
	svc := NewAdminService(sourceAt(cfg, wednesday, snap, "1"), validator.NewReservationValidator(cfg.Log, cfg.SlotTimes), cfg)

	_, err := svc.Login(context.Background(), &model.AdminLoginRequest{Secret: "wrong"})
	assertCode(t, err, apperrors.CodeUnauthorized)

	token, err := svc.Login(context.Background(), &model.AdminLoginRequest{Secret: "letmein"})
	require.NoError(t, err)
	require.NotEmpty(t, token.Token)
	assert.Greater(t, token.ExpiresAt, time.Now().Unix())

	require.NoError(t, svc.Authorize(token.Token))
	assertCode(t, svc.Authorize(""), apperrors.CodeUnauthorized)
	assertCode(t, svc.Authorize(token.Token+"x"), apperrors.CodeUnauthorized)

	dump, err := svc.Dump(context.Background())
	require.NoError(t, err)
	require.Len(t, dump, 3)
	assert.Equal(t, "Alice", dump[0].Name)
	assert.Equal(t, "a", dump[0].Passphrase)
	assert.Equal(t, "Carol", dump[1].Name)
	assert.Equal(t, "2025-01-17", dump[2].Date)
}

func TestAdmin_TokenExpires(t *testing.T) {
	cfg := testConfig()
	svc := NewAdminService(sourceAt(cfg, wednesday, nil, "1"), validator.NewReservationValidator(cfg.Log, cfg.SlotTimes), cfg).(*adminService)

	issued := time.Date(2025, time.January, 15, 10, 0, 0, 0, kst)
	svc.now = func() time.Time { return issued }
	token, err := svc.Login(context.Background(), &model.AdminLoginRequest{Secret: "letmein"})
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(cfg.AdminTokenTTL + time.Minute) }
	assertCode(t, svc.Authorize(token.Token), apperrors.CodeUnauthorized)
}

func TestAdmin_DisabledWithoutSecret(t *testing.T) {
	cfg := testConfig()
	cfg.AdminSecret = ""
	svc := NewAdminService(sourceAt(cfg, wednesday, nil, "1"), validator.NewReservationValidator(cfg.Log, cfg.SlotTimes), cfg)

	_, err := svc.Login(context.Background(), &model.AdminLoginRequest{Secret: ""})
	assertCode(t, err, apperrors.CodeForbidden)
	assertCode(t, svc.Authorize("anything"), apperrors.CodeForbidden)
}
