package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"time"

	pkgerrors "FlockCheck/pkg/errors"
)

// SecurityCodeAllocator issues fixed-width pickup codes. Codes are unique
// only among currently-active records at one location+date; the scope is
// deliberately narrow so codes stay short enough to print on a label.
type SecurityCodeAllocator struct {
	attendance  AttendanceStore
	length      int
	maxAttempts int
	randInt     func(max int64) (int64, error)
}

func NewSecurityCodeAllocator(attendance AttendanceStore, length, maxAttempts int) *SecurityCodeAllocator {
	if length <= 0 {
		length = 6
	}
	if maxAttempts <= 0 {
		maxAttempts = 100
	}
	return &SecurityCodeAllocator{
		attendance:  attendance,
		length:      length,
		maxAttempts: maxAttempts,
		randInt:     cryptoRandInt,
	}
}

// Allocate draws random candidates until one is free in the (location, date)
// scope. A full scope fails with CodeSpaceExhausted rather than reusing a
// live code.
func (a *SecurityCodeAllocator) Allocate(ctx context.Context, locationID int64, date time.Time) (string, error) {
	max := pow10(a.length)

	for attempt := 0; attempt < a.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		n, err := a.randInt(max)
		if err != nil {
			return "", fmt.Errorf("failed to draw security code candidate: %w", err)
		}
		candidate := fmt.Sprintf("%0*d", a.length, n)

		taken, err := a.attendance.CodeExists(ctx, locationID, date, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check security code collision: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}

	return "", pkgerrors.CodeSpaceExhausted
}

// Verify checks a presented code against one attendance record. The lookup
// is scoped by attendance id; it never searches codes globally.
func (a *SecurityCodeAllocator) Verify(ctx context.Context, attendanceID int64, code string) (bool, error) {
	rec, err := a.attendance.Get(ctx, attendanceID)
	if err != nil {
		if err == ErrNotFound {
			return false, err
		}
		return false, fmt.Errorf("failed to load attendance record %d: %w", attendanceID, err)
	}

	match := subtle.ConstantTimeCompare([]byte(rec.SecurityCode), []byte(code)) == 1
	return match, nil
}

func cryptoRandInt(max int64) (int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(max))
	if err != nil {
		return 0, err
	}
	return n.Int64(), nil
}

func pow10(n int) int64 {
	v := int64(1)
	for i := 0; i < n; i++ {
		v *= 10
	}
	return v
}
