package otp

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"hackreg-backend/errs"
)

// TTL is the window in which an issued code can be redeemed.
const TTL = 10 * time.Minute

type record struct {
	code     string
	issuedAt time.Time
}

// Store holds pending email verification codes. It is the only in-process
// mutable state of the backend; all access goes through the mutex so a verify
// is a single compare-and-delete.
type Store struct {
	mu    sync.Mutex
	codes map[string]record
}

func NewStore() *Store {
	return &Store{
		codes: make(map[string]record),
	}
}

// Issue generates a six digit code for the address, replacing any pending one.
func (s *Store) Issue(email string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", errs.ErrCryptographic
	}

	s.mu.Lock()
	s.codes[email] = record{code: code, issuedAt: time.Now()}
	s.mu.Unlock()

	return code, nil
}

// Verify consumes the pending code for the address. An expired record is
// removed; a mismatched code leaves the record in place so the right one can
// still be redeemed.
func (s *Store) Verify(email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.codes[email]
	if !ok {
		return errs.ErrOTPNotFound
	}

	if time.Since(r.issuedAt) > TTL {
		delete(s.codes, email)
		return errs.ErrOTPExpired
	}

	if r.code != code {
		return errs.ErrOTPMismatch
	}

	delete(s.codes, email)
	return nil
}

func generateCode() (string, error) {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	n := int(buf[0])<<16 | int(buf[1])<<8 | int(buf[2])
	return fmt.Sprintf("%06d", n%1000000), nil
}
