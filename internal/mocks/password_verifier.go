package mocks

import (
	"errors"
	"sync"
)

// MockPasswordVerifier implements auth.PasswordVerifier for testing
type MockPasswordVerifier struct {
	// ShouldSucceed determines whether the password comparison should succeed
	ShouldSucceed bool

	// CompareFn allows for custom comparison logic in tests
	CompareFn func(hashedPassword, password string) error

	mu               sync.Mutex
	compareCallCount int
}

// Compare implements the auth.PasswordVerifier interface
func (m *MockPasswordVerifier) Compare(hashedPassword, password string) error {
	m.mu.Lock()
	m.compareCallCount++
	m.mu.Unlock()

	if m.CompareFn != nil {
		return m.CompareFn(hashedPassword, password)
	}
	if m.ShouldSucceed {
		return nil
	}
	return errors.New("password mismatch")
}

// CompareCallCount returns how many times Compare was called.
func (m *MockPasswordVerifier) CompareCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.compareCallCount
}

// PlainHasher implements auth.PasswordHasher and auth.PasswordVerifier by
// prefixing the password. It keeps tests fast where bcrypt is irrelevant.
type PlainHasher struct {
	// HashErr, when set, is returned from Hash.
	HashErr error
}

// Hash implements auth.PasswordHasher.
func (h PlainHasher) Hash(password string) (string, error) {
	if h.HashErr != nil {
		return "", h.HashErr
	}
	return "plain:" + password, nil
}

// Compare implements auth.PasswordVerifier.
func (h PlainHasher) Compare(hashedPassword, password string) error {
	if hashedPassword != "plain:"+password {
		return errors.New("password mismatch")
	}
	return nil
}
