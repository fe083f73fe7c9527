// Package accounts models the linked accounts the deep-link resolver fans
// out over, and the sources the account list is loaded from.
//
// The resolver does not own account lifecycle. It asks a Source for the
// current list whenever it resolves a link; sources may be static, a file
// on disk, or an object in S3.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vango-dev/deeplink/pkg/platform"
)

// Key identifies a linked account: its host plus the local account id.
type Key struct {
	Host string `json:"host"`
	ID   string `json:"id"`
}

// String returns "id@host".
func (k Key) String() string {
	return k.ID + "@" + k.Host
}

// Account is a locally linked account.
type Account struct {
	ID     string          `json:"id" yaml:"id" toml:"id"`
	Host   string          `json:"host" yaml:"host" toml:"host"`
	Family platform.Family `json:"family" yaml:"family" toml:"family"`
}

// Key returns the account key.
func (a Account) Key() Key {
	return Key{Host: a.Host, ID: a.ID}
}

// Validation errors.
var (
	ErrEmptyID       = errors.New("account id is empty")
	ErrEmptyHost     = errors.New("account host is empty")
	ErrUnknownFamily = errors.New("account family is unknown")
	ErrDuplicateKey  = errors.New("duplicate account")
	ErrInvalidHost   = errors.New("account host is not a bare host name")
)

// Validate checks a single account.
func (a Account) Validate() error {
	switch {
	case strings.TrimSpace(a.ID) == "":
		return ErrEmptyID
	case strings.TrimSpace(a.Host) == "":
		return fmt.Errorf("%s: %w", a.ID, ErrEmptyHost)
	case strings.ContainsAny(a.Host, "/?#@{}% \t\n\\"):
		return fmt.Errorf("%s: %w", a.Key(), ErrInvalidHost)
	case a.Family == platform.Unknown:
		return fmt.Errorf("%s: %w", a.Key(), ErrUnknownFamily)
	}
	return nil
}

// Normalize lower-cases hosts and validates the list, rejecting duplicate
// keys.
func Normalize(list []Account) ([]Account, error) {
	out, rejected := Sanitize(list)
	if len(rejected) > 0 {
		return nil, rejected[0]
	}
	return out, nil
}

// Sanitize normalizes list like Normalize but drops invalid and duplicate
// accounts instead of failing. Each dropped account yields one error, in
// list order.
func Sanitize(list []Account) ([]Account, []error) {
	out := make([]Account, 0, len(list))
	seen := make(map[Key]bool, len(list))
	var rejected []error
	for _, a := range list {
		a.ID = strings.TrimSpace(a.ID)
		a.Host = strings.ToLower(strings.TrimSpace(a.Host))
		if err := a.Validate(); err != nil {
			rejected = append(rejected, err)
			continue
		}
		if seen[a.Key()] {
			rejected = append(rejected, fmt.Errorf("%s: %w", a.Key(), ErrDuplicateKey))
			continue
		}
		seen[a.Key()] = true
		out = append(out, a)
	}
	return out, rejected
}

// Source supplies the current list of linked accounts.
type Source interface {
	Accounts(ctx context.Context) ([]Account, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]Account, error)

// Accounts implements Source.
func (f SourceFunc) Accounts(ctx context.Context) ([]Account, error) {
	return f(ctx)
}

// Static is a fixed account list.
type Static []Account

// Accounts implements Source.
func (s Static) Accounts(context.Context) ([]Account, error) {
	out := make([]Account, len(s))
	copy(out, s)
	return out, nil
}
