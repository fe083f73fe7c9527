package accounts

import (
	"context"
	"fmt"
	"os"
)

// FileSource reads the account list from a JSON, YAML or TOML file on
// every call, so edits are picked up without a restart.
type FileSource struct {
	Path string

	// Format overrides the format derived from the file extension.
	Format Format
}

// Accounts implements Source.
func (s FileSource) Accounts(ctx context.Context) ([]Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("reading accounts: %w", err)
	}
	format := s.Format
	if format == "" {
		format = FormatFromPath(s.Path)
	}
	list, err := Decode(format, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	return list, nil
}
