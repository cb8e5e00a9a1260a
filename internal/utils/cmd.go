package utils

import (
	"context"
	"fmt"
	"os/exec"
)

func ExecWith(ctx context.Context, name string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd
}

// RequireBinary fails when name cannot be found on PATH.
func RequireBinary(name string) (string, error) {
	p, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%s not found in PATH: %w", name, err)
	}
	return p, nil
}
