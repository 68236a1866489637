package build

import (
	"context"
	"os"

	"github.com/sitekit/sitekit/internal/errors"
)

// Clean removes the build output tree. Removing a tree that is already
// gone succeeds, so clean is idempotent.
func Clean(ctx context.Context, buildDir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return errors.Task("clean", os.RemoveAll(buildDir))
}
