package engine

import (
	"context"

	"github.com/pkg/errors"

	"github.com/franksops/autotransfer/config"
	"github.com/franksops/autotransfer/provider"
)

// Router applies the post-transfer policy to a finished task's source path.
type Router struct {
	fs provider.Provider
}

// NewRouter creates a Router operating on fs.
func NewRouter(fs provider.Provider) *Router {
	return &Router{fs: fs}
}

// Quarantine moves the source into the profile's error directory.
func (r *Router) Quarantine(ctx context.Context, t *Task, log taskLog) error {
	log.Info("Error detected, moving contents to error directory...")
	if _, err := r.fs.Move(ctx, t.SourcePath, t.Profile.ErrorDirectory); err != nil {
		log.Warn("Unable to move to error directory: %v", err)
		return errors.Wrap(ErrCleanup, err.Error())
	}
	return nil
}

// Complete applies the profile's completion policy after a successful
// transfer.
func (r *Router) Complete(ctx context.Context, t *Task, log taskLog) error {
	switch t.Profile.OnComplete {
	case config.PolicyMove:
		target, err := r.fs.Move(ctx, t.SourcePath, t.Profile.CompletedDirectory)
		if err != nil {
			log.Warn("Unable to move to completed directory: %v", err)
			return errors.Wrap(ErrCleanup, err.Error())
		}
		log.Info("Moving to: %s", target)

	case config.PolicyDelete:
		log.Info("Deleting...")
		info, err := r.fs.Stat(ctx, t.SourcePath)
		if err != nil {
			log.Warn("Unable to delete: %v", err)
			return errors.Wrap(ErrCleanup, err.Error())
		}
		if err := r.fs.Remove(ctx, t.SourcePath); err != nil {
			if info.IsDir() {
				log.Warn("Unable to delete directory: %v", err)
			} else {
				log.Warn("Unable to delete file: %v", err)
			}
			return errors.Wrap(ErrCleanup, err.Error())
		}
	}
	return nil
}

// Route quarantines on a non-zero exit code and applies the completion
// policy otherwise. Failures are logged as warnings and returned for the
// caller's records only.
func (r *Router) Route(ctx context.Context, t *Task, exitCode int, log taskLog) error {
	if exitCode != 0 {
		return r.Quarantine(ctx, t, log)
	}
	return r.Complete(ctx, t, log)
}
