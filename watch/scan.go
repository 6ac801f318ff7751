package watch

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/franksops/autotransfer/config"
	"github.com/franksops/autotransfer/provider"
	"github.com/franksops/autotransfer/ui"
)

// Scan synthesizes a moved-to event for every entry already present in a
// profile's input directory. Profiles with the nothing policy are skipped:
// their sources stay put, so each start would send them again.
func Scan(ctx context.Context, fs provider.Provider, profiles []*config.Profile, sink ui.Sink, handle func(Event)) error {
	for _, p := range profiles {
		if p.OnComplete == config.PolicyNothing {
			continue
		}

		entries, err := fs.List(ctx, p.InputDirectory)
		if err != nil {
			return fmt.Errorf("%s scan %s: %w", p.Tag(), p.InputDirectory, err)
		}

		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				return err
			}
			sink.Info(fmt.Sprintf("%s Pre-existing file detected: %s", p.Tag(), entry.Name()))
			handle(Event{
				Path:  filepath.Join(p.InputDirectory, entry.Name()),
				Kinds: KindMovedTo,
			})
		}
	}
	return nil
}
