package cli

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	goutils "go.viam.com/utils"

	"go.viam.com/meshpose/annotation"
	"go.viam.com/meshpose/logging"
)

// ShowAction is the corresponding Action for 'show'.
func ShowAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("show expects exactly one metrics file")
	}
	g, err := newGlobals(c)
	if err != nil {
		return err
	}
	path := c.Args().First()
	render := func() error {
		set, err := annotation.ReadFile(path)
		if err != nil {
			return err
		}
		printf(c, "%s", set.String())
		return nil
	}
	if !c.Bool(showFlagFollow) {
		return render()
	}
	return watchFile(c.Context, path, g.logger, render)
}

// watchFile calls onChange once the watch is established and again whenever path is written or
// replaced, until ctx is done. Errors from onChange are logged; the file may be mid-write.
func watchFile(ctx context.Context, path string, logger logging.Logger, onChange func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "cannot watch metrics file")
	}
	defer goutils.UncheckedErrorFunc(watcher.Close)

	// Watch the directory: atomic writes replace the file, which drops a watch on the file itself.
	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return errors.Wrapf(err, "cannot watch %q", path)
	}
	if err := onChange(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			logger.Debugw("metrics file changed", "path", path, "op", event.Op.String())
			if err := onChange(); err != nil {
				logger.Warnw("cannot render metrics file", "path", path, "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnw("watch error", "path", path, "error", err)
		}
	}
}
