package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/minios-linux/gettextify/config"
	"github.com/minios-linux/gettextify/discover"
	"github.com/minios-linux/gettextify/extract"
	"github.com/minios-linux/gettextify/i18n"
	"github.com/minios-linux/gettextify/update"
)

// Closing hints, translated through i18n.
const (
	hintMigrate      = "Check the rewritten files, then run makemigrations and migrate: verbose_name changes create new migrations."
	hintMakemessages = "Run 'python manage.py makemessages -l <lang>' to create the .po files, then 'gettextify translate'."
)

type wrapArgs struct {
	format      bool
	fromModels  bool
	exclude     []string
	concurrency int
	dryRun      bool
	python      string
}

func newWrapCmd() *cobra.Command {
	var a wrapArgs

	cmd := &cobra.Command{
		Use:   "wrap [APP...]",
		Short: "Wrap model, field, admin and choice labels in _()",
		Long: `Rewrite the Python files of Django apps so that model fields, Meta
verbose names, admin actions, TextChoices labels and validation errors
carry gettext_lazy markers, and add the import where it is missing.

Apps default to the "apps" list of .gettextify.yaml.

Examples:
  gettextify wrap shop blog              Rewrite every file of two apps
  gettextify wrap shop --from-models     Only the modules that define models
  gettextify wrap shop --format          Run ruff format on changed files
  gettextify wrap shop --dry-run -v      Show what would change`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("format") {
				a.format = cfg.Format.Enabled
			}
			if !cmd.Flags().Changed("exclude") {
				a.exclude = append(append([]string{}, discover.DefaultExclude...), cfg.Exclude...)
			}
			if a.concurrency == 0 {
				a.concurrency = cfg.Concurrency
			}
			if a.python == "" {
				a.python = cfg.Python
			}
			apps := args
			if len(apps) == 0 {
				apps = cfg.Apps
			}
			if len(apps) == 0 {
				return errors.New("no apps given and none configured in " + config.FileName)
			}

			ctx, cancel := signalContext()
			defer cancel()
			return runWrap(ctx, root, apps, cfg, a)
		},
	}

	cmd.Flags().BoolVar(&a.format, "format", false, "Format rewritten files (format.command, default: ruff format)")
	cmd.Flags().BoolVar(&a.fromModels, "from-models", false, "Ask Django which modules define the app's models instead of walking the app")
	cmd.Flags().StringSliceVar(&a.exclude, "exclude", nil, "Gitignore-style patterns of files to skip (replaces the defaults)")
	cmd.Flags().IntVarP(&a.concurrency, "concurrency", "j", 0, "Files processed at once (default 5)")
	cmd.Flags().BoolVar(&a.dryRun, "dry-run", false, "Report changes without writing files")
	cmd.Flags().StringVar(&a.python, "python", "", "Python interpreter for manage.py")

	return cmd
}

// collectFiles gathers the files of every app. An app that cannot be
// listed is reported and skipped.
func collectFiles(ctx context.Context, root string, apps []string, a wrapArgs) ([]string, int) {
	var files []string
	failed := 0
	for _, app := range apps {
		var paths []string
		var err error
		if a.fromModels {
			var mods []string
			mods, err = discover.ModelModules(ctx, root, a.python, app)
			paths = discover.ModelFiles(root, mods)
		} else {
			paths, err = discover.AppFiles(root, app, a.exclude)
		}
		if err != nil {
			logError("%s: %v", app, err)
			failed++
			continue
		}
		log.Debug().Str("app", app).Int("files", len(paths)).Msg("collected")
		files = append(files, paths...)
	}
	return dedupe(files), failed
}

func runWrap(ctx context.Context, root string, apps []string, cfg *config.File, a wrapArgs) error {
	files, failedApps := collectFiles(ctx, root, apps, a)
	if len(files) == 0 {
		if failedApps > 0 {
			return fmt.Errorf("no files found for %d app(s)", failedApps)
		}
		logWarning("No Python files to update")
		return nil
	}

	opts := update.Options{
		DryRun:      a.dryRun,
		Concurrency: a.concurrency,
		Logger:      log.Logger,
	}
	if a.format && !a.dryRun {
		opts.Formatter = extract.NewFormatter(cfg.Format.Command, root)
	}

	logInfo("Updating %d file(s) in %d app(s)", len(files), len(apps)-failedApps)
	rep := update.Files(ctx, files, opts)

	changed := 0
	for _, res := range rep.Results {
		if res.Err != nil || res.Skipped || !res.Stats.Changed() {
			continue
		}
		changed++
		if a.dryRun {
			logInfo("would update %s (%d literal(s), import added: %v)", res.Path, res.Stats.Wrapped, res.Stats.ImportAdded)
		}
	}

	if a.dryRun {
		logInfo("Dry run: %d of %d file(s) would change", changed, len(files))
	} else {
		logSuccess(i18n.N("Added gettext markers to %d file", "Added gettext markers to %d files", rep.Written()), rep.Written())
	}

	if err := rep.Err(); err != nil {
		return fmt.Errorf("some files could not be updated: %w", err)
	}
	if failedApps > 0 {
		return fmt.Errorf("%d app(s) could not be listed", failedApps)
	}
	if rep.Written() > 0 {
		logWarning("%s", i18n.T(hintMigrate))
		logInfo("%s", i18n.T(hintMakemessages))
	}
	return nil
}
