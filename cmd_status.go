package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/minios-linux/gettextify/catalog"
	"github.com/minios-linux/gettextify/config"
	"github.com/minios-linux/gettextify/langmeta"
)

func newStatusCmd() *cobra.Command {
	var langs []string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show translation statistics per language",
		Long: `Print the translated, fuzzy and untranslated counts of every django.po
catalog under the configured locale paths.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runStatus(cmd.OutOrStdout(), root, cfg, splitList(langs))
		},
	}
	cmd.Flags().StringSliceVarP(&langs, "lang", "l", nil, "Only show these languages")
	return cmd
}

func runStatus(out io.Writer, root string, cfg *config.File, filter []string) error {
	shown := 0
	for _, lr := range cfg.LocaleRoots(root) {
		codes := config.DetectLanguages([]string{lr})
		if len(filter) > 0 {
			codes = intersectLanguages(codes, filter)
		}
		if len(codes) == 0 {
			continue
		}

		name := lr
		if rel, err := filepath.Rel(root, lr); err == nil {
			name = rel
		}
		fmt.Fprintf(out, "%s\n", colorize(colorBlue, name))
		fmt.Fprintf(out, "  %-28s %-24s %8s %6s %8s\n", "LANGUAGE", "PROGRESS", "DONE", "FUZZY", "MISSING")

		for _, code := range codes {
			c, err := catalog.Load(lr, code)
			if err != nil {
				fmt.Fprintf(out, "  %-28s %s\n", langCell(code), colorize(colorRed, err.Error()))
				continue
			}
			st := c.Stats()
			pct := st.Percent()
			color := colorYellow
			switch {
			case pct == 100:
				color = colorGreen
			case pct < 50:
				color = colorRed
			}
			fmt.Fprintf(out, "  %-28s %s %3d%% %8s %6d %8d\n",
				langCell(code),
				progressBar(pct, 18, color),
				pct,
				fmt.Sprintf("%d/%d", st.Translated, st.Total),
				st.Fuzzy,
				st.Untranslated,
			)
			shown++
		}
		fmt.Fprintln(out)
	}

	if shown == 0 {
		logWarning("No catalogs found under %s", strings.Join(cfg.LocalePaths, ", "))
	}
	return nil
}

// langCell renders "🇫🇷 fr  Français".
func langCell(code string) string {
	m := langmeta.Resolve(code)
	flag := m.Flag
	if flag == "" {
		flag = "  "
	}
	return fmt.Sprintf("%s %-6s %s", flag, code, m.Name)
}

// progressBar draws a bar of width cells filled to percent.
func progressBar(percent, width int, color string) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * width / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return colorize(color, bar)
}
