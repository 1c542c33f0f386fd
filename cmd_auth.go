package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"

	"github.com/minios-linux/gettextify/settings"
	"github.com/minios-linux/gettextify/translate"
)

// authProvider describes a provider that keeps credentials.
type authProvider struct {
	id      string
	name    string
	helpURL string
	example string
}

var authProviders = []authProvider{
	{
		id:      translate.ProviderGoogleAI,
		name:    "Google AI Studio",
		helpURL: "https://aistudio.google.com/apikey",
		example: "gettextify translate --provider google-ai --model gemini-2.5-flash",
	},
	{
		id:      translate.ProviderGroq,
		name:    "Groq Cloud",
		helpURL: "https://console.groq.com/keys",
		example: "gettextify translate --provider groq --model llama-3.3-70b-versatile",
	},
	{
		id:      translate.ProviderCustomOpenAI,
		name:    "Custom OpenAI-compatible endpoint",
		example: "gettextify translate --provider custom-openai --model MODEL_NAME",
	},
}

func findAuthProvider(id string) (authProvider, bool) {
	for _, p := range authProviders {
		if p.id == id {
			return p, true
		}
	}
	return authProvider{}, false
}

func authProviderIDs() []string {
	ids := make([]string, len(authProviders))
	for i, p := range authProviders {
		ids[i] = p.id
	}
	return ids
}

func completeAuthProvider(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	out := make([]string, 0, len(authProviders))
	for _, p := range authProviders {
		out = append(out, p.id+"\t"+p.name)
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// askCancelled reports whether a prompt was interrupted with Ctrl+C.
func askCancelled(err error) bool {
	return errors.Is(err, terminal.InterruptErr)
}

// ---------------------------------------------------------------------------
// auth (login / logout / list)
// ---------------------------------------------------------------------------

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage provider API keys",
		Long: `Manage the API keys of the translation providers.

Keys are stored in ` + "`$XDG_DATA_HOME/gettextify/auth.json`" + ` with 0600
permissions. The --api-key flag and GETTEXTIFY_API_KEY take precedence.

No key needed:
  google   Google Translate
  ollama   local server

Examples:
  gettextify auth login                        Interactive provider selection
  gettextify auth login --provider groq        Store a Groq API key
  gettextify auth logout --provider groq       Remove the Groq key
  gettextify auth logout                       Remove all keys
  gettextify auth list                         Show stored keys`,
	}
	cmd.AddCommand(newAuthLoginCmd(), newAuthLogoutCmd(), newAuthListCmd())
	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the API key of a provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			if provider == "" {
				options := make([]string, len(authProviders))
				for i, p := range authProviders {
					options[i] = p.id + " (" + p.name + ")"
				}
				var choice int
				prompt := &survey.Select{
					Message: "Select provider to authenticate:",
					Options: options,
				}
				if err := survey.AskOne(prompt, &choice); err != nil {
					if askCancelled(err) {
						logWarning("Authentication cancelled")
						return nil
					}
					return err
				}
				provider = authProviders[choice].id
			}

			p, ok := findAuthProvider(provider)
			if !ok {
				return fmt.Errorf("unknown provider %q (valid: %s)", provider, strings.Join(authProviderIDs(), ", "))
			}
			err := authLogin(p)
			if askCancelled(err) {
				logWarning("Authentication cancelled")
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Provider to authenticate")
	_ = cmd.RegisterFlagCompletionFunc("provider", completeAuthProvider)
	return cmd
}

func authLogin(p authProvider) error {
	fmt.Fprintf(os.Stderr, "\n%s\n", colorize(colorBlue, p.name))
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	if p.helpURL != "" {
		fmt.Fprintf(os.Stderr, "  Get your API key from: %s\n", colorize(colorGreen, p.helpURL))
	}
	fmt.Fprintln(os.Stderr)

	existing := settings.Get(p.id)
	custom := p.id == translate.ProviderCustomOpenAI

	var baseURL string
	if custom {
		in := &survey.Input{Message: "Endpoint URL (e.g. https://api.example.com/v1):"}
		if existing != nil {
			in.Default = existing.BaseURL
		}
		if err := survey.AskOne(in, &baseURL, survey.WithValidator(survey.Required)); err != nil {
			return err
		}
		baseURL = strings.TrimSpace(baseURL)
	}

	msg := "API key:"
	switch {
	case existing != nil && existing.Key != "":
		msg = fmt.Sprintf("API key (current %s, Enter to keep):", settings.MaskKey(existing.Key))
	case custom:
		msg = "API key (Enter if not required):"
	}
	var key string
	if err := survey.AskOne(&survey.Password{Message: msg}, &key); err != nil {
		return err
	}
	key = strings.TrimSpace(key)

	if key == "" && existing != nil {
		key = existing.Key
	}
	if key == "" && !custom {
		return errors.New("no API key provided")
	}

	if err := settings.SetAPIKey(p.id, key, baseURL); err != nil {
		return fmt.Errorf("saving credentials: %w", err)
	}
	logSuccess("%s credentials saved", p.name)
	fmt.Fprintf(os.Stderr, "\n  You can now use: %s\n\n", p.example)
	return nil
}

func newAuthLogoutCmd() *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove stored credentials",
		Long: `Remove the stored credentials of one provider, or of all providers when
--provider is not given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if provider != "" {
				if _, ok := findAuthProvider(provider); !ok {
					return fmt.Errorf("unknown provider %q (valid: %s)", provider, strings.Join(authProviderIDs(), ", "))
				}
				if err := settings.Remove(provider); err != nil {
					return fmt.Errorf("removing %s credentials: %w", provider, err)
				}
				logSuccess("%s credentials removed", provider)
				return nil
			}

			if isTerminal(os.Stdin) {
				ok := false
				prompt := &survey.Confirm{Message: "Remove the credentials of all providers?"}
				if err := survey.AskOne(prompt, &ok); err != nil && !askCancelled(err) {
					return err
				}
				if !ok {
					logInfo("Nothing removed")
					return nil
				}
			}
			if err := settings.RemoveAll(); err != nil {
				return err
			}
			logSuccess("All stored credentials removed")
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Provider to logout (default: all)")
	_ = cmd.RegisterFlagCompletionFunc("provider", completeAuthProvider)
	return cmd
}

func newAuthListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := settings.Load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Credentials: %s\n\n", settings.FilePath())

			if len(store) == 0 {
				fmt.Fprintln(out, "  (none)")
			}
			for _, id := range store.Providers() {
				e := store[id]
				key := "(no key)"
				if e.Key != "" {
					key = settings.MaskKey(e.Key)
				}
				line := fmt.Sprintf("  %-14s %s", id, key)
				if e.BaseURL != "" {
					line += "  " + e.BaseURL
				}
				if !e.Saved.IsZero() {
					line += "  saved " + e.Saved.Local().Format("2006-01-02")
				}
				fmt.Fprintln(out, line)
			}

			if env := os.Getenv("GETTEXTIFY_API_KEY"); env != "" {
				fmt.Fprintf(out, "\n  GETTEXTIFY_API_KEY is set (%s) and overrides stored keys\n", settings.MaskKey(env))
			}
			return nil
		},
	}
}
