package commands

import (
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/sapfpad/am"
	"github.com/teranos/sapfpad/display"
	"github.com/teranos/sapfpad/errors"
)

// AmCmd represents the am (configuration) command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: "Manage sapfpad configuration",
	Long: `am: manage sapfpad configuration ("I am")

Configuration sources (in order of precedence):
1. Environment variables (SAPFPAD_* prefix, e.g. SAPFPAD_INTERPRETER_COMMAND)
2. Project config (nearest am.toml, searching up from the working directory)
3. User config (~/.sapfpad/am.toml)
4. System config (/etc/sapfpad/am.toml)
5. Default values

Examples:
  sapfpad am show                    # Show current configuration
  sapfpad am show --format json      # Show configuration in JSON format
  sapfpad am get interpreter.command # Get specific config value
  sapfpad am validate                # Validate current configuration
  sapfpad am where                   # Show which layer set each value`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAmShow(cmd.OutOrStdout(), configFormat)
	},
}

var amGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  "Get a specific configuration value using dot notation (e.g., interpreter.command, session.tick_ms)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAmGet(cmd.OutOrStdout(), args[0])
	},
}

var amValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := am.Load()
		if err != nil {
			return errors.Wrap(err, "failed to load config")
		}
		if err := cfg.Validate(); err != nil {
			return errors.Wrap(err, "configuration validation failed")
		}
		pterm.Success.WithWriter(cmd.OutOrStdout()).Println("Configuration is valid")
		return nil
	},
}

var amWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where each configuration value comes from",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAmWhere(cmd.OutOrStdout())
	},
}

var configFormat string

func init() {
	amShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json, yaml")

	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amGetCmd)
	AmCmd.AddCommand(amValidateCmd)
	AmCmd.AddCommand(amWhereCmd)
}

func runAmShow(w io.Writer, format string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	switch format {
	case "json":
		data, err := display.MarshalJSON(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to JSON")
		}
		fmt.Fprintln(w, string(data))

	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to YAML")
		}
		fmt.Fprintf(w, "# sapfpad configuration\n%s", string(data))

	case "toml":
		data, err := toml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to TOML")
		}
		fmt.Fprintf(w, "# sapfpad configuration\n%s", string(data))

	default:
		return errors.NewInvalidRequestError("unsupported format: %s (supported: toml, json, yaml)", format)
	}

	return nil
}

func runAmGet(w io.Writer, key string) error {
	if !am.IsKnownKey(key) {
		return errors.Wrapf(errors.ErrNotFound, "configuration key %q", key)
	}
	fmt.Fprintln(w, am.Get(key))
	return nil
}

func runAmWhere(w io.Writer) error {
	fmt.Fprintln(w, "Configuration cascade (later overrides earlier):")
	fmt.Fprintln(w, "  1. [DEFAULT]  Built-in defaults")
	fmt.Fprintln(w, "  2. [SYSTEM]   /etc/sapfpad/am.toml")
	fmt.Fprintln(w, "  3. [USER]     ~/.sapfpad/am.toml")
	fmt.Fprintln(w, "  4. [PROJECT]  am.toml (searches up directories)")
	fmt.Fprintln(w, "  5. [ENV]      SAPFPAD_* environment variables")
	fmt.Fprintln(w)

	data := pterm.TableData{{"Key", "Value", "Source", "From"}}
	for _, s := range am.Introspect() {
		value := fmt.Sprintf("%v", s.Value)
		// Truncate long values
		if len(value) > 50 {
			value = value[:47] + "..."
		}
		data = append(data, []string{s.Key, value, string(s.Source), s.SourcePath})
	}

	return pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(data).Render()
}
