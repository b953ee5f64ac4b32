package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/broadinstitute/psp-dry/internal/pspconfig"
)

func newConfigCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage psp-dry configuration",
		Long:  "Show, get, or set configuration values. Config is stored in ~/.psp-dry.yaml by default.",
		Example: `  psp-dry config                                  # show all config
  psp-dry config set parameters.p100_dist_sd_cutoff 3  # set a threshold
  psp-dry config get metadata.prov_code_field          # get a value`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(configPath)
		},
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: ~/.psp-dry.yaml)")

	cmd.AddCommand(newConfigSetCmd(&configPath))
	cmd.AddCommand(newConfigGetCmd(&configPath))

	return cmd
}

func newConfigSetCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(*configPath, args[0], args[1])
		},
	}
}

func newConfigGetCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(*configPath, args[0])
		},
	}
}

func resolveConfigPath(configPath string) (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".psp-dry.yaml"), nil
}

func runConfigShow(configPath string) error {
	path, err := resolveConfigPath(configPath)
	if err != nil {
		return err
	}
	cfg, err := pspconfig.Load(path)
	if err != nil {
		fmt.Printf("# No configuration at %s\n", path)
		return nil
	}

	out, err := yaml.Marshal(cfg.AllSettings())
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Print(string(out))
	return nil
}

func runConfigSet(configPath, key, value string) error {
	path, err := resolveConfigPath(configPath)
	if err != nil {
		return err
	}

	v := viper.New()
	v.SetConfigFile(path)
	_ = v.ReadInConfig()

	switch value {
	case "true", "yes", "on":
		v.Set(key, true)
	case "false", "no", "off":
		v.Set(key, false)
	default:
		v.Set(key, value)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("Set %s = %s in %s\n", key, value, path)
	return nil
}

func runConfigGet(configPath, key string) error {
	path, err := resolveConfigPath(configPath)
	if err != nil {
		return err
	}
	cfg, err := pspconfig.Load(path)
	if err != nil {
		return err
	}

	settings := cfg.AllSettings()
	val, ok := lookupNested(settings, key)
	if !ok {
		return fmt.Errorf("key %q is not set", key)
	}
	fmt.Println(val)
	return nil
}

// lookupNested walks a dotted key ("metadata.prov_code_field") through a
// nested settings map, mirroring viper's own dotted-key resolution.
func lookupNested(settings map[string]interface{}, key string) (interface{}, bool) {
	cur := interface{}(settings)
	for _, part := range splitDot(key) {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func splitDot(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}
