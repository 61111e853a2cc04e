package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/feitianbubu/aigen"
	"github.com/feitianbubu/aigen/config"
)

var providersCmd = &cobra.Command{
	Use:     "providers",
	Aliases: []string{"provider"},
	Short:   "Manage configured providers",
}

var providersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured providers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		configs, err := e.store.List()
		if err != nil {
			return err
		}
		printProviders(cmd, configs)
		return nil
	},
}

var presetsCredential string

var providersPresetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "Show built-in provider presets, or add them with --install",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		presets := aigen.Presets(presetsCredential)
		install, _ := cmd.Flags().GetBool("install")
		if !install {
			printProviders(cmd, presets)
			return nil
		}
		e, err := setup()
		if err != nil {
			return err
		}
		for _, p := range presets {
			saved, err := e.store.Put(config.FromProviderConfig(p))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s)\n", saved.Name, saved.ID)
		}
		return nil
	},
}

var (
	addProvider config.Provider
	addHeaders  string
	addParams   string
)

var providersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add or replace a provider",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		p := addProvider
		if addHeaders != "" {
			headers, err := aigen.ParseHeadersJSON(addHeaders)
			if err != nil {
				return err
			}
			p.Headers = config.Headers(headers)
		}
		if addParams != "" {
			if p.Params, err = aigen.ParseParamsJSON(addParams); err != nil {
				return err
			}
		}
		saved, err := e.store.Put(p)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), saved.ID)
		return nil
	},
}

var providersRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a provider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		return e.store.Delete(args[0])
	},
}

var providersSetDefaultCmd = &cobra.Command{
	Use:   "set-default <id>",
	Short: "Make a provider the default for its capability",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		return e.store.SetDefault(args[0])
	},
}

func printProviders(cmd *cobra.Command, configs []aigen.ProviderConfig) {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCAPABILITY\tKIND\tMODEL\tDEFAULT")
	for _, c := range configs {
		def := ""
		if c.IsDefault {
			def = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Capability, c.Kind, c.Model, def)
	}
	tw.Flush()
}

// providerFlags binds the scalar fields of p to f.
func providerFlags(f *pflag.FlagSet, p *config.Provider) {
	f.StringVar(&p.ID, "id", "", "provider id (generated when empty)")
	f.StringVar(&p.Name, "name", "", "display name")
	f.StringVar(&p.Capability, "capability", "", "chat, image_to_text, text_to_image or video")
	f.StringVar(&p.Kind, "kind", "", "request format (detected from endpoint and model when empty)")
	f.StringVar(&p.Endpoint, "endpoint", "", "API endpoint URL")
	f.StringVar(&p.Credential, "credential", "", "API key; ${VAR} references are kept unexpanded")
	f.StringVar(&p.Model, "model", "", "model name")
	f.StringVar(&p.Auth, "auth", "", "bearer or jwt")
	f.DurationVar(&p.Timeout, "timeout", 0, "request timeout (default 60s)")
	f.BoolVar(&p.Default, "default", false, "make this the default for its capability")
}

func init() {
	providersPresetsCmd.Flags().StringVar(&presetsCredential, "credential", "", "credential to fill into the presets")
	providersPresetsCmd.Flags().Bool("install", false, "add the presets to the config file")

	providerFlags(providersAddCmd.Flags(), &addProvider)
	providersAddCmd.Flags().StringVar(&addHeaders, "headers", "", `extra headers as a JSON object, e.g. {"X-Key":"v"}`)
	providersAddCmd.Flags().StringVar(&addParams, "params", "", "extra body parameters as a JSON object")
	_ = providersAddCmd.MarkFlagRequired("capability")
	_ = providersAddCmd.MarkFlagRequired("endpoint")

	providersCmd.AddCommand(providersListCmd, providersPresetsCmd, providersAddCmd, providersRemoveCmd, providersSetDefaultCmd)
	rootCmd.AddCommand(providersCmd)
}
