package main

import (
	"github.com/spf13/cobra"
)

// rootOptions holds flags shared by every command.
type rootOptions struct {
	configFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "ldapfixture",
		Short: "ldapfixture - LDAP fixture server",
		Long: `ldapfixture is a small LDAPv3 server that answers bind, search and unbind
requests from fixed, in-memory data. It exists to drive LDAP client libraries
against a predictable peer.

All configuration options can be overridden with environment variables of the
form LDAPFIXTURE_<SECTION>_<KEY>, for example LDAPFIXTURE_LOGGING_LEVEL=debug.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "",
		"config file (default: ./ldapfixture.yaml or $XDG_CONFIG_HOME/ldapfixture/config.yaml)")

	cmd.AddCommand(
		newServeCmd(opts),
		newProbeCmd(),
		newConfigCmd(opts),
		newVersionCmd(),
	)
	cmd.CompletionOptions.DisableDefaultCmd = true

	return cmd
}
