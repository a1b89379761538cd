package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/KilimcininKorOglu/ldapfixture/internal/config"
	"github.com/KilimcininKorOglu/ldapfixture/internal/directory"
	"github.com/KilimcininKorOglu/ldapfixture/internal/probe"
)

type probeOptions struct {
	address  string
	dn       string
	password string
	base     string
	timeout  time.Duration
}

func newProbeCmd() *cobra.Command {
	opts := &probeOptions{}

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Bind, search and unbind against an LDAP server",
		Long: `Connect to an LDAP server, bind with a simple password, search the base
and print the returned entries. The defaults match the fixture server.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProbe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.address, "address", config.DefaultAddress, "server address")
	cmd.Flags().StringVar(&opts.dn, "dn", directory.PrincipalDN, "bind DN")
	cmd.Flags().StringVar(&opts.password, "password", directory.Secret, "bind password")
	cmd.Flags().StringVar(&opts.base, "base", directory.BaseDN, "search base")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 5*time.Second, "per-request timeout")

	return cmd
}

func runProbe(cmd *cobra.Command, opts *probeOptions) error {
	client, err := probe.Dial(cmd.Context(), opts.address, opts.timeout)
	if err != nil {
		return err
	}
	defer client.Close()

	out := cmd.OutOrStdout()

	res, err := client.Bind(opts.dn, opts.password)
	if err != nil {
		return err
	}
	if err := res.Err(); err != nil {
		return fmt.Errorf("bind: %w", err)
	}
	fmt.Fprintf(out, "bind: %s\n", res.Code)

	entries, res, err := client.Search(opts.base)
	if err != nil {
		return err
	}
	if err := res.Err(); err != nil {
		return fmt.Errorf("search: %w", err)
	}

	printEntries(out, entries)
	fmt.Fprintf(out, "search: %s (%d entries)\n", res.Code, len(entries))

	return client.Unbind()
}

func printEntries(w io.Writer, entries []probe.Entry) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"DN", "Attribute", "Values"})

	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	for _, entry := range entries {
		for _, attr := range entry.Attributes {
			table.Append([]string{entry.DN, attr.Type, strings.Join(attr.Values, ", ")})
		}
	}

	table.Render()
}
