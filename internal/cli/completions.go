package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/vvka-141/csvingest/internal/config"
	"github.com/vvka-141/csvingest/pkg/csvingest"
)

// sslModes contains valid PostgreSQL SSL modes for shell completion.
var sslModes = []string{"disable", "allow", "prefer", "require", "verify-ca", "verify-full"}

// authMethods contains the --auth values offered by shell completion.
var authMethods = []string{"standard", "aws", "azure", "google"}

func filterPrefix(values []string, prefix string) []string {
	var matches []string
	for _, v := range values {
		if strings.HasPrefix(v, prefix) {
			matches = append(matches, v)
		}
	}
	return matches
}

// completeSSLModes provides shell completion for SSL mode flag values.
func completeSSLModes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return filterPrefix(sslModes, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeAuthMethods provides shell completion for --auth.
func completeAuthMethods(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return filterPrefix(authMethods, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeDrivers provides shell completion for --db-driver.
func completeDrivers(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	names := make([]string, len(csvingest.Drivers))
	for i, d := range csvingest.Drivers {
		names[i] = string(d)
	}
	return filterPrefix(names, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeDatasets provides shell completion for dataset names, including
// the ones defined in the config file.
func completeDatasets(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cfg, err := loadFileConfig(cmd)
	if err != nil {
		cfg = nil
	}
	return filterPrefix(config.DatasetNames(cfg), toComplete), cobra.ShellCompDirectiveNoFileComp
}
