package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	configcmd "github.com/Iron-Ham/filterbox/internal/cmd/config"
	"github.com/Iron-Ham/filterbox/internal/cmd/pick"
	tabscmd "github.com/Iron-Ham/filterbox/internal/cmd/tabs"
	"github.com/Iron-Ham/filterbox/internal/config"
	"github.com/Iron-Ham/filterbox/internal/errors"
)

var rootCmd = &cobra.Command{
	Use:   "filterbox",
	Short: "Searchable filter boxes and persisted tabs in the terminal",
	Long: `filterbox turns a list of candidates into a searchable, checkable
filter box and prints the resulting filter. Selected values keep their
display text while the user searches for others.

It also manages the open tabs that filterbox persists locally or remotely.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and reports a failure on stderr.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", errorMessage(err))
	}
	return err
}

// errorMessage adds a retry hint to transient failures such as a 5xx from
// the remote tab service.
func errorMessage(err error) string {
	if errors.IsRetryable(err) {
		return err.Error() + " (temporary failure, try again)"
	}
	return err.Error()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/filterbox/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))

	configcmd.Register(rootCmd)
	tabscmd.Register(rootCmd)
	pick.Register(rootCmd)
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("FILTERBOX")
	// Replace dots with underscores for nested keys in env vars
	// e.g., FILTERBOX_TABS_SAVING_MODE for tabs.saving_mode
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
