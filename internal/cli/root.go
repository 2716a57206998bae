// Package cli provides the skinshortcuts command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wabisabi926/script.skinshortcuts/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "skinshortcuts",
	Short: "Skin shortcuts include generator",
	Long:  "Generate skin include files from menu configuration and templates.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := "info"
		if viper.GetBool("verbose") {
			level = "debug"
		}
		logging.Configure(os.Stderr, level)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	if err := viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose")); err != nil {
		panic(err)
	}
	viper.SetEnvPrefix("SKINSHORTCUTS")
	viper.AutomaticEnv()
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
