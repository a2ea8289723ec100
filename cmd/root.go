/*
Copyright © 2025 George <george@betterde.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/betterde/fabr/internal/registry"
	"github.com/betterde/fabr/internal/ui"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fabr",
	Short: "Scaffold new projects from templates",
	Long: `Fabr initializes new projects from a catalog of templates.

It fetches a template repository, asks for the values of any placeholders
the template declares, substitutes them across the project tree and runs
the template's setup commands.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ui.Infof(cmd.OutOrStdout(), "run %q to scaffold a new project, or %q for usage", "fabr init", "fabr --help")
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// SetVersionInfo sets the version string displayed by the root command.
func SetVersionInfo(version, commit, date string) {
	rootCmd.Version = fmt.Sprintf("%s (Built on %s from Git SHA %s)", version, date, commit)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("registry", "", "path to a template registry file (overrides the embedded catalog)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	cobra.CheckErr(viper.BindPFlag("registry", rootCmd.PersistentFlags().Lookup("registry")))
	cobra.CheckErr(viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose")))
	cobra.CheckErr(viper.BindPFlag("no-color", rootCmd.PersistentFlags().Lookup("no-color")))
}

// initConfig reads in ENV variables if set.
func initConfig() {
	viper.SetEnvPrefix("FABR")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if viper.GetBool("no-color") {
		color.NoColor = true
	}

	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if viper.GetBool("verbose") {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.WarnLevel)
	}
}

// loadRegistry resolves the template catalog: a user-maintained file
// named by --registry or FABR_REGISTRY, or the embedded default. An
// invalid catalog is fatal since no template could ever be resolved
// from it.
func loadRegistry() (*registry.Registry, error) {
	if path := viper.GetString("registry"); path != "" {
		return registry.Load(path)
	}
	return registry.Default()
}
