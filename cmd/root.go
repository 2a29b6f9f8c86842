package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/josephlewis42/minishell/core/config"
	"github.com/spf13/cobra"
)

var (
	cfgPath    string
	recordName string
	noColor    bool
)

// exitStatus is returned by commands that want the process to exit with a
// specific code without printing an error.
type exitStatus int

func (e exitStatus) Error() string {
	return fmt.Sprintf("exit status %d", int(e))
}

func loadConfig(cmd *cobra.Command) (*config.Configuration, error) {
	configuration, err := config.Load(cfgPath)

	if errors.Is(err, fs.ErrNotExist) {
		if !cmd.Flags().Changed("config") {
			return config.Default(), nil
		}
		log.New(cmd.ErrOrStderr(), "", 0).Println("Couldn't load config: did you run init?")
	}

	return configuration, err
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "minishell",
	Short: "A small interactive command shell",
	Long: `A small interactive shell supporting one pipe, output redirection
with > and >>, and the builtins exit, cd, pwd, clear and ls.`,
	Args:          cobra.ExactArgs(0),
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		configuration, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		if code := runInteractive(cmd, configuration); code != 0 {
			return exitStatus(code)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()

	var status exitStatus
	switch {
	case err == nil:
	case errors.As(err, &status):
		os.Exit(int(status))
	default:
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", ".", "config path")
	rootCmd.Flags().StringVar(&recordName, "record", "", "record the session to an asciicast file with this name")
	rootCmd.Flags().BoolVar(&noColor, "no-color", false, "don't color the prompt")
}
