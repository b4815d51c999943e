package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "RACE"

var (
	port       string
	configPath string
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "trivia-race",
		Short:        "Timed multi-player trivia race served over HTTP and WebSocket polling",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			bindEnv(cmd.Root().PersistentFlags())
		},
	}

	cmd.PersistentFlags().StringVar(&port, "port", "", "port to listen on, overrides server.port (env: RACE_PORT)")
	cmd.PersistentFlags().StringVar(&configPath, "config", "config/config.yaml", "path to YAML config (env: RACE_CONFIG)")
	cmd.AddCommand(NewStartCmd(&configPath, &port))
	cmd.AddCommand(NewMigrateCmd(&configPath))
	cmd.AddCommand(NewAdminCmd(&configPath))
	return cmd
}

// bindEnv fills every flag the user did not set from its RACE_* environment variable.
func bindEnv(fs *pflag.FlagSet) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}
