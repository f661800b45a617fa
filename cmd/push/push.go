package push

import (
	"context"
	"fmt"
	"strings"

	"github.com/creasty/defaults"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.szostok.io/version/extension"

	"github.com/matthope/webhook-push/internal/push"
)

const envPrefix = "WEBHOOK"

func Execute(ctx context.Context) error {
	return NewCommand().ExecuteContext(ctx)
}

func NewCommand() *cobra.Command {
	params := &push.Params{}

	if err := defaults.Set(params); err != nil {
		panic(err)
	}

	rootCmd := &cobra.Command{
		Use:   "webhook-push",
		Short: "Send a signed GitHub push webhook",
		Long: "Send an empty GitHub \"push\" event to WEBHOOK_URL, signed with WEBHOOK_SECRET.\n" +
			"Exits 0 only when the target answers 200 OK.",
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.NoArgs(cmd, args); err != nil {
				cmd.PrintErrln("Error:", err)

				return err
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return push.Run(cmd.Context(), params, push.NewLogger(params.Debug), cmd.OutOrStdout())
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initEnvFlags(cmd, envPrefix)
		},
		SilenceErrors:     true,
		SilenceUsage:      true,
		CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	}

	// errors returned by RunE are already reported on stdout
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		cmd.PrintErrln("Error:", err)

		return err
	})

	rootCmd.AddCommand(
		extension.NewVersionCobraCmd(),
	)

	rootCmd.Flags().StringVar(&params.Secret, "secret", params.Secret, "HMAC-SHA256 signing secret")
	rootCmd.Flags().StringVar(&params.URL, "url", params.URL, "Destination URL of the webhook")
	rootCmd.Flags().StringVar(&params.PushgatewayURL, "pushgateway-url", params.PushgatewayURL, "Prometheus Pushgateway to push delivery metrics to")
	rootCmd.Flags().BoolVar(&params.DryRun, "dry-run", params.DryRun, "Log the request instead of sending it")
	rootCmd.Flags().BoolVar(&params.Debug, "debug", params.Debug, "Debugging")

	return rootCmd
}

func initEnvFlags(cmd *cobra.Command, envPrefix string) {
	v := viper.New()

	v.SetEnvPrefix(envPrefix)

	v.AutomaticEnv()

	bindFlags(cmd, v, envPrefix)
}

func bindFlags(cmd *cobra.Command, v *viper.Viper, envPrefix string) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		// Environment variables can't have dashes in them, so bind them to
		// their equivalent keys with underscores, e.g. --dry-run to
		// WEBHOOK_DRY_RUN
		if strings.Contains(f.Name, "-") {
			envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))

			err := v.BindEnv(f.Name, fmt.Sprintf("%s_%s", envPrefix, envVarSuffix))
			if err != nil {
				panic(err.Error())
			}
		}

		// Apply the viper config value to the flag when the flag is not set and viper has a value
		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)

			err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val))
			if err != nil {
				panic(err.Error())
			}
		}
	})
}
