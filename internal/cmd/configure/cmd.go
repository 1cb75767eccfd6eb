package configure

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	cmds "github.com/hammingai/hammingctl/internal/cmd"
	"github.com/hammingai/hammingctl/internal/credentials"
	"github.com/hammingai/hammingctl/internal/msg"
	"github.com/hammingai/hammingctl/internal/usage"
)

var (
	configureUse     = "configure"
	configureShort   = "Configure your Hamming credentials"
	configureLong    = `Persist locally your Hamming API key`
	configureExample = "hammingctl configure"
	cliAPIKey        = ""
)

// Command creates the `configure` command
func Command(preRun func(cmd *cobra.Command, args []string)) *cobra.Command {
	cmd := &cobra.Command{
		Use:          configureUse,
		Short:        configureShort,
		Long:         configureLong,
		Example:      configureExample,
		SilenceUsage: true,
		PreRun: func(cmd *cobra.Command, args []string) {
			if preRun != nil {
				preRun(cmd, args)
			}
			tracker := usage.DefaultClient

			go func() {
				tracker.Collect(cmds.FullName(cmd), usage.Flags(cmd.Flags()))
				_ = tracker.Close()
			}()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := Run(); err != nil {
				return fmt.Errorf("failed to execute configure command: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cliAPIKey, "key", "", "API key, available in your Hamming workspace settings")

	cmd.AddCommand(ListCommand())

	return cmd
}

// interactiveConfiguration expect user to manually type-in its credentials
func interactiveConfiguration() (credentials.Credentials, error) {
	fmt.Println(msg.SignupMessage)

	creds := credentials.FromFile()

	message := "Hamming API key"
	if creds.IsValid() {
		message = fmt.Sprintf("Hamming API key (leave empty to keep %s)", creds.Masked())
	}

	println("") // visual paragraph break
	qs := []*survey.Question{
		{
			Name: "apiKey",
			Prompt: &survey.Password{
				Message: message,
			},
			Validate: func(val interface{}) error {
				if creds.IsValid() {
					return nil
				}
				return validateAPIKey(val)
			},
		},
	}

	var answer struct {
		APIKey string `survey:"apiKey"`
	}
	if err := survey.Ask(qs, &answer); err != nil {
		return creds, err
	}
	println() // visual paragraph break

	if key := strings.TrimSpace(answer.APIKey); key != "" {
		creds.APIKey = key
	}
	return creds, nil
}

func validateAPIKey(val interface{}) error {
	str, ok := val.(string)
	if !ok {
		return errors.New("invalid API key")
	}
	if strings.TrimSpace(str) == "" {
		return errors.New("you need to type an API key")
	}
	return nil
}

// Run starts the configure command
func Run() error {
	var creds credentials.Credentials
	var err error

	if cliAPIKey == "" {
		creds, err = interactiveConfiguration()
	} else {
		creds = credentials.Credentials{APIKey: strings.TrimSpace(cliAPIKey)}
	}
	if err != nil {
		return err
	}

	if !creds.IsValid() {
		log.Error().Msg("The provided credentials appear to be invalid and will NOT be saved.")
		return errors.New(msg.InvalidCredentials)
	}
	if err := credentials.ToFile(creds); err != nil {
		return fmt.Errorf("unable to save credentials: %w", err)
	}
	println("You're all set!")
	return nil
}
