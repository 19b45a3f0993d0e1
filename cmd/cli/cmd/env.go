package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/picogrid/brightfleet/pkg/config"
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Manage backend environments",
	Long:  `Manage the persistence backends the CLI can load from and save to`,
}

var envListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured environments",
	RunE:  listEnvironments,
}

var envAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new environment",
	RunE:  addEnvironment,
}

var envRemoveCmd = &cobra.Command{
	Use:   "remove [name]",
	Short: "Remove an environment",
	Args:  cobra.MaximumNArgs(1),
	RunE:  removeEnvironment,
}

var envUseCmd = &cobra.Command{
	Use:   "use [name]",
	Short: "Select the environment used by default",
	Long:  `Select the environment used when --env and --url are not given. "local" selects the SQLite database.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  useEnvironment,
}

func init() {
	envCmd.AddCommand(envListCmd)
	envCmd.AddCommand(envAddCmd)
	envCmd.AddCommand(envRemoveCmd)
	envCmd.AddCommand(envUseCmd)
}

func listEnvironments(_ *cobra.Command, _ []string) error {
	envs, err := config.LoadEnvironments()
	if err != nil {
		return fmt.Errorf("failed to load environments: %w", err)
	}

	if len(envs.Environments) == 0 {
		fmt.Println("No environments configured")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "\tNAME\tURL\tAUTHENTICATION")
	_, _ = fmt.Fprintln(w, "\t----\t---\t--------------")

	for _, env := range envs.Environments {
		authInfo := "None"
		if env.APIKey != "" {
			authInfo = fmt.Sprintf("API Key (%s)", env.APIKey)
		}
		marker := ""
		if env.Name == envs.Selected {
			marker = "*"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", marker, env.Name, env.URL, authInfo)
	}

	if err := w.Flush(); err != nil {
		return err
	}
	if envs.Selected == "" {
		fmt.Printf("\nNo environment selected, using %s\n", fleetCfg.Backend.Database)
	}
	return nil
}

func addEnvironment(_ *cobra.Command, _ []string) error {
	if err := requireInteractive("env add"); err != nil {
		return err
	}

	envs, err := config.LoadEnvironments()
	if err != nil {
		return fmt.Errorf("failed to load environments: %w", err)
	}

	var env config.Environment

	namePrompt := &survey.Input{
		Message: "Environment name:",
	}
	if err := survey.AskOne(namePrompt, &env.Name, survey.WithValidator(survey.Required)); err != nil {
		return err
	}
	if _, exists := envs.Find(env.Name); exists {
		return fmt.Errorf("environment %s already exists", env.Name)
	}

	urlPrompt := &survey.Input{
		Message: "Backend URL:",
		Default: "http://localhost:8080",
	}
	if err := survey.AskOne(urlPrompt, &env.URL, survey.WithValidator(survey.Required)); err != nil {
		return err
	}

	apiKeyPrompt := &survey.Input{
		Message: "API key environment variable (leave empty for none):",
		Help:    "Name of the environment variable that contains the API key",
	}
	if err := survey.AskOne(apiKeyPrompt, &env.APIKey); err != nil {
		return err
	}

	if err := envs.Add(env); err != nil {
		return err
	}
	if err := config.SaveEnvironments(envs); err != nil {
		return fmt.Errorf("failed to save environments: %w", err)
	}

	fmt.Printf("Environment %s added successfully\n", env.Name)
	return nil
}

func removeEnvironment(_ *cobra.Command, args []string) error {
	envs, err := config.LoadEnvironments()
	if err != nil {
		return fmt.Errorf("failed to load environments: %w", err)
	}

	if len(envs.Environments) == 0 {
		fmt.Println("No environments to remove")
		return nil
	}

	var selected string
	if len(args) == 1 {
		selected = args[0]
	} else {
		if err := requireInteractive("environment name"); err != nil {
			return err
		}
		selected, err = pickEnvironment(envs, "Select environment to remove:")
		if err != nil {
			return err
		}

		var confirm bool
		confirmPrompt := &survey.Confirm{
			Message: fmt.Sprintf("Are you sure you want to remove %s?", selected),
			Default: false,
		}
		if err := survey.AskOne(confirmPrompt, &confirm); err != nil {
			return err
		}
		if !confirm {
			fmt.Println("Removal cancelled")
			return nil
		}
	}

	if err := envs.Remove(selected); err != nil {
		return err
	}
	if err := config.SaveEnvironments(envs); err != nil {
		return fmt.Errorf("failed to save environments: %w", err)
	}

	fmt.Printf("Environment %s removed successfully\n", selected)
	return nil
}

func useEnvironment(_ *cobra.Command, args []string) error {
	envs, err := config.LoadEnvironments()
	if err != nil {
		return fmt.Errorf("failed to load environments: %w", err)
	}

	var selected string
	if len(args) == 1 {
		selected = args[0]
	} else {
		if err := requireInteractive("environment name"); err != nil {
			return err
		}
		selected, err = pickEnvironment(envs, "Select environment to use:")
		if err != nil {
			return err
		}
	}

	if selected == "local" {
		envs.Selected = ""
	} else {
		if _, ok := envs.Find(selected); !ok {
			return fmt.Errorf("environment %s not found", selected)
		}
		envs.Selected = selected
	}

	if err := config.SaveEnvironments(envs); err != nil {
		return fmt.Errorf("failed to save environments: %w", err)
	}

	if envs.Selected == "" {
		fmt.Println("Using the local database")
	} else {
		fmt.Printf("Using environment %s\n", envs.Selected)
	}
	return nil
}

func pickEnvironment(envs *config.Environments, message string) (string, error) {
	names := make([]string, len(envs.Environments))
	for i, env := range envs.Environments {
		names[i] = env.Name
	}

	var selected string
	prompt := &survey.Select{
		Message: message,
		Options: names,
	}
	if err := survey.AskOne(prompt, &selected); err != nil {
		return "", err
	}
	return selected, nil
}
