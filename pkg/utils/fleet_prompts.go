package utils

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"github.com/picogrid/brightfleet/pkg/fleet"
	"github.com/picogrid/brightfleet/pkg/models"
)

// TeamLabel is how a team is shown in prompts
func TeamLabel(team *models.Team) string {
	return fmt.Sprintf("%s %s (%d/%d deployed)", team.Icon, team.Name, len(team.Deployed), team.TotalShips)
}

// IslandLabel is how an island is shown in prompts
func IslandLabel(island *models.Island) string {
	return fmt.Sprintf("%s %s", island.Icon, island.Title)
}

// DeploymentLabel describes one deployment of team
func DeploymentLabel(doc *models.Document, team *models.Team, d *models.Deployment) string {
	target := d.IslandID
	if island := doc.FindIsland(d.IslandID); island != nil {
		target = island.Title
	}
	label := fmt.Sprintf("%s → %s", team.Name, target)
	if len(d.KPIIDs) > 0 {
		label += " [" + strings.Join(d.KPIIDs, ", ") + "]"
	}
	return label + " (" + d.DeploymentID + ")"
}

// SelectTeam asks which team to deploy
func SelectTeam(doc *models.Document) (*models.Team, error) {
	if len(doc.Teams) == 0 {
		return nil, fmt.Errorf("no teams defined")
	}
	options := make([]string, len(doc.Teams))
	for i, team := range doc.Teams {
		options[i] = TeamLabel(team)
	}

	var index int
	prompt := &survey.Select{
		Message: "Select team:",
		Options: options,
	}
	if err := survey.AskOne(prompt, &index); err != nil {
		return nil, err
	}
	return doc.Teams[index], nil
}

// SelectIsland asks where to deploy
func SelectIsland(doc *models.Document) (*models.Island, error) {
	if len(doc.Islands) == 0 {
		return nil, fmt.Errorf("no islands defined")
	}
	options := make([]string, len(doc.Islands))
	for i, island := range doc.Islands {
		options[i] = IslandLabel(island)
	}

	var index int
	prompt := &survey.Select{
		Message: "Select objective:",
		Options: options,
	}
	if err := survey.AskOne(prompt, &index); err != nil {
		return nil, err
	}
	return doc.Islands[index], nil
}

// SelectKPIs asks which of the island's KPIs the deployment targets. An
// empty answer targets the whole island.
func SelectKPIs(island *models.Island) ([]string, error) {
	if len(island.KPIs) == 0 {
		return nil, nil
	}
	options := make([]string, len(island.KPIs))
	for i, kpi := range island.KPIs {
		options[i] = kpi.Description
	}

	var indexes []int
	prompt := &survey.MultiSelect{
		Message: "Target KPIs (none for the whole objective):",
		Options: options,
	}
	if err := survey.AskOne(prompt, &indexes); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(indexes))
	for _, i := range indexes {
		ids = append(ids, island.KPIs[i].ID)
	}
	return ids, nil
}

// SelectDeployment asks which deployment to recall
func SelectDeployment(doc *models.Document) (string, error) {
	var options, ids []string
	for _, team := range doc.Teams {
		for _, d := range team.Deployed {
			options = append(options, DeploymentLabel(doc, team, d))
			ids = append(ids, d.DeploymentID)
		}
	}
	if len(options) == 0 {
		return "", fmt.Errorf("nothing is deployed")
	}

	var index int
	prompt := &survey.Select{
		Message: "Select deployment to recall:",
		Options: options,
	}
	if err := survey.AskOne(prompt, &index); err != nil {
		return "", err
	}
	return ids[index], nil
}

// SurveyConfirmer asks on the terminal before each recall. It implements
// fleet.Confirmer.
type SurveyConfirmer struct{}

// ConfirmRecall implements fleet.Confirmer
func (SurveyConfirmer) ConfirmRecall(ship *fleet.Ship) bool {
	var confirm bool
	prompt := &survey.Confirm{
		Message: fmt.Sprintf("Recall %s ship from %s?", ship.TeamName, ship.TargetID),
		Default: false,
	}
	if err := survey.AskOne(prompt, &confirm); err != nil {
		return false
	}
	return confirm
}
