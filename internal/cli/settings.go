package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/meowbar/meowbar/internal/config"
	"github.com/meowbar/meowbar/internal/models"
)

var settingsCmd = &cobra.Command{
	Use:     "settings",
	Aliases: []string{"config"},
	Short:   "Show or change global settings",
	Long: `Show the global settings (~/.meowbar/settings.yaml).

Use "meowbar settings set <key> <value>" to change one:
  status_file            path of the status file to watch
  frames_dir             directory with animation frames
  notifications_enabled  true | false
  show_stats             true | false
  show_events_log        true | false
  recent_events          number of events shown in the menu
  poll_interval          e.g. 1s
  idle_timeout           e.g. 2m

Changes apply the next time meowbar starts.`,
	RunE: runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsSetCmd)
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	path, err := config.GlobalSettingsFile()
	if err != nil {
		return err
	}
	fmt.Println(styleHint.Render("# " + path))
	fmt.Print(string(data))
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if err := applySetting(settings, args[0], args[1]); err != nil {
		return err
	}
	if _, err := settings.StateTable(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	if err := config.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Println(styleSuccess.Render(fmt.Sprintf("%s = %s", args[0], args[1])))
	return nil
}

// applySetting sets one key from its string form.
func applySetting(s *models.Settings, key, value string) error {
	switch strings.ToLower(key) {
	case "status_file":
		s.StatusFile = value
	case "frames_dir":
		s.FramesDir = value
	case "notifications_enabled", "notifications":
		return parseBool(value, &s.NotificationsEnabled)
	case "show_stats":
		return parseBool(value, &s.ShowStats)
	case "show_events_log":
		return parseBool(value, &s.ShowEventsLog)
	case "recent_events":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("recent_events must be a positive number")
		}
		s.RecentEvents = n
	case "poll_interval":
		return parseDuration(value, &s.PollInterval)
	case "idle_timeout":
		return parseDuration(value, &s.IdleTimeout)
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}

func parseBool(value string, out *bool) error {
	switch strings.ToLower(value) {
	case "on", "yes":
		*out = true
		return nil
	case "off", "no":
		*out = false
		return nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean %q", value)
	}
	*out = b
	return nil
}

func parseDuration(value string, out *time.Duration) error {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fmt.Errorf("invalid duration %q", value)
	}
	*out = d
	return nil
}
