package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/remocast/remocast/icon"
	"github.com/remocast/remocast/key"
	"github.com/remocast/remocast/rclone"
	"github.com/remocast/remocast/style"
)

// CheckDependencies verifies the availability of required system dependencies.
// The configured player binary must resolve through the system PATH.
func CheckDependencies() {
	player := viper.GetString(key.PlayerPath)
	if _, err := exec.LookPath(player); err != nil {
		printMissingDependencyError(player)
		os.Exit(1)
	}
}

func printMissingDependencyError(dep string) {
	var installCmd string
	switch runtime.GOOS {
	case "darwin":
		installCmd = "brew install " + dep
	case "linux":
		installCmd = "sudo apt install " + dep
	case "windows":
		installCmd = "scoop install " + dep
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.HiRed).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(style.HiRed).Render(fmt.Sprintf("%s Error: Missing Dependency", icon.Get(icon.Fail)))
	body := style.New().Foreground(style.Text).Render(fmt.Sprintf("The required dependency '%s' was not found in your PATH.", dep))

	suggestion := ""
	if installCmd != "" {
		suggestion = fmt.Sprintf("\n\nTo install it, try running:\n  %s", style.New().Foreground(style.AccentColor).Bold(true).Render(installCmd))
	}

	fmt.Println(box.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"\n",
			body,
			suggestion,
		),
	))
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

// checkCmd reports the availability of the external tools remocast
// drives: the mpv player (required) and rclone (optional, only needed
// for cloud mounts).
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the availability of external dependencies",
	Run: func(cmd *cobra.Command, args []string) {
		player := viper.GetString(key.PlayerPath)
		if path, err := exec.LookPath(player); err == nil {
			fmt.Printf("%s %s found at %s\n", icon.Get(icon.Success), player, path)
		} else {
			fmt.Printf("%s %s not found in PATH\n", icon.Get(icon.Fail), player)
		}

		if version, err := rclone.CheckInstalled(viper.GetString(key.RclonePath)); err == nil {
			fmt.Printf("%s %s\n", icon.Get(icon.Success), version)
		} else {
			fmt.Printf("%s rclone not found (optional, needed for cloud mounts)\n", icon.Get(icon.Fail))
		}
	},
}
