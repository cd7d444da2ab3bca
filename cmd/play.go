package cmd

import (
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"

	"github.com/remocast/remocast/mpv"
)

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().Float64P("start", "s", 0, "Start playback at the given position in seconds")
}

// playCmd plays a file or URL in a supervised mpv instance and blocks
// until the player window is closed.
var playCmd = &cobra.Command{
	Use:   "play <file|url>",
	Short: "Play a local file or URL in mpv",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		CheckDependencies()

		target := args[0]
		if !strings.Contains(target, "://") {
			target = lo.Must(filepath.Abs(target))
		}

		options := mpv.LoadOptions{}
		if cmd.Flags().Changed("start") {
			options.StartPosition = mo.Some(lo.Must(cmd.Flags().GetFloat64("start")))
		}

		process := mpv.NewProcess()
		handleErr(process.Start())
		defer process.Stop()

		player := mpv.NewPlayer(process)
		handleErr(player.Load(target, options))

		<-process.Wait()
	},
}
