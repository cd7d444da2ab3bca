package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/remocast/remocast/color"
	"github.com/remocast/remocast/icon"
	"github.com/remocast/remocast/key"
	"github.com/remocast/remocast/open"
	"github.com/remocast/remocast/stream"
	"github.com/remocast/remocast/style"
)

func init() {
	rootCmd.AddCommand(castCmd)

	castCmd.Flags().IntP("port", "p", 0, "Port for the streaming server")
	castCmd.Flags().BoolP("open", "o", false, "Open the stream URL with the system handler")
}

// castCmd shares local files over the streaming server and prints the
// URLs a TV or browser on the same network can fetch.
var castCmd = &cobra.Command{
	Use:   "cast <file>...",
	Short: "Serve local media files to devices on your network",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("port") {
			viper.Set(key.StreamingPort, lo.Must(cmd.Flags().GetInt("port")))
		}

		server := stream.NewServer()
		handleErr(server.Start(viper.GetInt(key.StreamingPort)))
		defer server.Stop()

		for _, arg := range args {
			path := lo.Must(filepath.Abs(arg))
			id := server.Registry().Add(path)
			url := fmt.Sprintf("%s/%s", server.StreamURL(id).MustGet(), filepath.Base(path))

			fmt.Printf("%s %s\n  %s\n",
				icon.Get(icon.Cast),
				filepath.Base(path),
				style.Fg(color.Green)(url),
			)

			if lo.Must(cmd.Flags().GetBool("open")) {
				handleErr(open.Start(url))
			}
		}

		fmt.Printf("\n%s Press Ctrl+C to stop\n", icon.Get(icon.Progress))

		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
		<-interrupt
	},
}
