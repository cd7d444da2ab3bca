package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/remocast/remocast/color"
	"github.com/remocast/remocast/icon"
	"github.com/remocast/remocast/key"
	"github.com/remocast/remocast/log"
	"github.com/remocast/remocast/mpv"
	"github.com/remocast/remocast/rclone"
	"github.com/remocast/remocast/remote"
	"github.com/remocast/remocast/stream"
	"github.com/remocast/remocast/style"
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 0, "Port for the remote control API")
	serveCmd.Flags().Bool("no-streaming", false, "Do not start the streaming server")
}

// serveCmd runs the remote control API and the streaming server until
// interrupted.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the remote control API and the media streaming server",
	Run: func(cmd *cobra.Command, args []string) {
		CheckDependencies()

		if cmd.Flags().Changed("port") {
			viper.Set(key.RemotePort, lo.Must(cmd.Flags().GetInt("port")))
		}

		handleErr(serve(!lo.Must(cmd.Flags().GetBool("no-streaming"))))
	},
}

func serve(withStreaming bool) error {
	var (
		process = mpv.NewProcess()
		player  = mpv.NewPlayer(process)
		server  = stream.NewServer()
		api     = remote.NewAPI(process, player, server)
	)

	mounter := autoMount()

	// The control surface stays on loopback; only media streaming is
	// exposed to the network.
	address := fmt.Sprintf("127.0.0.1:%d", viper.GetInt(key.RemotePort))
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("bind remote control API: %w", err)
	}

	controlServer := &http.Server{Handler: api.Routes()}
	go func() {
		if err := controlServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("remote control API: %s", err)
		}
	}()

	fmt.Printf("%s Remote control API listening on %s\n",
		icon.Get(icon.Link),
		style.Fg(color.Green)(fmt.Sprintf("http://%s", address)),
	)

	if withStreaming {
		if err := server.Start(viper.GetInt(key.StreamingPort)); err != nil {
			return err
		}

		fmt.Printf("%s Streaming server listening on %s\n",
			icon.Get(icon.Cast),
			style.Fg(color.Green)(server.URL().MustGet()),
		)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	<-interrupt

	fmt.Printf("\n%s Shutting down\n", icon.Get(icon.Progress))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = controlServer.Shutdown(ctx)

	server.Stop()
	process.Stop()

	if mounter != nil {
		mounter.Unmount()
	}

	return nil
}

// autoMount brings up the configured cloud mount when enabled. Mount
// failures are reported but never block the services.
func autoMount() *rclone.Mounter {
	config := rclone.ConfigFromSettings()
	if !config.AutoMount {
		return nil
	}

	mounter := rclone.NewMounter(config)
	if err := mounter.Mount(); err != nil {
		log.Warnf("rclone: auto mount failed: %s", err)
		fmt.Printf("%s Cloud mount unavailable: %s\n", icon.Get(icon.Fail), err)
		return nil
	}

	fmt.Printf("%s Cloud storage mounted at %s\n",
		icon.Get(icon.Success),
		style.Fg(color.Green)(config.MountPoint),
	)
	return mounter
}
