package main

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-brix/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagMetricsAddr string
	flagIdleTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the brix SSH server",
	Long: `Start an SSH server for online versus.

Each SSH connection gets its own session with a menu. One player hosts a
lobby and reads the join code to the other; the server simulates the
match and streams it to both. Results and replays go to the shared match
database.

Flags override the server section of brix.yaml.

Host key handling:
  - If --host-key (or server.host_key_path) is set, uses that key file
  - Otherwise, auto-generates a key at ~/.brix/host_key

Examples:
  brix serve                           # Listen on 0.0.0.0:2323
  brix serve --addr :2222              # Listen on port 2222
  brix serve --metrics :2112           # Serve Prometheus metrics
  brix serve --host-key ./my_host_key  # Use specific host key

Users can connect with:
  ssh <name>@localhost -p 2323`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "addr", "", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file")
	serveCmd.Flags().StringVar(&flagMetricsAddr, "metrics", "", "Address to serve Prometheus metrics on")
	serveCmd.Flags().DurationVar(&flagIdleTimeout, "idle-timeout", 0, "Idle timeout before disconnecting")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger("brix")
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("addr") {
		host, port, err := net.SplitHostPort(flagSSHAddr)
		if err != nil {
			return fmt.Errorf("invalid --addr %q: %w", flagSSHAddr, err)
		}
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid --addr port %q: %w", port, err)
		}
		cfg.Server.Host, cfg.Server.Port = host, p
	}
	if flags.Changed("host-key") {
		cfg.Server.HostKeyPath = flagHostKey
	}
	if flags.Changed("metrics") {
		cfg.Server.MetricsAddr = flagMetricsAddr
	}
	if flags.Changed("idle-timeout") {
		cfg.Server.IdleTimeout = flagIdleTimeout
	}

	server, err := tui.NewSSHServer(tui.SSHServerConfigFrom(cfg.Server, flagDBPath), cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	fmt.Printf("Starting brix SSH server on %s\n", server.Addr())
	fmt.Printf("Connect with: ssh <name>@localhost -p %d\n", cfg.Server.Port)
	fmt.Println("Press Ctrl+C to stop")

	return server.ListenAndServe()
}
