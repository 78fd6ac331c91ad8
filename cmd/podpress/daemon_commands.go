package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"podpress/internal/api"
	"podpress/internal/daemonctl"
	"podpress/internal/ipc"
)

func newDaemonCommands(ctx *commandContext) []*cobra.Command {
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start the podpress daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			exe, err := daemonExecutable()
			if err != nil {
				return err
			}

			result, err := daemonctl.EnsureStarted(
				ctx.socketPath(),
				exe,
				daemonLaunchOptions(ctx),
				10*time.Second,
			)
			if err != nil {
				return err
			}

			if result.Launched {
				fmt.Fprintln(stdout, "Daemon not running, launching...")
			}

			switch result.State {
			case daemonctl.StartStateStarted:
				fmt.Fprintln(stdout, "Daemon started")
			case daemonctl.StartStateAlreadyRunning:
				fmt.Fprintln(stdout, "Daemon already running")
			case daemonctl.StartStateRequested:
				if strings.TrimSpace(result.Message) != "" {
					fmt.Fprintln(stdout, result.Message)
					return nil
				}
				fmt.Fprintln(stdout, "Start request sent")
			}
			return nil
		},
	}

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the podpress daemon (completely terminates the process)",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			result, err := daemonctl.StopAndTerminate(ctx.socketPath(), ctx.configValue(), 5*time.Second)
			if errors.Is(err, daemonctl.ErrDaemonNotRunning) {
				fmt.Fprintln(stdout, "Daemon is not running")
				return nil
			}
			if err != nil {
				return err
			}
			if !result.StopAcknowledged {
				fmt.Fprintln(stdout, "Stop request sent")
			}
			if result.ForcedKill && result.PID > 0 {
				fmt.Fprintf(stdout, "Stopping daemon process (pid %d)...\n", result.PID)
			}
			fmt.Fprintln(stdout, "Daemon stopped")
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon and session status",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)

			var status *ipc.StatusResponse
			if client, err := ctx.dialClient(); err == nil {
				resp, statusErr := client.Status()
				_ = client.Close()
				if statusErr != nil {
					return statusErr
				}
				status = resp
			}

			for _, line := range renderSectionHeader("Daemon", colorize) {
				fmt.Fprintln(stdout, line)
			}
			if status == nil {
				fmt.Fprintln(stdout, renderStatusLine("Podpress", statusWarn, "Not running (run `podpress start`)", colorize))
				return nil
			}
			if status.Running {
				fmt.Fprintln(stdout, renderStatusLine("Podpress", statusOK, fmt.Sprintf("Running (pid %d)", status.PID), colorize))
			} else {
				fmt.Fprintln(stdout, renderStatusLine("Podpress", statusWarn, "Process alive but not started", colorize))
			}
			fmt.Fprintln(stdout, renderStatusLine("Socket", statusInfo, status.SocketPath, colorize))
			fmt.Fprintln(stdout, renderStatusLine("Preferences", statusInfo, status.PrefsDBPath, colorize))

			fmt.Fprintln(stdout)
			for _, line := range renderSectionHeader("Session", colorize) {
				fmt.Fprintln(stdout, line)
			}
			for _, line := range sessionLines(status.Session, colorize) {
				fmt.Fprintln(stdout, line)
			}

			if status.Usage != nil {
				fmt.Fprintln(stdout)
				for _, line := range renderSectionHeader("Usage", colorize) {
					fmt.Fprintln(stdout, line)
				}
				rows := [][]string{
					{"Episodes remaining", fmt.Sprintf("%d of %d", status.Usage.EpisodesRemaining, status.Usage.MaxEpisodes)},
					{"Minutes remaining", fmt.Sprintf("%.1f", status.Usage.MinutesRemaining)},
					{"Credit balance", fmt.Sprintf("%.0f", status.Usage.CreditsBalance)},
				}
				fmt.Fprintln(stdout, renderTable([]tableColumn{{title: "Quota"}, {title: "Value", right: true}}, rows))
			}
			return nil
		},
	}

	restartCmd := &cobra.Command{
		Use:   "restart",
		Short: "Restart the podpress daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			exe, err := daemonExecutable()
			if err != nil {
				return err
			}

			stopResult, stopErr := daemonctl.StopAndTerminate(ctx.socketPath(), ctx.configValue(), 5*time.Second)
			if stopErr != nil && !errors.Is(stopErr, daemonctl.ErrDaemonNotRunning) {
				return stopErr
			}
			if stopErr == nil {
				if stopResult.ForcedKill && stopResult.PID > 0 {
					fmt.Fprintf(stdout, "Stopping daemon process (pid %d)...\n", stopResult.PID)
				}
				fmt.Fprintln(stdout, "Daemon stopped")
			}

			result, err := daemonctl.EnsureStarted(ctx.socketPath(), exe, daemonLaunchOptions(ctx), 10*time.Second)
			if err != nil {
				return err
			}
			switch result.State {
			case daemonctl.StartStateStarted, daemonctl.StartStateAlreadyRunning:
				fmt.Fprintln(stdout, "Daemon restarted")
			case daemonctl.StartStateRequested:
				if strings.TrimSpace(result.Message) != "" {
					fmt.Fprintln(stdout, result.Message)
					return nil
				}
				fmt.Fprintln(stdout, "Start request sent")
			}
			return nil
		},
	}

	return []*cobra.Command{startCmd, stopCmd, restartCmd, statusCmd}
}

func sessionLines(session api.SessionView, colorize bool) []string {
	if session.RequestID == "" {
		return []string{renderStatusLine("Session", statusInfo, "No active session", colorize)}
	}
	lines := []string{
		renderStatusLine("Source", statusInfo, session.Filename, colorize),
	}
	if session.Title != "" {
		lines = append(lines, renderStatusLine("Title", statusInfo, session.Title, colorize))
	}
	state := session.State
	if session.Note != "" {
		state = fmt.Sprintf("%s (%s)", state, session.Note)
	}
	kind := statusInfo
	switch {
	case session.Completed:
		kind = statusOK
		state = "completed"
	case session.LastError != "":
		kind = statusError
	}
	lines = append(lines, renderStatusLine("State", kind, state, colorize))
	if session.JobID != "" {
		lines = append(lines, renderStatusLine("Job", statusInfo, session.JobID, colorize))
	}
	if session.EpisodeID != "" {
		lines = append(lines, renderStatusLine("Episode", statusInfo, session.EpisodeID, colorize))
	}
	if session.LastError != "" {
		lines = append(lines, renderStatusLine("Last error", statusError, session.LastError, colorize))
	}
	if session.LastWarning != "" {
		lines = append(lines, renderStatusLine("Warning", statusWarn, session.LastWarning, colorize))
	}
	return lines
}

func daemonExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	return exe, nil
}

func daemonLaunchOptions(ctx *commandContext) daemonctl.LaunchOptions {
	opts := daemonctl.LaunchOptions{}
	if ctx.socketFlag != nil {
		if socket := strings.TrimSpace(*ctx.socketFlag); socket != "" {
			opts.SocketPath = socket
		}
	}
	if ctx.configFlag != nil {
		if config := strings.TrimSpace(*ctx.configFlag); config != "" {
			opts.ConfigPath = config
		}
	}
	return opts
}
