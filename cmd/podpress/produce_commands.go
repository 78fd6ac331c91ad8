package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"podpress/internal/ipc"
)

func newProduceCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "produce",
		Short: "Submit the episode for assembly",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Produce()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Assembly submitted (job %s); track progress with `podpress status`\n", resp.JobID)
				return nil
			})
		},
	}
}

func newPublishCommand(ctx *commandContext) *cobra.Command {
	var mode, visibility, publishAt string

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish the completed episode",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Publish(ipc.PublishRequest{
					Mode:       mode,
					Visibility: visibility,
					PublishAt:  publishAt,
				})
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				switch {
				case resp.Result.Performed && resp.Result.Message != "":
					fmt.Fprintln(stdout, resp.Result.Message)
				case resp.Result.Performed:
					fmt.Fprintln(stdout, "Episode published")
				case resp.Result.Message != "":
					fmt.Fprintln(stdout, resp.Result.Message)
				default:
					fmt.Fprintln(stdout, "Nothing to publish")
				}
				if resp.Result.Warning != "" {
					fmt.Fprintf(stdout, "Warning: %s\n", resp.Result.Warning)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "now", "Publish mode: now, draft, or schedule")
	cmd.Flags().StringVar(&visibility, "visibility", "", "Episode visibility")
	cmd.Flags().StringVar(&publishAt, "at", "", "Scheduled publish time (RFC3339)")
	return cmd
}

func newCancelCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel",
		Short: "Stop watching the current assembly job",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.Cancel(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Stopped watching; the server may still finish the job")
				return nil
			})
		},
	}
}
