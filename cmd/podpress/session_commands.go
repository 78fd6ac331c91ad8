package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"podpress/internal/api"
	"podpress/internal/ipc"
)

func newSessionCommand(ctx *commandContext) *cobra.Command {
	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Manage the active production session",
	}

	sessionCmd.AddCommand(newSessionStartCommand(ctx))
	sessionCmd.AddCommand(newSessionDetectCommand(ctx))
	sessionCmd.AddCommand(newSessionConfirmCommand(ctx))
	sessionCmd.AddCommand(newSessionScanCommand(ctx))
	sessionCmd.AddCommand(newSessionReviewCommand(ctx))
	sessionCmd.AddCommand(newSessionCommandsCommand(ctx))
	sessionCmd.AddCommand(newSessionExecCommand(ctx))
	sessionCmd.AddCommand(newSessionMetaCommand(ctx))

	return sessionCmd
}

func newSessionStartCommand(ctx *commandContext) *cobra.Command {
	var templateID string
	var voiceID string

	cmd := &cobra.Command{
		Use:   "start <filename>",
		Short: "Begin a production session for an uploaded recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.StartSession(ipc.StartSessionRequest{
					Filename:   args[0],
					TemplateID: templateID,
					VoiceID:    voiceID,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Session started (request %s)\n", resp.RequestID)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&templateID, "template", "t", "", "Episode template id")
	cmd.Flags().StringVar(&voiceID, "voice", "", "Voice id for command responses")
	return cmd
}

func newSessionDetectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "detect",
		Short: "Run intent detection on the session transcript",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.DetectIntents()
				if err != nil {
					return err
				}
				printIntents(cmd, resp.Intents)
				return nil
			})
		},
	}
}

func newSessionConfirmCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "confirm <category> <answer>",
		Short: "Answer one of the pre-production questions (yes/no/unknown)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.ConfirmIntent(args[0], args[1])
				if err != nil {
					return err
				}
				printIntents(cmd, resp.Intents)
				return nil
			})
		},
	}
}

func printIntents(cmd *cobra.Command, view api.IntentView) {
	stdout := cmd.OutOrStdout()
	if !view.Ready {
		fmt.Fprintln(stdout, "Intent detection still running")
		return
	}
	rows := [][]string{
		{"retake", answerLabel(view.Retake)},
		{"command", answerLabel(view.Command)},
		{"sound_effect", answerLabel(view.SoundEffect)},
	}
	fmt.Fprintln(stdout, renderTable([]tableColumn{{title: "Category"}, {title: "Answer"}}, rows))
}

func answerLabel(answer api.IntentAnswer) string {
	label := answer.Answer
	if label == "" {
		label = "unanswered"
	}
	if answer.Count > 0 {
		return fmt.Sprintf("%s (%d detected)", label, answer.Count)
	}
	return label
}

func newSessionScanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Scan the recording for retake markers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.ScanRetakes()
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				switch resp.Outcome {
				case "found":
					rows := make([][]string, 0, len(resp.Candidates))
					for _, candidate := range resp.Candidates {
						rows = append(rows, []string{
							candidate.ID,
							formatTimestamp(candidate.TimestampMS),
							candidate.ContextAudio,
						})
					}
					fmt.Fprintln(stdout, renderTable([]tableColumn{{title: "ID"}, {title: "At", right: true}, {title: "Context", width: 56}}, rows))
					fmt.Fprintln(stdout, "Confirm the cuts with `podpress session review --cuts start-end,...` or cancel with `podpress session review --cancel`")
				case "not_found":
					fmt.Fprintln(stdout, "No retakes found; you said there were some, so review the recording manually if needed")
				default:
					fmt.Fprintln(stdout, "No retakes to remove")
				}
				return nil
			})
		},
	}
}

func newSessionReviewCommand(ctx *commandContext) *cobra.Command {
	var cutsSpec string
	var cancelReview bool

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Close the retake review with confirmed cuts",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := ipc.FinishRetakeReviewRequest{}
			if !cancelReview {
				cuts, err := parseCuts(cutsSpec)
				if err != nil {
					return err
				}
				req.Confirmed = true
				req.CutsMS = cuts
			}
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.FinishRetakeReview(req); err != nil {
					return err
				}
				if cancelReview {
					fmt.Fprintln(cmd.OutOrStdout(), "Retake review cancelled")
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Recorded %d cut(s)\n", len(req.CutsMS))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&cutsSpec, "cuts", "", "Cut ranges in milliseconds, e.g. 61000-62500,90000-91000")
	cmd.Flags().BoolVar(&cancelReview, "cancel", false, "Close the review without cutting anything")
	return cmd
}

// parseCuts parses "start-end,start-end" millisecond ranges.
func parseCuts(spec string) ([][2]int64, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return [][2]int64{}, nil
	}
	parts := strings.Split(spec, ",")
	cuts := make([][2]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		bounds := strings.SplitN(part, "-", 2)
		if len(bounds) != 2 {
			return nil, fmt.Errorf("invalid cut range %q (expected start-end)", part)
		}
		start, err := strconv.ParseInt(strings.TrimSpace(bounds[0]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid cut start in %q: %w", part, err)
		}
		end, err := strconv.ParseInt(strings.TrimSpace(bounds[1]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid cut end in %q: %w", part, err)
		}
		if end <= start {
			return nil, fmt.Errorf("cut range %q must end after it starts", part)
		}
		cuts = append(cuts, [2]int64{start, end})
	}
	return cuts, nil
}

func formatTimestamp(ms int64) string {
	seconds := ms / 1000
	return fmt.Sprintf("%d:%02d.%03d", seconds/60, seconds%60, ms%1000)
}

func newSessionCommandsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "Prepare spoken commands for review",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.PrepareCommands()
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				if len(resp.Commands) == 0 {
					fmt.Fprintln(stdout, "No spoken commands found")
					return nil
				}
				rows := make([][]string, 0, len(resp.Commands))
				for _, command := range resp.Commands {
					audio := "pending"
					if command.AudioURL != "" {
						audio = "ready"
					}
					rows = append(rows, []string{
						command.CommandID,
						fmt.Sprintf("%.1fs-%.1fs", command.StartS, command.EndS),
						command.ResponseText,
						audio,
					})
				}
				fmt.Fprintln(stdout, renderTable([]tableColumn{{title: "ID"}, {title: "Range", right: true}, {title: "Response", width: 48}, {title: "Audio"}}, rows))
				return nil
			})
		},
	}
}

func newSessionExecCommand(ctx *commandContext) *cobra.Command {
	var startS, endS float64
	var overrideText, voiceID string
	var regenerate bool

	cmd := &cobra.Command{
		Use:   "exec <command-id>",
		Short: "Resolve one spoken command into an edit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				_, err := client.ExecuteCommand(ipc.ExecuteCommandRequest{
					CommandID:    args[0],
					StartS:       startS,
					EndS:         endS,
					OverrideText: overrideText,
					Regenerate:   regenerate,
					VoiceID:      voiceID,
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Command resolved")
				return nil
			})
		},
	}
	cmd.Flags().Float64Var(&startS, "start", 0, "Command start in seconds")
	cmd.Flags().Float64Var(&endS, "end", 0, "Command end in seconds")
	cmd.Flags().StringVar(&overrideText, "text", "", "Override the generated response text")
	cmd.Flags().BoolVar(&regenerate, "regenerate", false, "Regenerate the response audio")
	cmd.Flags().StringVar(&voiceID, "voice", "", "Voice id override for this command")
	return cmd
}

func newSessionMetaCommand(ctx *commandContext) *cobra.Command {
	var req ipc.SetMetadataRequest

	cmd := &cobra.Command{
		Use:   "meta",
		Short: "Record episode metadata and the publish decision",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.SetMetadata(req); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Metadata saved")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&req.Title, "title", "", "Episode title")
	cmd.Flags().StringVar(&req.Description, "description", "", "Episode description")
	cmd.Flags().StringVar(&req.Season, "season", "", "Season number")
	cmd.Flags().StringVar(&req.Episode, "episode", "", "Episode number")
	cmd.Flags().StringVar(&req.Tags, "tags", "", "Comma or newline separated tags")
	cmd.Flags().StringVar(&req.CoverArtURL, "art", "", "Cover art URL")
	cmd.Flags().StringVar(&req.PendingArtworkID, "art-upload", "", "Pending artwork upload id")
	cmd.Flags().Float64Var(&req.DurationSeconds, "duration", 0, "Final episode duration in seconds")
	cmd.Flags().StringVar(&req.PublishMode, "publish", "draft", "Publish decision: now, draft, or schedule")
	cmd.Flags().StringVar(&req.Visibility, "visibility", "", "Episode visibility")
	cmd.Flags().StringVar(&req.PublishAt, "at", "", "Scheduled publish time (RFC3339)")
	return cmd
}
