package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"
	"time"

	"podpress/internal/api"
	"podpress/internal/assembly"
	"podpress/internal/command"
	"podpress/internal/daemon"
	"podpress/internal/intents"
	"podpress/internal/logging"
	"podpress/internal/publish"
	"podpress/internal/studio"
)

// Server exposes daemon control over a unix domain socket using JSON-RPC.
type Server struct {
	path      string
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer creates an IPC server bound to the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("daemon is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket %s: %w", path, err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	srv := &Server{
		path:      path,
		logger:    logging.NewComponentLogger(logger, "ipc"),
		listener:  listener,
		rpcServer: rpc.NewServer(),
		ctx:       serverCtx,
		cancel:    cancel,
	}
	if err := srv.rpcServer.RegisterName("Podpress", &service{daemon: d, ctx: serverCtx, socketPath: path}); err != nil {
		cancel()
		_ = listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}
	return srv, nil
}

// Serve starts accepting connections in the background.
func (s *Server) Serve() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				if s.ctx.Err() != nil {
					return
				}
				s.logger.Warn("accept failed", logging.Error(err))
				return
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() error {
	s.cancel()
	err := s.listener.Close()
	s.wg.Wait()
	if removeErr := os.RemoveAll(s.path); removeErr != nil && err == nil {
		err = removeErr
	}
	return err
}

// service implements the RPC surface backed by the daemon.
type service struct {
	daemon     *daemon.Daemon
	ctx        context.Context
	socketPath string
}

func (s *service) Start(_ StartRequest, resp *StartResponse) error {
	if err := s.daemon.Start(s.ctx); err != nil {
		resp.Started = false
		resp.Message = err.Error()
		return nil
	}
	resp.Started = true
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.daemon.Stop()
	resp.Stopped = true
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status()
	resp.Running = status.Running
	resp.PID = os.Getpid()
	resp.Session = api.SessionViewFrom(status.Session)
	if status.Usage != nil {
		usage := api.UsageViewFrom(*status.Usage)
		resp.Usage = &usage
	}
	resp.PrefsDBPath = status.PrefsDBPath
	resp.LockPath = status.LockFilePath
	resp.SocketPath = s.socketPath
	return nil
}

func (s *service) StartSession(req StartSessionRequest, resp *StartSessionResponse) error {
	requestID, err := s.daemon.StartSession(req.Filename, req.TemplateID, req.VoiceID)
	if err != nil {
		return err
	}
	resp.RequestID = requestID
	return nil
}

func (s *service) DetectIntents(_ DetectIntentsRequest, resp *DetectIntentsResponse) error {
	s.daemon.TranscriptReady(s.ctx)
	resp.Intents = api.IntentViewFrom(s.daemon.Intents())
	return nil
}

func (s *service) ConfirmIntent(req ConfirmIntentRequest, resp *ConfirmIntentResponse) error {
	category, err := intents.ParseCategory(req.Category)
	if err != nil {
		return err
	}
	s.daemon.ConfirmIntent(category, intents.ParseAnswer(req.Answer))
	resp.Intents = api.IntentViewFrom(s.daemon.Intents())
	return nil
}

func (s *service) ScanRetakes(_ ScanRetakesRequest, resp *ScanRetakesResponse) error {
	result, err := s.daemon.ScanRetakes(s.ctx)
	if err != nil {
		return err
	}
	resp.Outcome = string(result.Outcome)
	resp.Candidates = api.RetakeCandidatesFrom(result.Candidates)
	return nil
}

func (s *service) FinishRetakeReview(req FinishRetakeReviewRequest, resp *FinishRetakeReviewResponse) error {
	if req.Confirmed {
		cuts := req.CutsMS
		if cuts == nil {
			cuts = [][2]int64{}
		}
		s.daemon.FinishRetakeReview(cuts)
		return nil
	}
	s.daemon.FinishRetakeReview(nil)
	return nil
}

func (s *service) PrepareCommands(_ PrepareCommandsRequest, resp *PrepareCommandsResponse) error {
	contexts, err := s.daemon.PrepareCommands(s.ctx)
	if err != nil {
		return err
	}
	resp.Commands = api.CommandViewsFrom(contexts)
	return nil
}

func (s *service) ExecuteCommand(req ExecuteCommandRequest, _ *ExecuteCommandResponse) error {
	return s.daemon.ExecuteCommand(s.ctx, command.ExecuteParams{
		Context: studio.CommandContext{
			CommandID: req.CommandID,
			StartS:    req.StartS,
			EndS:      req.EndS,
		},
		OverrideText:  req.OverrideText,
		Regenerate:    req.Regenerate,
		VoiceOverride: req.VoiceID,
	})
}

func (s *service) SetMetadata(req SetMetadataRequest, _ *SetMetadataResponse) error {
	decision := publish.Decision{
		Mode:       publish.ParseMode(req.PublishMode),
		Visibility: req.Visibility,
	}
	if decision.Mode == publish.ModeSchedule {
		at, err := time.Parse(time.RFC3339, req.PublishAt)
		if err != nil {
			return fmt.Errorf("parse publish time: %w", err)
		}
		decision.ScheduledAt = at
	}

	meta := assembly.Metadata{
		Title:       req.Title,
		Description: req.Description,
		Season:      req.Season,
		Episode:     req.Episode,
		TagsText:    req.Tags,
		Tags:        req.TagList,
		CoverArtURL: req.CoverArtURL,
	}
	if err := s.daemon.SetMetadata(s.ctx, meta, req.DurationSeconds, decision); err != nil {
		return err
	}
	if req.PendingArtworkID != "" {
		return s.daemon.SetPendingArtwork(req.PendingArtworkID)
	}
	return nil
}

func (s *service) Produce(_ ProduceRequest, resp *ProduceResponse) error {
	snapshot, err := s.daemon.Produce(s.ctx)
	if err != nil {
		return err
	}
	resp.JobID = snapshot.JobID
	resp.Session = api.SessionViewFrom(snapshot)
	return nil
}

func (s *service) Publish(req PublishRequest, resp *PublishResponse) error {
	decision := publish.Decision{
		Mode:       publish.ParseMode(req.Mode),
		Visibility: req.Visibility,
	}
	if decision.Mode == publish.ModeSchedule {
		at, err := time.Parse(time.RFC3339, req.PublishAt)
		if err != nil {
			return fmt.Errorf("parse publish time: %w", err)
		}
		decision.ScheduledAt = at
	}

	result, err := s.daemon.PublishManually(s.ctx, decision)
	if err != nil {
		return err
	}
	resp.Result = api.PublishViewFrom(result)
	return nil
}

func (s *service) Cancel(_ CancelRequest, _ *CancelResponse) error {
	s.daemon.Cancel(s.ctx)
	return nil
}

func (s *service) TestNotification(_ TestNotificationRequest, resp *TestNotificationResponse) error {
	sent, message, err := s.daemon.TestNotification(s.ctx)
	resp.Sent = sent
	resp.Message = message
	return err
}
