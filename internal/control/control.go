// Package control exposes a running watch session on a unix socket so other
// chunkscribe invocations can query or stop it.
package control

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const SockName = "control.sock"
const PidName = "chunkscribe.pid"
const ProtoVer = "1"

// clientTimeout bounds how long either side waits on the other.
const clientTimeout = 5 * time.Second

// Commands understood by the server, one byte followed by a newline.
const (
	CmdStatus  byte = 's'
	CmdVersion byte = 'v'
	CmdStop    byte = 'q'
)

// ErrNotRunning is returned by SendCommand when no session is listening.
var ErrNotRunning = errors.New("no watch session is running")

type Paths struct {
	Sock string
	Pid  string
}

// PathsIn places the socket and pid file in dir.
func PathsIn(dir string) Paths {
	return Paths{
		Sock: filepath.Join(dir, SockName),
		Pid:  filepath.Join(dir, PidName),
	}
}

// DefaultPaths is ~/.cache/chunkscribe.
func DefaultPaths() (Paths, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return Paths{}, err
	}
	return PathsIn(filepath.Join(dir, "chunkscribe")), nil
}

type State string

const (
	Idle         State = "idle"
	Transcribing State = "transcribing"
)

// Status is what a session reports for CmdStatus.
type Status struct {
	State   State
	Dir     string
	Files   int // files in the running batch
	Batches int
	OK      int
	Partial int
	Failed  int
}

func (s Status) String() string {
	return fmt.Sprintf("state=%s dir=%s files=%d batches=%d ok=%d partial=%d failed=%d",
		s.State, s.Dir, s.Files, s.Batches, s.OK, s.Partial, s.Failed)
}

// Server answers control commands for one watch session.
type Server struct {
	paths  Paths
	logger *zap.Logger
	stop   func()
	// readTimeout drops clients that connect and never send a command.
	readTimeout time.Duration

	mu     sync.RWMutex
	status Status
	ln     net.Listener
}

// NewServer returns a server for the session watching dir. stop is called
// when a client sends CmdStop.
func NewServer(paths Paths, dir string, logger *zap.Logger, stop func()) *Server {
	return &Server{
		paths:       paths,
		logger:      logger.Named("control"),
		stop:        stop,
		readTimeout: clientTimeout,
		status:      Status{State: Idle, Dir: dir},
	}
}

// Start claims the pid file and opens the socket. It fails when another
// session is alive.
func (s *Server) Start() error {
	if err := checkExisting(s.paths.Pid); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.paths.Sock), 0o700); err != nil {
		return err
	}
	_ = os.Remove(s.paths.Sock) // stale socket from last run

	ln, err := net.Listen("unix", s.paths.Sock)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.paths.Sock, err)
	}
	if err := os.WriteFile(s.paths.Pid, []byte(strconv.Itoa(os.Getpid())), 0o600); err != nil {
		ln.Close()
		return fmt.Errorf("failed to create PID file: %w", err)
	}
	s.ln = ln
	return nil
}

// Serve accepts clients until ctx is done, then removes the pid file.
func (s *Server) Serve(ctx context.Context) error {
	if s.ln == nil {
		return errors.New("control server not started")
	}
	defer os.Remove(s.paths.Pid)

	go func() {
		<-ctx.Done()
		s.ln.Close()
	}()

	for {
		c, err := s.ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept failed: %w", err)
		}
		go s.handle(c)
	}
}

func (s *Server) BatchStarted(files int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.State = Transcribing
	s.status.Files = files
}

func (s *Server) BatchFinished(ok, partial, failed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.State = Idle
	s.status.Files = 0
	s.status.Batches++
	s.status.OK += ok
	s.status.Partial += partial
	s.status.Failed += failed
}

func (s *Server) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Server) handle(c net.Conn) {
	defer c.Close()

	_ = c.SetDeadline(time.Now().Add(s.readTimeout))
	line, err := bufio.NewReader(c).ReadString('\n')
	if err != nil {
		s.logger.Debug("client read error", zap.Error(err))
		fmt.Fprintf(c, "ERR read_error: %v\n", err)
		return
	}
	if len(line) == 0 {
		fmt.Fprint(c, "ERR empty\n")
		return
	}

	switch cmd := line[0]; cmd {
	case CmdStatus:
		fmt.Fprintf(c, "STATUS %s\n", s.Status())
	case CmdVersion:
		fmt.Fprintf(c, "STATUS proto=%s\n", ProtoVer)
	case CmdStop:
		fmt.Fprint(c, "OK stopping\n")
		s.logger.Info("stop requested over control socket")
		s.stop()
	default:
		s.logger.Warn("unknown control command", zap.String("cmd", string(cmd)))
		fmt.Fprintf(c, "ERR unknown=%q\n", cmd)
	}
}

// SendCommand sends cmd to the session at paths and returns its reply
// without the trailing newline.
func SendCommand(paths Paths, cmd byte) (string, error) {
	c, err := net.Dial("unix", paths.Sock)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, syscall.ECONNREFUSED) {
			return "", ErrNotRunning
		}
		return "", err
	}
	defer c.Close()

	_ = c.SetDeadline(time.Now().Add(clientTimeout))
	if _, err := c.Write([]byte{cmd, '\n'}); err != nil {
		return "", err
	}
	resp, err := bufio.NewReader(c).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(resp, "\n"), nil
}

func checkExisting(pidPath string) error {
	pidData, err := os.ReadFile(pidPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(pidData)))
	if err != nil {
		return nil // invalid pid file, assume stale
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return nil
	}
	if err := proc.Signal(syscall.Signal(0)); err != nil {
		return nil // process not alive, stale pid file
	}

	return fmt.Errorf("a watch session is already running with PID %d", pid)
}
