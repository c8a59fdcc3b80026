package ssh

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"

	"edgedeploy/internal/deviceconfig"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

const testPassword = "edgepass"

// testSSHServer is a minimal in-process SSH endpoint. It accepts password
// auth, answers exec requests by echoing the command back on stdout, and
// treats "exit N" commands as a request for exit status N.
type testSSHServer struct {
	addr     string
	listener net.Listener
	config   *ssh.ServerConfig

	mu       sync.Mutex
	conns    []net.Conn
	commands []string
}

func startTestSSHServer(t *testing.T, addr string) *testSSHServer {
	t.Helper()

	if addr == "" {
		addr = "127.0.0.1:0"
	}

	_, hostKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	signer, err := ssh.NewSignerFromKey(hostKey)
	require.NoError(t, err)

	config := &ssh.ServerConfig{
		PasswordCallback: func(_ ssh.ConnMetadata, pass []byte) (*ssh.Permissions, error) {
			if string(pass) == testPassword {
				return nil, nil
			}
			return nil, errors.New("password rejected")
		},
	}
	config.AddHostKey(signer)

	listener, err := net.Listen("tcp", addr)
	require.NoError(t, err)

	server := &testSSHServer{addr: listener.Addr().String(), listener: listener, config: config}
	go server.serve()
	t.Cleanup(server.stop)

	return server
}

func (s *testSSHServer) serve() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		s.conns = append(s.conns, conn)
		s.mu.Unlock()
		go s.handleConn(conn)
	}
}

func (s *testSSHServer) handleConn(conn net.Conn) {
	serverConn, chans, reqs, err := ssh.NewServerConn(conn, s.config)
	if err != nil {
		return
	}
	defer serverConn.Close()
	go ssh.DiscardRequests(reqs)

	for newChannel := range chans {
		if newChannel.ChannelType() != "session" {
			_ = newChannel.Reject(ssh.UnknownChannelType, "only sessions are served")
			continue
		}
		channel, requests, err := newChannel.Accept()
		if err != nil {
			continue
		}
		go s.handleSession(channel, requests)
	}
}

func (s *testSSHServer) handleSession(channel ssh.Channel, requests <-chan *ssh.Request) {
	defer channel.Close()

	for req := range requests {
		if req.Type != "exec" {
			_ = req.Reply(false, nil)
			continue
		}

		var payload struct{ Command string }
		if err := ssh.Unmarshal(req.Payload, &payload); err != nil {
			_ = req.Reply(false, nil)
			continue
		}
		_ = req.Reply(true, nil)

		s.mu.Lock()
		s.commands = append(s.commands, payload.Command)
		s.mu.Unlock()

		status := uint32(0)
		if rest, ok := strings.CutPrefix(payload.Command, "exit "); ok {
			code, _ := strconv.Atoi(rest)
			status = uint32(code)
		} else {
			fmt.Fprint(channel, payload.Command)
		}

		_, _ = channel.SendRequest("exit-status", false, ssh.Marshal(struct{ Status uint32 }{status}))
		return
	}
}

// stop closes the listener and severs every accepted connection, so cached
// client sessions go dead immediately.
func (s *testSSHServer) stop() {
	_ = s.listener.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, conn := range s.conns {
		_ = conn.Close()
	}
	s.conns = nil
}

func (s *testSSHServer) executed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.commands...)
}

func testServerService(server *testSSHServer, maxRetries int) *Service {
	return NewService(&deviceconfig.Config{
		DeviceAddress:  server.addr,
		Username:       "edge",
		Password:       testPassword,
		TimeoutSeconds: 5,
		MaxRetries:     maxRetries,
	})
}

func TestExecuteCommandReplacesDeadSession(t *testing.T) {
	server := startTestSSHServer(t, "")
	service := testServerService(server, 2)
	defer service.Close()

	result, err := service.ExecuteCommand("uname -a", 0)
	require.NoError(t, err)
	assert.Equal(t, "uname -a", result.Stdout)
	assert.Equal(t, []string{"uname -a"}, server.executed())

	// Sever every connection and bring the endpoint back on the same
	// address. The cached session is now dead and the next operation must
	// replace it transparently.
	server.stop()
	restarted := startTestSSHServer(t, server.addr)

	result, err = service.ExecuteCommand("hostname", 0)
	require.NoError(t, err)
	assert.Equal(t, "hostname", result.Stdout)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, []string{"hostname"}, restarted.executed())

	// The replacement session is reused: subsequent operations run the
	// liveness check against it instead of dialing again.
	result, err = service.ExecuteCommand("pwd", 0)
	require.NoError(t, err)
	assert.Equal(t, "pwd", result.Stdout)
	assert.Equal(t, []string{"hostname", "echo alive", "pwd"}, restarted.executed())
}

func TestExecuteCommandReportsRemoteExitStatus(t *testing.T) {
	server := startTestSSHServer(t, "")
	service := testServerService(server, 0)
	defer service.Close()

	result, err := service.ExecuteCommand("exit 3", 0)
	require.NoError(t, err)
	assert.Equal(t, 3, result.ExitCode)
	assert.False(t, result.Success())
}

func TestConnectFailsWhenDeviceUnreachable(t *testing.T) {
	// Reserve a port, then free it so nothing listens there.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	service := NewService(&deviceconfig.Config{
		DeviceAddress:  addr,
		Username:       "edge",
		Password:       testPassword,
		TimeoutSeconds: 1,
		MaxRetries:     0,
	})

	require.ErrorIs(t, service.Connect(), ErrConnectionFailed)
}

func TestConnectRejectsBadCredentials(t *testing.T) {
	server := startTestSSHServer(t, "")

	service := NewService(&deviceconfig.Config{
		DeviceAddress:  server.addr,
		Username:       "edge",
		Password:       "wrong",
		TimeoutSeconds: 5,
		MaxRetries:     0,
	})

	require.ErrorIs(t, service.Connect(), ErrConnectionFailed)
}
