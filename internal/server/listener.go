package server

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/lfx/internal/shared"
)

// DefaultCallbackTimeout bounds the wait for the browser redirect.
const DefaultCallbackTimeout = 2 * time.Minute

// successPage is the raw HTTP response written back on the callback
// connection once the code has been extracted.
const successPage = "HTTP/1.1 200 OK\r\n" +
	"Content-Type: text/html\r\n" +
	"\r\n" +
	"<html><body><h1>Authorization successful!</h1>" +
	"<p>You can close this window now.</p></body></html>"

// CallbackListener accepts exactly one loopback connection carrying the
// authorization redirect and extracts the code from its request line.
//
// It is deliberately not an HTTP server: the browser sends one request,
// gets one static page, and the listener is discarded.
type CallbackListener struct {
	listener net.Listener
	state    string
	timeout  time.Duration
}

// NewCallbackListener binds the loopback callback port. The state token
// must match the one embedded in the authorization URL; the echoed value
// is verified before the code is accepted.
func NewCallbackListener(host string, port int, state string, timeout time.Duration) (*CallbackListener, error) {
	if host == "" {
		host = "127.0.0.1"
	}
	if port == 0 {
		port = 8888
	}
	if timeout <= 0 {
		timeout = DefaultCallbackTimeout
	}

	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrListenerBind, addr, err)
	}

	return &CallbackListener{listener: ln, state: state, timeout: timeout}, nil
}

// Addr returns the bound address, useful when port 0 let the OS choose.
func (l *CallbackListener) Addr() string {
	return l.listener.Addr().String()
}

// Close releases the port without waiting for a callback.
func (l *CallbackListener) Close() error {
	return l.listener.Close()
}

// Wait blocks until the redirect arrives, answers it with the success
// page, and returns the authorization code. The wait is bounded by the
// configured timeout and by ctx; either expiring yields
// shared.ErrAuthTimeout. Exactly one connection is ever serviced.
func (l *CallbackListener) Wait(ctx context.Context) (string, error) {
	defer l.listener.Close()

	type accepted struct {
		conn net.Conn
		err  error
	}

	// Closing the listener unblocks Accept, so the goroutine cannot
	// outlive the deferred Close above.
	ch := make(chan accepted, 1)
	go func() {
		conn, err := l.listener.Accept()
		ch <- accepted{conn: conn, err: err}
	}()

	timer := time.NewTimer(l.timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %v", shared.ErrAuthTimeout, ctx.Err())
	case <-timer.C:
		return "", fmt.Errorf("%w: no callback within %s", shared.ErrAuthTimeout, l.timeout)
	case a := <-ch:
		if a.err != nil {
			return "", fmt.Errorf("accept failed: %w", a.err)
		}
		defer a.conn.Close()
		return l.handle(a.conn)
	}
}

// handle services the single accepted connection: request line in,
// success page out.
func (l *CallbackListener) handle(conn net.Conn) (string, error) {
	requestLine, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrCallbackMalformed, err)
	}

	code, echoed, err := parseCallback(requestLine)
	if err != nil {
		return "", err
	}

	if echoed != l.state {
		return "", fmt.Errorf("%w: got %q", shared.ErrStateMismatch, echoed)
	}

	if _, err := conn.Write([]byte(successPage)); err != nil {
		return "", fmt.Errorf("failed to answer callback: %w", err)
	}

	return code, nil
}

// parseCallback pulls the authorization code and echoed state out of a raw
// HTTP request line. The path is the second whitespace-separated token,
// parsed against a synthetic local origin.
func parseCallback(requestLine string) (code, state string, err error) {
	fields := strings.Fields(requestLine)
	if len(fields) < 2 {
		return "", "", fmt.Errorf("%w: %q", shared.ErrCallbackMalformed, strings.TrimSpace(requestLine))
	}

	parsed, err := url.Parse("http://localhost" + fields[1])
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", shared.ErrCallbackUnparseable, err)
	}

	query := parsed.Query()
	code = query.Get("code")
	if code == "" {
		return "", "", fmt.Errorf("%w: %s", shared.ErrMissingAuthCode, parsed.Path)
	}

	return code, query.Get("state"), nil
}
