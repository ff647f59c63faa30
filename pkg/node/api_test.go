package node

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
)

func startAPI(t *testing.T) APIClient {
	lis := bufconn.Listen(1 << 20)
	server := grpc.NewServer()
	RegisterAPIServer(server, &ApiServerImpl{Service: newTestService(nil)})
	go func() { _ = server.Serve(lis) }()
	t.Cleanup(server.Stop)

	conn, err := grpc.Dial("bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) { return lis.Dial() }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewAPIClient(conn)
}

func TestGRPCSolve(t *testing.T) {
	client := startAPI(t)
	ctx := context.Background()

	_, err := client.HealthCheck(ctx, &emptypb.Empty{})
	require.NoError(t, err)

	in, err := ToStruct(&SolveRequest{ID: "rpc", Graph: endToEnd})
	require.NoError(t, err)
	out, err := client.Solve(ctx, in)
	require.NoError(t, err)

	var resp SolveResponse
	require.NoError(t, FromStruct(out, &resp))
	assert.Equal(t, "rpc", resp.ID)
	require.Len(t, resp.Ranks, 3)
	assert.Equal(t, 0, resp.Ranks[0].Node)
	assert.InDelta(t, 4.16666471920995, resp.Ranks[0].Score, 1e-9)
}

func TestGRPCInvalidArgument(t *testing.T) {
	client := startAPI(t)

	in, err := ToStruct(&SolveRequest{Graph: endToEnd, Sources: []int{0, 1, 2}})
	require.NoError(t, err)
	_, err = client.Solve(context.Background(), in)
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestHTTPHealth(t *testing.T) {
	e := NewHTTPServer(newTestService(nil))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHTTPSolve(t *testing.T) {
	e := NewHTTPServer(newTestService(nil))

	body := `{"adjacency": "0 [1]\n1 [0]\n2 [0]\n", "top": 2}`
	req := httptest.NewRequest(http.MethodPost, "/solve", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"converged":true`)
	assert.Contains(t, rec.Body.String(), `"ranks":[{"node":0,`)
}

func TestHTTPSolveBadRequest(t *testing.T) {
	e := NewHTTPServer(newTestService(nil))

	for _, body := range []string{`{}`, `{"graph": "0,1\n"}`, `{"graph": "0\t1\n1\t0\n", "sources": [0, 1]}`} {
		req := httptest.NewRequest(http.MethodPost, "/solve", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestHTTPSolveRejectsLocalResource(t *testing.T) {
	secret := filepath.Join(t.TempDir(), "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("top-secret-token\n"), 0o644))
	e := NewHTTPServer(newTestService(nil))

	body := fmt.Sprintf(`{"resource": %q}`, secret)
	req := httptest.NewRequest(http.MethodPost, "/solve", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), ErrResourceNotAllowed.Error())
	assert.NotContains(t, rec.Body.String(), "top-secret")
}

func TestHTTPSolveZeroTolerance(t *testing.T) {
	e := NewHTTPServer(newTestService(nil))

	body := `{"adjacency": "0 [1]\n1 [0]\n2 [0]\n", "tolerance": 0, "max_iterations": 7}`
	req := httptest.NewRequest(http.MethodPost, "/solve", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"iterations":7`)
	assert.Contains(t, rec.Body.String(), `"converged":false`)
}

func TestHTTPLogsSentStatus(t *testing.T) {
	var lines []string
	e := echo.New()
	e.Use(logRequests(func(format string, v ...any) {
		lines = append(lines, fmt.Sprintf(format, v...))
	}))
	h := &httpHandler{service: newTestService(nil)}
	e.POST("/solve", h.solve)

	req := httptest.NewRequest(http.MethodPost, "/solve", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"POST /solve -> 400"}, lines)
}
