package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/autoparts/internal/config"
	testhelpers "github.com/polkiloo/autoparts/internal/test"
	"github.com/polkiloo/autoparts/internal/worker"
)

type adminBootstrapperStub struct {
	mu    sync.Mutex
	err   error
	calls []string
}

func (s *adminBootstrapperStub) EnsureAdmin(_ context.Context, login, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, login)
	return s.err
}

func (s *adminBootstrapperStub) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTestRefresher(rates *testhelpers.RateFacadeStub) *worker.RateRefresher {
	return worker.NewRateRefresher(rates, time.Hour, discardLogger())
}

func TestNewHTTPServer(t *testing.T) {
	cfg := &config.Config{RunAddress: ":9999"}
	router := gin.New()
	server := newHTTPServer(serverParams{Config: cfg, Router: router})
	if server.Addr != ":9999" {
		t.Fatalf("expected address :9999, got %q", server.Addr)
	}
	if server.Handler != router {
		t.Fatalf("expected handler to be router")
	}
}

func TestNewRateRefresherUsesConfig(t *testing.T) {
	refresher := newRateRefresher(workerParams{
		Facade: &StorefrontFacade{},
		Config: &config.Config{RatePollInterval: 15 * time.Second},
		Logger: discardLogger(),
	})
	if refresher == nil {
		t.Fatal("expected rate refresher instance")
	}
}

func TestFacadeAdapters(t *testing.T) {
	f := &StorefrontFacade{}
	if newHandlersFacade(f) == nil {
		t.Fatal("expected handlers facade")
	}
	if newAdminBootstrapper(f) == nil {
		t.Fatal("expected admin bootstrapper")
	}
}

func TestRegisterLifecycleStartStop(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	shutdowner := &testhelpers.ShutdownerStub{Called: make(chan struct{}, 1)}
	server := &http.Server{Addr: "127.0.0.1:0", Handler: http.NewServeMux()}
	rates := &testhelpers.RateFacadeStub{Called: make(chan struct{}, 1)}
	admins := &adminBootstrapperStub{}
	cfg := &config.Config{ShutdownTimeout: 100 * time.Millisecond, AdminLogin: "root", AdminPassword: "secret"}

	registerLifecycle(lifecycleParams{
		Lifecycle:  recorder,
		Shutdowner: shutdowner,
		Logger:     discardLogger(),
		Server:     server,
		Worker:     newTestRefresher(rates),
		Admins:     admins,
		Config:     cfg,
	})

	if len(recorder.Hooks) != 1 {
		t.Fatalf("expected one hook registered, got %d", len(recorder.Hooks))
	}

	hook := recorder.Hooks[0]
	ctx, cancel := context.WithCancel(context.Background())
	if err := hook.OnStart(ctx); err != nil {
		t.Fatalf("on start failed: %v", err)
	}
	// fx cancels the start context right after start.
	cancel()

	select {
	case <-rates.Called:
	case <-time.After(time.Second):
		t.Fatal("expected rate refresh after start")
	}
	if calls := admins.Calls(); len(calls) != 1 || calls[0] != "root" {
		t.Fatalf("expected admin bootstrap for root, got %v", calls)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = hook.OnStop(context.Background())
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected on stop to finish")
	}
}

func TestRegisterLifecycleSkipsAdminWithoutLogin(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	admins := &adminBootstrapperStub{}

	registerLifecycle(lifecycleParams{
		Lifecycle:  recorder,
		Shutdowner: &testhelpers.ShutdownerStub{},
		Logger:     discardLogger(),
		Server:     &http.Server{Addr: "127.0.0.1:0", Handler: http.NewServeMux()},
		Worker:     newTestRefresher(&testhelpers.RateFacadeStub{}),
		Admins:     admins,
		Config:     &config.Config{ShutdownTimeout: time.Second},
	})

	if err := recorder.Start(context.Background()); err != nil {
		t.Fatalf("on start failed: %v", err)
	}
	defer func() { _ = recorder.Stop(context.Background()) }()

	if calls := admins.Calls(); len(calls) != 0 {
		t.Fatalf("expected no admin bootstrap, got %v", calls)
	}
}

func TestRegisterLifecycleAdminBootstrapFailure(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	rates := &testhelpers.RateFacadeStub{}
	bootErr := errors.New("db down")

	registerLifecycle(lifecycleParams{
		Lifecycle:  recorder,
		Shutdowner: &testhelpers.ShutdownerStub{},
		Logger:     discardLogger(),
		Server:     &http.Server{Addr: "127.0.0.1:0"},
		Worker:     newTestRefresher(rates),
		Admins:     &adminBootstrapperStub{err: bootErr},
		Config:     &config.Config{ShutdownTimeout: time.Second, AdminLogin: "root", AdminPassword: "secret"},
	})

	err := recorder.Start(context.Background())
	if !errors.Is(err, bootErr) {
		t.Fatalf("expected bootstrap error, got %v", err)
	}
	if rates.Calls() != 0 {
		t.Fatal("expected refresher not to start after failed bootstrap")
	}
}

func TestRegisterLifecycleShutdownOnServerError(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	shutdowner := &testhelpers.ShutdownerStub{Called: make(chan struct{}, 1)}

	registerLifecycle(lifecycleParams{
		Lifecycle:  recorder,
		Shutdowner: shutdowner,
		Logger:     discardLogger(),
		Server:     &http.Server{Addr: "bad addr"},
		Worker:     newTestRefresher(&testhelpers.RateFacadeStub{}),
		Admins:     &adminBootstrapperStub{},
		Config:     &config.Config{ShutdownTimeout: time.Second},
	})

	hook := recorder.Hooks[0]
	if err := hook.OnStart(context.Background()); err != nil {
		t.Fatalf("on start returned error: %v", err)
	}

	select {
	case <-shutdowner.Called:
	case <-time.After(time.Second):
		t.Fatal("expected shutdown to be triggered on server error")
	}

	_ = hook.OnStop(context.Background())
}

func TestLifecycleRecorderRunsHooksInOrder(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	var trace []string
	hook := func(name string) fx.Hook {
		return fx.Hook{
			OnStart: func(context.Context) error { trace = append(trace, "start "+name); return nil },
			OnStop:  func(context.Context) error { trace = append(trace, "stop "+name); return nil },
		}
	}
	recorder.Append(hook("a"))
	recorder.Append(fx.Hook{})
	recorder.Append(hook("b"))

	if err := recorder.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := recorder.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	want := []string{"start a", "start b", "stop b", "stop a"}
	if len(trace) != len(want) {
		t.Fatalf("expected %v, got %v", want, trace)
	}
	for i := range want {
		if trace[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, trace)
		}
	}
}

func TestShutdownerStub(t *testing.T) {
	shutdowner := &testhelpers.ShutdownerStub{Called: make(chan struct{}, 1)}
	if err := shutdowner.Shutdown(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	select {
	case <-shutdowner.Called:
	default:
		t.Fatal("expected shutdown notification")
	}
}
