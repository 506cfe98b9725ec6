// agentcored runs the agent-loop queue worker pool and exposes the HTTP
// trigger/health surface and a gRPC health service alongside it.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/codeready-toolchain/agentcore/pkg/config"
	"github.com/codeready-toolchain/agentcore/pkg/diagnostic"
	"github.com/codeready-toolchain/agentcore/pkg/dispatch"
	"github.com/codeready-toolchain/agentcore/pkg/llm"
	"github.com/codeready-toolchain/agentcore/pkg/looprun"
	"github.com/codeready-toolchain/agentcore/pkg/policy"
	"github.com/codeready-toolchain/agentcore/pkg/runqueue"
	"github.com/codeready-toolchain/agentcore/pkg/store"
	"github.com/codeready-toolchain/agentcore/pkg/trust"
	"github.com/codeready-toolchain/agentcore/pkg/validator"
	"github.com/codeready-toolchain/agentcore/pkg/version"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func main() {
	configDir := flag.String("config-dir", getEnv("CONFIG_DIR", "./deploy/config"), "Path to configuration directory")
	flag.Parse()

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		log.Printf("Warning: could not load %s: %v (continuing with existing environment)", envPath, err)
	} else {
		log.Printf("Loaded environment from %s", envPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Initialize(ctx, *configDir)
	if err != nil {
		log.Fatalf("Failed to initialize configuration: %v", err)
	}

	logger := newLogger(cfg.System.LogLevel)
	slog.SetDefault(logger)

	policyEngine := buildPolicyEngine(cfg.Policy, logger)
	diagRegistry := buildDiagnosticRegistry(cfg.Diagnostic)
	validatorChain := buildValidatorChain(cfg.Validator, diagRegistry, logger)

	provider, err := cfg.GetLLMProvider(cfg.Defaults.LLMProvider)
	if err != nil {
		log.Fatalf("Failed to resolve default LLM provider %q: %v", cfg.Defaults.LLMProvider, err)
	}
	llmClient, err := llm.NewClient(provider.Address, llm.WithModel(provider.Model), llm.WithLogger(logger))
	if err != nil {
		log.Fatalf("Failed to dial LLM provider %q at %s: %v", cfg.Defaults.LLMProvider, provider.Address, err)
	}
	defer llmClient.Close()

	toolExecutor := dispatch.NewToolExecutor(policyEngine, validatorChain, diagRegistry, nil, llmClient, ".",
		dispatch.WithLogger(logger), dispatch.WithStopOnError(cfg.Validator.StopOnError))
	loops := dispatch.DefaultLoops()
	runner := looprun.NewRunner(looprun.WithLogger(logger))
	runExecutor := dispatch.NewRunExecutor(runner, loops, toolExecutor)

	workerID := getEnv("WORKER_ID", fmt.Sprintf("%s-%s", hostnameOrDefault(), uuid.NewString()[:8]))

	var storeClient *store.Client
	var pool *runqueue.WorkerPool
	if cfg.Store.Enabled {
		storeCfg, err := store.LoadConfigFromEnv()
		if err != nil {
			log.Fatalf("Failed to load store config: %v", err)
		}
		storeClient, err = store.NewClient(ctx, storeCfg)
		if err != nil {
			log.Fatalf("Failed to connect to store: %v", err)
		}
		defer func() {
			if err := storeClient.Close(); err != nil {
				log.Printf("Error closing store client: %v", err)
			}
		}()
		logger.Info("Connected to store")

		if err := runqueue.CleanupStartupOrphans(ctx, storeClient.Client, workerID); err != nil {
			logger.Error("Startup orphan cleanup failed", "error", err)
		}

		pool = runqueue.NewWorkerPool(workerID, storeClient.Client, cfg.RunQueue, runExecutor)
		if err := pool.Start(ctx); err != nil {
			log.Fatalf("Failed to start worker pool: %v", err)
		}
	} else {
		logger.Warn("pkg/store disabled: loop runs execute synchronously, no queue/history")
	}

	gin.SetMode(getEnv("GIN_MODE", "release"))
	router := buildRouter(cfg, storeClient, pool, loops, runner, toolExecutor)

	httpAddr := cfg.System.HTTPAddr
	if httpAddr == "" {
		httpAddr = ":8080"
	}
	httpServer := &http.Server{Addr: httpAddr, Handler: router}

	go func() {
		logger.Info("HTTP server listening", "addr", httpAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	grpcHealthAddr := cfg.System.GRPCHealthAddr
	if grpcHealthAddr == "" {
		grpcHealthAddr = ":9090"
	}
	grpcServer, healthServer := buildGRPCHealthServer()
	lis, err := net.Listen("tcp", grpcHealthAddr)
	if err != nil {
		log.Fatalf("Failed to listen for gRPC health service: %v", err)
	}
	go func() {
		logger.Info("gRPC health service listening", "addr", grpcHealthAddr)
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC health server stopped", "error", err)
		}
	}()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	<-ctx.Done()
	logger.Info("Shutdown signal received")

	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.RunQueue.GracefulShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	grpcServer.GracefulStop()

	if pool != nil {
		pool.Stop()
	}

	logger.Info("Shutdown complete")
}

func hostnameOrDefault() string {
	h, err := os.Hostname()
	if err != nil || h == "" {
		return "agentcored"
	}
	return h
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func buildPolicyEngine(cfg *config.PolicyConfig, logger *slog.Logger) *policy.Engine {
	velocity := policy.NewVelocityPolicy(
		policy.WithWindow(time.Duration(cfg.Velocity.WindowSeconds)*time.Second),
		policy.WithStallThreshold(cfg.Velocity.StallObservations),
		policy.WithOscillationCycles(cfg.Velocity.OscillationCycles),
	)
	quarantine := policy.NewQuarantinePolicy(policy.WithRepairTools(cfg.Quarantine.RepairTools...))
	rateLimit := policy.NewRateLimitPolicy(
		policy.WithMaxCallsPerMinute(cfg.RateLimit.MaxPerMinuteGlobal),
		policy.WithMaxCallsPerTarget(cfg.RateLimit.MaxPerTarget),
	)
	pathPolicy := policy.NewPathPolicy(policy.WithBlockedPaths(cfg.Path.BlockedPaths...))

	trustManager := trust.NewManager()
	if cfg.Trust.RulesFile != "" {
		loaded, err := trust.Load(cfg.Trust.RulesFile)
		if err != nil {
			logger.Warn("Failed to load trust rules file, continuing with no rules", "path", cfg.Trust.RulesFile, "error", err)
		} else {
			trustManager = loaded
		}
	}
	trustPolicy := policy.NewTrustPolicy(trustManager)

	return policy.NewDefaultEngine(velocity, quarantine, rateLimit, pathPolicy, trustPolicy, policy.WithLogger(logger))
}

func buildDiagnosticRegistry(cfg *config.DiagnosticConfig) *diagnostic.Registry {
	r := diagnostic.NewRegistry()
	for alias, target := range cfg.ParserAliases {
		if p, ok := r.Get(target); ok {
			r.Register(alias, p, nil)
		}
	}
	return r
}

func buildValidatorChain(cfg *config.ValidatorConfig, diagRegistry *diagnostic.Registry, logger *slog.Logger) *validator.Chain {
	var validators []validator.Validator
	if cfg.Syntax.Enabled {
		validators = append(validators, validator.NewSyntaxValidator())
	}
	if cfg.Command.Enabled {
		validators = append(validators, validator.NewCommandValidator(cfg.Command.Name, append([]string{cfg.Command.Command}, cfg.Command.Args...),
			validator.WithSuccessCodes(cfg.Command.SuccessCodes...)))
	}
	if cfg.TestRunner.Enabled {
		validators = append(validators, validator.NewTestRunnerValidator("test_runner", append([]string{cfg.TestRunner.Command}, cfg.TestRunner.Args...)))
	}
	if cfg.Diagnostic.Enabled {
		validators = append(validators, validator.NewDiagnosticValidator(cfg.Diagnostic.Name,
			append([]string{cfg.Diagnostic.Command}, cfg.Diagnostic.Args...), diagRegistry, cfg.Diagnostic.ParserName))
	}
	return validator.NewChain(validators, validator.WithLogger(logger))
}

func buildGRPCHealthServer() (*grpc.Server, *health.Server) {
	srv := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(srv, healthSrv)
	return srv, healthSrv
}

// runRequest is the POST /loops/{name}/run body: an arbitrary JSON value
// passed through as the loop's initial LoopContext.Input.
type runRequest struct {
	Input any `json:"input"`
}

func buildRouter(cfg *config.Config, storeClient *store.Client, pool *runqueue.WorkerPool, loops *dispatch.LoopRegistry, runner *looprun.Runner, executor looprun.Executor) *gin.Engine {
	router := gin.Default()

	router.GET("/healthz", func(c *gin.Context) {
		body := gin.H{"status": "healthy", "version": version.Full(), "llm_providers": cfg.Stats().LLMProviders}
		if pool != nil {
			h := pool.Health()
			body["queue"] = h
			if !h.IsHealthy {
				c.JSON(http.StatusServiceUnavailable, body)
				return
			}
		}
		c.JSON(http.StatusOK, body)
	})

	router.GET("/stats", func(c *gin.Context) {
		body := gin.H{"version": version.Full(), "loops": loops.Names(), "config": cfg.Stats()}
		if pool != nil {
			body["queue"] = pool.Health()
		}
		c.JSON(http.StatusOK, body)
	})

	router.POST("/loops/:name/run", func(c *gin.Context) {
		name := c.Param("name")
		loop, ok := loops.Get(name)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("unknown loop %q", name)})
			return
		}

		var req runRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}

		if storeClient == nil {
			result, err := runner.Run(c.Request.Context(), loop, executor, req.Input)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, result)
			return
		}

		encoded, err := json.Marshal(req.Input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		run, err := storeClient.LoopRun.Create().
			SetID(uuid.NewString()).
			SetLoopName(name).
			SetInput(string(encoded)).
			Save(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"run_id": run.ID, "status": run.Status})
	})

	return router
}
