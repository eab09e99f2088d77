package main

import (
	"context"
	"log/slog"

	"github.com/harunnryd/kaizen/internal/approval"
	"github.com/harunnryd/kaizen/internal/classifier"
	"github.com/harunnryd/kaizen/internal/config"
	"github.com/harunnryd/kaizen/internal/executor"
	"github.com/harunnryd/kaizen/internal/guardrails"
	"github.com/harunnryd/kaizen/internal/intent"
	"github.com/harunnryd/kaizen/internal/orchestrator"
	"github.com/harunnryd/kaizen/internal/prefs"
	"github.com/harunnryd/kaizen/internal/proposal"
	"github.com/harunnryd/kaizen/internal/ratelimit"
	"github.com/harunnryd/kaizen/internal/reflect"
	"github.com/harunnryd/kaizen/internal/store"
	"github.com/harunnryd/kaizen/internal/tool"
	"github.com/harunnryd/kaizen/internal/tool/builtin"
)

// runtime bundles everything a command needs after wiring.
type runtime struct {
	store  *store.Store
	kernel *orchestrator.Kernel
	prefs  *prefs.Service
}

func (r *runtime) Close() error {
	return r.store.Close()
}

// handleMessage adapts the kernel to the adapter.MessageHandler shape.
func (r *runtime) handleMessage(ctx context.Context, userID, text string) (string, error) {
	reply, err := r.kernel.HandleMessage(ctx, userID, text)
	if err != nil {
		return "", err
	}
	return reply.Text, nil
}

// buildRuntime wires the full pipeline from config. Construction order
// matters only in one place: the approval service needs the executor bound
// after both exist, because approved payloads re-enter the executor.
func buildRuntime(cfg *config.Config) (*runtime, error) {
	lockTimeout, err := config.DurationOrDefault(cfg.Store.LockTimeout, config.DefaultStoreLockTimeout)
	if err != nil {
		return nil, err
	}
	lockRetry, err := config.DurationOrDefault(cfg.Store.LockRetry, config.DefaultStoreLockRetry)
	if err != nil {
		return nil, err
	}

	st, err := store.New(cfg.Server.DataDir, store.Options{
		LockCfg: &store.FileLockConfig{
			LockTimeout:  lockTimeout,
			LockRetry:    lockRetry,
			LockMaxRetry: cfg.Store.LockMaxRetry,
		},
	})
	if err != nil {
		return nil, err
	}

	guards := guardrails.NewTable(cfg.Guardrails.Extra)
	prefsSvc := prefs.NewService(st)
	proposalEngine := proposal.NewEngine(st)
	approvalSvc := approval.NewService(st)

	registry := tool.NewRegistry()
	registry.Register(builtin.NewTaskTool(st))
	registry.Register(builtin.NewBriefTool(st, prefsSvc))
	registry.Register(builtin.NewPreferenceTool(prefsSvc))
	registry.Register(builtin.NewProposalTool(proposalEngine))
	registry.Register(builtin.NewApprovalTool(approvalSvc))
	registry.Register(builtin.NewShellTool())

	stepTimeout, err := config.DurationOrDefault(cfg.Agent.StepTimeout, config.DefaultAgentStepTimeout)
	if err != nil {
		st.Close()
		return nil, err
	}
	exec := executor.New(registry, guards, st, cfg.Agent.MaxSteps, stepTimeout)
	approvalSvc.BindRunner(exec)

	var cls intent.Classifier
	if cfg.Classifier.Enabled && cfg.Classifier.APIKey != "" {
		openaiCls, err := classifier.NewOpenAIClassifier(cfg.Classifier)
		if err != nil {
			st.Close()
			return nil, err
		}
		cls = openaiCls
		slog.Info("Generative classifier enabled", "model", cfg.Classifier.Model)
	} else {
		slog.Info("Generative classifier disabled, grammar only")
	}

	validator := intent.NewValidator(nil, nil, cfg.Classifier.MaxPlanSteps)
	resolver := intent.NewResolver(cls, cfg.Classifier.CacheSize, validator)

	window, err := config.DurationOrDefault(cfg.RateLimit.Window, config.DefaultRateLimitWindow)
	if err != nil {
		st.Close()
		return nil, err
	}

	kernel := orchestrator.NewKernel(orchestrator.Options{
		Store:         st,
		Rules:         proposal.NewRules(st),
		Resolver:      resolver,
		Executor:      exec,
		Reflections:   reflect.NewLog(st),
		Proposals:     proposalEngine,
		Limiter:       ratelimit.New(cfg.RateLimit.MaxRequests, window),
		MaxInputChars: cfg.Agent.MaxInputChars,
	})

	return &runtime{store: st, kernel: kernel, prefs: prefsSvc}, nil
}
