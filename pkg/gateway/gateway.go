package gateway

import (
	"context"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wilhg/dahua-mcp/pkg/dahua"
	"github.com/wilhg/dahua-mcp/pkg/errmodel"
)

// Gateway gates and dispatches tool calls. One instance serves all sessions;
// all fields are read-only after construction except the limiter's own state.
type Gateway struct {
	resolver Resolver
	rules    Rules
	limiter  *Limiter
	tracer   trace.Tracer
}

// New builds a gateway. limiter may be nil (rate limiting disabled).
func New(resolver Resolver, rules Rules, limiter *Limiter) *Gateway {
	return &Gateway{
		resolver: resolver,
		rules:    rules,
		limiter:  limiter,
		tracer:   otel.Tracer("gateway"),
	}
}

// Rules returns the startup policy, used to filter tool registration.
func (g *Gateway) Rules() Rules { return g.rules }

// List returns the credential-free camera listing.
func (g *Gateway) List() []dahua.Summary { return g.resolver.List() }

// Invoke runs one tool call through the pipeline: validate, resolve, policy,
// rate limit, dispatch. The checks run in that order and a failure returns
// before any device I/O. Exactly one dispatch attempt is made; nothing here
// retries (a reboot must never be issued twice).
func (g *Gateway) Invoke(ctx context.Context, caller string, tool Tool, args map[string]any) (any, error) {
	ctx, span := g.tracer.Start(ctx, "gateway.invoke")
	defer span.End()
	span.SetAttributes(
		attribute.String("tool", tool.Name),
		attribute.String("caller", caller),
	)

	out, err := g.invoke(ctx, caller, tool, args, span)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, errmodel.From(err).Kind)
		if ctx.Err() == nil {
			log.Printf("tool %s failed: %v", tool.Name, err)
		}
		return nil, err
	}
	span.SetStatus(codes.Ok, "")
	return out, nil
}

func (g *Gateway) invoke(ctx context.Context, caller string, tool Tool, args map[string]any, span trace.Span) (any, error) {
	if args == nil {
		args = map[string]any{}
	}
	if err := ValidateArgs(tool.InputSchema, args); err != nil {
		return nil, err
	}

	var dev dahua.Device
	if tool.NeedsCamera {
		name, _ := args["camera"].(string)
		var err error
		dev, err = g.resolver.Resolve(name)
		if err != nil {
			return nil, err
		}
		span.SetAttributes(attribute.String("camera", name))
	}

	if d := Evaluate(tool, g.rules); !d.Allowed {
		return nil, errmodel.PolicyDenied(d.Code, d.Reason, map[string]any{"tool": tool.Name})
	}

	if ok, retryAfter := g.limiter.Check(caller); !ok {
		return nil, errmodel.RateLimited(retryAfter, map[string]any{"tool": tool.Name, "caller": caller})
	}

	return tool.Handler(ctx, dev, args)
}
