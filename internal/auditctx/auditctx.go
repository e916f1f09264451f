// Package auditctx carries the authenticated caller through request contexts
// so the service layer can attribute audit entries.
package auditctx

import "context"

// Actor is whoever triggered the request: the admin behind a token, or a CLI
// operator.
type Actor struct {
	Username  string
	Role      string
	IPAddress string
	UserAgent string
}

// overlay returns a with every empty field taken from b.
func (a Actor) overlay(b Actor) Actor {
	pick := func(x, y string) string {
		if x != "" {
			return x
		}
		return y
	}
	return Actor{
		Username:  pick(a.Username, b.Username),
		Role:      pick(a.Role, b.Role),
		IPAddress: pick(a.IPAddress, b.IPAddress),
		UserAgent: pick(a.UserAgent, b.UserAgent),
	}
}

type key struct{}

// WithActor attaches actor to ctx. A nil ctx is treated as Background.
func WithActor(ctx context.Context, actor Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, key{}, actor)
}

// FromContext returns the actor attached by WithActor.
func FromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(key{}).(Actor)
	return actor, ok
}

// Resolve completes explicit with the context actor. Fields set on explicit
// win.
func Resolve(ctx context.Context, explicit Actor) Actor {
	stored, _ := FromContext(ctx)
	return explicit.overlay(stored)
}
