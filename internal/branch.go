package internal

import "context"

// Branch is an isolated copy of a request context for work that may outlive
// its caller, such as a handler running under a deadline. The branch has its
// own request context, response builder and header map. Nothing it does is
// visible to the parent until Merge.
type Branch struct {
	parent *requestContext
	ctx    *requestContext
}

// NewBranch forks c onto ctx. It reports false when c was not created by
// the dispatcher.
func NewBranch(c Context, ctx context.Context) (*Branch, bool) {
	parent, ok := c.(*requestContext)
	if !ok {
		return nil, false
	}

	fork := *parent
	fork.request = parent.request.WithContext(ctx)
	fork.response = parent.response.fork()
	fork.branched = true
	fork.sets = nil
	return &Branch{parent: parent, ctx: &fork}, true
}

// Context returns the context the branched work should use.
func (b *Branch) Context() Context {
	return b.ctx
}

// Merge copies the branch's response, stored values and session back to the
// parent. Call it only after the branched work has returned.
func (b *Branch) Merge() {
	p, f := b.parent, b.ctx

	p.response.adopt(f.response)
	for _, kv := range f.sets {
		p.Set(kv.key, kv.value)
	}

	if f.sessionLoaded {
		loaded := p.sessionLoaded
		p.session = f.session
		p.sessionLoaded = true
		if !loaded {
			p.watchSession()
		}
	}
}

// Abandon seals the branch response so later writes from the branched work
// fail and never reach the parent.
func (b *Branch) Abandon() {
	b.ctx.response.discard()
}
