package internal

// ControllerMarker marks the handler position in an inspected pipeline.
const ControllerMarker = "[Controller]"

// pipeline is the resolved middleware chain around a handler.
// It is immutable once built and shared by concurrent requests.
type pipeline struct {
	before  []step
	after   []step
	handler HandlerFunc
}

// Labels lists the pipeline steps in execution order with the handler marked.
func (p *pipeline) Labels() []string {
	labels := make([]string, 0, len(p.before)+len(p.after)+1)
	for _, s := range p.before {
		labels = append(labels, s.label)
	}
	labels = append(labels, ControllerMarker)
	for _, s := range p.after {
		labels = append(labels, s.label)
	}
	return labels
}

// run executes the pipeline against c. Before steps run in order, each
// wrapping the rest of the chain; a step that does not call next halts it.
// After steps run only when the handler completed without error, piping the
// response body through each step in order.
func (p *pipeline) run(c *requestContext) error {
	r := &pipelineRun{p: p}
	if err := r.call(0, c); err != nil {
		return err
	}
	if !r.completed || len(p.after) == 0 {
		return nil
	}

	body := c.response.Body()
	for _, s := range p.after {
		if s.after == nil {
			continue
		}
		out, err := s.after(c, body)
		if err != nil {
			return err
		}
		body = out
	}
	c.response.SetBody(body)
	return nil
}

type pipelineRun struct {
	p         *pipeline
	completed bool
}

func (r *pipelineRun) call(i int, c Context) error {
	if i == len(r.p.before) {
		err := r.p.handler(c)
		r.completed = err == nil
		return err
	}

	next := func(c Context) error {
		return r.call(i+1, c)
	}
	s := r.p.before[i]
	if s.before == nil {
		return next(c)
	}
	return s.before(c, next)
}
