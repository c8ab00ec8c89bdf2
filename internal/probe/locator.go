package probe

import (
	"context"
	"fmt"

	"github.com/nao1215/tunnelcheck/internal/config"
	"github.com/nao1215/tunnelcheck/internal/model"
)

// Locator finds the first reachable development server.
type Locator struct {
	prober *Prober
	ports  []int
}

// NewLocator creates a Locator that walks ports in the given order using
// prober. When ports is empty config.DefaultPorts is used.
func NewLocator(prober *Prober, ports []int) *Locator {
	if len(ports) == 0 {
		ports = config.DefaultPorts()
	}
	return &Locator{
		prober: prober,
		ports:  append([]int(nil), ports...),
	}
}

// Find probes targets one at a time, port by port and host by host within
// a port, and returns the result of the first reachable one.
//
// Design decision: Unlike ProbeAll, Find is sequential on purpose. The
// first match in priority order wins, so probing later candidates in
// parallel would only add load to servers whose answer is discarded.
func (l *Locator) Find(ctx context.Context) (model.ProbeResult, error) {
	for _, target := range l.prober.Targets(l.ports) {
		if err := ctx.Err(); err != nil {
			return model.ProbeResult{}, err
		}
		result := l.prober.Probe(ctx, target)
		if result.Reachable {
			l.prober.logger.Debug("active server found", "url", target.URL())
			return result, nil
		}
	}
	return model.ProbeResult{}, fmt.Errorf("%w on ports %v", ErrNoActiveServer, l.ports)
}

// Locate returns the base URL of the first reachable server.
// ok is false when no candidate answered.
func (l *Locator) Locate(ctx context.Context) (url string, ok bool) {
	result, err := l.Find(ctx)
	if err != nil {
		return "", false
	}
	return result.Target.URL(), true
}
