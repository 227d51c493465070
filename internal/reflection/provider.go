package reflection

import (
	"fmt"
	"strings"

	"github.com/mvp-joe/stubcheck/internal/model"
)

// Provider resolves functions from a Dump.
type Provider struct {
	dump   *Dump
	byName map[string]int
	// PHP function names are case-insensitive.
	byLower map[string]int
}

// NewProvider indexes d. The first entry wins when a name repeats.
func NewProvider(d *Dump) *Provider {
	p := &Provider{
		dump:    d,
		byName:  make(map[string]int, len(d.Functions)),
		byLower: make(map[string]int, len(d.Functions)),
	}
	for i, fn := range d.Functions {
		if _, ok := p.byName[fn.Name]; !ok {
			p.byName[fn.Name] = i
		}
		lower := strings.ToLower(fn.Name)
		if _, ok := p.byLower[lower]; !ok {
			p.byLower[lower] = i
		}
	}
	return p
}

// Resolve implements model.Introspector.
func (p *Provider) Resolve(name string) (model.IntrospectedFunction, error) {
	name = strings.TrimPrefix(name, `\`)
	if i, ok := p.byName[name]; ok {
		return handle{fn: &p.dump.Functions[i]}, nil
	}
	if i, ok := p.byLower[strings.ToLower(name)]; ok {
		return handle{fn: &p.dump.Functions[i]}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Names returns every function name in dump order.
func (p *Provider) Names() []string {
	names := make([]string, 0, len(p.dump.Functions))
	for _, fn := range p.dump.Functions {
		names = append(names, fn.Name)
	}
	return names
}

// Functions builds a model for every function in dump order. A repeated
// name yields one model, built from its first entry.
func (p *Provider) Functions() []*model.Function {
	fns := make([]*model.Function, 0, len(p.dump.Functions))
	for i := range p.dump.Functions {
		fn := &p.dump.Functions[i]
		if p.byName[fn.Name] != i {
			continue
		}
		fns = append(fns, model.FromHandle(handle{fn: fn}))
	}
	return fns
}

// PHPVersion returns the version of the runtime that produced the dump.
func (p *Provider) PHPVersion() string {
	return p.dump.PHPVersion
}
