package components

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"hyperion/internal/graph"
)

const (
	PlatformComponentName = "platforms"
	HTTPComponentName     = "http"
	StorageComponentName  = "storage"
)

type IComponent interface {
	Name() string
	Dependencies() []string
	Validate() error
	Initialize(ctx context.Context) error
	Close(ctx context.Context) error
}

type Registry struct {
	mu         sync.Mutex
	components map[string]IComponent
	order      []string
	logger     *slog.Logger
}

func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		components: make(map[string]IComponent),
		order:      make([]string, 0),
		logger:     logger,
	}
}

func (r *Registry) Register(component IComponent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := component.Name()
	if _, exists := r.components[name]; exists {
		return fmt.Errorf("component %s already registered", name)
	}
	r.components[name] = component
	return nil
}

func (r *Registry) Get(name string) IComponent {
	r.mu.Lock()
	defer r.mu.Unlock()

	comp, exists := r.components[name]
	if !exists {
		panic(fmt.Sprintf("component %s not found", name))
	}
	return comp
}

// InitializeAll validates every component, then initializes them so that
// each one starts after its dependencies. A component whose Initialize fails
// is still closed by CloseAll, since it may have acquired resources first.
func (r *Registry) InitializeAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	nodes := make(map[string]graph.Node)
	for name, comp := range r.components {
		nodes[name] = &componentNode{comp: comp}
	}

	if err := graph.ValidateGraph(nodes); err != nil {
		return err
	}

	order, err := graph.TopologicalSort(nodes)
	if err != nil {
		return err
	}

	for _, name := range order {
		comp := r.components[name]
		if err := comp.Validate(); err != nil {
			return fmt.Errorf("component %s validation failed: %w", name, err)
		}
	}

	for i, name := range order {
		comp := r.components[name]
		r.logger.Debug("Initializing component", "component", name)
		if err := comp.Initialize(ctx); err != nil {
			r.order = order[:i+1]
			return fmt.Errorf("component %s initialization failed: %w", name, err)
		}
	}

	r.order = order
	return nil
}

type componentNode struct {
	comp IComponent
}

func (cn *componentNode) GetName() string {
	return cn.comp.Name()
}

func (cn *componentNode) GetDependencies() []string {
	return cn.comp.Dependencies()
}

// CloseAll closes initialized components in reverse order. Errors are logged
// and do not stop the remaining closes.
func (r *Registry) CloseAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := len(r.order) - 1; i >= 0; i-- {
		name := r.order[i]
		comp := r.components[name]
		if err := comp.Close(ctx); err != nil {
			r.logger.Error("Error closing component", "component", name, "error", err)
		}
	}
	r.order = nil
	return nil
}
