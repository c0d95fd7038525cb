package form

import (
	"context"
	"log/slog"
	"time"

	"github.com/goliatone/go-formflow/pkg/logging"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/navigation"
	"github.com/goliatone/go-formflow/pkg/validation"
)

const (
	// DefaultClearMessage is asked before discarding the form on Clear.
	DefaultClearMessage = "Are you sure you want to clear every fields?"
	// DefaultFileErrorMessage is shown on the file field when ingestion fails.
	DefaultFileErrorMessage = "Error parsing CSV file"
)

// Ingester turns a selected file into rows. csvingest.Pipeline implements it.
type Ingester interface {
	Ingest(ctx context.Context, file model.FileHandle) ([]model.CsvRow, error)
}

// Publisher receives the snapshot of a valid submit. statechannel.Channel
// implements it.
type Publisher interface {
	Publish(snapshot model.FormSnapshot)
}

// FileInput is an external file-selection widget that Clear resets.
type FileInput interface {
	ClearSelection()
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRules replaces the default rule set.
func WithRules(rules *validation.RuleSet) Option {
	return func(o *Orchestrator) {
		if rules != nil {
			o.rules = rules
		}
	}
}

// WithCatalog replaces the default message catalog.
func WithCatalog(catalog validation.Catalog) Option {
	return func(o *Orchestrator) {
		if catalog != nil {
			o.catalog = catalog
		}
	}
}

// WithDebounce sets the typing window.
func WithDebounce(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.window = d
	}
}

// WithIngester replaces the CSV pipeline.
func WithIngester(ingester Ingester) Option {
	return func(o *Orchestrator) {
		if ingester != nil {
			o.ingester = ingester
		}
	}
}

// WithPublisher sets where valid snapshots go.
func WithPublisher(publisher Publisher) Option {
	return func(o *Orchestrator) {
		o.publisher = publisher
	}
}

// WithNavigator sets who handles the post-submit navigation request.
func WithNavigator(navigator navigation.Navigator) Option {
	return func(o *Orchestrator) {
		o.navigator = navigator
	}
}

// WithConfirmer sets the blocking yes/no primitive used by Clear and
// CanLeave. Without one, both decline whenever there is work to lose.
func WithConfirmer(confirmer navigation.Confirmer) Option {
	return func(o *Orchestrator) {
		o.confirmer = confirmer
	}
}

// WithGuard replaces the leave policy.
func WithGuard(policy navigation.Policy) Option {
	return func(o *Orchestrator) {
		o.guard = policy
	}
}

// WithClearMessage overrides DefaultClearMessage.
func WithClearMessage(message string) Option {
	return func(o *Orchestrator) {
		if message != "" {
			o.clearMessage = message
		}
	}
}

// WithFileErrorMessage overrides DefaultFileErrorMessage.
func WithFileErrorMessage(message string) Option {
	return func(o *Orchestrator) {
		if message != "" {
			o.fileErrorMessage = message
		}
	}
}

// WithSessionID fixes the id attached to log records. A random one is used
// otherwise.
func WithSessionID(id string) Option {
	return func(o *Orchestrator) {
		if id != "" {
			o.id = id
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logging.OrDiscard(logger)
	}
}
